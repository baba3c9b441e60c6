package usecases

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/samirrijal/geokit/internal/core/codec"
	"github.com/samirrijal/geokit/internal/core/domain"
	"github.com/samirrijal/geokit/internal/core/ports"
	"github.com/samirrijal/geokit/internal/pkg/metrics"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxNearby       = 50
	// MaxNearbyRadius bounds proximity queries, in metres.
	MaxNearbyRadius = 50_000
)

// CreateFeatureRequest is a named geometry to store.
type CreateFeatureRequest struct {
	DecodeRequest
	Name     string
	Metadata map[string]any
}

// FeatureService stores and queries named geometries.
type FeatureService struct {
	features   ports.FeatureRepository
	events     ports.EventPublisher
	conversion *ConversionService
}

// NewFeatureService creates a new FeatureService. events may be nil.
func NewFeatureService(features ports.FeatureRepository, events ports.EventPublisher, conversion *ConversionService) *FeatureService {
	return &FeatureService{features: features, events: events, conversion: conversion}
}

// Create decodes the geometry, stores the feature and publishes a FeatureStored event.
func (s *FeatureService) Create(ctx context.Context, req CreateFeatureRequest) (*domain.Feature, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errors.Wrap(domain.ErrInvalidArgument, "feature name must not be empty")
	}

	g, err := s.conversion.Decode(ctx, req.DecodeRequest)
	if err != nil {
		return nil, err
	}

	f := &domain.Feature{
		Name:     name,
		Family:   g.Family(),
		Geometry: g,
		Metadata: req.Metadata,
	}
	if err := s.features.Insert(ctx, f); err != nil {
		return nil, err
	}
	metrics.FeaturesStored.WithLabelValues(g.Type().String()).Inc()

	if s.events != nil {
		event := &domain.FeatureStored{
			ID:       f.ID,
			Name:     f.Name,
			Type:     g.Type().String(),
			EWKT:     codec.EncodeExtended(g, true),
			StoredAt: time.Now().UTC(),
		}
		if srid, ok := g.SRID(); ok {
			event.SRID = &srid
		}
		// Best-effort publish
		_ = s.events.PublishFeatureStored(ctx, event)
	}
	return f, nil
}

// Get returns a feature by ID.
func (s *FeatureService) Get(ctx context.Context, id string) (*domain.Feature, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.Wrap(domain.ErrInvalidArgument, "feature id must not be empty")
	}
	return s.features.GetByID(ctx, id)
}

// Delete removes a feature by ID.
func (s *FeatureService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.Wrap(domain.ErrInvalidArgument, "feature id must not be empty")
	}
	return s.features.Delete(ctx, id)
}

// List returns one page of features and the total count.
func (s *FeatureService) List(ctx context.Context, offset, limit int) ([]*domain.Feature, int, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	total, err := s.features.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	features, err := s.features.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return features, total, nil
}

// FindNearby returns geography features within radiusMeters of (lon, lat), nearest first.
func (s *FeatureService) FindNearby(ctx context.Context, lon, lat, radiusMeters float64, limit int) ([]*domain.Feature, error) {
	if _, err := codec.NewFactory(domain.FamilyGeography).NewPoint(lon, lat); err != nil {
		return nil, err
	}
	if radiusMeters <= 0 || radiusMeters > MaxNearbyRadius {
		return nil, errors.Wrapf(domain.ErrInvalidArgument,
			"radius must be in (0, %d] metres, got %g", MaxNearbyRadius, radiusMeters)
	}
	if limit <= 0 || limit > maxNearby {
		limit = maxNearby
	}
	return s.features.FindNearby(ctx, lon, lat, radiusMeters, limit)
}

// Ingest stores a feature received from the message broker.
func (s *FeatureService) Ingest(ctx context.Context, msg *domain.IngestMessage) (*domain.Feature, error) {
	f, err := s.ingest(ctx, msg)
	switch {
	case err == nil:
		metrics.IngestMessages.WithLabelValues("stored").Inc()
	case domain.IsInvalidInput(err):
		metrics.IngestMessages.WithLabelValues("rejected").Inc()
	default:
		metrics.IngestMessages.WithLabelValues("failed").Inc()
	}
	return f, err
}

func (s *FeatureService) ingest(ctx context.Context, msg *domain.IngestMessage) (*domain.Feature, error) {
	req, err := IngestRequest(msg)
	if err != nil {
		return nil, err
	}
	return s.Create(ctx, req)
}

// IngestRequest converts a broker message into a CreateFeatureRequest. Raw WKB input is base64
// encoded.
func IngestRequest(msg *domain.IngestMessage) (CreateFeatureRequest, error) {
	family, err := domain.ParseFamily(msg.Family)
	if err != nil {
		return CreateFeatureRequest{}, errors.Mark(err, domain.ErrInvalidArgument)
	}
	format, err := ParseFormat(msg.Encoding)
	if err != nil {
		return CreateFeatureRequest{}, err
	}
	input, err := InputBytes(format, msg.Input)
	if err != nil {
		return CreateFeatureRequest{}, err
	}
	return CreateFeatureRequest{
		DecodeRequest: DecodeRequest{Input: input, Family: family, Format: format},
		Name:          msg.Name,
		Metadata:      msg.Metadata,
	}, nil
}
