package usecases

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/geokit/internal/core/codec"
	"github.com/samirrijal/geokit/internal/core/domain"
	"github.com/samirrijal/geokit/internal/core/platform"
	"github.com/samirrijal/geokit/internal/core/ports"
	"github.com/samirrijal/geokit/internal/pkg/geomconv"
	"github.com/samirrijal/geokit/internal/pkg/geospatial"
	"github.com/samirrijal/geokit/internal/pkg/metrics"
	"github.com/samirrijal/geokit/internal/pkg/telemetry"
)

// Format names a geometry representation accepted or produced by the services.
type Format string

const (
	FormatWKT     Format = "wkt"
	FormatEWKT    Format = "ewkt"
	FormatWKB     Format = "wkb" // raw bytes; base64 inside JSON payloads
	FormatHex     Format = "wkb_hex"
	FormatGeoJSON Format = "geojson"
)

// ParseFormat normalizes a format name. The empty string is WKT.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "wkt", "text":
		return FormatWKT, nil
	case "ewkt":
		return FormatEWKT, nil
	case "wkb", "binary":
		return FormatWKB, nil
	case "wkb_hex", "hex", "hexwkb":
		return FormatHex, nil
	case "geojson", "json":
		return FormatGeoJSON, nil
	default:
		return "", errors.Wrapf(domain.ErrInvalidArgument, "unknown format %q", s)
	}
}

// InputBytes converts a textual payload to decoder input. Raw WKB travels base64 encoded.
func InputBytes(format Format, s string) ([]byte, error) {
	if format != FormatWKB {
		return []byte(s), nil
	}
	b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, errors.Wrap(domain.ErrInvalidArgument, "wkb input is not valid base64")
	}
	return b, nil
}

// DecodeRequest is one geometry to decode.
type DecodeRequest struct {
	Input  []byte
	Family domain.Family
	Format Format
}

// ConvertRequest decodes a geometry and renders it as Output.
type ConvertRequest struct {
	DecodeRequest
	Output    Format
	ByteOrder string // ndr or xdr, for wkb outputs
}

// Conversion is the result of Convert.
type Conversion struct {
	Format  Format         `json:"format"`
	Output  string         `json:"output"`
	Summary domain.Summary `json:"summary"`
}

// ConversionOptions tunes a ConversionService.
type ConversionOptions struct {
	MaxInputBytes   int
	CacheTTLSeconds int
	GeoJSONDigits   int
}

// ConversionService decodes, describes and re-encodes geometries.
type ConversionService struct {
	cache   ports.CacheService
	profile platform.Profile
	opts    ConversionOptions
}

// NewConversionService creates a new ConversionService. cache may be nil.
func NewConversionService(cache ports.CacheService, profile platform.Profile, opts ConversionOptions) *ConversionService {
	if opts.GeoJSONDigits <= 0 {
		opts.GeoJSONDigits = geomconv.DefaultGeoJSONDecimalDigits
	}
	return &ConversionService{cache: cache, profile: profile, opts: opts}
}

// Profile returns the platform profile the service applies to decoded values.
func (s *ConversionService) Profile() platform.Profile { return s.profile }

// Decode decodes req and applies the platform SRID default.
func (s *ConversionService) Decode(ctx context.Context, req DecodeRequest) (domain.Geometry, error) {
	_, span := telemetry.Tracer().Start(ctx, "ConversionService.Decode", trace.WithAttributes(
		attribute.String("geo.format", string(req.Format)),
		attribute.String("geo.family", req.Family.String()),
		attribute.Int("geo.input_bytes", len(req.Input)),
	))
	defer span.End()

	g, err := s.decode(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("geo.type", g.Type().String()))
	return g, nil
}

func (s *ConversionService) decode(req DecodeRequest) (domain.Geometry, error) {
	label := string(req.Format)
	if s.opts.MaxInputBytes > 0 && len(req.Input) > s.opts.MaxInputBytes {
		metrics.DecodeErrors.WithLabelValues(label, "too_large").Inc()
		return nil, errors.Wrapf(domain.ErrInvalidArgument,
			"input is %d bytes, limit is %d", len(req.Input), s.opts.MaxInputBytes)
	}
	metrics.InputBytes.WithLabelValues(label).Observe(float64(len(req.Input)))

	start := time.Now()
	var (
		g   domain.Geometry
		err error
	)
	switch req.Format {
	case FormatWKT, FormatEWKT:
		g, err = codec.Decode(req.Input, req.Family, codec.Text)
	case FormatWKB:
		g, err = codec.Decode(req.Input, req.Family, codec.Binary)
	case FormatHex:
		g, err = codec.Decode(req.Input, req.Family, codec.Hex)
	case FormatGeoJSON:
		g, err = geomconv.FromGeoJSON(req.Input, codec.NewFactory(req.Family))
	default:
		err = errors.Wrapf(domain.ErrInvalidArgument, "unknown format %q", req.Format)
	}
	metrics.DecodeDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DecodeErrors.WithLabelValues(label, domain.KindOf(err).String()).Inc()
		return nil, err
	}

	s.profile.ApplyDefaults(g)
	metrics.GeometriesDecoded.WithLabelValues(label, g.Family().String(), g.Type().String()).Inc()
	return g, nil
}

// Convert decodes req and renders it in req.Output. Results are cached by request digest.
func (s *ConversionService) Convert(ctx context.Context, req ConvertRequest) (*Conversion, error) {
	order, err := codec.ParseByteOrder(req.ByteOrder)
	if err != nil {
		return nil, errors.Mark(err, domain.ErrInvalidArgument)
	}

	cacheKey := "convert:" + req.digest()
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var c Conversion
			if err := json.Unmarshal(data, &c); err == nil {
				metrics.CacheHits.WithLabelValues("convert").Inc()
				return &c, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("convert").Inc()
	}

	g, err := s.Decode(ctx, req.DecodeRequest)
	if err != nil {
		return nil, err
	}

	out, err := s.render(g, req.Output, order)
	if err != nil {
		return nil, err
	}
	c := &Conversion{Format: req.Output, Output: out, Summary: s.Describe(g)}

	if s.cache != nil && s.opts.CacheTTLSeconds > 0 {
		if data, err := json.Marshal(c); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.opts.CacheTTLSeconds)
		}
	}
	return c, nil
}

// Render encodes g in format. Raw WKB is returned base64 encoded.
func (s *ConversionService) Render(g domain.Geometry, format Format, byteOrder string) (string, error) {
	order, err := codec.ParseByteOrder(byteOrder)
	if err != nil {
		return "", errors.Mark(err, domain.ErrInvalidArgument)
	}
	return s.render(g, format, order)
}

func (s *ConversionService) render(g domain.Geometry, format Format, order binary.ByteOrder) (string, error) {
	switch format {
	case FormatWKT:
		return codec.Encode(g), nil
	case FormatEWKT:
		return codec.EncodeExtended(g, true), nil
	case FormatWKB:
		return base64.StdEncoding.EncodeToString(codec.EncodeWKB(g, order)), nil
	case FormatHex:
		return codec.EncodeHex(g, order), nil
	case FormatGeoJSON:
		data, err := geomconv.GeoJSON(g, s.opts.GeoJSONDigits, true)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return "", errors.Wrapf(domain.ErrInvalidArgument, "unknown output format %q", format)
	}
}

// Describe summarizes g.
func (s *ConversionService) Describe(g domain.Geometry) domain.Summary {
	sum := domain.Summary{
		Type:    g.Type().String(),
		Family:  g.Family().String(),
		Geohash: geomconv.GeoHash(g),
	}
	if srid, ok := g.SRID(); ok {
		sum.SRID = &srid
	}
	sum.NumPoints = domain.EachCoord(g, func(float64, float64) {})
	sum.IsEmpty = sum.NumPoints == 0
	if b, ok := domain.BoundsOf(g); ok {
		sum.Bounds = &b
	}
	if g.Family() == domain.FamilyGeography {
		if paths := domain.Paths(g); len(paths) > 0 {
			var total float64
			for _, path := range paths {
				lons := make([]float64, len(path))
				lats := make([]float64, len(path))
				for i := range path {
					lons[i], lats[i] = path[i].Longitude(), path[i].Latitude()
				}
				total += geospatial.PathLength(lons, lats)
			}
			sum.LengthM = &total
		}
	}
	return sum
}

func (r ConvertRequest) digest() string {
	h := sha256.New()
	for _, part := range []string{
		string(r.Format), r.Family.String(), string(r.Output), strings.ToLower(r.ByteOrder),
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	h.Write(r.Input)
	return hex.EncodeToString(h.Sum(nil))
}
