package usecases_test

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/samirrijal/geokit/internal/core/codec"
	"github.com/samirrijal/geokit/internal/core/domain"
	"github.com/samirrijal/geokit/internal/core/usecases"
)

func TestFeatureService_Create(t *testing.T) {
	var stored *domain.Feature
	repo := &mockFeatureRepo{
		insertFn: func(ctx context.Context, f *domain.Feature) error {
			f.ID = "abc"
			stored = f
			return nil
		},
	}
	pub := &mockPublisher{}
	svc := usecases.NewFeatureService(repo, pub, newConversion(nil))

	f, err := svc.Create(context.Background(), usecases.CreateFeatureRequest{
		DecodeRequest: usecases.DecodeRequest{
			Input:  []byte("POINT(-2.935 43.263)"),
			Family: domain.FamilyGeography,
			Format: usecases.FormatWKT,
		},
		Name:     "  Plaza Moyua ",
		Metadata: map[string]any{"city": "Bilbao"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored != f || f.ID != "abc" || f.Name != "Plaza Moyua" {
		t.Fatalf("unexpected feature %+v", f)
	}
	if f.Family != domain.FamilyGeography {
		t.Errorf("expected geography, got %s", f.Family)
	}

	if len(pub.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(pub.events))
	}
	ev := pub.events[0]
	if ev.ID != "abc" || ev.Type != "Point" {
		t.Errorf("unexpected event %+v", ev)
	}
	if ev.EWKT != "SRID=4326;POINT(-2.935 43.263)" {
		t.Errorf("unexpected EWKT %q", ev.EWKT)
	}
	if ev.SRID == nil || *ev.SRID != 4326 {
		t.Errorf("expected SRID 4326 in event, got %v", ev.SRID)
	}
}

func TestFeatureService_CreateIgnoresPublishErrors(t *testing.T) {
	pub := &mockPublisher{err: errors.New("nats down")}
	svc := usecases.NewFeatureService(&mockFeatureRepo{}, pub, newConversion(nil))

	_, err := svc.Create(context.Background(), usecases.CreateFeatureRequest{
		DecodeRequest: usecases.DecodeRequest{Input: []byte("POINT(1 2)"), Format: usecases.FormatWKT},
		Name:          "p",
	})
	if err != nil {
		t.Fatalf("publish failures must not fail Create: %v", err)
	}
}

func TestFeatureService_CreateRejectsInput(t *testing.T) {
	inserted := false
	repo := &mockFeatureRepo{
		insertFn: func(ctx context.Context, f *domain.Feature) error {
			inserted = true
			return nil
		},
	}
	svc := usecases.NewFeatureService(repo, nil, newConversion(nil))

	_, err := svc.Create(context.Background(), usecases.CreateFeatureRequest{
		DecodeRequest: usecases.DecodeRequest{Input: []byte("POINT(1 2)"), Format: usecases.FormatWKT},
	})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for empty name, got %v", err)
	}

	_, err = svc.Create(context.Background(), usecases.CreateFeatureRequest{
		DecodeRequest: usecases.DecodeRequest{Input: []byte("CURVE(1 2)"), Format: usecases.FormatWKT},
		Name:          "bad",
	})
	if domain.KindOf(err) != domain.KindUnsupportedWKTType {
		t.Errorf("expected unsupported_wkt_type, got %v", err)
	}
	if inserted {
		t.Error("invalid input must not reach the repository")
	}
}

func TestFeatureService_Get(t *testing.T) {
	svc := usecases.NewFeatureService(&mockFeatureRepo{}, nil, newConversion(nil))
	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Get(context.Background(), " "); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestFeatureService_Delete(t *testing.T) {
	var deleted []string
	repo := &mockFeatureRepo{deleteFn: func(ctx context.Context, id string) error {
		deleted = append(deleted, id)
		return nil
	}}
	svc := usecases.NewFeatureService(repo, nil, newConversion(nil))

	if err := svc.Delete(context.Background(), "f-9"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Delete(context.Background(), ""); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
	if len(deleted) != 1 || deleted[0] != "f-9" {
		t.Errorf("unexpected deletes %v", deleted)
	}
}

func TestFeatureService_ListClampsLimit(t *testing.T) {
	var gotOffset, gotLimit int
	repo := &mockFeatureRepo{
		listFn: func(ctx context.Context, offset, limit int) ([]*domain.Feature, error) {
			gotOffset, gotLimit = offset, limit
			return []*domain.Feature{{ID: "1"}}, nil
		},
		countFn: func(ctx context.Context) (int, error) { return 42, nil },
	}
	svc := usecases.NewFeatureService(repo, nil, newConversion(nil))

	features, total, err := svc.List(context.Background(), -5, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 42 || len(features) != 1 {
		t.Errorf("expected 1 of 42, got %d of %d", len(features), total)
	}
	if gotOffset != 0 || gotLimit != 100 {
		t.Errorf("expected offset 0 limit 100, got %d %d", gotOffset, gotLimit)
	}

	if _, _, err := svc.List(context.Background(), 10, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotOffset != 10 || gotLimit != 20 {
		t.Errorf("expected offset 10 limit 20, got %d %d", gotOffset, gotLimit)
	}
}

func TestFeatureService_FindNearby(t *testing.T) {
	var gotLimit int
	repo := &mockFeatureRepo{
		findNearbyFn: func(ctx context.Context, lon, lat, radius float64, limit int) ([]*domain.Feature, error) {
			gotLimit = limit
			d := 12.5
			return []*domain.Feature{{ID: "near", Distance: &d}}, nil
		},
	}
	svc := usecases.NewFeatureService(repo, nil, newConversion(nil))
	ctx := context.Background()

	features, err := svc.FindNearby(ctx, -2.935, 43.263, 500, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(features) != 1 || gotLimit != 50 {
		t.Errorf("expected 1 feature with limit 50, got %d with %d", len(features), gotLimit)
	}

	if _, err := svc.FindNearby(ctx, 0, 91, 500, 10); domain.KindOf(err) != domain.KindInvalidCoordinate {
		t.Errorf("expected invalid_coordinate, got %v", err)
	}
	if _, err := svc.FindNearby(ctx, 0, 0, 0, 10); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for zero radius, got %v", err)
	}
	if _, err := svc.FindNearby(ctx, 0, 0, usecases.MaxNearbyRadius+1, 10); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for large radius, got %v", err)
	}
}

func TestFeatureService_Ingest(t *testing.T) {
	pub := &mockPublisher{}
	svc := usecases.NewFeatureService(&mockFeatureRepo{}, pub, newConversion(nil))

	g, err := codec.DecodeWKT("LINESTRING(0 0,1 1)", domain.FamilyGeometry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw := codec.EncodeWKB(g, nil)

	f, err := svc.Ingest(context.Background(), &domain.IngestMessage{
		Name:     "path",
		Family:   "geometry",
		Encoding: "wkb",
		Input:    base64.StdEncoding.EncodeToString(raw),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.Geometry.Equal(g) {
		t.Errorf("ingested %s, want %s", codec.Encode(f.Geometry), codec.Encode(g))
	}
	if len(pub.events) != 1 || pub.events[0].EWKT != "LINESTRING(0 0,1 1)" {
		t.Errorf("unexpected events %+v", pub.events)
	}
}

func TestFeatureService_IngestRejects(t *testing.T) {
	svc := usecases.NewFeatureService(&mockFeatureRepo{}, nil, newConversion(nil))
	ctx := context.Background()

	msgs := []*domain.IngestMessage{
		{Name: "a", Family: "sphere", Encoding: "wkt", Input: "POINT(1 2)"},
		{Name: "b", Family: "geometry", Encoding: "kml", Input: "POINT(1 2)"},
		{Name: "c", Family: "geometry", Encoding: "wkb", Input: "!!not base64"},
		{Name: "d", Family: "geography", Encoding: "wkt", Input: "POINT(0 100)"},
		{Name: "e", Family: "geography", Encoding: "geojson", Input: "null"},
		{Name: "f", Family: "geometry", Encoding: "geojson", Input: `{"type":`},
	}
	for _, msg := range msgs {
		if _, err := svc.Ingest(ctx, msg); !domain.IsInvalidInput(err) {
			t.Errorf("%s: expected invalid input, got %v", msg.Name, err)
		}
	}

	failing := usecases.NewFeatureService(&mockFeatureRepo{
		insertFn: func(ctx context.Context, f *domain.Feature) error { return errors.New("db down") },
	}, nil, newConversion(nil))
	_, err := failing.Ingest(ctx, &domain.IngestMessage{Name: "g", Encoding: "wkt", Input: "POINT(1 2)"})
	if err == nil || domain.IsInvalidInput(err) {
		t.Errorf("expected a storage failure, got %v", err)
	}
}
