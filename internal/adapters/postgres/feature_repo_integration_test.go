//go:build integration
// +build integration

package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samirrijal/geokit/internal/adapters/postgres"
	"github.com/samirrijal/geokit/internal/core/codec"
	"github.com/samirrijal/geokit/internal/core/domain"
	"github.com/samirrijal/geokit/internal/core/platform"
	"github.com/samirrijal/geokit/internal/pkg/config"
)

// setupTestDB connects to the database named by GEOKIT_DATABASE_* and applies no migrations;
// run cmd/migrate first.
func setupTestDB(t *testing.T) *postgres.DB {
	cfg, err := config.Load("geokit-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := postgres.New(ctx, cfg.Database.DSN(), 4)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(db.Close)
	return db
}

func TestFeatureRepo_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := postgres.NewFeatureRepo(db, platform.PostgreSQL)
	ctx := context.Background()

	g, err := platform.PostgreSQL.FromDatabase([]byte("POLYGON((-2.94 43.26,-2.93 43.26,-2.93 43.27,-2.94 43.26))"),
		domain.FamilyGeography, codec.Text)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	f := &domain.Feature{Name: "test-area", Family: domain.FamilyGeography, Geometry: g,
		Metadata: map[string]any{"source": "integration"}}
	if err := repo.Insert(ctx, f); err != nil {
		t.Fatalf("insert: %v", err)
	}
	t.Cleanup(func() { _, _ = db.Pool.Exec(context.Background(), `DELETE FROM features WHERE id = $1`, f.ID) })

	got, err := repo.GetByID(ctx, f.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Geometry.Equal(g) {
		t.Errorf("got %s, want %s", codec.EncodeExtended(got.Geometry, true), codec.EncodeExtended(g, true))
	}
	if got.Metadata["source"] != "integration" {
		t.Errorf("unexpected metadata %v", got.Metadata)
	}

	near, err := repo.FindNearby(ctx, -2.935, 43.265, 2000, 10)
	if err != nil {
		t.Fatalf("nearby: %v", err)
	}
	found := false
	for _, n := range near {
		if n.ID == f.ID {
			found = n.Distance != nil
		}
	}
	if !found {
		t.Errorf("expected %s among nearby features", f.ID)
	}

	if _, err := repo.GetByID(ctx, "not-a-uuid"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
