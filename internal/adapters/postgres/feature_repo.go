package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/samirrijal/geokit/internal/core/domain"
	"github.com/samirrijal/geokit/internal/core/platform"
	"github.com/samirrijal/geokit/internal/pkg/geospatial"
)

// FeatureRepo implements ports.FeatureRepository with pgx and PostGIS.
type FeatureRepo struct {
	db      *DB
	profile platform.Profile
}

// NewFeatureRepo creates a new FeatureRepo.
func NewFeatureRepo(db *DB, profile platform.Profile) *FeatureRepo {
	return &FeatureRepo{db: db, profile: profile}
}

const featureColumns = `id, name, family, ST_AsBinary(geom), ST_SRID(geom), COALESCE(metadata, '{}'), created_at`

// Insert stores f. Geography features also fill the geog column used by proximity queries.
func (r *FeatureRepo) Insert(ctx context.Context, f *domain.Feature) error {
	col := Column{Family: f.Family, Profile: r.profile, Geometry: f.Geometry}
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO features (name, family, geom, geog, metadata)
		VALUES ($1, $2::text, ST_GeomFromEWKT($3),
		        CASE WHEN $2::text = 'geography' THEN ST_GeogFromText($3) END, $4)
		RETURNING id, created_at
	`, f.Name, f.Family.String(), col, f.Metadata).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert feature: %w", err)
	}
	return nil
}

// GetByID returns a feature by UUID.
func (r *FeatureRepo) GetByID(ctx context.Context, id string) (*domain.Feature, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+featureColumns+` FROM features WHERE id = $1`, id)
	f, err := r.scan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return nil, fmt.Errorf("feature %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return f, nil
}

// Delete removes a feature by UUID.
func (r *FeatureRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM features WHERE id = $1`, id)
	if err != nil {
		if isInvalidUUID(err) {
			return fmt.Errorf("feature %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("delete feature: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("feature %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// List returns features, newest first.
func (r *FeatureRepo) List(ctx context.Context, offset, limit int) ([]*domain.Feature, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+featureColumns+`
		FROM features
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var features []*domain.Feature
	for rows.Next() {
		f, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		features = append(features, f)
	}
	return features, rows.Err()
}

// Count returns the number of stored features.
func (r *FeatureRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM features`).Scan(&n)
	return n, err
}

// FindNearby returns geography features within radiusMeters using PostGIS ST_DWithin, with a
// bounding box prefilter on the geometry index.
func (r *FeatureRepo) FindNearby(ctx context.Context, lon, lat, radiusMeters float64, limit int) ([]*domain.Feature, error) {
	minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(lat, lon, radiusMeters)
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+featureColumns+`,
		       ST_Distance(geog, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography) AS distance
		FROM features
		WHERE geog IS NOT NULL
		  AND geom && ST_MakeEnvelope($4, $5, $6, $7, 4326)
		  AND ST_DWithin(geog, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3)
		ORDER BY distance
		LIMIT $8
	`, lon, lat, radiusMeters, minLon, minLat, maxLon, maxLat, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var features []*domain.Feature
	for rows.Next() {
		var dist float64
		f, err := r.scan(rows, &dist)
		if err != nil {
			return nil, err
		}
		f.Distance = &dist
		features = append(features, f)
	}
	return features, rows.Err()
}

func (r *FeatureRepo) scan(row pgx.Row, extra ...any) (*domain.Feature, error) {
	var (
		f       domain.Feature
		family  string
		raw     []byte
		srid    int32
		created time.Time
	)
	dest := append([]any{&f.ID, &f.Name, &family, &raw, &srid, &f.Metadata, &created}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	fam, err := domain.ParseFamily(family)
	if err != nil {
		return nil, fmt.Errorf("feature %s: %w", f.ID, err)
	}
	col := Column{Family: fam, Profile: r.profile}
	if err := col.Scan(raw); err != nil {
		return nil, fmt.Errorf("feature %s: %w", f.ID, err)
	}
	// PostGIS reports 0 for unknown SRIDs.
	if srid > 0 {
		col.Geometry.SetSRID(uint32(srid))
	}

	f.Family = fam
	f.Geometry = col.Geometry
	f.CreatedAt = created
	return &f, nil
}

func isInvalidUUID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}
