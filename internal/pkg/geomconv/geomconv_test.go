package geomconv_test

import (
	"encoding/json"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/samirrijal/geokit/internal/core/codec"
	"github.com/samirrijal/geokit/internal/core/domain"
	"github.com/samirrijal/geokit/internal/pkg/geomconv"
)

func decode(t *testing.T, s string, family domain.Family) domain.Geometry {
	t.Helper()
	g, err := codec.DecodeWKT(s, family)
	require.NoError(t, err)
	return g
}

func TestRoundTripThroughGoGeom(t *testing.T) {
	for _, s := range []string{
		"SRID=4326;POINT(1 2)",
		"LINESTRING(0 0,1 1,2 3)",
		"POLYGON((0 0,10 0,10 10,0 10,0 0),(2 2,3 2,3 3,2 2))",
		"MULTIPOINT(1 1,2 2)",
		"SRID=3857;MULTILINESTRING((0 0,1 1),(2 2,3 3))",
		"MULTIPOLYGON(((0 0,1 0,1 1,0 0)),((5 5,6 5,6 6,5 5),(5.1 5.1,5.2 5.1,5.2 5.2,5.1 5.1)))",
	} {
		t.Run(s, func(t *testing.T) {
			g := decode(t, s, domain.FamilyGeometry)
			gt, err := geomconv.ToGeom(g)
			require.NoError(t, err)

			back, err := geomconv.FromGeom(gt, codec.NewFactory(domain.FamilyGeometry))
			require.NoError(t, err)
			require.True(t, g.Equal(back), "%s != %s", codec.EncodeExtended(g, true), codec.EncodeExtended(back, true))
		})
	}
}

func TestFromGeomRejectsZ(t *testing.T) {
	p := geom.NewPointFlat(geom.XYZ, []float64{1, 2, 3})
	_, err := geomconv.FromGeom(p, codec.NewFactory(domain.FamilyGeometry))
	require.Equal(t, domain.KindTypeMismatch, domain.KindOf(err))

	_, err = geomconv.FromGeom(geom.NewGeometryCollection(), codec.NewFactory(domain.FamilyGeometry))
	require.Equal(t, domain.KindTypeMismatch, domain.KindOf(err))
}

func TestGeoJSON(t *testing.T) {
	g := decode(t, "LINESTRING(0.1234567891234 1,2 3)", domain.FamilyGeometry)
	out, err := geomconv.GeoJSON(g, 4, false)
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"LineString","coordinates":[[0.1235,1],[2,3]]}`, string(out))

	out, err = geomconv.GeoJSON(g, geomconv.DefaultGeoJSONDecimalDigits, true)
	require.NoError(t, err)
	var withBBox map[string]any
	require.NoError(t, json.Unmarshal(out, &withBBox))
	require.Len(t, withBBox["bbox"], 4)

	back, err := geomconv.FromGeoJSON([]byte(`{"type":"Point","coordinates":[-2.93,43.26]}`), codec.NewFactory(domain.FamilyGeography))
	require.NoError(t, err)
	require.Equal(t, "POINT(-2.93 43.26)", codec.Encode(back))

	_, err = geomconv.FromGeoJSON([]byte(`{"type":"Point","coordinates":[200,0]}`), codec.NewFactory(domain.FamilyGeography))
	require.Equal(t, domain.KindInvalidCoordinate, domain.KindOf(err))

	_, err = geomconv.FromGeoJSON([]byte(`{"type":`), codec.NewFactory(domain.FamilyGeography))
	require.True(t, errors.Is(err, domain.ErrInvalidArgument))

	_, err = geomconv.FromGeoJSON([]byte(`null`), codec.NewFactory(domain.FamilyGeography))
	require.True(t, errors.Is(err, domain.ErrInvalidArgument))

	_, err = geomconv.FromGeom(nil, codec.NewFactory(domain.FamilyGeometry))
	require.Equal(t, domain.KindTypeMismatch, domain.KindOf(err))
}

func TestFeatureCollection(t *testing.T) {
	dist := 12.5
	out, err := geomconv.FeatureCollection([]*domain.Feature{{
		ID:       "a",
		Name:     "town hall",
		Geometry: decode(t, "POINT(-2.93 43.26)", domain.FamilyGeography),
		Metadata: map[string]any{"kind": "poi"},
		Distance: &dist,
	}})
	require.NoError(t, err)

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			ID         string         `json:"id"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(out, &fc))
	require.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 1)
	require.Equal(t, "a", fc.Features[0].ID)
	require.Equal(t, "town hall", fc.Features[0].Properties["name"])
	require.Equal(t, "poi", fc.Features[0].Properties["kind"])
	require.Equal(t, 12.5, fc.Features[0].Properties["distance"])
}

func TestGeoHash(t *testing.T) {
	p := decode(t, "POINT(-2.9350 43.2630)", domain.FamilyGeography)
	h := geomconv.GeoHash(p)
	require.Len(t, h, geomconv.GeoHashMaxPrecision)
	require.Equal(t, "eztyj5yc1x9r", h)

	l := decode(t, "LINESTRING(-2.9350 43.2630,-2.9340 43.2640)", domain.FamilyGeography)
	lh := geomconv.GeoHash(l)
	require.NotEmpty(t, lh)
	require.Less(t, len(lh), geomconv.GeoHashMaxPrecision)
	require.Equal(t, h[:len(lh)], lh)

	require.Empty(t, geomconv.GeoHash(decode(t, "POINT(1 2)", domain.FamilyGeometry)))
}
