package geomconv

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/samirrijal/geokit/internal/core/domain"
)

// DefaultGeoJSONDecimalDigits is the default number of digits coordinates in GeoJSON.
const DefaultGeoJSONDecimalDigits = 9

// GeoJSON encodes g as a GeoJSON geometry object.
func GeoJSON(g domain.Geometry, maxDecimalDigits int, withBBox bool) ([]byte, error) {
	t, err := ToGeom(g)
	if err != nil {
		return nil, err
	}
	opts := []geojson.EncodeGeometryOption{
		geojson.EncodeGeometryWithMaxDecimalDigits(maxDecimalDigits),
	}
	if _, ok := domain.BoundsOf(g); ok && withBBox {
		opts = append(opts, geojson.EncodeGeometryWithBBox())
	}
	return geojson.Marshal(t, opts...)
}

// FromGeoJSON decodes a GeoJSON geometry object.
func FromGeoJSON(data []byte, f domain.Factory) (domain.Geometry, error) {
	var t geom.T
	if err := geojson.Unmarshal(data, &t); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decode geojson"), domain.ErrInvalidArgument)
	}
	if t == nil {
		return nil, errors.Wrap(domain.ErrInvalidArgument, "geojson geometry is null")
	}
	return FromGeom(t, f)
}

// FeatureCollection renders stored features as a GeoJSON FeatureCollection.
func FeatureCollection(features []*domain.Feature) ([]byte, error) {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(features))}
	for _, f := range features {
		t, err := ToGeom(f.Geometry)
		if err != nil {
			return nil, errors.Wrapf(err, "feature %s", f.ID)
		}
		props := map[string]interface{}{"name": f.Name}
		for k, v := range f.Metadata {
			props[k] = v
		}
		if f.Distance != nil {
			props["distance"] = *f.Distance
		}
		fc.Features = append(fc.Features, &geojson.Feature{ID: f.ID, Geometry: t, Properties: props})
	}
	return json.Marshal(fc)
}
