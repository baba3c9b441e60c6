// Package geomconv bridges domain geometries and github.com/twpayne/go-geom, which supplies
// the GeoJSON encoding used by the HTTP API.
package geomconv

import (
	"github.com/cockroachdb/errors"
	"github.com/twpayne/go-geom"

	"github.com/samirrijal/geokit/internal/core/domain"
)

// ToGeom converts g to the equivalent go-geom value, SRID included.
func ToGeom(g domain.Geometry) (geom.T, error) {
	var t geom.T
	switch v := g.(type) {
	case *domain.Point:
		t = geom.NewPointFlat(geom.XY, []float64{v.X(), v.Y()})
	case *domain.LineString:
		t = geom.NewLineStringFlat(geom.XY, flatPoints(nil, v.Points()))
	case *domain.Polygon:
		flat, ends := flatRings(nil, v.Rings())
		t = geom.NewPolygonFlat(geom.XY, flat, ends)
	case *domain.MultiPoint:
		t = geom.NewMultiPointFlat(geom.XY, flatPoints(nil, v.Points()))
	case *domain.MultiLineString:
		flat, ends := flatRings(nil, v.LineStrings())
		t = geom.NewMultiLineStringFlat(geom.XY, flat, ends)
	case *domain.MultiPolygon:
		var flat []float64
		var endss [][]int
		for _, p := range v.Polygons() {
			var ends []int
			flat, ends = flatRings(flat, p.Rings())
			endss = append(endss, ends)
		}
		t = geom.NewMultiPolygonFlat(geom.XY, flat, endss)
	default:
		return nil, errors.Newf("unsupported geometry %T", g)
	}
	if srid, ok := g.SRID(); ok {
		return setSRID(t, int(srid)), nil
	}
	return t, nil
}

func setSRID(t geom.T, srid int) geom.T {
	switch v := t.(type) {
	case *geom.Point:
		return v.SetSRID(srid)
	case *geom.LineString:
		return v.SetSRID(srid)
	case *geom.Polygon:
		return v.SetSRID(srid)
	case *geom.MultiPoint:
		return v.SetSRID(srid)
	case *geom.MultiLineString:
		return v.SetSRID(srid)
	case *geom.MultiPolygon:
		return v.SetSRID(srid)
	}
	return t
}

func flatPoints(flat []float64, points []domain.Point) []float64 {
	for i := range points {
		flat = append(flat, points[i].X(), points[i].Y())
	}
	return flat
}

// flatRings appends the rings to flat and returns the end offset of each ring, relative to
// the start of flat as go-geom expects.
func flatRings(flat []float64, rings []domain.LineString) ([]float64, []int) {
	ends := make([]int, 0, len(rings))
	for _, r := range rings {
		flat = flatPoints(flat, r.Points())
		ends = append(ends, len(flat))
	}
	return flat, ends
}

// FromGeom converts a two dimensional go-geom value to a domain geometry built by f. A
// non-zero SRID is carried over.
func FromGeom(t geom.T, f domain.Factory) (domain.Geometry, error) {
	if t == nil {
		return nil, &domain.TypeMismatchError{Want: "simple feature", Got: "nil"}
	}
	if t.Layout() != geom.XY {
		return nil, &domain.TypeMismatchError{Want: "XY layout", Got: t.Layout().String() + " layout"}
	}

	var (
		g   domain.Geometry
		err error
	)
	switch v := t.(type) {
	case *geom.Point:
		if v.Empty() {
			return nil, &domain.TypeMismatchError{Want: "Point", Got: "empty Point"}
		}
		g, err = f.NewPoint(v.X(), v.Y())
	case *geom.LineString:
		g, err = f.NewLineString(coords1(v.Coords())...)
	case *geom.Polygon:
		g, err = f.NewPolygon(coords2(v.Coords())...)
	case *geom.MultiPoint:
		g, err = f.NewMultiPoint(coords1(v.Coords())...)
	case *geom.MultiLineString:
		g, err = f.NewMultiLineString(coords2(v.Coords())...)
	case *geom.MultiPolygon:
		polygons := make([]any, 0, v.NumPolygons())
		for _, rings := range v.Coords() {
			polygons = append(polygons, coords2(rings))
		}
		g, err = f.NewMultiPolygon(polygons...)
	default:
		return nil, &domain.TypeMismatchError{Want: "simple feature", Got: typeName(t)}
	}
	if err != nil {
		return nil, err
	}
	if srid := t.SRID(); srid > 0 {
		g.SetSRID(uint32(srid))
	}
	return g, nil
}

func coords1(cs []geom.Coord) []any {
	out := make([]any, len(cs))
	for i, c := range cs {
		out[i] = []float64(c)
	}
	return out
}

func coords2(css [][]geom.Coord) []any {
	out := make([]any, len(css))
	for i, cs := range css {
		out[i] = coords1(cs)
	}
	return out
}

func typeName(t geom.T) string {
	switch t.(type) {
	case *geom.GeometryCollection:
		return "GeometryCollection"
	default:
		return "unknown geometry"
	}
}
