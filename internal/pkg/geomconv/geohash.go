package geomconv

import (
	"github.com/pierrre/geohash"

	"github.com/samirrijal/geokit/internal/core/domain"
)

// GeoHashMaxPrecision is the precision used for points.
const GeoHashMaxPrecision = 12

// GeoHash returns the longest geohash whose cell covers the bounds of a geography value. It
// returns "" for planar or empty values, and for shapes that straddle the top level cells.
func GeoHash(g domain.Geometry) string {
	if g.Family() != domain.FamilyGeography {
		return ""
	}
	b, ok := domain.BoundsOf(g)
	if !ok {
		return ""
	}
	lo := geohash.Encode(b.MinY, b.MinX, GeoHashMaxPrecision)
	hi := geohash.Encode(b.MaxY, b.MaxX, GeoHashMaxPrecision)
	n := 0
	for n < len(lo) && n < len(hi) && lo[n] == hi[n] {
		n++
	}
	return lo[:n]
}
