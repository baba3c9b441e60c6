package wkt

import (
	"strconv"

	"github.com/samirrijal/geokit/internal/core/domain"
)

// Encode renders g as TYPE(body). The SRID is not included.
func Encode(g domain.Geometry) string {
	return g.Type().Tag() + "(" + g.String() + ")"
}

// EncodeExtended prefixes Encode with "SRID=n;" when g carries an SRID.
func EncodeExtended(g domain.Geometry) string {
	srid, ok := g.SRID()
	if !ok {
		return Encode(g)
	}
	return "SRID=" + strconv.FormatUint(uint64(srid), 10) + ";" + Encode(g)
}
