// Package domain holds the geometry value model: points, line strings, polygons and their
// multi variants, the geometry/geography families that decide coordinate validation, and the
// error taxonomy shared by the WKB and WKT codecs.
package domain

import (
	"strconv"
)

// Type is a geometry variant. Values equal the OGC WKB type codes.
type Type uint32

const (
	TypeGeometry        Type = 0
	TypePoint           Type = 1
	TypeLineString      Type = 2
	TypePolygon         Type = 3
	TypeMultiPoint      Type = 4
	TypeMultiLineString Type = 5
	TypeMultiPolygon    Type = 6
)

var typeNames = [...]string{
	TypeGeometry:        "Geometry",
	TypePoint:           "Point",
	TypeLineString:      "LineString",
	TypePolygon:         "Polygon",
	TypeMultiPoint:      "MultiPoint",
	TypeMultiLineString: "MultiLineString",
	TypeMultiPolygon:    "MultiPolygon",
}

// wkbTypes and wktTypes are the static decode tables. TypeGeometry is deliberately absent:
// the abstract type never decodes to a value.
var (
	wkbTypes = map[uint32]Type{
		1: TypePoint,
		2: TypeLineString,
		3: TypePolygon,
		4: TypeMultiPoint,
		5: TypeMultiLineString,
		6: TypeMultiPolygon,
	}
	wktTypes = map[string]Type{
		"POINT":           TypePoint,
		"LINESTRING":      TypeLineString,
		"POLYGON":         TypePolygon,
		"MULTIPOINT":      TypeMultiPoint,
		"MULTILINESTRING": TypeMultiLineString,
		"MULTIPOLYGON":    TypeMultiPolygon,
	}
)

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Type(" + strconv.FormatUint(uint64(t), 10) + ")"
}

// Tag is the upper-case WKT type name.
func (t Type) Tag() string {
	switch t {
	case TypePoint:
		return "POINT"
	case TypeLineString:
		return "LINESTRING"
	case TypePolygon:
		return "POLYGON"
	case TypeMultiPoint:
		return "MULTIPOINT"
	case TypeMultiLineString:
		return "MULTILINESTRING"
	case TypeMultiPolygon:
		return "MULTIPOLYGON"
	default:
		return "GEOMETRY"
	}
}

// TypeFromWKB resolves a WKB type code.
func TypeFromWKB(code uint32) (Type, error) {
	if t, ok := wkbTypes[code]; ok {
		return t, nil
	}
	return TypeGeometry, &UnsupportedWKBTypeError{Code: code}
}

// TypeFromWKT resolves an upper-case WKT tag.
func TypeFromWKT(tag string) (Type, error) {
	if t, ok := wktTypes[tag]; ok {
		return t, nil
	}
	return TypeGeometry, &UnsupportedWKTTypeError{Name: tag}
}

// Geometry is implemented by every concrete variant.
type Geometry interface {
	Type() Type
	Family() Family
	// SRID reports the spatial reference id and whether one is set.
	SRID() (uint32, bool)
	SetSRID(srid uint32)
	// String renders the WKT body, without the TYPE( ) wrapper.
	String() string
	// Coordinates returns the coordinates as nested float64 slices, GeoJSON style.
	Coordinates() any
	Equal(other Geometry) bool
}

// DefaultSRID sets srid on g unless g already carries one.
func DefaultSRID(g Geometry, srid uint32) {
	if _, ok := g.SRID(); !ok {
		g.SetSRID(srid)
	}
}

// Coord is a raw (x, y) pair as read by the decoders, before validation.
type Coord struct {
	X, Y float64
}

// base carries the family and the optional SRID shared by all variants.
type base struct {
	family  Family
	srid    uint32
	hasSRID bool
}

func (b *base) Family() Family { return b.family }

func (b *base) SRID() (uint32, bool) { return b.srid, b.hasSRID }

func (b *base) SetSRID(srid uint32) {
	b.srid = srid
	b.hasSRID = true
}

func (b *base) sameSRID(o Geometry) bool {
	srid, ok := o.SRID()
	return ok == b.hasSRID && srid == b.srid
}

// FormatFloat renders a coordinate the way WKT output expects: no exponent, no trailing ".0",
// and the shortest representation that parses back to the same float64.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
