package domain

import "strings"

// MultiPoint is an ordered collection of points.
type MultiPoint struct {
	base
	points []Point
}

func (m *MultiPoint) Type() Type { return TypeMultiPoint }

func (m *MultiPoint) Points() []Point {
	return append([]Point(nil), m.points...)
}

func (m *MultiPoint) Len() int { return len(m.points) }

func (m *MultiPoint) String() string { return joinPoints(m.points) }

func (m *MultiPoint) Coordinates() any { return pointCoords(m.points) }

func (m *MultiPoint) Equal(other Geometry) bool {
	o, ok := other.(*MultiPoint)
	return ok && m.sameSRID(o) && samePoints(m.points, o.points)
}

// MultiLineString is an ordered collection of line strings.
type MultiLineString struct {
	base
	lines []LineString
}

func (m *MultiLineString) Type() Type { return TypeMultiLineString }

func (m *MultiLineString) LineStrings() []LineString {
	return append([]LineString(nil), m.lines...)
}

func (m *MultiLineString) Len() int { return len(m.lines) }

func (m *MultiLineString) String() string { return joinRings(m.lines) }

func (m *MultiLineString) Coordinates() any { return ringCoords(m.lines) }

func (m *MultiLineString) Equal(other Geometry) bool {
	o, ok := other.(*MultiLineString)
	return ok && m.sameSRID(o) && sameRings(m.lines, o.lines)
}

// MultiPolygon is an ordered collection of polygons.
type MultiPolygon struct {
	base
	polygons []Polygon
}

func (m *MultiPolygon) Type() Type { return TypeMultiPolygon }

func (m *MultiPolygon) Polygons() []Polygon {
	return append([]Polygon(nil), m.polygons...)
}

func (m *MultiPolygon) Len() int { return len(m.polygons) }

func (m *MultiPolygon) String() string {
	var b strings.Builder
	for i := range m.polygons {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('(')
		b.WriteString(m.polygons[i].String())
		b.WriteByte(')')
	}
	return b.String()
}

func (m *MultiPolygon) Coordinates() any {
	out := make([][][][]float64, len(m.polygons))
	for i := range m.polygons {
		out[i] = ringCoords(m.polygons[i].rings)
	}
	return out
}

func (m *MultiPolygon) Equal(other Geometry) bool {
	o, ok := other.(*MultiPolygon)
	if !ok || !m.sameSRID(o) || len(m.polygons) != len(o.polygons) {
		return false
	}
	for i := range m.polygons {
		if !sameRings(m.polygons[i].rings, o.polygons[i].rings) {
			return false
		}
	}
	return true
}
