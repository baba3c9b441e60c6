package domain

import "strings"

// LineString is an ordered path of points. Order is significant: it is the path direction.
type LineString struct {
	base
	points []Point
}

func (l *LineString) Type() Type { return TypeLineString }

// Points returns a copy of the points.
func (l *LineString) Points() []Point {
	return append([]Point(nil), l.points...)
}

func (l *LineString) Len() int { return len(l.points) }

// PointAt returns the i-th point. It panics if i is out of range.
func (l *LineString) PointAt(i int) Point { return l.points[i] }

// IsClosed reports whether the first and last points are equal. An empty line string is not
// closed.
func (l *LineString) IsClosed() bool {
	if len(l.points) == 0 {
		return false
	}
	return l.points[0].sameCoord(&l.points[len(l.points)-1])
}

func (l *LineString) String() string {
	return joinPoints(l.points)
}

func (l *LineString) Coordinates() any {
	return pointCoords(l.points)
}

func (l *LineString) Equal(other Geometry) bool {
	o, ok := other.(*LineString)
	return ok && l.sameSRID(o) && samePoints(l.points, o.points)
}

func (l *LineString) detach() LineString {
	return LineString{base: base{family: l.family}, points: l.points}
}

func joinPoints(points []Point) string {
	var b strings.Builder
	for i := range points {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(points[i].String())
	}
	return b.String()
}

func pointCoords(points []Point) [][]float64 {
	out := make([][]float64, len(points))
	for i := range points {
		out[i] = []float64{points[i].x, points[i].y}
	}
	return out
}
