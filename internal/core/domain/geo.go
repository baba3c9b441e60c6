package domain

import "math"

// Bounds is an axis-aligned bounding box. For geography values X is the longitude and Y the
// latitude.
type Bounds struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// BoundsOf returns the bounding box of g. ok is false when g has no points.
func BoundsOf(g Geometry) (b Bounds, ok bool) {
	b = Bounds{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	n := EachCoord(g, func(x, y float64) {
		b.MinX = math.Min(b.MinX, x)
		b.MinY = math.Min(b.MinY, y)
		b.MaxX = math.Max(b.MaxX, x)
		b.MaxY = math.Max(b.MaxY, y)
	})
	if n == 0 {
		return Bounds{}, false
	}
	return b, true
}

// Contains reports whether (x, y) lies inside b, edges included.
func (b Bounds) Contains(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

// EachCoord calls fn for every coordinate of g in storage order and returns the number of
// coordinates visited.
func EachCoord(g Geometry, fn func(x, y float64)) int {
	n := 0
	visit := func(points []Point) {
		for i := range points {
			fn(points[i].x, points[i].y)
			n++
		}
	}
	switch v := g.(type) {
	case *Point:
		fn(v.x, v.y)
		n++
	case *LineString:
		visit(v.points)
	case *Polygon:
		for i := range v.rings {
			visit(v.rings[i].points)
		}
	case *MultiPoint:
		visit(v.points)
	case *MultiLineString:
		for i := range v.lines {
			visit(v.lines[i].points)
		}
	case *MultiPolygon:
		for i := range v.polygons {
			for j := range v.polygons[i].rings {
				visit(v.polygons[i].rings[j].points)
			}
		}
	}
	return n
}

// Paths returns the line work of g: the points of a line string, every ring of a polygon, and
// so on. Points and multi points have no paths.
func Paths(g Geometry) [][]Point {
	switch v := g.(type) {
	case *LineString:
		return [][]Point{v.Points()}
	case *Polygon:
		return ringPoints(v.rings)
	case *MultiLineString:
		return ringPoints(v.lines)
	case *MultiPolygon:
		var out [][]Point
		for i := range v.polygons {
			out = append(out, ringPoints(v.polygons[i].rings)...)
		}
		return out
	default:
		return nil
	}
}

func ringPoints(rings []LineString) [][]Point {
	out := make([][]Point, len(rings))
	for i := range rings {
		out[i] = rings[i].Points()
	}
	return out
}
