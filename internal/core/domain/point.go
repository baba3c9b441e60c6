package domain

// Point is a single (x, y) position. For the geography family x is the longitude and y the
// latitude, in degrees.
type Point struct {
	base
	x, y float64
}

func (p *Point) Type() Type { return TypePoint }

func (p *Point) X() float64 { return p.x }
func (p *Point) Y() float64 { return p.y }

func (p *Point) Longitude() float64 { return p.x }
func (p *Point) Latitude() float64  { return p.y }

func (p *Point) String() string {
	return FormatFloat(p.x) + " " + FormatFloat(p.y)
}

func (p *Point) Coordinates() any {
	return []float64{p.x, p.y}
}

func (p *Point) Equal(other Geometry) bool {
	q, ok := other.(*Point)
	return ok && p.sameSRID(q) && p.sameCoord(q)
}

func (p *Point) sameCoord(q *Point) bool {
	return p.x == q.x && p.y == q.y
}

// detach returns a copy of p without SRID, for use as a collection member.
func (p *Point) detach() Point {
	return Point{base: base{family: p.family}, x: p.x, y: p.y}
}

func samePoints(a, b []Point) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].sameCoord(&b[i]) {
			return false
		}
	}
	return true
}
