package domain

import "strings"

// Polygon is an ordered list of closed rings. The first ring is the exterior boundary and the
// rest are holes.
type Polygon struct {
	base
	rings []LineString
}

func (p *Polygon) Type() Type { return TypePolygon }

// Rings returns a copy of the rings.
func (p *Polygon) Rings() []LineString {
	return append([]LineString(nil), p.rings...)
}

func (p *Polygon) Len() int { return len(p.rings) }

func (p *Polygon) RingAt(i int) LineString { return p.rings[i] }

func (p *Polygon) String() string {
	return joinRings(p.rings)
}

func (p *Polygon) Coordinates() any {
	return ringCoords(p.rings)
}

func (p *Polygon) Equal(other Geometry) bool {
	o, ok := other.(*Polygon)
	return ok && p.sameSRID(o) && sameRings(p.rings, o.rings)
}

func (p *Polygon) detach() Polygon {
	return Polygon{base: base{family: p.family}, rings: p.rings}
}

// checkClosed enforces the ring invariant. Empty rings are allowed.
func checkClosed(ring *LineString) error {
	if ring.Len() > 0 && !ring.IsClosed() {
		return &RingNotClosedError{Ring: "(" + ring.String() + ")"}
	}
	return nil
}

func joinRings(rings []LineString) string {
	var b strings.Builder
	for i := range rings {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('(')
		b.WriteString(rings[i].String())
		b.WriteByte(')')
	}
	return b.String()
}

func ringCoords(rings []LineString) [][][]float64 {
	out := make([][][]float64, len(rings))
	for i := range rings {
		out[i] = pointCoords(rings[i].points)
	}
	return out
}

func sameRings(a, b []LineString) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !samePoints(a[i].points, b[i].points) {
			return false
		}
	}
	return true
}
