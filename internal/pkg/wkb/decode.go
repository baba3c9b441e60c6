// Package wkb decodes and encodes OGC Well-Known Binary for the six 2D simple feature types.
//
// Every geometry starts with a byte-order flag and a uint32 type code. Points are two doubles,
// line strings a count followed by coordinate pairs, polygons a ring count followed by one
// such list per ring. Multi variants carry a count and then complete nested geometries, each
// with its own header. Extended (EWKB) type flags and Z/M dimensions are not supported.
package wkb

import (
	"github.com/cockroachdb/errors"

	"github.com/samirrijal/geokit/internal/core/domain"
)

// Decode parses b into a geometry built by f. A single leading 'x' byte is ignored. The
// result never carries an SRID.
func Decode(b []byte, f domain.Factory) (domain.Geometry, error) {
	if len(b) > 0 && b[0] == 'x' {
		b = b[1:]
	}
	r := &reader{b: b}
	g, err := decode(r, f, domain.TypeGeometry)
	if err != nil {
		return nil, err
	}
	if r.remaining() > 0 {
		return nil, &domain.MalformedWKBError{Offset: r.pos, Reason: "trailing bytes after geometry"}
	}
	return g, nil
}

// decode reads one geometry. want restricts the accepted type for multi members;
// TypeGeometry accepts any.
func decode(r *reader, f domain.Factory, want domain.Type) (domain.Geometry, error) {
	if err := r.byteOrder(); err != nil {
		return nil, err
	}
	code, err := r.uint32("type code")
	if err != nil {
		return nil, err
	}
	t, err := domain.TypeFromWKB(code)
	if err != nil {
		return nil, err
	}
	if want != domain.TypeGeometry && t != want {
		return nil, &domain.TypeMismatchError{Want: want.String(), Got: t.String()}
	}

	switch t {
	case domain.TypePoint:
		c, err := r.coord()
		if err != nil {
			return nil, err
		}
		return f.NewPoint(c.X, c.Y)
	case domain.TypeLineString:
		items, err := readPoints(r, "point")
		if err != nil {
			return nil, err
		}
		return f.NewLineString(items...)
	case domain.TypePolygon:
		rings, err := readRings(r)
		if err != nil {
			return nil, err
		}
		return f.NewPolygon(rings...)
	case domain.TypeMultiPoint:
		items, err := readMembers(r, f, domain.TypePoint, headerSize+coordSize)
		if err != nil {
			return nil, err
		}
		return f.NewMultiPoint(items...)
	case domain.TypeMultiLineString:
		items, err := readMembers(r, f, domain.TypeLineString, headerSize+countSize)
		if err != nil {
			return nil, err
		}
		return f.NewMultiLineString(items...)
	case domain.TypeMultiPolygon:
		items, err := readMembers(r, f, domain.TypePolygon, headerSize+countSize)
		if err != nil {
			return nil, err
		}
		return f.NewMultiPolygon(items...)
	default:
		return nil, &domain.UnsupportedWKBTypeError{Code: code}
	}
}

func readPoints(r *reader, what string) ([]any, error) {
	n, err := r.count(coordSize, what)
	if err != nil {
		return nil, err
	}
	return r.coords(n)
}

func readRings(r *reader) ([]any, error) {
	n, err := r.count(countSize, "ring")
	if err != nil {
		return nil, err
	}
	rings := make([]any, n)
	for i := range rings {
		items, err := readPoints(r, "point")
		if err != nil {
			return nil, errors.Wrapf(err, "ring %d", i+1)
		}
		rings[i] = items
	}
	return rings, nil
}

func readMembers(r *reader, f domain.Factory, t domain.Type, minSize int) ([]any, error) {
	n, err := r.count(minSize, t.String())
	if err != nil {
		return nil, err
	}
	items := make([]any, n)
	for i := range items {
		g, err := decode(r, f, t)
		if err != nil {
			return nil, errors.Wrapf(err, "%s %d", t, i+1)
		}
		items[i] = g
	}
	return items, nil
}
