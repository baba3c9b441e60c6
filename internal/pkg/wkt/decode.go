// Package wkt decodes and encodes Well-Known Text, including the PostGIS extended form with a
// leading "SRID=n;" declaration.
package wkt

import (
	"github.com/cockroachdb/errors"

	"github.com/samirrijal/geokit/internal/core/domain"
)

const (
	sridKeyword  = "SRID"
	emptyKeyword = "EMPTY"
)

type parser struct {
	lex *lexer
	f   domain.Factory
}

// Decode parses s into a geometry built by f. A leading "SRID=n;" sets the SRID, 0 included.
func Decode(s string, f domain.Factory) (domain.Geometry, error) {
	p := &parser{lex: &lexer{line: s}, f: f}

	srid, hasSRID, err := p.sridPrefix()
	if err != nil {
		return nil, err
	}

	tag, pos := p.lex.keyword()
	if tag == "" {
		return nil, p.lex.syntaxError(pos, "expected geometry type"+p.lex.found())
	}
	t, err := domain.TypeFromWKT(tag)
	if err != nil {
		return nil, err
	}

	g, err := p.geometry(t)
	if err != nil {
		return nil, err
	}
	if !p.lex.atEOF() {
		return nil, p.lex.syntaxError(p.lex.pos, "unexpected trailing input")
	}
	if hasSRID {
		g.SetSRID(srid)
	}
	return g, nil
}

// sridPrefix consumes an optional "SRID=n;" declaration.
func (p *parser) sridPrefix() (uint32, bool, error) {
	start := p.lex.pos
	if word, _ := p.lex.keyword(); word != sridKeyword {
		p.lex.pos = start
		return 0, false, nil
	}
	if err := p.lex.expect('='); err != nil {
		return 0, false, err
	}
	srid, err := p.lex.uint32()
	if err != nil {
		return 0, false, err
	}
	if err := p.lex.expect(';'); err != nil {
		return 0, false, err
	}
	return srid, true, nil
}

// empty reports whether the body is the EMPTY keyword.
func (p *parser) empty() (bool, error) {
	p.lex.trimLeft()
	start := p.lex.pos
	word, _ := p.lex.keyword()
	switch word {
	case "":
		return false, nil
	case emptyKeyword:
		return true, nil
	default:
		return false, p.lex.syntaxError(start, "expected '(' or EMPTY, found "+word)
	}
}

func (p *parser) geometry(t domain.Type) (domain.Geometry, error) {
	pos := p.lex.pos
	isEmpty, err := p.empty()
	if err != nil {
		return nil, err
	}
	if isEmpty && t == domain.TypePoint {
		return nil, p.lex.syntaxError(pos, "POINT EMPTY is not supported")
	}

	switch t {
	case domain.TypePoint:
		if err := p.lex.expect('('); err != nil {
			return nil, err
		}
		c, err := p.coord()
		if err != nil {
			return nil, err
		}
		if err := p.lex.expect(')'); err != nil {
			return nil, err
		}
		return p.f.NewPoint(c.X, c.Y)
	case domain.TypeLineString:
		if isEmpty {
			return p.f.NewLineString()
		}
		items, err := p.coordList()
		if err != nil {
			return nil, err
		}
		return p.f.NewLineString(items...)
	case domain.TypePolygon:
		if isEmpty {
			return p.f.NewPolygon()
		}
		rings, err := p.ringList()
		if err != nil {
			return nil, err
		}
		return p.f.NewPolygon(rings...)
	case domain.TypeMultiPoint:
		if isEmpty {
			return p.f.NewMultiPoint()
		}
		items, err := p.multiPointList()
		if err != nil {
			return nil, err
		}
		return p.f.NewMultiPoint(items...)
	case domain.TypeMultiLineString:
		if isEmpty {
			return p.f.NewMultiLineString()
		}
		lines, err := p.ringList()
		if err != nil {
			return nil, err
		}
		return p.f.NewMultiLineString(lines...)
	case domain.TypeMultiPolygon:
		if isEmpty {
			return p.f.NewMultiPolygon()
		}
		polygons, err := p.list(func() (any, error) {
			rings, err := p.ringList()
			if err != nil {
				return nil, err
			}
			poly, err := p.f.NewPolygon(rings...)
			if err != nil {
				return nil, err
			}
			return poly, nil
		})
		if err != nil {
			return nil, err
		}
		return p.f.NewMultiPolygon(polygons...)
	default:
		return nil, &domain.UnsupportedWKTTypeError{Name: t.Tag()}
	}
}

func (p *parser) coord() (domain.Coord, error) {
	x, err := p.lex.number()
	if err != nil {
		return domain.Coord{}, err
	}
	// x and y must be separated by whitespace: POINT(1-2) is not POINT(1 -2).
	end := p.lex.pos
	p.lex.trimLeft()
	if p.lex.pos == end {
		return domain.Coord{}, p.lex.syntaxError(end, "expected whitespace after x coordinate"+p.lex.found())
	}
	y, err := p.lex.number()
	if err != nil {
		return domain.Coord{}, err
	}
	return domain.Coord{X: x, Y: y}, nil
}

// list parses '(' [item {',' item}] ')'.
func (p *parser) list(item func() (any, error)) ([]any, error) {
	if err := p.lex.expect('('); err != nil {
		return nil, err
	}
	out := []any{}
	if p.lex.accept(')') {
		return out, nil
	}
	for {
		v, err := item()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		if p.lex.accept(',') {
			continue
		}
		if err := p.lex.expect(')'); err != nil {
			return nil, err
		}
		return out, nil
	}
}

func (p *parser) coordList() ([]any, error) {
	return p.list(func() (any, error) { return p.coord() })
}

func (p *parser) ringList() ([]any, error) {
	var n int
	return p.list(func() (any, error) {
		n++
		ring, err := p.coordList()
		if err != nil {
			return nil, errors.Wrapf(err, "ring %d", n)
		}
		return ring, nil
	})
}

// multiPointList accepts both "(1 1,2 2)" and "((1 1),(2 2))", mixed freely.
func (p *parser) multiPointList() ([]any, error) {
	return p.list(func() (any, error) {
		if !p.lex.accept('(') {
			return p.coord()
		}
		c, err := p.coord()
		if err != nil {
			return nil, err
		}
		if err := p.lex.expect(')'); err != nil {
			return nil, err
		}
		return c, nil
	})
}
