package domain

import (
	"fmt"
	"math"

	"github.com/cockroachdb/errors"
)

// CoordinateParser turns a textual coordinate ("40° 26' 46\" N", "79.98W", "12.5") into degrees.
type CoordinateParser interface {
	ParseCoordinate(s string) (float64, error)
}

// Factory builds validated geometries of one family. The zero value builds planar geometries
// and rejects string coordinates.
type Factory struct {
	Family Family
	Parser CoordinateParser
}

// NewFactory returns a Factory for family f using parser for string coordinates.
func NewFactory(f Family, parser CoordinateParser) Factory {
	return Factory{Family: f, Parser: parser}
}

// NewPoint validates (x, y) against the family and returns a point without SRID.
func (f Factory) NewPoint(x, y float64) (*Point, error) {
	if err := f.Family.Validator().Validate(x, y); err != nil {
		return nil, err
	}
	return &Point{base: base{family: f.Family}, x: x, y: y}, nil
}

// PointFromArgs accepts (x, y), (x, y, srid), ([x, y]) or ([x, y], srid). x and y may be
// numbers or coordinate strings.
func (f Factory) PointFromArgs(args ...any) (*Point, error) {
	var (
		x, y    any
		srid    any
		hasSRID bool
	)
	switch len(args) {
	case 1:
		pair, ok := coordPair(args[0])
		if !ok {
			return nil, &ArgumentCountMismatchError{Type: "Point", Args: args}
		}
		x, y = pair[0], pair[1]
	case 2:
		if pair, ok := coordPair(args[0]); ok {
			x, y = pair[0], pair[1]
			srid, hasSRID = args[1], true
		} else {
			x, y = args[0], args[1]
		}
	case 3:
		x, y = args[0], args[1]
		srid, hasSRID = args[2], true
	default:
		return nil, &ArgumentCountMismatchError{Type: "Point", Args: args}
	}

	fx, err := f.toFloat(x)
	if err != nil {
		return nil, err
	}
	fy, err := f.toFloat(y)
	if err != nil {
		return nil, err
	}
	p, err := f.NewPoint(fx, fy)
	if err != nil {
		return nil, err
	}
	if hasSRID {
		s, err := toSRID(srid)
		if err != nil {
			return nil, err
		}
		p.SetSRID(s)
	}
	return p, nil
}

// NewLineString builds a line string from points or raw coordinates.
func (f Factory) NewLineString(items ...any) (*LineString, error) {
	points, err := f.points(items)
	if err != nil {
		return nil, err
	}
	return &LineString{base: base{family: f.Family}, points: points}, nil
}

// NewPolygon builds a polygon from rings. A ring may be a *LineString, a LineString, or a list
// of points or coordinates. Every non-empty ring must be closed.
func (f Factory) NewPolygon(rings ...any) (*Polygon, error) {
	out, err := f.rings(rings)
	if err != nil {
		return nil, err
	}
	return &Polygon{base: base{family: f.Family}, rings: out}, nil
}

func (f Factory) NewMultiPoint(items ...any) (*MultiPoint, error) {
	points, err := f.points(items)
	if err != nil {
		return nil, err
	}
	return &MultiPoint{base: base{family: f.Family}, points: points}, nil
}

func (f Factory) NewMultiLineString(items ...any) (*MultiLineString, error) {
	lines := make([]LineString, 0, len(items))
	for i, item := range items {
		l, err := f.lineString(item)
		if err != nil {
			return nil, errors.Wrapf(err, "line string %d", i+1)
		}
		lines = append(lines, l)
	}
	return &MultiLineString{base: base{family: f.Family}, lines: lines}, nil
}

func (f Factory) NewMultiPolygon(items ...any) (*MultiPolygon, error) {
	polygons := make([]Polygon, 0, len(items))
	for i, item := range items {
		p, err := f.polygon(item)
		if err != nil {
			return nil, errors.Wrapf(err, "polygon %d", i+1)
		}
		polygons = append(polygons, p)
	}
	return &MultiPolygon{base: base{family: f.Family}, polygons: polygons}, nil
}

func (f Factory) points(items []any) ([]Point, error) {
	out := make([]Point, 0, len(items))
	for i, item := range items {
		p, err := f.point(item)
		if err != nil {
			return nil, errors.Wrapf(err, "point %d", i+1)
		}
		out = append(out, p)
	}
	return out, nil
}

func (f Factory) point(item any) (Point, error) {
	switch v := item.(type) {
	case *Point:
		if v == nil {
			return Point{}, &TypeMismatchError{Want: "Point", Got: "nil"}
		}
		if err := f.sameFamily(v); err != nil {
			return Point{}, err
		}
		return v.detach(), nil
	case Point:
		if err := f.sameFamily(&v); err != nil {
			return Point{}, err
		}
		return v.detach(), nil
	case Coord:
		p, err := f.NewPoint(v.X, v.Y)
		if err != nil {
			return Point{}, err
		}
		return *p, nil
	default:
		pair, ok := coordPair(item)
		if !ok {
			return Point{}, &TypeMismatchError{Want: "Point", Got: describe(item)}
		}
		x, err := f.toFloat(pair[0])
		if err != nil {
			return Point{}, err
		}
		y, err := f.toFloat(pair[1])
		if err != nil {
			return Point{}, err
		}
		p, err := f.NewPoint(x, y)
		if err != nil {
			return Point{}, err
		}
		return *p, nil
	}
}

func (f Factory) lineString(item any) (LineString, error) {
	switch v := item.(type) {
	case *LineString:
		if v == nil {
			return LineString{}, &TypeMismatchError{Want: "LineString", Got: "nil"}
		}
		if err := f.sameFamily(v); err != nil {
			return LineString{}, err
		}
		return v.detach(), nil
	case LineString:
		if err := f.sameFamily(&v); err != nil {
			return LineString{}, err
		}
		return v.detach(), nil
	}
	items, ok := anySlice(item)
	if !ok {
		return LineString{}, &TypeMismatchError{Want: "LineString", Got: describe(item)}
	}
	points, err := f.points(items)
	if err != nil {
		return LineString{}, err
	}
	return LineString{base: base{family: f.Family}, points: points}, nil
}

func (f Factory) rings(items []any) ([]LineString, error) {
	out := make([]LineString, 0, len(items))
	for i, item := range items {
		ring, err := f.lineString(item)
		if err == nil {
			err = checkClosed(&ring)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "ring %d", i+1)
		}
		out = append(out, ring)
	}
	return out, nil
}

func (f Factory) polygon(item any) (Polygon, error) {
	switch v := item.(type) {
	case *Polygon:
		if v == nil {
			return Polygon{}, &TypeMismatchError{Want: "Polygon", Got: "nil"}
		}
		if err := f.sameFamily(v); err != nil {
			return Polygon{}, err
		}
		return v.detach(), nil
	case Polygon:
		if err := f.sameFamily(&v); err != nil {
			return Polygon{}, err
		}
		return v.detach(), nil
	}
	items, ok := anySlice(item)
	if !ok {
		return Polygon{}, &TypeMismatchError{Want: "Polygon", Got: describe(item)}
	}
	rings, err := f.rings(items)
	if err != nil {
		return Polygon{}, err
	}
	return Polygon{base: base{family: f.Family}, rings: rings}, nil
}

func (f Factory) sameFamily(g Geometry) error {
	if g.Family() != f.Family {
		return &TypeMismatchError{
			Want: f.Family.String() + " " + g.Type().String(),
			Got:  g.Family().String() + " " + g.Type().String(),
		}
	}
	return nil
}

func (f Factory) toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case string:
		if f.Parser == nil {
			return 0, &TypeMismatchError{Want: "number", Got: "string"}
		}
		return f.Parser.ParseCoordinate(n)
	default:
		return 0, &TypeMismatchError{Want: "number or coordinate string", Got: describe(v)}
	}
}

func toSRID(v any) (uint32, error) {
	var n int64
	switch s := v.(type) {
	case uint32:
		return s, nil
	case int:
		n = int64(s)
	case int32:
		n = int64(s)
	case int64:
		n = s
	case uint64:
		if s > math.MaxUint32 {
			return 0, &TypeMismatchError{Want: "SRID", Got: fmt.Sprintf("%d", s)}
		}
		return uint32(s), nil
	default:
		return 0, &TypeMismatchError{Want: "SRID", Got: describe(v)}
	}
	if n < 0 || n > math.MaxUint32 {
		return 0, &TypeMismatchError{Want: "SRID", Got: fmt.Sprintf("%d", n)}
	}
	return uint32(n), nil
}

// coordPair recognizes the array forms of a single coordinate.
func coordPair(v any) ([2]any, bool) {
	switch c := v.(type) {
	case [2]float64:
		return [2]any{c[0], c[1]}, true
	case []float64:
		if len(c) == 2 {
			return [2]any{c[0], c[1]}, true
		}
	case []string:
		if len(c) == 2 {
			return [2]any{c[0], c[1]}, true
		}
	case []any:
		if len(c) == 2 {
			return [2]any{c[0], c[1]}, true
		}
	}
	return [2]any{}, false
}

// anySlice flattens the slice shapes accepted for collections of points and rings.
func anySlice(v any) ([]any, bool) {
	var out []any
	switch s := v.(type) {
	case []any:
		return s, true
	case []Coord:
		for _, c := range s {
			out = append(out, c)
		}
	case []Point:
		for _, p := range s {
			out = append(out, p)
		}
	case []*Point:
		for _, p := range s {
			out = append(out, p)
		}
	case [][]float64:
		for _, c := range s {
			out = append(out, c)
		}
	case [][2]float64:
		for _, c := range s {
			out = append(out, c)
		}
	case []LineString:
		for _, l := range s {
			out = append(out, l)
		}
	case []*LineString:
		for _, l := range s {
			out = append(out, l)
		}
	case [][]Coord:
		for _, r := range s {
			out = append(out, r)
		}
	case [][][]float64:
		for _, r := range s {
			out = append(out, r)
		}
	default:
		return nil, false
	}
	if out == nil {
		out = []any{}
	}
	return out, true
}

func describe(v any) string {
	if g, ok := v.(Geometry); ok {
		return g.Type().String()
	}
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}
