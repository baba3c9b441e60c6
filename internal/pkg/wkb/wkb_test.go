package wkb_test

import (
	"encoding/binary"
	"encoding/hex"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	gowkb "github.com/twpayne/go-geom/encoding/wkb"

	"github.com/samirrijal/geokit/internal/core/domain"
	"github.com/samirrijal/geokit/internal/pkg/wkb"
)

var planar = domain.Factory{Family: domain.FamilyGeometry}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

// header writes a byte-order flag and type code.
func header(order binary.AppendByteOrder, code uint32) []byte {
	b := []byte{wkb.NDR}
	if order == binary.BigEndian {
		b[0] = wkb.XDR
	}
	return order.AppendUint32(b, code)
}

func TestDecodePolygonLittleEndian(t *testing.T) {
	// POLYGON((0 0,10 0,10 10,0 10,0 0))
	raw := mustHex(t, "010300000001000000050000000000000000000000000000000000000000000000000024400000000000000000000"+
		"000000000244000000000000024400000000000000000000000000000244000000000000000000000000000000000")

	g, err := wkb.Decode(raw, planar)
	require.NoError(t, err)
	poly, ok := g.(*domain.Polygon)
	require.True(t, ok)
	require.Equal(t, 1, poly.Len())
	require.Equal(t, [][][]float64{{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}}, poly.Coordinates())
	_, hasSRID := poly.SRID()
	require.False(t, hasSRID)
}

func TestDecodePointByteOrderSymmetry(t *testing.T) {
	for _, c := range [][2]float64{{1, 2}, {-73.9857, 40.7484}, {1e-300, -1e300}, {0.1, math.MaxFloat64}} {
		le := binary.LittleEndian.AppendUint64(header(binary.LittleEndian, 1), math.Float64bits(c[0]))
		le = binary.LittleEndian.AppendUint64(le, math.Float64bits(c[1]))
		be := binary.BigEndian.AppendUint64(header(binary.BigEndian, 1), math.Float64bits(c[0]))
		be = binary.BigEndian.AppendUint64(be, math.Float64bits(c[1]))

		gl, err := wkb.Decode(le, planar)
		require.NoError(t, err)
		gb, err := wkb.Decode(be, planar)
		require.NoError(t, err)
		require.True(t, gl.Equal(gb))

		p := gb.(*domain.Point)
		require.Equal(t, c[0], p.X())
		require.Equal(t, c[1], p.Y())
	}
}

func TestDecodeStripsMarker(t *testing.T) {
	raw := append([]byte{'x'}, mustHex(t, "0101000000000000000000F03F0000000000000040")...)
	g, err := wkb.Decode(raw, planar)
	require.NoError(t, err)
	require.Equal(t, "1 2", g.String())
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		kind domain.ErrorKind
	}{
		{name: "empty", raw: nil, kind: domain.KindMalformedWKB},
		{name: "bad byte order", raw: []byte{2, 1, 0, 0, 0}, kind: domain.KindInvalidByteOrder},
		{name: "type 99 little endian", raw: header(binary.LittleEndian, 99), kind: domain.KindUnsupportedWKBType},
		{name: "type 99 big endian", raw: header(binary.BigEndian, 99), kind: domain.KindUnsupportedWKBType},
		{name: "abstract geometry", raw: header(binary.LittleEndian, 0), kind: domain.KindUnsupportedWKBType},
		{name: "ewkb flag", raw: header(binary.LittleEndian, 0x20000001), kind: domain.KindUnsupportedWKBType},
		{name: "truncated point", raw: append(header(binary.LittleEndian, 1), 0, 0, 0), kind: domain.KindMalformedWKB},
		{name: "hostile count", raw: append(header(binary.LittleEndian, 2), 0xff, 0xff, 0xff, 0xff), kind: domain.KindMalformedWKB},
		{name: "hostile ring count", raw: append(header(binary.BigEndian, 3), 0x7f, 0xff, 0xff, 0xff), kind: domain.KindMalformedWKB},
		{name: "trailing bytes", raw: append(header(binary.LittleEndian, 2), 0, 0, 0, 0, 9), kind: domain.KindMalformedWKB},
		{
			name: "multipoint with line member",
			raw:  append(binary.LittleEndian.AppendUint32(header(binary.LittleEndian, 4), 1), append(header(binary.LittleEndian, 2), make([]byte, 16)...)...),
			kind: domain.KindTypeMismatch,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g, err := wkb.Decode(tc.raw, planar)
			require.Error(t, err)
			require.Nil(t, g)
			require.Equal(t, tc.kind, domain.KindOf(err), err.Error())
		})
	}

	_, err := wkb.Decode(header(binary.BigEndian, 99), planar)
	var unsupported *domain.UnsupportedWKBTypeError
	require.ErrorAs(t, err, &unsupported)
	require.Equal(t, uint32(99), unsupported.Code)
}

func TestDecodeUnclosedRing(t *testing.T) {
	b := binary.LittleEndian.AppendUint32(header(binary.LittleEndian, 3), 1)
	b = binary.LittleEndian.AppendUint32(b, 3)
	for _, v := range []float64{0, 0, 1, 0, 1, 1} {
		b = binary.LittleEndian.AppendUint64(b, math.Float64bits(v))
	}
	_, err := wkb.Decode(b, planar)
	require.Equal(t, domain.KindRingNotClosed, domain.KindOf(err))
}

func TestDecodeGeographyRange(t *testing.T) {
	raw := wkb.Encode(mustPoint(t, 190, 0), binary.LittleEndian)
	_, err := wkb.Decode(raw, planar)
	require.NoError(t, err)
	_, err = wkb.Decode(raw, domain.Factory{Family: domain.FamilyGeography})
	require.Equal(t, domain.KindInvalidCoordinate, domain.KindOf(err))
}

func mustPoint(t *testing.T, x, y float64) *domain.Point {
	t.Helper()
	p, err := planar.NewPoint(x, y)
	require.NoError(t, err)
	return p
}

func fixtures(t *testing.T) []domain.Geometry {
	t.Helper()
	square := [][]float64{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}
	hole := [][]float64{{2, 2}, {3, 2}, {3, 3}, {2, 2}}

	line, err := planar.NewLineString([]float64{1.5, -2.25}, []float64{3, 4}, []float64{-0.1, 1e10})
	require.NoError(t, err)
	poly, err := planar.NewPolygon(square, hole)
	require.NoError(t, err)
	mp, err := planar.NewMultiPoint([]float64{1, 1}, []float64{2, 2})
	require.NoError(t, err)
	ml, err := planar.NewMultiLineString([][]float64{{0, 0}, {1, 1}}, [][]float64{{2, 2}, {3, 3}, {4, 5}})
	require.NoError(t, err)
	mpoly, err := planar.NewMultiPolygon([][][]float64{square, hole}, [][][]float64{hole})
	require.NoError(t, err)
	empty, err := planar.NewLineString()
	require.NoError(t, err)

	return []domain.Geometry{mustPoint(t, 12.5, -7), line, poly, mp, ml, mpoly, empty}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, g := range fixtures(t) {
		for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
			t.Run(g.Type().String()+"/"+order.String(), func(t *testing.T) {
				back, err := wkb.Decode(wkb.Encode(g, order), planar)
				require.NoError(t, err)
				require.True(t, g.Equal(back), "%s != %s", g, back)
			})
		}
	}
}

func TestHexRoundTrip(t *testing.T) {
	p := mustPoint(t, 1, 2)
	s := wkb.EncodeHex(p, binary.LittleEndian)
	require.Equal(t, "0101000000000000000000F03F0000000000000040", s)

	back, err := wkb.DecodeHex(`\x`+s, planar)
	require.NoError(t, err)
	require.True(t, p.Equal(back))

	_, err = wkb.DecodeHex("01zz", planar)
	require.Equal(t, domain.KindMalformedWKB, domain.KindOf(err))
}

// toGeom builds the equivalent go-geom value.
func toGeom(t *testing.T, g domain.Geometry) geom.T {
	t.Helper()
	switch v := g.(type) {
	case *domain.Point:
		return geom.NewPointFlat(geom.XY, []float64{v.X(), v.Y()})
	case *domain.LineString:
		return geom.NewLineStringFlat(geom.XY, flatten(v.Points()))
	case *domain.Polygon:
		var flat []float64
		var ends []int
		for _, r := range v.Rings() {
			flat = append(flat, flatten(r.Points())...)
			ends = append(ends, len(flat))
		}
		return geom.NewPolygonFlat(geom.XY, flat, ends)
	case *domain.MultiPoint:
		return geom.NewMultiPointFlat(geom.XY, flatten(v.Points()))
	case *domain.MultiLineString:
		var flat []float64
		var ends []int
		for _, l := range v.LineStrings() {
			flat = append(flat, flatten(l.Points())...)
			ends = append(ends, len(flat))
		}
		return geom.NewMultiLineStringFlat(geom.XY, flat, ends)
	case *domain.MultiPolygon:
		var flat []float64
		var endss [][]int
		for _, p := range v.Polygons() {
			var ends []int
			for _, r := range p.Rings() {
				flat = append(flat, flatten(r.Points())...)
				ends = append(ends, len(flat))
			}
			endss = append(endss, ends)
		}
		return geom.NewMultiPolygonFlat(geom.XY, flat, endss)
	}
	t.Fatalf("unexpected geometry %T", g)
	return nil
}

func flatten(points []domain.Point) []float64 {
	out := make([]float64, 0, 2*len(points))
	for i := range points {
		out = append(out, points[i].X(), points[i].Y())
	}
	return out
}

// The big-endian pair reversal must agree with an independent WKB writer.
func TestAgreesWithGoGeom(t *testing.T) {
	for _, g := range fixtures(t) {
		if g.Type() == domain.TypeLineString && g.(*domain.LineString).Len() == 0 {
			continue
		}
		for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
			t.Run(g.Type().String()+"/"+order.String(), func(t *testing.T) {
				ref, err := gowkb.Marshal(toGeom(t, g), order)
				require.NoError(t, err)
				require.Equal(t, ref, wkb.Encode(g, order))

				back, err := wkb.Decode(ref, planar)
				require.NoError(t, err)
				require.True(t, g.Equal(back))
			})
		}
	}
}
