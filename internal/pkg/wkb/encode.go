package wkb

import (
	"bytes"
	"encoding/binary"

	"github.com/samirrijal/geokit/internal/core/domain"
)

type wkbBuffer struct {
	b         bytes.Buffer
	order     binary.ByteOrder
	orderByte byte
}

func newWKBBuffer(order binary.ByteOrder) *wkbBuffer {
	w := &wkbBuffer{order: binary.LittleEndian, orderByte: NDR}
	if order == binary.BigEndian {
		w.order, w.orderByte = binary.BigEndian, XDR
	}
	return w
}

func (w *wkbBuffer) writeType(t domain.Type) {
	w.b.WriteByte(w.orderByte)
	binary.Write(&w.b, w.order, uint32(t))
}

func (w *wkbBuffer) writeSize(n int) { binary.Write(&w.b, w.order, uint32(n)) }

func (w *wkbBuffer) writeCoord(x, y float64) { binary.Write(&w.b, w.order, [2]float64{x, y}) }

func (w *wkbBuffer) writePoints(points []domain.Point) {
	w.writeSize(len(points))
	for i := range points {
		w.writeCoord(points[i].X(), points[i].Y())
	}
}

func (w *wkbBuffer) writeRings(rings []domain.LineString) {
	w.writeSize(len(rings))
	for i := range rings {
		w.writePoints(rings[i].Points())
	}
}

func (w *wkbBuffer) encode(g domain.Geometry) {
	w.writeType(g.Type())
	switch v := g.(type) {
	case *domain.Point:
		w.writeCoord(v.X(), v.Y())
	case *domain.LineString:
		w.writePoints(v.Points())
	case *domain.Polygon:
		w.writeRings(v.Rings())
	case *domain.MultiPoint:
		points := v.Points()
		w.writeSize(len(points))
		for i := range points {
			w.encode(&points[i])
		}
	case *domain.MultiLineString:
		lines := v.LineStrings()
		w.writeSize(len(lines))
		for i := range lines {
			w.encode(&lines[i])
		}
	case *domain.MultiPolygon:
		polygons := v.Polygons()
		w.writeSize(len(polygons))
		for i := range polygons {
			w.encode(&polygons[i])
		}
	}
}

// Encode renders g as WKB in the given byte order. Any order other than binary.BigEndian
// encodes little-endian. The SRID is not part of WKB and is dropped.
func Encode(g domain.Geometry, order binary.ByteOrder) []byte {
	w := newWKBBuffer(order)
	w.encode(g)
	return w.b.Bytes()
}
