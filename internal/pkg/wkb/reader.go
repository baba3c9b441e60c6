package wkb

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/samirrijal/geokit/internal/core/domain"
)

// Byte orders
const (
	XDR byte = 0x00 // Big endian
	NDR byte = 0x01 // Little endian
)

const (
	headerSize = 1 + 4
	coordSize  = 2 * 8
	countSize  = 4
)

// reader is a cursor over a WKB buffer. The byte order is switched by every geometry header,
// so nested multi elements may mix orders.
type reader struct {
	b     []byte
	pos   int
	order binary.ByteOrder
}

func (r *reader) remaining() int { return len(r.b) - r.pos }

func (r *reader) need(n int, what string) error {
	if r.remaining() < n {
		return &domain.MalformedWKBError{Offset: r.pos, Reason: "truncated " + what}
	}
	return nil
}

func (r *reader) byteOrder() error {
	if err := r.need(1, "byte order"); err != nil {
		return err
	}
	switch flag := r.b[r.pos]; flag {
	case XDR:
		r.order = binary.BigEndian
	case NDR:
		r.order = binary.LittleEndian
	default:
		return &domain.InvalidByteOrderError{Flag: flag}
	}
	r.pos++
	return nil
}

func (r *reader) uint32(what string) (uint32, error) {
	if err := r.need(4, what); err != nil {
		return 0, err
	}
	v := r.order.Uint32(r.b[r.pos:])
	r.pos += 4
	return v, nil
}

// count reads an element count and rejects it when n elements of at least minSize bytes each
// cannot fit in the rest of the buffer.
func (r *reader) count(minSize int, what string) (int, error) {
	start := r.pos
	n, err := r.uint32(what + " count")
	if err != nil {
		return 0, err
	}
	if uint64(n)*uint64(minSize) > uint64(r.remaining()) {
		return 0, &domain.MalformedWKBError{
			Offset: start,
			Reason: what + " count " + strconv.FormatUint(uint64(n), 10) + " exceeds remaining input",
		}
	}
	return int(n), nil
}

// coord reads one (x, y) pair. Big-endian pairs are read by reversing all 16 bytes, which
// yields y then x in little-endian order.
func (r *reader) coord() (domain.Coord, error) {
	if err := r.need(coordSize, "coordinate"); err != nil {
		return domain.Coord{}, err
	}
	raw := r.b[r.pos : r.pos+coordSize]
	r.pos += coordSize

	if r.order == binary.LittleEndian {
		return domain.Coord{
			X: math.Float64frombits(binary.LittleEndian.Uint64(raw[0:8])),
			Y: math.Float64frombits(binary.LittleEndian.Uint64(raw[8:16])),
		}, nil
	}

	var buf [coordSize]byte
	copy(buf[:], raw)
	for i, j := 0, coordSize-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	y := math.Float64frombits(binary.LittleEndian.Uint64(buf[0:8]))
	x := math.Float64frombits(binary.LittleEndian.Uint64(buf[8:16]))
	return domain.Coord{X: x, Y: y}, nil
}

func (r *reader) coords(n int) ([]any, error) {
	out := make([]any, n)
	for i := range out {
		c, err := r.coord()
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}
