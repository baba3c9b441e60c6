// Package codec is the entrypoint used by storage and transport layers: it picks the decoder
// for an encoding, builds values of the requested family and renders them back to text or
// binary. All functions are pure and safe for concurrent use.
package codec

import (
	"encoding/binary"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/samirrijal/geokit/internal/core/domain"
	"github.com/samirrijal/geokit/internal/pkg/geospatial"
	"github.com/samirrijal/geokit/internal/pkg/wkb"
	"github.com/samirrijal/geokit/internal/pkg/wkt"
)

// Encoding is the representation of an input.
type Encoding uint8

const (
	Binary Encoding = iota // raw WKB
	Text                   // WKT or EWKT
	Hex                    // hex encoded WKB
)

func (e Encoding) String() string {
	switch e {
	case Binary:
		return "wkb"
	case Text:
		return "wkt"
	case Hex:
		return "wkb_hex"
	default:
		return "unknown"
	}
}

// ParseEncoding accepts wkt|text|ewkt, wkb|binary and wkb_hex|hex.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "wkt", "text", "ewkt":
		return Text, nil
	case "wkb", "binary":
		return Binary, nil
	case "wkb_hex", "hex", "hexwkb":
		return Hex, nil
	default:
		return Text, errors.Newf("unknown encoding %q", s)
	}
}

// ParseByteOrder accepts "ndr"/"little" and "xdr"/"big". The empty string is little-endian.
func ParseByteOrder(s string) (binary.ByteOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ndr", "little", "le":
		return binary.LittleEndian, nil
	case "xdr", "big", "be":
		return binary.BigEndian, nil
	default:
		return nil, errors.Newf("unknown byte order %q", s)
	}
}

// NewFactory returns a factory for family that accepts DMS coordinate strings.
func NewFactory(family domain.Family) domain.Factory {
	return domain.NewFactory(family, geospatial.CoordinateParser{})
}

// Decode decodes input according to kind, building values of the given family.
func Decode(input []byte, family domain.Family, kind Encoding) (domain.Geometry, error) {
	f := NewFactory(family)
	switch kind {
	case Binary:
		return wkb.Decode(input, f)
	case Text:
		return wkt.Decode(string(input), f)
	case Hex:
		return wkb.DecodeHex(string(input), f)
	default:
		return nil, errors.Newf("unknown encoding %d", kind)
	}
}

func DecodeWKB(b []byte, family domain.Family) (domain.Geometry, error) {
	return Decode(b, family, Binary)
}

func DecodeWKT(s string, family domain.Family) (domain.Geometry, error) {
	return Decode([]byte(s), family, Text)
}

func DecodeHex(s string, family domain.Family) (domain.Geometry, error) {
	return Decode([]byte(s), family, Hex)
}

// Encode renders g as plain WKT.
func Encode(g domain.Geometry) string {
	return wkt.Encode(g)
}

// EncodeExtended renders g as EWKT when withSRID is set and g has an SRID, plain WKT
// otherwise.
func EncodeExtended(g domain.Geometry, withSRID bool) string {
	if !withSRID {
		return wkt.Encode(g)
	}
	return wkt.EncodeExtended(g)
}

func EncodeWKB(g domain.Geometry, order binary.ByteOrder) []byte {
	return wkb.Encode(g, order)
}

func EncodeHex(g domain.Geometry, order binary.ByteOrder) string {
	return wkb.EncodeHex(g, order)
}
