package wkb

import (
	"encoding/binary"
	"encoding/hex"
	"strings"

	"github.com/samirrijal/geokit/internal/core/domain"
)

// EncodeHex renders g as upper-case hex WKB, the form PostGIS prints in text mode.
func EncodeHex(g domain.Geometry, order binary.ByteOrder) string {
	return strings.ToUpper(hex.EncodeToString(Encode(g, order)))
}

// DecodeHex decodes hex WKB. A bytea style "\x" prefix is accepted.
func DecodeHex(s string, f domain.Factory) (domain.Geometry, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, `\x`)
	b, err := hex.DecodeString(s)
	if err != nil {
		offset := 0
		if e, ok := err.(hex.InvalidByteError); ok {
			offset = strings.IndexByte(s, byte(e)) / 2
		}
		return nil, &domain.MalformedWKBError{Offset: offset, Reason: "invalid hex: " + err.Error()}
	}
	return Decode(b, f)
}
