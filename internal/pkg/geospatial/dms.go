package geospatial

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/samirrijal/geokit/internal/core/domain"
)

// CoordinateParser normalizes textual coordinates to decimal degrees.
type CoordinateParser struct{}

func (CoordinateParser) ParseCoordinate(s string) (float64, error) {
	return ParseDMS(s)
}

// isSeparator reports whether r may separate degrees, minutes and seconds.
func isSeparator(r rune) bool {
	switch r {
	case '°', 'º', ':', '\'', '′', '’', '"', '″', '”':
		return true
	}
	return unicode.IsSpace(r)
}

// ParseDMS converts a degrees/minutes/seconds string such as `40° 26' 46" N`, `40:26:46N`,
// `79.98W` or a plain decimal such as `-12.5` to decimal degrees. South and west are negative.
func ParseDMS(s string) (float64, error) {
	in := s
	s = strings.TrimSpace(s)

	sign := 1.0
	hemisphere := false
	if r, size := utf8.DecodeLastRuneInString(s); size > 0 {
		switch unicode.ToUpper(r) {
		case 'N', 'E':
			s, hemisphere = s[:len(s)-size], true
		case 'S', 'W':
			s, hemisphere, sign = s[:len(s)-size], true, -1
		}
	}
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		if hemisphere {
			return 0, dmsError(in, "sign and hemisphere both given")
		}
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}

	for _, r := range s {
		if !isSeparator(r) && r != '.' && !unicode.IsDigit(r) {
			return 0, dmsError(in, "unexpected character "+strconv.QuoteRune(r))
		}
	}
	parts := strings.FieldsFunc(s, isSeparator)
	if len(parts) == 0 || len(parts) > 3 {
		return 0, dmsError(in, "expected degrees, minutes and seconds")
	}

	var value float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, dmsError(in, "invalid number "+strconv.Quote(p))
		}
		if i > 0 && v >= 60 {
			return 0, dmsError(in, "minutes and seconds must be below 60")
		}
		switch i {
		case 0:
			value = v
		case 1:
			value += v / 60
		case 2:
			value += v / 3600
		}
	}
	return sign * value, nil
}

func dmsError(input, problem string) error {
	return &domain.SyntaxError{Problem: problem, Pos: 0, Input: input}
}
