package wkt

import (
	"strconv"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/samirrijal/geokit/internal/core/domain"
)

const eof = -1

var upper = cases.Upper(language.Und)

type lexer struct {
	line string
	pos  int
}

func (l *lexer) peek() rune {
	if l.pos >= len(l.line) {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(l.line[l.pos:])
	return r
}

func (l *lexer) next() rune {
	if l.pos >= len(l.line) {
		return eof
	}
	r, size := utf8.DecodeRuneInString(l.line[l.pos:])
	l.pos += size
	return r
}

func (l *lexer) trimLeft() {
	for unicode.IsSpace(l.peek()) {
		l.next()
	}
}

func (l *lexer) syntaxError(pos int, problem string) error {
	return &domain.SyntaxError{Problem: problem, Pos: pos, Input: l.line}
}

// expect skips whitespace and consumes c.
func (l *lexer) expect(c rune) error {
	l.trimLeft()
	if l.peek() != c {
		return l.syntaxError(l.pos, "expected "+strconv.QuoteRune(c)+l.found())
	}
	l.next()
	return nil
}

// accept skips whitespace and consumes c if it is next.
func (l *lexer) accept(c rune) bool {
	l.trimLeft()
	if l.peek() == c {
		l.next()
		return true
	}
	return false
}

func (l *lexer) found() string {
	switch c := l.peek(); c {
	case eof:
		return ", found end of input"
	default:
		return ", found " + strconv.QuoteRune(c)
	}
}

// keyword lexes a run of letters and returns it upper-cased, with its start position. The
// result is empty when the next token is not a word.
func (l *lexer) keyword() (string, int) {
	l.trimLeft()
	start := l.pos
	for unicode.IsLetter(l.peek()) {
		l.next()
	}
	return upper.String(l.line[start:l.pos]), start
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func (l *lexer) digits() int {
	n := 0
	for isDigit(l.peek()) {
		l.next()
		n++
	}
	return n
}

// number lexes [+-]digits[.digits][(e|E)[+-]digits].
func (l *lexer) number() (float64, error) {
	l.trimLeft()
	start := l.pos
	if c := l.peek(); c == '+' || c == '-' {
		l.next()
	}
	n := l.digits()
	if l.peek() == '.' {
		l.next()
		n += l.digits()
	}
	if n == 0 {
		l.pos = start
		return 0, l.syntaxError(start, "expected number"+l.found())
	}
	if c := l.peek(); c == 'e' || c == 'E' {
		l.next()
		if c := l.peek(); c == '+' || c == '-' {
			l.next()
		}
		if l.digits() == 0 {
			return 0, l.syntaxError(start, "invalid exponent in number "+strconv.Quote(l.line[start:l.pos]))
		}
	}
	f, err := strconv.ParseFloat(l.line[start:l.pos], 64)
	if err != nil {
		return 0, l.syntaxError(start, "number out of range "+strconv.Quote(l.line[start:l.pos]))
	}
	return f, nil
}

// uint32 lexes an unsigned decimal integer that fits in 32 bits.
func (l *lexer) uint32() (uint32, error) {
	l.trimLeft()
	start := l.pos
	if l.digits() == 0 {
		return 0, l.syntaxError(start, "expected SRID"+l.found())
	}
	v, err := strconv.ParseUint(l.line[start:l.pos], 10, 32)
	if err != nil {
		return 0, l.syntaxError(start, "SRID out of range "+strconv.Quote(l.line[start:l.pos]))
	}
	return uint32(v), nil
}

func (l *lexer) atEOF() bool {
	l.trimLeft()
	return l.peek() == eof
}
