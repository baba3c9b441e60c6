package domain

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrorKind classifies codec and construction failures.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindInvalidByteOrder
	KindUnsupportedWKBType
	KindUnsupportedWKTType
	KindInvalidCoordinate
	KindRingNotClosed
	KindTypeMismatch
	KindArgumentCountMismatch
	KindSyntax
	KindMalformedWKB
)

var kindNames = map[ErrorKind]string{
	KindUnknown:               "unknown",
	KindInvalidByteOrder:      "invalid_byte_order",
	KindUnsupportedWKBType:    "unsupported_wkb_type",
	KindUnsupportedWKTType:    "unsupported_wkt_type",
	KindInvalidCoordinate:     "invalid_coordinate",
	KindRingNotClosed:         "ring_not_closed",
	KindTypeMismatch:          "type_mismatch",
	KindArgumentCountMismatch: "argument_count_mismatch",
	KindSyntax:                "syntax_error",
	KindMalformedWKB:          "malformed_wkb",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return kindNames[KindUnknown]
}

type kinded interface {
	Kind() ErrorKind
}

// KindOf returns the kind of the first classified error in err's chain.
func KindOf(err error) ErrorKind {
	var k kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindUnknown
}

// InvalidByteOrderError reports a WKB byte-order flag other than 0 or 1.
type InvalidByteOrderError struct {
	Flag byte
}

func (e *InvalidByteOrderError) Error() string {
	return fmt.Sprintf("invalid byte order %d", e.Flag)
}

func (e *InvalidByteOrderError) Kind() ErrorKind { return KindInvalidByteOrder }

// UnsupportedWKBTypeError reports an unknown or rejected WKB type code.
type UnsupportedWKBTypeError struct {
	Code uint32
}

func (e *UnsupportedWKBTypeError) Error() string {
	return fmt.Sprintf("unsupported WKB type %d", e.Code)
}

func (e *UnsupportedWKBTypeError) Kind() ErrorKind { return KindUnsupportedWKBType }

// UnsupportedWKTTypeError reports an unknown WKT type name.
type UnsupportedWKTTypeError struct {
	Name string
}

func (e *UnsupportedWKTTypeError) Error() string {
	return fmt.Sprintf("unsupported WKT type %q", e.Name)
}

func (e *UnsupportedWKTTypeError) Kind() ErrorKind { return KindUnsupportedWKTType }

// InvalidCoordinateError reports a coordinate outside the range allowed by its family.
type InvalidCoordinateError struct {
	Axis  string
	Value float64
	Min   float64
	Max   float64
}

func (e *InvalidCoordinateError) Error() string {
	return fmt.Sprintf("invalid %s value %s: must be in range %s to %s",
		e.Axis, FormatFloat(e.Value), FormatFloat(e.Min), FormatFloat(e.Max))
}

func (e *InvalidCoordinateError) Kind() ErrorKind { return KindInvalidCoordinate }

// RingNotClosedError reports a polygon ring whose first and last points differ.
type RingNotClosedError struct {
	Ring string
}

func (e *RingNotClosedError) Error() string {
	return fmt.Sprintf("ring %s is not closed", e.Ring)
}

func (e *RingNotClosedError) Kind() ErrorKind { return KindRingNotClosed }

// TypeMismatchError reports an element of the wrong type handed to a collection constructor.
type TypeMismatchError struct {
	Want string
	Got  string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: expected %s, got %s", e.Want, e.Got)
}

func (e *TypeMismatchError) Kind() ErrorKind { return KindTypeMismatch }

// ArgumentCountMismatchError reports a constructor called with an unsupported argument list.
type ArgumentCountMismatchError struct {
	Type string
	Args []any
}

func (e *ArgumentCountMismatchError) Error() string {
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = fmt.Sprintf("%v", a)
	}
	return fmt.Sprintf("invalid parameters passed to %s: %d argument(s) [%s]",
		e.Type, len(e.Args), strings.Join(parts, ", "))
}

func (e *ArgumentCountMismatchError) Kind() ErrorKind { return KindArgumentCountMismatch }

// SyntaxError is a WKT tokenization or grammar failure at a byte position of Input.
type SyntaxError struct {
	Problem string
	Pos     int
	Input   string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error: %s at pos %d", e.Problem, e.Pos)
}

// Detail renders the input with a caret under the failing position.
func (e *SyntaxError) Detail() string {
	return fmt.Sprintf("%s\n%s^", e.Input, strings.Repeat(" ", e.Pos))
}

func (e *SyntaxError) Kind() ErrorKind { return KindSyntax }

// MalformedWKBError reports truncated, oversized or trailing WKB data.
type MalformedWKBError struct {
	Offset int
	Reason string
}

func (e *MalformedWKBError) Error() string {
	return fmt.Sprintf("malformed WKB at offset %d: %s", e.Offset, e.Reason)
}

func (e *MalformedWKBError) Kind() ErrorKind { return KindMalformedWKB }

// Sentinels for the service layer. Wrap them with context; match with errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

// IsInvalidInput reports whether err was caused by the caller's input: a classified codec
// error or ErrInvalidArgument.
func IsInvalidInput(err error) bool {
	return KindOf(err) != KindUnknown || errors.Is(err, ErrInvalidArgument)
}
