package glif

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NumberKind tells how a numeric attribute has been written in the source.
type NumberKind uint8

const (
	// Absent is the kind of a missing or empty attribute.
	Absent NumberKind = iota
	// Integer is the kind of a value without fractional part ("12", "12.0").
	Integer
	// Real is the kind of a value with a fractional part ("12.5").
	Real
)

// Number is an optional numeric attribute value of a GLIF element.
// The zero value is an absent number.
type Number struct {
	Value float64
	Kind  NumberKind
}

// Int returns an integer Number.
func Int(i int64) Number {
	return Number{Value: float64(i), Kind: Integer}
}

// Float returns a Number for f, collapsing to integer form if f has no
// fractional part.
func Float(f float64) Number {
	if f == math.Trunc(f) {
		return Number{Value: f, Kind: Integer}
	}
	return Number{Value: f, Kind: Real}
}

// IsSet is false for absent numbers.
func (n Number) IsSet() bool {
	return n.Kind != Absent
}

// IsInt is true for numbers in integer form.
func (n Number) IsInt() bool {
	return n.Kind == Integer
}

// Round returns the number rounded half-up to the nearest integer, as
// OpenType compilers do for design coordinates. Absent numbers round to 0.
func (n Number) Round() int {
	return int(math.Floor(n.Value + 0.5))
}

func (n Number) String() string {
	switch n.Kind {
	case Integer:
		return strconv.FormatInt(int64(n.Value), 10)
	case Real:
		return strconv.FormatFloat(n.Value, 'g', -1, 64)
	}
	return "<none>"
}

// ParseNumber parses a numeric attribute value. An empty string yields an
// absent Number. Values which are not finite decimal numbers are an error.
func ParseNumber(s string) (Number, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Number{}, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Number{}, fmt.Errorf("invalid number %q", s)
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return Number{}, fmt.Errorf("invalid number %q", s)
	}
	return Float(f), nil
}
