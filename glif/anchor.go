package glif

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Anchor is an anchor point of a glyph. Name and coordinates are optional in
// the source; a missing coordinate is an absent Number, not zero.
type Anchor struct {
	Name    string
	HasName bool
	X, Y    Number
}

// NewAnchor creates a named anchor with integer coordinates.
func NewAnchor(name string, x, y int64) Anchor {
	return Anchor{Name: name, HasName: true, X: Int(x), Y: Int(y)}
}

func (a Anchor) String() string {
	name := "<none>"
	if a.HasName {
		name = strconv.Quote(a.Name)
	}
	return fmt.Sprintf("(%s, %s, %s)", name, a.X, a.Y)
}

// anchorFromAttrs picks name, x and y from the complete attribute set of an
// anchor element. Other attributes (color, identifier, …) are ignored.
func anchorFromAttrs(attrs []xml.Attr) (a Anchor, err error) {
	for _, attr := range attrs {
		if attr.Name.Space != "" {
			continue
		}
		switch attr.Name.Local {
		case "name":
			a.Name, a.HasName = attr.Value, true
		case "x":
			if a.X, err = ParseNumber(attr.Value); err != nil {
				return a, fmt.Errorf("anchor x coordinate: %w", err)
			}
		case "y":
			if a.Y, err = ParseNumber(attr.Value); err != nil {
				return a, fmt.Errorf("anchor y coordinate: %w", err)
			}
		}
	}
	return a, nil
}

// hexAttr returns the value of attribute 'hex', if present.
func hexAttr(attrs []xml.Attr) (string, bool) {
	for _, attr := range attrs {
		if attr.Name.Space == "" && attr.Name.Local == "hex" {
			return attr.Value, true
		}
	}
	return "", false
}

// parseCodePoint parses a hexadecimal code point value. It reports false for
// anything that is not a Unicode scalar value written in hex.
func parseCodePoint(s string) (rune, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil || n > utf8.MaxRune || !utf8.ValidRune(rune(n)) {
		return 0, false
	}
	return rune(n), true
}
