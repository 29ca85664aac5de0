/*
Package charmap builds the character map of a font source from its glyph
documents.

Build visits every glyph once, in lexicographic order of glyph names, and
extracts code points and anchors with package glif. A code point claimed by
more than one glyph goes to the glyph whose name sorts first; the others are
recorded as duplicates and reported with a single warning per build.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package charmap

import (
	"fmt"
	"slices"
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/ufotl/glif"
)

// tracer writes to trace with key 'ufotl.charmap'
func tracer() tracing.Trace {
	return tracing.Select("ufotl.charmap")
}

// GlyphSource yields raw GLIF documents by glyph name.
// *ufo.Reader is a GlyphSource.
type GlyphSource interface {
	GLIF(name string) ([]byte, error)
}

// Mapping is the result of Build.
type Mapping struct {
	CMap       map[rune]string          // code point → glyph, first writer wins
	RevCMap    map[string][]rune        // glyph → code points it won, first-seen order
	Anchors    map[string][]glif.Anchor // glyph → anchors, source order
	Duplicates []rune                   // code points claimed by more than one glyph, sorted
}

// Unicodes returns the code points glyph name has been assigned. The result
// is a copy.
func (m *Mapping) Unicodes(name string) []rune {
	return slices.Clone(m.RevCMap[name])
}

// Option configures Build.
type Option func(*config)

type config struct {
	trace tracing.Trace
}

// WithTrace directs diagnostics of Build to t instead of the package tracer.
func WithTrace(t tracing.Trace) Option {
	return func(c *config) {
		c.trace = t
	}
}

// Build extracts code points and anchors of all glyphs in names and
// assembles a Mapping. label identifies the font source in diagnostics.
//
// Malformed code points are dropped silently. Errors reading or extracting a
// glyph document abort the build.
func Build(names []string, src GlyphSource, label string, opts ...Option) (*Mapping, error) {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	trace := cfg.trace
	if trace == nil {
		trace = tracer()
	}
	sorted := slices.Clone(names)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	m := &Mapping{
		CMap:    make(map[rune]string),
		RevCMap: make(map[string][]rune),
		Anchors: make(map[string][]glif.Anchor),
	}
	dups := make(map[rune]struct{})
	parsed := 0
	for _, name := range sorted {
		data, err := src.GLIF(name)
		if err != nil {
			return nil, fmt.Errorf("glyph %q: %w", name, err)
		}
		if glif.HasComment(data) {
			parsed++
		}
		decl, err := glif.Extract(data, glif.WithTrace(trace))
		if err != nil {
			return nil, fmt.Errorf("glyph %q: %w", name, err)
		}
		for _, cp := range decl.Unicodes {
			if owner, claimed := m.CMap[cp]; claimed {
				if owner != name {
					dups[cp] = struct{}{}
				}
				continue
			}
			m.CMap[cp] = name
			m.RevCMap[name] = append(m.RevCMap[name], cp)
		}
		if len(decl.Anchors) > 0 {
			m.Anchors[name] = decl.Anchors
		}
	}
	trace.Debugf("%s: %d glyphs, %d code points, %d glyphs needed the XML parser",
		label, len(sorted), len(m.CMap), parsed)
	if len(dups) > 0 {
		for cp := range dups {
			m.Duplicates = append(m.Duplicates, cp)
		}
		slices.Sort(m.Duplicates)
		trace.Infof("WARNING %s: duplicate code points: %s", label, FormatCodePoints(m.Duplicates))
	}
	return m, nil
}

// FormatCodePoints formats code points in U+ notation, comma separated.
func FormatCodePoints(cps []rune) string {
	s := make([]string, len(cps))
	for i, cp := range cps {
		s[i] = fmt.Sprintf("U+%04X", cp)
	}
	return strings.Join(s, ", ")
}

// GlyphOrder returns the sorted set of names with .notdef at index 0.
func GlyphOrder(names []string) []string {
	order := make([]string, 0, len(names)+1)
	order = append(order, NotDef)
	for _, name := range names {
		if name != NotDef {
			order = append(order, name)
		}
	}
	slices.Sort(order[1:])
	return slices.Compact(order)
}

// NotDef is the name of the glyph every font must have at index 0.
const NotDef = ".notdef"
