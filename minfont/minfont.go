/*
Package minfont provides a minimal, read-only font object for layout
compilation.

A Font is built from an opened UFO source and a character map. It exposes
exactly what package fea needs to compile layout tables and nothing else:
glyph names, code points, anchors and the font-level feature text, groups,
kerning and lib. Glyph views are created on first access and cached.

A Font is not safe for concurrent use. It is meant to live for a single
compile run.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package minfont

import (
	"errors"
	"fmt"
	"slices"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/ufotl/charmap"
	"github.com/npillmayer/ufotl/fea"
	"github.com/npillmayer/ufotl/glif"
	"github.com/npillmayer/ufotl/ufo"
)

// tracer writes to trace with key 'ufotl.minfont'
func tracer() tracing.Trace {
	return tracing.Select("ufotl.minfont")
}

// ErrMissingGlyph is returned when looking up a glyph the font does not have.
var ErrMissingGlyph = errors.New("missing glyph")

// Font is the minimal font adapter. It implements fea.Font.
type Font struct {
	path     string
	names    []string
	known    map[string]struct{}
	mapping  *charmap.Mapping
	features string
	groups   map[string][]string
	kerning  map[string]map[string]float64
	lib      map[string]any
	glyphs   map[string]*Glyph // cache
	trace    tracing.Trace
}

// Option configures a Font.
type Option func(*Font)

// WithTrace directs diagnostics of the Font to t instead of the package
// tracer.
func WithTrace(t tracing.Trace) Option {
	return func(f *Font) {
		f.trace = t
	}
}

var _ fea.Font = (*Font)(nil)

// New creates a Font for a UFO source. glyphOrder is the complete list of
// glyph names of the font to compile, including .notdef. Features, groups,
// kerning and lib are read once, here.
func New(src *ufo.Reader, glyphOrder []string, mapping *charmap.Mapping, opts ...Option) (*Font, error) {
	f := &Font{
		path:    src.Path(),
		names:   slices.Clone(glyphOrder),
		known:   make(map[string]struct{}, len(glyphOrder)),
		mapping: mapping,
		glyphs:  make(map[string]*Glyph),
		trace:   tracer(),
	}
	for _, opt := range opts {
		opt(f)
	}
	for _, name := range glyphOrder {
		f.known[name] = struct{}{}
	}
	var err error
	if f.features, err = src.Features(); err != nil {
		return nil, err
	}
	if f.groups, err = src.Groups(); err != nil {
		return nil, err
	}
	if f.kerning, err = src.Kerning(); err != nil {
		return nil, err
	}
	if f.lib, err = src.Lib(); err != nil {
		return nil, err
	}
	f.trace.Debugf("minimal font for %s: %d glyphs, %d groups, %d kerning rows",
		f.path, len(f.names), len(f.groups), len(f.kerning))
	return f, nil
}

// Path returns the path of the font source.
func (f *Font) Path() string {
	return f.path
}

// GlyphNames returns all glyph names, .notdef included.
func (f *Font) GlyphNames() []string {
	return slices.Clone(f.names)
}

// HasGlyph checks if the font has a glyph with the given name.
func (f *Font) HasGlyph(name string) bool {
	_, ok := f.known[name]
	return ok
}

// Glyph returns the view of a glyph. Unknown names yield an error wrapping
// ErrMissingGlyph.
func (f *Font) Glyph(name string) (fea.Glyph, error) {
	g, err := f.lookup(name)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (f *Font) lookup(name string) (*Glyph, error) {
	if g, ok := f.glyphs[name]; ok {
		return g, nil
	}
	if !f.HasGlyph(name) {
		return nil, fmt.Errorf("%w: %q", ErrMissingGlyph, name)
	}
	g := &Glyph{name: name}
	if f.mapping != nil {
		g.unicodes = f.mapping.Unicodes(name)
		g.anchors = f.mapping.Anchors[name]
	}
	f.glyphs[name] = g
	return g, nil
}

// FeatureText returns the contents of features.fea.
func (f *Font) FeatureText() string {
	return f.features
}

// Groups returns the groups of the font. Callers must not modify the result.
func (f *Font) Groups() map[string][]string {
	return f.groups
}

// Kerning returns the kerning of the font. Callers must not modify the result.
func (f *Font) Kerning() map[string]map[string]float64 {
	return f.kerning
}

// Lib returns the font lib. Callers must not modify the result.
func (f *Font) Lib() map[string]any {
	return f.lib
}

// Glyph is a read-only glyph view. It implements fea.Glyph.
type Glyph struct {
	name     string
	unicodes []rune
	anchors  []glif.Anchor
}

// Name returns the glyph name.
func (g *Glyph) Name() string {
	return g.name
}

// Unicodes returns the code points mapped to the glyph, possibly empty.
func (g *Glyph) Unicodes() []rune {
	if g.unicodes == nil {
		return []rune{}
	}
	return slices.Clone(g.unicodes)
}

// Unicode returns the primary code point of the glyph.
func (g *Glyph) Unicode() (rune, bool) {
	if len(g.unicodes) == 0 {
		return 0, false
	}
	return g.unicodes[0], true
}

// Anchors returns the anchors of the glyph in source order.
func (g *Glyph) Anchors() []glif.Anchor {
	return slices.Clone(g.anchors)
}
