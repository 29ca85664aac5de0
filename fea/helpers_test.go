package fea

import (
	"fmt"
	"slices"
	"testing"

	"github.com/go-text/typesetting/font/opentype/tables"
	"github.com/npillmayer/ufotl/glif"
	"github.com/stretchr/testify/require"
)

// --- Test font and target --------------------------------------------------

type testGlyph struct {
	name     string
	unicodes []rune
	anchors  []glif.Anchor
}

func (g *testGlyph) Name() string           { return g.name }
func (g *testGlyph) Unicodes() []rune       { return g.unicodes }
func (g *testGlyph) Anchors() []glif.Anchor { return g.anchors }
func (g *testGlyph) Unicode() (rune, bool) {
	if len(g.unicodes) == 0 {
		return 0, false
	}
	return g.unicodes[0], true
}

type testFont struct {
	order    []string
	glyphs   map[string]*testGlyph
	features string
	groups   map[string][]string
	kerning  map[string]map[string]float64
	lib      map[string]any
}

func newTestFont(names ...string) *testFont {
	f := &testFont{
		order:  append([]string{".notdef"}, names...),
		glyphs: make(map[string]*testGlyph),
		lib:    map[string]any{},
	}
	for _, name := range f.order {
		f.glyphs[name] = &testGlyph{name: name}
	}
	return f
}

func (f *testFont) anchor(glyph, name string, x, y int64) *testFont {
	g := f.glyphs[glyph]
	g.anchors = append(g.anchors, glif.NewAnchor(name, x, y))
	return f
}

func (f *testFont) Path() string                           { return "test.ufo" }
func (f *testFont) GlyphNames() []string                   { return slices.Clone(f.order) }
func (f *testFont) FeatureText() string                    { return f.features }
func (f *testFont) Groups() map[string][]string            { return f.groups }
func (f *testFont) Kerning() map[string]map[string]float64 { return f.kerning }
func (f *testFont) Lib() map[string]any                    { return f.lib }
func (f *testFont) HasGlyph(name string) bool {
	_, ok := f.glyphs[name]
	return ok
}
func (f *testFont) Glyph(name string) (Glyph, error) {
	g, ok := f.glyphs[name]
	if !ok {
		return nil, fmt.Errorf("no glyph %q", name)
	}
	return g, nil
}

type testTarget struct {
	order  []string
	tables map[string][]byte
	tags   []string // in order of installation
}

func newTestTarget(f *testFont) *testTarget {
	return &testTarget{order: f.order, tables: make(map[string][]byte)}
}

func (t *testTarget) GlyphID(name string) (uint16, bool) {
	inx := slices.Index(t.order, name)
	return uint16(inx), inx >= 0
}

func (t *testTarget) SetTable(tag string, data []byte) {
	t.tables[tag] = data
	t.tags = append(t.tags, tag)
}

func (t *testTarget) gid(name string) tables.GlyphID {
	gid, ok := t.GlyphID(name)
	if !ok {
		panic("test glyph not in glyph order: " + name)
	}
	return gid
}

// --- Decoding --------------------------------------------------------------

func parseLayout(t *testing.T, tgt *testTarget, tag string) tables.Layout {
	t.Helper()
	data, ok := tgt.tables[tag]
	require.True(t, ok, "table %s not installed", tag)
	layout, _, err := tables.ParseLayout(data)
	require.NoError(t, err)
	return layout
}

func gsubSubtables(t *testing.T, layout tables.Layout, lookup int) []tables.GSUBLookup {
	t.Helper()
	require.Greater(t, len(layout.LookupList.Lookups), lookup)
	subs, err := layout.LookupList.Lookups[lookup].AsGSUBLookups()
	require.NoError(t, err)
	require.Len(t, subs, 1)
	return subs
}

func gposSubtables(t *testing.T, layout tables.Layout, lookup int) []tables.GPOSLookup {
	t.Helper()
	require.Greater(t, len(layout.LookupList.Lookups), lookup)
	subs, err := layout.LookupList.Lookups[lookup].AsGPOSLookups()
	require.NoError(t, err)
	require.Len(t, subs, 1)
	return subs
}

// kernValueOf returns the x advance adjustment of a pair, if present.
func kernValueOf(t *testing.T, sub tables.GPOSLookup, first, second tables.GlyphID) (int16, bool) {
	t.Helper()
	pp, ok := sub.(tables.PairPos)
	require.True(t, ok, "expected pair positioning, got %T", sub)
	data, ok := pp.Data.(tables.PairPosData1)
	require.True(t, ok, "expected pair positioning format 1, got %T", pp.Data)
	inx, ok := data.Cov().Index(first)
	if !ok {
		return 0, false
	}
	rec, ok := data.PairSets[inx].FindGlyph(second)
	if !ok {
		return 0, false
	}
	return rec.ValueRecord1.XAdvance, true
}

func featureTags(layout tables.Layout) []string {
	var tags []string
	for _, rec := range layout.FeatureList.Records {
		tags = append(tags, rec.Tag.String())
	}
	return tags
}
