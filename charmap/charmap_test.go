package charmap

import (
	"fmt"
	"io"
	"testing"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/ufotl/glif"
	"github.com/npillmayer/ufotl/internal/ufotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type docs map[string]string

func (d docs) GLIF(name string) ([]byte, error) {
	doc, ok := d[name]
	if !ok {
		return nil, fmt.Errorf("no glyph %q", name)
	}
	return []byte(doc), nil
}

func (d docs) names() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	return names
}

// recorder counts trace messages per level.
type recorder struct {
	infos, errors []string
}

func (r *recorder) Debugf(string, ...interface{}) {}
func (r *recorder) Infof(msg string, args ...interface{}) {
	r.infos = append(r.infos, fmt.Sprintf(msg, args...))
}
func (r *recorder) Errorf(msg string, args ...interface{}) {
	r.errors = append(r.errors, fmt.Sprintf(msg, args...))
}
func (r *recorder) P(string, interface{}) tracing.Trace { return r }
func (r *recorder) SetTraceLevel(tracing.TraceLevel)    {}
func (r *recorder) GetTraceLevel() tracing.TraceLevel   { return tracing.LevelDebug }
func (r *recorder) SetOutput(io.Writer)                 {}

func TestCollisionFirstNameWins(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ufotl.charmap")
	defer teardown()
	//
	src := docs{
		"B": ufotest.GLIF(ufotest.Glyph{Name: "B", Unicodes: []string{"0041"}}),
		"A": ufotest.GLIF(ufotest.Glyph{
			Name:     "A",
			Unicodes: []string{"0041"},
			Anchors:  []ufotest.Anchor{{Name: "top", X: "100", Y: "500"}},
		}),
	}
	rec := &recorder{}
	m, err := Build(src.names(), src, "Test.ufo", WithTrace(rec))
	require.NoError(t, err)
	assert.Equal(t, map[rune]string{0x41: "A"}, m.CMap)
	assert.Equal(t, map[string][]rune{"A": {0x41}}, m.RevCMap)
	assert.Equal(t, map[string][]glif.Anchor{"A": {glif.NewAnchor("top", 100, 500)}}, m.Anchors)
	assert.Equal(t, []rune{0x41}, m.Duplicates)
	require.Len(t, rec.infos, 1, "expected exactly one warning")
	assert.Contains(t, rec.infos[0], "Test.ufo")
	assert.Contains(t, rec.infos[0], "U+0041")
}

func TestInvalidHexIsNotRecorded(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ufotl.charmap")
	defer teardown()
	//
	src := docs{
		"bad": ufotest.GLIF(ufotest.Glyph{Name: "bad", Unicodes: []string{"ZZZZ"}}),
	}
	rec := &recorder{}
	m, err := Build(src.names(), src, "Test.ufo", WithTrace(rec))
	require.NoError(t, err)
	assert.Empty(t, m.CMap)
	assert.Empty(t, m.RevCMap)
	assert.Empty(t, m.Duplicates)
	assert.Empty(t, rec.infos)
}

func TestMapsAreConsistent(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ufotl.charmap")
	defer teardown()
	//
	src := docs{
		"a":      ufotest.GLIF(ufotest.Glyph{Name: "a", Unicodes: []string{"0061", "00E0", "0061"}}),
		"agrave": ufotest.GLIF(ufotest.Glyph{Name: "agrave", Unicodes: []string{"00E0"}}),
		"b":      ufotest.GLIF(ufotest.Glyph{Name: "b", Unicodes: []string{"0062"}, Comment: `<unicode hex="0063"/>`}),
		"grave":  ufotest.GLIF(ufotest.Glyph{Name: "grave", Anchors: []ufotest.Anchor{{Name: "_top", X: "0", Y: "450"}}}),
		"emoji":  ufotest.GLIF(ufotest.Glyph{Name: "emoji", Unicodes: []string{"1F600"}}),
	}
	m, err := Build(src.names(), src, "Test.ufo")
	require.NoError(t, err)
	for cp, g := range m.CMap {
		assert.Contains(t, m.RevCMap[g], cp)
	}
	for g, cps := range m.RevCMap {
		for _, cp := range cps {
			assert.Equal(t, g, m.CMap[cp])
		}
	}
	assert.Equal(t, []rune{0x61, 0xE0}, m.RevCMap["a"])
	assert.NotContains(t, m.RevCMap, "agrave")
	assert.Equal(t, []rune{0x62}, m.RevCMap["b"], "commented code point must be ignored")
	assert.Equal(t, "emoji", m.CMap[0x1F600])
	assert.Equal(t, []rune{0xE0}, m.Duplicates)
	assert.NotContains(t, m.Anchors, "a")
	assert.Len(t, m.Anchors["grave"], 1)
}

func TestBuildFailsForBrokenGlyph(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ufotl.charmap")
	defer teardown()
	//
	src := docs{
		"x": `<glyph name="x"><anchor name="top" x="one" y="2"/></glyph>`,
	}
	_, err := Build(src.names(), src, "Test.ufo")
	assert.Error(t, err)
	_, err = Build([]string{"missing"}, src, "Test.ufo")
	assert.Error(t, err)
}

func TestGlyphOrder(t *testing.T) {
	assert.Equal(t, []string{".notdef", "A", "B", "a"}, GlyphOrder([]string{"a", "B", "A"}))
	assert.Equal(t, []string{".notdef", ".null", "A"}, GlyphOrder([]string{"A", ".notdef", ".null", "A"}))
	assert.Equal(t, []string{".notdef"}, GlyphOrder(nil))
}

func TestFormatCodePoints(t *testing.T) {
	assert.Equal(t, "U+0041, U+1F600", FormatCodePoints([]rune{0x41, 0x1F600}))
}
