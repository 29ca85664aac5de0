package fea

import (
	"testing"

	"github.com/go-text/typesetting/font/opentype/tables"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/ufotl/glif"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite Preparation ------------------------------------------------

type CompileTestEnviron struct {
	suite.Suite
	font   *testFont
	target *testTarget
}

// listen for 'go test' command --> run test methods
func TestCompileFunctions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ufotl.fea")
	defer teardown()
	suite.Run(t, new(CompileTestEnviron))
}

// run before each test method
func (env *CompileTestEnviron) SetupTest() {
	tracing.Select("ufotl.fea").SetTraceLevel(tracing.LevelInfo)
	env.font = newTestFont("A", "V", "T", "a", "b", "c", "o", "a.sc", "b.sc", "c.sc",
		"f", "i", "f_i", "f_f_i", "acutecomb", "gravecomb")
}

func (env *CompileTestEnviron) compile(features string) error {
	env.font.features = features
	env.target = newTestTarget(env.font)
	return NewCompiler().Compile(env.font, env.target)
}

func (env *CompileTestEnviron) layout(tag string) tables.Layout {
	return parseLayout(env.T(), env.target, tag)
}

// --- Tests -----------------------------------------------------------------

func (env *CompileTestEnviron) TestNothingToCompile() {
	env.Require().NoError(env.compile(""))
	env.Empty(env.target.tables)
}

func (env *CompileTestEnviron) TestSingleSubstitutionWithConstantDelta() {
	env.Require().NoError(env.compile(`
@lc = [a b c];
@sc = [a.sc b.sc c.sc];
feature smcp { sub @lc by @sc; } smcp;`))
	layout := env.layout(TagGSUB)
	env.Equal([]string{"smcp"}, featureTags(layout))
	sub := gsubSubtables(env.T(), layout, 0)[0].(tables.SingleSubs)
	data, ok := sub.Data.(tables.SingleSubstData1)
	env.Require().True(ok, "expected format 1 for a constant delta, got %T", sub.Data)
	env.Equal(int16(env.target.gid("a.sc")-env.target.gid("a")), data.DeltaGlyphID)
	_, covered := data.Coverage.Index(env.target.gid("b"))
	env.True(covered)
}

func (env *CompileTestEnviron) TestSingleSubstitutionWithVaryingDelta() {
	env.Require().NoError(env.compile(`feature ss01 { sub a by c.sc; sub b by A; } ss01;`))
	sub := gsubSubtables(env.T(), env.layout(TagGSUB), 0)[0].(tables.SingleSubs)
	data, ok := sub.Data.(tables.SingleSubstData2)
	env.Require().True(ok, "expected format 2, got %T", sub.Data)
	inx, ok := data.Coverage.Index(env.target.gid("b"))
	env.Require().True(ok)
	env.Equal(env.target.gid("A"), data.SubstituteGlyphIDs[inx])
}

func (env *CompileTestEnviron) TestLigatures() {
	env.Require().NoError(env.compile(`feature liga { sub f i by f_i; sub f f i by f_f_i; } liga;`))
	sub := gsubSubtables(env.T(), env.layout(TagGSUB), 0)[0].(tables.LigatureSubs)
	inx, ok := sub.Coverage.Index(env.target.gid("f"))
	env.Require().True(ok)
	ligs := sub.LigatureSets[inx].Ligatures
	env.Require().Len(ligs, 2)
	env.Equal(env.target.gid("f_f_i"), ligs[0].LigatureGlyph, "longest ligature must come first")
	env.Equal([]tables.GlyphID{env.target.gid("f"), env.target.gid("i")}, ligs[0].ComponentGlyphIDs)
	env.Equal(env.target.gid("f_i"), ligs[1].LigatureGlyph)
	env.Equal([]tables.GlyphID{env.target.gid("i")}, ligs[1].ComponentGlyphIDs)
}

func (env *CompileTestEnviron) TestLookupFlagStartsNewLookup() {
	env.Require().NoError(env.compile(`
feature liga {
    sub f i by f_i;
    lookupflag IgnoreMarks;
    sub f f i by f_f_i;
} liga;`))
	layout := env.layout(TagGSUB)
	env.Require().Len(layout.LookupList.Lookups, 2)
	env.Equal(uint16(0), layout.LookupList.Lookups[0].LookupFlag)
	env.Equal(IgnoreMarks, layout.LookupList.Lookups[1].LookupFlag)
	env.Equal([]uint16{0, 1}, layout.FeatureList.Features[0].LookupListIndices)
}

func (env *CompileTestEnviron) TestPairPositioningFromFeatureText() {
	env.font.kerning = map[string]map[string]float64{"A": {"V": -10}} // not used: kern defined
	env.Require().NoError(env.compile(`feature kern { pos A V -80; pos T [a o] -40; } kern;`))
	layout := env.layout(TagGPOS)
	env.Equal([]string{"kern"}, featureTags(layout))
	env.Require().Len(layout.LookupList.Lookups, 1)
	sub := gposSubtables(env.T(), layout, 0)[0]
	v, ok := kernValueOf(env.T(), sub, env.target.gid("A"), env.target.gid("V"))
	env.True(ok)
	env.Equal(int16(-80), v)
	v, ok = kernValueOf(env.T(), sub, env.target.gid("T"), env.target.gid("o"))
	env.True(ok)
	env.Equal(int16(-40), v)
}

func (env *CompileTestEnviron) TestUnknownGlyph() {
	err := env.compile(`feature liga { sub f l by f_l; } liga;`)
	env.ErrorIs(err, ErrUnknownGlyph)
	env.Empty(env.target.tables)
}

func (env *CompileTestEnviron) TestConflictingSubstitution() {
	err := env.compile(`feature ss01 { sub a by b; sub a by c; } ss01;`)
	env.ErrorIs(err, ErrConflict)
}

func (env *CompileTestEnviron) TestLanguageSystems() {
	env.Require().NoError(env.compile(`
languagesystem DFLT dflt;
languagesystem latn dflt;
languagesystem latn TRK;
feature liga { sub f i by f_i; } liga;
feature smcp { sub a by a.sc; } smcp;`))
	layout := env.layout(TagGSUB)
	sl := layout.ScriptList
	env.Require().Len(sl.Records, 2)
	env.Equal("DFLT", sl.Records[0].Tag.String())
	env.Equal("latn", sl.Records[1].Tag.String())
	latn := sl.Scripts[1]
	env.Require().NotNil(latn.DefaultLangSys)
	env.Equal([]uint16{0, 1}, latn.DefaultLangSys.FeatureIndices)
	env.Require().Len(latn.LangSysRecords, 1)
	env.Equal("TRK ", latn.LangSysRecords[0].Tag.String())
	env.Equal(uint16(0xFFFF), latn.LangSys[0].RequiredFeatureIndex)
	env.Equal([]string{"liga", "smcp"}, featureTags(layout))
}

func (env *CompileTestEnviron) TestGeneratedKern() {
	env.font.groups = map[string][]string{
		"public.kern1.T": {"T"},
		"public.kern2.o": {"a", "o"},
		"public.kern1.V": {"V", "A"}, // A appears as a glyph as well
	}
	env.font.kerning = map[string]map[string]float64{
		"public.kern1.T": {"public.kern2.o": -60, "A": -20},
		"public.kern1.V": {"public.kern2.o": -30},
		"A":              {"public.kern2.o": -10, "V": 0, "missing": -5},
		"missing":        {"A": -5},
	}
	env.Require().NoError(env.compile(""))
	env.NotContains(env.target.tables, TagGSUB)
	layout := env.layout(TagGPOS)
	env.Equal([]string{"kern"}, featureTags(layout))
	env.Equal(IgnoreMarks, layout.LookupList.Lookups[0].LookupFlag)
	sub := gposSubtables(env.T(), layout, 0)[0]
	gid := env.target.gid
	for _, c := range []struct {
		first, second string
		value         int16
	}{
		{"T", "o", -60}, // group-group
		{"T", "A", -20}, // group-glyph
		{"V", "a", -30}, // group-group
		{"A", "o", -10}, // glyph-group beats group-group
		{"A", "V", 0},   // zero values are kept
	} {
		v, ok := kernValueOf(env.T(), sub, gid(c.first), gid(c.second))
		env.True(ok, "pair (%s, %s)", c.first, c.second)
		env.Equal(c.value, v, "pair (%s, %s)", c.first, c.second)
	}
	_, ok := kernValueOf(env.T(), sub, gid("o"), gid("A"))
	env.False(ok)
}

func (env *CompileTestEnviron) TestGeneratedMarkAndGDEF() {
	env.font.anchor("A", "top", 300, 700).
		anchor("o", "top", 250, 500).
		anchor("o", "bottom", 250, 0).
		anchor("acutecomb", "_top", 0, 480).
		anchor("acutecomb", "top", 0, 700). // marks are never bases
		anchor("gravecomb", "_top", 10, 480)
	env.font.glyphs["T"].anchors = append(env.font.glyphs["T"].anchors, glif.Anchor{Name: "top", HasName: true, X: glif.Int(300)})
	env.Require().NoError(env.compile(""))
	layout := env.layout(TagGPOS)
	env.Equal([]string{"mark"}, featureTags(layout))
	env.Require().Len(layout.LookupList.Lookups, 1, "bottom has no marks, only top makes a lookup")
	mb, ok := gposSubtables(env.T(), layout, 0)[0].(tables.MarkBasePos)
	env.Require().True(ok)
	gid := env.target.gid
	_, isMark := mb.Cov().Index(gid("acutecomb"))
	env.True(isMark)
	_, isMark = mb.Cov().Index(gid("gravecomb"))
	env.True(isMark)
	_, isBase := mb.BaseCoverage.Index(gid("acutecomb"))
	env.False(isBase)
	_, isBase = mb.BaseCoverage.Index(gid("T"))
	env.False(isBase, "incomplete anchors are skipped")
	inx, isBase := mb.BaseCoverage.Index(gid("o"))
	env.Require().True(isBase)
	anchor, ok := mb.BaseArray.Anchors().Anchor(inx, 0).(tables.AnchorFormat1)
	env.Require().True(ok)
	env.Equal(int16(250), anchor.XCoordinate)
	env.Equal(int16(500), anchor.YCoordinate)
	inx, _ = mb.Cov().Index(gid("gravecomb"))
	markAnchor, ok := mb.MarkArray.MarkAnchors[inx].(tables.AnchorFormat1)
	env.Require().True(ok)
	env.Equal(int16(10), markAnchor.XCoordinate)
	//
	gdef, _, err := tables.ParseGDEF(env.target.tables[TagGDEF])
	env.Require().NoError(err)
	class, _ := gdef.GlyphClassDef.Class(gid("acutecomb"))
	env.Equal(MarkGlyph, class)
	class, _ = gdef.GlyphClassDef.Class(gid("A"))
	env.Equal(BaseGlyph, class)
	class, _ = gdef.GlyphClassDef.Class(gid("f"))
	env.Equal(uint16(0), class)
}

func (env *CompileTestEnviron) TestMarkFeatureInTextSuppressesWriter() {
	env.font.anchor("A", "top", 300, 700).anchor("acutecomb", "_top", 0, 480)
	env.Require().NoError(env.compile(`feature mark { pos A acutecomb 0; } mark;`))
	layout := env.layout(TagGPOS)
	env.Require().Len(layout.LookupList.Lookups, 1)
	_, isPair := gposSubtables(env.T(), layout, 0)[0].(tables.PairPos)
	env.True(isPair)
}

func (env *CompileTestEnviron) TestCategoriesFromLib() {
	env.font.lib[CategoriesKey] = map[string]any{
		"f_i":       "ligature",
		"acutecomb": "mark",
		"A":         "base",
		"o":         "unassigned",
		"nosuch":    "base",
	}
	env.Require().NoError(env.compile(`feature liga { sub f i by f_i; } liga;`))
	gdef, _, err := tables.ParseGDEF(env.target.tables[TagGDEF])
	env.Require().NoError(err)
	gid := env.target.gid
	class, _ := gdef.GlyphClassDef.Class(gid("f_i"))
	env.Equal(LigatureGlyph, class)
	class, _ = gdef.GlyphClassDef.Class(gid("acutecomb"))
	env.Equal(MarkGlyph, class)
	class, _ = gdef.GlyphClassDef.Class(gid("o"))
	env.Equal(uint16(0), class)
}

func (env *CompileTestEnviron) TestFailureKeepsEarlierTables() {
	env.font.kerning = map[string]map[string]float64{"A": {"V": 40000}}
	err := env.compile(`feature liga { sub f i by f_i; } liga;`)
	env.Require().Error(err)
	env.Contains(env.target.tables, TagGSUB, "GSUB was complete before the failure")
	env.NotContains(env.target.tables, TagGPOS)
	env.NotContains(env.target.tables, TagGDEF)
}

func (env *CompileTestEnviron) TestInstallationOrder() {
	env.font.kerning = map[string]map[string]float64{"A": {"V": -40}}
	env.font.anchor("A", "top", 300, 700).anchor("acutecomb", "_top", 0, 480)
	env.Require().NoError(env.compile(`feature liga { sub f i by f_i; } liga;`))
	env.Equal([]string{TagGSUB, TagGPOS, TagGDEF}, env.target.tags)
	env.Equal([]string{"kern", "mark"}, featureTags(env.layout(TagGPOS)))
}
