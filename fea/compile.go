package fea

import (
	"fmt"
	"slices"
	"strings"

	"github.com/npillmayer/schuko/tracing"
)

const markToBase ruleKind = pairPos + 1

type ligature struct {
	components []uint16
	glyph      uint16
}

type anchorPoint struct {
	x, y int16
}

// lookup collects the rules of one lookup, with glyphs resolved to IDs.
// Only the fields for its kind are used.
type lookup struct {
	kind      ruleKind
	flag      uint16
	single    map[uint16]uint16
	ligatures map[uint16][]ligature // by first component
	pairs     map[uint16]map[uint16]valueRecord
	marks     map[uint16]anchorPoint
	bases     map[uint16]anchorPoint
}

func newLookup(kind ruleKind, flag uint16) *lookup {
	lk := &lookup{kind: kind, flag: flag}
	switch kind {
	case singleSubst:
		lk.single = make(map[uint16]uint16)
	case ligatureSubst:
		lk.ligatures = make(map[uint16][]ligature)
	case pairPos:
		lk.pairs = make(map[uint16]map[uint16]valueRecord)
	case markToBase:
		lk.marks = make(map[uint16]anchorPoint)
		lk.bases = make(map[uint16]anchorPoint)
	}
	return lk
}

func (lk *lookup) isEmpty() bool {
	return len(lk.single) == 0 && len(lk.ligatures) == 0 && len(lk.pairs) == 0 &&
		(len(lk.marks) == 0 || len(lk.bases) == 0)
}

// addPair keeps the first value for a pair.
func (lk *lookup) addPair(first, second uint16, vr valueRecord) bool {
	row, ok := lk.pairs[first]
	if !ok {
		row = make(map[uint16]valueRecord)
		lk.pairs[first] = row
	}
	if _, exists := row[second]; exists {
		return false
	}
	row[second] = vr
	return true
}

type feature struct {
	tag     string
	lookups []int // indices into the lookup list
}

// layoutTable collects the features and lookups of GSUB or GPOS.
type layoutTable struct {
	lookups  []*lookup
	features []feature
}

func (t *layoutTable) isEmpty() bool {
	return len(t.lookups) == 0
}

// addLookups registers lookups for a feature.
func (t *layoutTable) addLookups(tag string, lookups ...*lookup) {
	var f *feature
	for i := range t.features {
		if t.features[i].tag == tag {
			f = &t.features[i]
		}
	}
	if f == nil {
		t.features = append(t.features, feature{tag: tag})
		f = &t.features[len(t.features)-1]
	}
	for _, lk := range lookups {
		f.lookups = append(f.lookups, len(t.lookups))
		t.lookups = append(t.lookups, lk)
	}
}

// --- Compiler --------------------------------------------------------------

// FeatureCompiler is the default Compiler.
type FeatureCompiler struct {
	trace         tracing.Trace
	generateKern  bool
	generateMarks bool
}

var _ Compiler = (*FeatureCompiler)(nil)

// Option configures a FeatureCompiler.
type Option func(*FeatureCompiler)

// WithTrace directs diagnostics to t instead of the package tracer.
func WithTrace(t tracing.Trace) Option {
	return func(c *FeatureCompiler) {
		c.trace = t
	}
}

// WithoutGeneratedFeatures switches off the kern and mark feature writers.
func WithoutGeneratedFeatures() Option {
	return func(c *FeatureCompiler) {
		c.generateKern = false
		c.generateMarks = false
	}
}

// NewCompiler creates a feature compiler.
func NewCompiler(opts ...Option) *FeatureCompiler {
	c := &FeatureCompiler{generateKern: true, generateMarks: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *FeatureCompiler) tracer() tracing.Trace {
	if c.trace != nil {
		return c.trace
	}
	return tracer()
}

// compilation holds the state of a single Compile call.
type compilation struct {
	*FeatureCompiler
	font    Font
	target  Target
	gsub    layoutTable
	gpos    layoutTable
	anchors map[string]glyphAnchors // lazily collected
}

// Compile compiles the feature text and generated features of font and
// installs GSUB, GPOS and GDEF into target, in this order. Tables are
// installed as soon as they are complete: if an error occurs, previously
// installed tables stay in target.
func (c *FeatureCompiler) Compile(font Font, target Target) error {
	comp := &compilation{FeatureCompiler: c, font: font, target: target}
	doc, err := parse(font.FeatureText())
	if err != nil {
		return err
	}
	langSystems := doc.langSystems
	if len(langSystems) == 0 {
		langSystems = []langSys{{script: "DFLT", lang: "dflt"}}
	}
	c.tracer().Debugf("compiling features of %s for %s", font.Path(), tagString(langSystems))
	for _, block := range doc.features {
		if err := comp.compileFeature(block); err != nil {
			return err
		}
	}
	if !comp.gsub.isEmpty() {
		data, err := encodeLayout(&comp.gsub, langSystems)
		if err != nil {
			return fmt.Errorf("GSUB: %w", err)
		}
		target.SetTable(TagGSUB, data)
		c.tracer().Debugf("installed GSUB with %d lookups", len(comp.gsub.lookups))
	}
	if c.generateKern && !doc.hasFeature("kern") {
		kern, err := comp.kernLookup()
		if err != nil {
			return err
		}
		if kern != nil {
			comp.gpos.addLookups("kern", kern)
		}
	}
	if c.generateMarks && !doc.hasFeature("mark") {
		marks, err := comp.markLookups()
		if err != nil {
			return err
		}
		if len(marks) > 0 {
			comp.gpos.addLookups("mark", marks...)
		}
	}
	if !comp.gpos.isEmpty() {
		data, err := encodeLayout(&comp.gpos, langSystems)
		if err != nil {
			return fmt.Errorf("GPOS: %w", err)
		}
		target.SetTable(TagGPOS, data)
		c.tracer().Debugf("installed GPOS with %d lookups", len(comp.gpos.lookups))
	}
	if comp.gsub.isEmpty() && comp.gpos.isEmpty() {
		return nil
	}
	classes, err := comp.glyphClasses()
	if err != nil {
		return err
	}
	if len(classes) > 0 {
		data, err := encodeGDEF(classes)
		if err != nil {
			return fmt.Errorf("GDEF: %w", err)
		}
		target.SetTable(TagGDEF, data)
		c.tracer().Debugf("installed GDEF with %d classified glyphs", len(classes))
	}
	return nil
}

// gid resolves a glyph name.
func (comp *compilation) gid(name string, pos Pos) (uint16, error) {
	if gid, ok := comp.target.GlyphID(name); ok && comp.font.HasGlyph(name) {
		return gid, nil
	}
	return 0, fmt.Errorf("%s: %w %q", pos, ErrUnknownGlyph, name)
}

func (comp *compilation) gids(set glyphSet) ([]uint16, error) {
	gids := make([]uint16, len(set.names))
	for i, name := range set.names {
		var err error
		if gids[i], err = comp.gid(name, set.pos); err != nil {
			return nil, err
		}
	}
	return gids, nil
}

// compileFeature groups the rules of a feature block into lookups. A new
// lookup starts whenever the rule type or the lookup flag changes.
func (comp *compilation) compileFeature(block *featureBlock) error {
	var gsubLookups, gposLookups []*lookup
	var cur *lookup
	for _, r := range block.rules {
		if cur == nil || cur.kind != r.kind || cur.flag != r.flag {
			cur = newLookup(r.kind, r.flag)
			if r.kind.isGSUB() {
				gsubLookups = append(gsubLookups, cur)
			} else {
				gposLookups = append(gposLookups, cur)
			}
		}
		var err error
		switch r.kind {
		case singleSubst:
			err = comp.addSingle(cur, r)
		case ligatureSubst:
			err = comp.addLigature(cur, r)
		case pairPos:
			err = comp.addPairs(cur, r)
		}
		if err != nil {
			return fmt.Errorf("feature %s: %w", block.tag, err)
		}
	}
	if len(gsubLookups) > 0 {
		comp.gsub.addLookups(block.tag, gsubLookups...)
	}
	if len(gposLookups) > 0 {
		comp.gpos.addLookups(block.tag, gposLookups...)
	}
	if len(block.rules) == 0 {
		comp.tracer().Infof("feature %s has no rules", block.tag)
	}
	return nil
}

func (comp *compilation) addSingle(lk *lookup, r rule) error {
	from, err := comp.gids(r.lhs[0])
	if err != nil {
		return err
	}
	to, err := comp.gids(r.rhs[0])
	if err != nil {
		return err
	}
	for i, gid := range from {
		target := to[0]
		if len(to) > 1 {
			target = to[i]
		}
		if have, exists := lk.single[gid]; exists && have != target {
			return fmt.Errorf("%s: %w: glyph %q is already substituted",
				r.pos, ErrConflict, r.lhs[0].names[i])
		}
		lk.single[gid] = target
	}
	return nil
}

func (comp *compilation) addLigature(lk *lookup, r rule) error {
	components := make([][]uint16, len(r.lhs))
	for i, set := range r.lhs {
		var err error
		if components[i], err = comp.gids(set); err != nil {
			return err
		}
	}
	lig, err := comp.gid(r.rhs[0].names[0], r.rhs[0].pos)
	if err != nil {
		return err
	}
	for _, seq := range product(components) {
		for _, have := range lk.ligatures[seq[0]] {
			if slices.Equal(have.components, seq) && have.glyph != lig {
				return fmt.Errorf("%s: %w: ligature %q is already defined", r.pos, ErrConflict,
					r.rhs[0].names[0])
			}
		}
		lk.ligatures[seq[0]] = append(lk.ligatures[seq[0]], ligature{components: seq, glyph: lig})
	}
	return nil
}

func (comp *compilation) addPairs(lk *lookup, r rule) error {
	firsts, err := comp.gids(r.lhs[0])
	if err != nil {
		return err
	}
	seconds, err := comp.gids(r.lhs[1])
	if err != nil {
		return err
	}
	for _, first := range firsts {
		for _, second := range seconds {
			if !lk.addPair(first, second, r.value) {
				comp.tracer().Debugf("%s: pair (%d, %d) already defined, keeping first value",
					r.pos, first, second)
			}
		}
	}
	return nil
}

// product returns all sequences taking one element of each set.
func product(sets [][]uint16) [][]uint16 {
	result := [][]uint16{{}}
	for _, set := range sets {
		var next [][]uint16
		for _, prefix := range result {
			for _, gid := range set {
				seq := append(slices.Clone(prefix), gid)
				next = append(next, seq)
			}
		}
		result = next
	}
	return result
}

// tagString is used for diagnostics of language systems.
func tagString(ls []langSys) string {
	s := make([]string, len(ls))
	for i, l := range ls {
		s[i] = l.script + "/" + l.lang
	}
	return strings.Join(s, " ")
}
