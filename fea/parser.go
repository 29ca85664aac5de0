package fea

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Errors for feature text which is syntactically fine but cannot be compiled.
var (
	ErrUnknownGlyph = errors.New("unknown glyph")
	ErrUnknownClass = errors.New("unknown glyph class")
	ErrUnsupported  = errors.New("unsupported")
	ErrMismatch     = errors.New("mismatch")
	ErrConflict     = errors.New("conflicting rules")
)

// Lookup flags.
const (
	RightToLeft      uint16 = 0x0001
	IgnoreBaseGlyphs uint16 = 0x0002
	IgnoreLigatures  uint16 = 0x0004
	IgnoreMarks      uint16 = 0x0008
)

var lookupFlagNames = map[string]uint16{
	"RightToLeft":      RightToLeft,
	"IgnoreBaseGlyphs": IgnoreBaseGlyphs,
	"IgnoreLigatures":  IgnoreLigatures,
	"IgnoreMarks":      IgnoreMarks,
}

type ruleKind int8

const (
	singleSubst ruleKind = iota + 1
	ligatureSubst
	pairPos
)

func (k ruleKind) isGSUB() bool {
	return k == singleSubst || k == ligatureSubst
}

// glyphSet is a glyph or a glyph class, expanded to glyph names.
type glyphSet struct {
	pos     Pos
	names   []string
	isClass bool
}

type valueRecord struct {
	XPlacement, YPlacement, XAdvance, YAdvance int16
}

type rule struct {
	kind  ruleKind
	pos   Pos
	flag  uint16
	lhs   []glyphSet
	rhs   []glyphSet
	value valueRecord
}

type featureBlock struct {
	tag   string
	rules []rule
}

type langSys struct {
	script, lang string
}

// document is the parsed feature text.
type document struct {
	langSystems []langSys
	classes     map[string][]string
	features    []*featureBlock // merged by tag, in order of first definition
}

func (doc *document) hasFeature(tag string) bool {
	for _, f := range doc.features {
		if f.tag == tag {
			return true
		}
	}
	return false
}

type parser struct {
	lex  *lexer
	tok  token
	doc  *document
	flag uint16 // current lookup flag inside a feature block
}

// parse parses feature text.
func parse(src string) (*document, error) {
	p := &parser{
		lex: newLexer(src),
		doc: &document{classes: make(map[string][]string)},
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	for p.tok.typ != tokEOF {
		if err := p.topLevelStatement(); err != nil {
			return nil, err
		}
	}
	return p.doc, nil
}

func (p *parser) advance() (err error) {
	p.tok, err = p.lex.next()
	return
}

func (p *parser) errorf(pos Pos, format string, args ...any) error {
	return &SyntaxError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) isPunct(s string) bool {
	return p.tok.typ == tokPunct && p.tok.val == s
}

func (p *parser) expectPunct(s string) error {
	if !p.isPunct(s) {
		return p.errorf(p.tok.pos, "expected %q, found %s", s, p.tok)
	}
	return p.advance()
}

func (p *parser) expectIdent() (token, error) {
	t := p.tok
	if t.typ != tokIdent {
		return t, p.errorf(t.pos, "expected name, found %s", t)
	}
	return t, p.advance()
}

func (p *parser) topLevelStatement() error {
	t := p.tok
	switch {
	case t.typ == tokClass:
		return p.classDefinition()
	case t.typ != tokIdent:
		return p.errorf(t.pos, "unexpected %s", t)
	}
	switch t.val {
	case "languagesystem":
		return p.languageSystem()
	case "feature":
		return p.featureBlock()
	case "include":
		return p.errorf(t.pos, "include statements are not supported")
	}
	return p.errorf(t.pos, "unsupported statement %s", t)
}

func (p *parser) languageSystem() error {
	if err := p.advance(); err != nil {
		return err
	}
	script, err := p.expectIdent()
	if err != nil {
		return err
	}
	lang, err := p.expectIdent()
	if err != nil {
		return err
	}
	for _, tag := range []token{script, lang} {
		if len(tag.val) > 4 {
			return p.errorf(tag.pos, "invalid tag %q", tag.val)
		}
	}
	ls := langSys{script: script.val, lang: lang.val}
	for _, have := range p.doc.langSystems {
		if have == ls {
			return p.errorf(script.pos, "duplicate languagesystem %s %s", ls.script, ls.lang)
		}
	}
	p.doc.langSystems = append(p.doc.langSystems, ls)
	return p.expectPunct(";")
}

// @name = [ … ];
func (p *parser) classDefinition() error {
	name := p.tok
	if err := p.advance(); err != nil {
		return err
	}
	if err := p.expectPunct("="); err != nil {
		return err
	}
	set, err := p.glyphOrClass()
	if err != nil {
		return err
	}
	p.doc.classes[name.val] = set.names
	return p.expectPunct(";")
}

func (p *parser) featureBlock() error {
	if err := p.advance(); err != nil {
		return err
	}
	tag, err := p.expectIdent()
	if err != nil {
		return err
	}
	if len(tag.val) > 4 {
		return p.errorf(tag.pos, "invalid feature tag %q", tag.val)
	}
	if p.isPunct(";") || (p.tok.typ == tokIdent && p.tok.val == "useExtension") {
		return p.errorf(p.tok.pos, "unsupported feature block syntax")
	}
	if err := p.expectPunct("{"); err != nil {
		return err
	}
	var block *featureBlock
	for _, f := range p.doc.features {
		if f.tag == tag.val {
			block = f
		}
	}
	if block == nil {
		block = &featureBlock{tag: tag.val}
		p.doc.features = append(p.doc.features, block)
	}
	p.flag = 0
	for !p.isPunct("}") {
		if p.tok.typ == tokEOF {
			return p.errorf(p.tok.pos, "feature %s is not closed", tag.val)
		}
		if err := p.featureStatement(block); err != nil {
			return err
		}
	}
	if err := p.advance(); err != nil {
		return err
	}
	end, err := p.expectIdent()
	if err != nil {
		return err
	}
	if end.val != tag.val {
		return p.errorf(end.pos, "feature %s closed with tag %s", tag.val, end.val)
	}
	return p.expectPunct(";")
}

func (p *parser) featureStatement(block *featureBlock) error {
	t := p.tok
	if t.typ == tokClass {
		return p.classDefinition()
	}
	if t.typ != tokIdent {
		return p.errorf(t.pos, "unexpected %s", t)
	}
	switch t.val {
	case "sub", "substitute":
		return p.substitution(block)
	case "pos", "position":
		return p.positioning(block)
	case "lookupflag":
		return p.lookupFlag()
	case "script", "language":
		return p.errorf(t.pos, "%s statements are not supported, features apply to all language systems", t.val)
	case "lookup":
		return p.errorf(t.pos, "named lookups are not supported")
	case "ignore", "rsub", "reversesub", "enum", "enumerate":
		return p.errorf(t.pos, "contextual rules are not supported")
	}
	return p.errorf(t.pos, "unsupported statement %s in feature %s", t, block.tag)
}

func (p *parser) lookupFlag() error {
	if err := p.advance(); err != nil {
		return err
	}
	if p.tok.typ == tokNumber {
		n, err := strconv.Atoi(p.tok.val)
		if err != nil || n < 0 || n > 0x000F {
			return p.errorf(p.tok.pos, "unsupported lookup flag %s", p.tok.val)
		}
		p.flag = uint16(n)
		if err := p.advance(); err != nil {
			return err
		}
		return p.expectPunct(";")
	}
	var flag uint16
	for !p.isPunct(";") {
		t, err := p.expectIdent()
		if err != nil {
			return err
		}
		f, ok := lookupFlagNames[t.val]
		if !ok {
			return p.errorf(t.pos, "unsupported lookup flag %s", t.val)
		}
		flag |= f
	}
	p.flag = flag
	return p.advance()
}

// sequence reads glyphs and classes up to a keyword or ';'.
func (p *parser) sequence(stop string) ([]glyphSet, error) {
	var seq []glyphSet
	for {
		if p.isPunct("'") {
			return nil, p.errorf(p.tok.pos, "contextual rules are not supported")
		}
		if p.isPunct(";") || (p.tok.typ == tokIdent && p.tok.val == stop) {
			return seq, nil
		}
		if p.tok.typ == tokEOF {
			return nil, p.errorf(p.tok.pos, "unexpected end of input")
		}
		set, err := p.glyphOrClass()
		if err != nil {
			return nil, err
		}
		seq = append(seq, set)
	}
}

func (p *parser) substitution(block *featureBlock) error {
	r := rule{pos: p.tok.pos, flag: p.flag}
	if err := p.advance(); err != nil {
		return err
	}
	var err error
	if r.lhs, err = p.sequence("by"); err != nil {
		return err
	}
	if !(p.tok.typ == tokIdent && p.tok.val == "by") {
		return p.errorf(p.tok.pos, "expected \"by\", found %s", p.tok)
	}
	if err := p.advance(); err != nil {
		return err
	}
	if r.rhs, err = p.sequence(""); err != nil {
		return err
	}
	switch {
	case len(r.lhs) == 0 || len(r.rhs) == 0:
		return p.errorf(r.pos, "incomplete substitution")
	case len(r.lhs) == 1 && len(r.rhs) == 1:
		r.kind = singleSubst
		if !r.lhs[0].isClass && r.rhs[0].isClass {
			return fmt.Errorf("%s: %w: substitution of a glyph by a class", r.pos, ErrUnsupported)
		}
		if r.rhs[0].isClass && len(r.lhs[0].names) != len(r.rhs[0].names) {
			return fmt.Errorf("%s: %w: classes of different size in substitution (%d ≠ %d)",
				r.pos, ErrMismatch, len(r.lhs[0].names), len(r.rhs[0].names))
		}
	case len(r.rhs) == 1 && !r.rhs[0].isClass:
		r.kind = ligatureSubst
	default:
		return fmt.Errorf("%s: %w: only single and ligature substitutions are supported", r.pos, ErrUnsupported)
	}
	block.rules = append(block.rules, r)
	return p.advance()
}

func (p *parser) positioning(block *featureBlock) error {
	r := rule{kind: pairPos, pos: p.tok.pos, flag: p.flag}
	if err := p.advance(); err != nil {
		return err
	}
	for i := 0; i < 2; i++ {
		if p.isPunct("'") {
			return p.errorf(p.tok.pos, "contextual rules are not supported")
		}
		if p.tok.typ == tokNumber || p.isPunct("<") {
			return fmt.Errorf("%s: %w: only pair positioning is supported", r.pos, ErrUnsupported)
		}
		set, err := p.glyphOrClass()
		if err != nil {
			return err
		}
		r.lhs = append(r.lhs, set)
	}
	if p.isPunct("'") {
		return p.errorf(p.tok.pos, "contextual rules are not supported")
	}
	var err error
	if r.value, err = p.valueRecord(); err != nil {
		return err
	}
	if !p.isPunct(";") {
		return fmt.Errorf("%s: %w: only pair positioning with a single value is supported", r.pos, ErrUnsupported)
	}
	block.rules = append(block.rules, r)
	return p.advance()
}

// valueRecord reads a number (x advance) or <xPla yPla xAdv yAdv>.
func (p *parser) valueRecord() (valueRecord, error) {
	var vr valueRecord
	if p.tok.typ == tokNumber {
		n, err := p.number()
		vr.XAdvance = n
		return vr, err
	}
	if err := p.expectPunct("<"); err != nil {
		return vr, err
	}
	var v [4]int16
	for i := range v {
		if p.tok.typ != tokNumber {
			return vr, p.errorf(p.tok.pos, "value records need 4 numbers, found %s", p.tok)
		}
		n, err := p.number()
		if err != nil {
			return vr, err
		}
		v[i] = n
	}
	vr = valueRecord{XPlacement: v[0], YPlacement: v[1], XAdvance: v[2], YAdvance: v[3]}
	return vr, p.expectPunct(">")
}

func (p *parser) number() (int16, error) {
	t := p.tok
	n, err := strconv.Atoi(t.val)
	if err != nil || n < math.MinInt16 || n > math.MaxInt16 {
		return 0, p.errorf(t.pos, "number out of range: %s", t.val)
	}
	return int16(n), p.advance()
}

// glyphOrClass reads a glyph name, a named class or a bracketed class.
func (p *parser) glyphOrClass() (glyphSet, error) {
	t := p.tok
	switch {
	case t.typ == tokIdent:
		return glyphSet{pos: t.pos, names: []string{t.val}}, p.advance()
	case t.typ == tokClass:
		names, ok := p.doc.classes[t.val]
		if !ok {
			return glyphSet{}, fmt.Errorf("%s: %w @%s", t.pos, ErrUnknownClass, t.val)
		}
		return glyphSet{pos: t.pos, names: names, isClass: true}, p.advance()
	case t.typ == tokPunct && t.val == "[":
		if err := p.advance(); err != nil {
			return glyphSet{}, err
		}
		set := glyphSet{pos: t.pos, isClass: true}
		for !p.isPunct("]") {
			switch p.tok.typ {
			case tokIdent:
				set.names = append(set.names, p.tok.val)
			case tokClass:
				names, ok := p.doc.classes[p.tok.val]
				if !ok {
					return set, fmt.Errorf("%s: %w @%s", p.tok.pos, ErrUnknownClass, p.tok.val)
				}
				set.names = append(set.names, names...)
			default:
				return set, p.errorf(p.tok.pos, "unexpected %s in glyph class", p.tok)
			}
			if err := p.advance(); err != nil {
				return set, err
			}
		}
		return set, p.advance()
	}
	return glyphSet{}, p.errorf(t.pos, "expected glyph or glyph class, found %s", t)
}
