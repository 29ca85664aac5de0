package fea

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexer(t *testing.T) {
	lex := newLexer("feature kern { # comment\n  pos \\A @UC -40 <1 2 3 4>; } kern;")
	var vals []string
	var types []tokenType
	for {
		tok, err := lex.next()
		require.NoError(t, err)
		if tok.typ == tokEOF {
			break
		}
		vals = append(vals, tok.val)
		types = append(types, tok.typ)
	}
	assert.Equal(t, []string{"feature", "kern", "{", "pos", "A", "UC", "-40",
		"<", "1", "2", "3", "4", ">", ";", "}", "kern", ";"}, vals)
	assert.Equal(t, tokClass, types[5])
	assert.Equal(t, tokNumber, types[6])
}

func TestParseDocument(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ufotl.fea")
	defer teardown()
	//
	doc, err := parse(`
languagesystem DFLT dflt;
languagesystem latn dflt;
@lc = [a b];
@sc = [a.sc b.sc];
feature smcp {
    sub @lc by @sc;
} smcp;
feature liga {
    sub f i by f_i;
    lookupflag IgnoreMarks;
    sub f f i by f_f_i;
} liga;
feature smcp {
    sub c by c.sc;
} smcp;
`)
	require.NoError(t, err)
	assert.Equal(t, []langSys{{"DFLT", "dflt"}, {"latn", "dflt"}}, doc.langSystems)
	require.Len(t, doc.features, 2, "smcp blocks must be merged")
	assert.Equal(t, "smcp", doc.features[0].tag)
	assert.Len(t, doc.features[0].rules, 2)
	liga := doc.features[1]
	require.Len(t, liga.rules, 2)
	assert.Equal(t, ligatureSubst, liga.rules[0].kind)
	assert.Equal(t, uint16(0), liga.rules[0].flag)
	assert.Equal(t, IgnoreMarks, liga.rules[1].flag)
	assert.True(t, doc.hasFeature("liga"))
	assert.False(t, doc.hasFeature("kern"))
}

func TestParseValueRecords(t *testing.T) {
	doc, err := parse("feature kern { pos A V -80; pos T o <0 0 -40 0>; } kern;")
	require.NoError(t, err)
	rules := doc.features[0].rules
	require.Len(t, rules, 2)
	assert.Equal(t, valueRecord{XAdvance: -80}, rules[0].value)
	assert.Equal(t, valueRecord{XAdvance: -40}, rules[1].value)
}

func TestSyntaxErrors(t *testing.T) {
	cases := map[string]string{
		"include":         "include(other.fea);",
		"contextual":      "feature calt { sub a' b by c; } calt;",
		"script":          "feature liga { script latn; sub f i by f_i; } liga;",
		"unclosed":        "feature liga { sub f i by f_i;",
		"wrong end tag":   "feature liga { sub f i by f_i; } kern;",
		"missing by":      "feature liga { sub f i f_i; } liga;",
		"bad flag":        "feature liga { lookupflag UseMarkFilteringSet @x; } liga;",
		"bad character":   "feature liga { sub f i by f_i$; } liga;",
		"value record":    "feature kern { pos A V <1 2>; } kern;",
		"named lookup":    "lookup foo { sub a by b; } foo;",
		"number overflow": "feature kern { pos A V 40000; } kern;",
	}
	for name, src := range cases {
		_, err := parse(src)
		var synErr *SyntaxError
		if assert.True(t, errors.As(err, &synErr), "%s: expected syntax error, got %v", name, err) {
			assert.Greater(t, synErr.Pos.Line, 0, name)
		}
	}
}

func TestSemanticParseErrors(t *testing.T) {
	_, err := parse("feature smcp { sub @lc by @sc; } smcp;")
	assert.ErrorIs(t, err, ErrUnknownClass)
	_, err = parse("@a = [a b]; @b = [c]; feature smcp { sub @a by @b; } smcp;")
	assert.ErrorIs(t, err, ErrMismatch)
	_, err = parse("feature ccmp { sub a by b c; } ccmp;")
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = parse("feature kern { pos A -20; } kern;")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestSyntaxErrorPosition(t *testing.T) {
	_, err := parse("languagesystem DFLT dflt;\nfeature liga {\n  sub f i by f_i\n} liga;")
	var synErr *SyntaxError
	require.True(t, errors.As(err, &synErr))
	assert.Equal(t, Pos{Line: 4, Col: 1}, synErr.Pos)
	assert.Contains(t, synErr.Error(), "4:1")
}
