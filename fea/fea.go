/*
Package fea compiles OpenType layout tables from UFO feature data.

The compiler reads a font through the narrow Font interface: glyph names,
per-glyph code points and anchors, and the font-level feature text, groups,
kerning and lib. It never needs outlines or metrics. Compiled tables are
handed to a Target, usually a font shell under construction.

Supported input is a practical subset of the Adobe feature file syntax:

	languagesystem DFLT dflt;
	@lc = [a b c];
	feature liga {
	    lookupflag IgnoreMarks;
	    sub f i by f_i;
	} liga;
	feature smcp {
	    sub @lc by @sc;
	} smcp;
	feature kern {
	    pos A V -80;
	    pos T @lc <0 0 -40 0>;
	} kern;

i.e., single and ligature substitutions and pair positioning. Contextual
rules, named lookups, script/language blocks and includes are rejected.

In addition to the feature text, two features are generated, as UFO
compilers usually do: 'kern' from the kerning data and its public.kern1/
public.kern2 groups, and 'mark' from glyph anchors. A feature defined in
the feature text always takes precedence over a generated one.

Tables are installed into the target in the order GSUB, GPOS, GDEF as soon
as each of them is complete. If compilation fails, tables installed before
the failure remain in the target.

# Status

Work in progress.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package fea

import (
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/ufotl/glif"
)

// tracer writes to trace with key 'ufotl.fea'
func tracer() tracing.Trace {
	return tracing.Select("ufotl.fea")
}

// Glyph is the view of a single glyph the compiler needs.
type Glyph interface {
	Name() string
	Unicodes() []rune
	Unicode() (rune, bool) // first of Unicodes, if any
	Anchors() []glif.Anchor
}

// Font is the read-only capability set the compiler uses. It has no
// outlines, advances or glyph lib.
type Font interface {
	Path() string
	GlyphNames() []string // includes .notdef
	HasGlyph(name string) bool
	Glyph(name string) (Glyph, error)
	FeatureText() string
	Groups() map[string][]string
	Kerning() map[string]map[string]float64
	Lib() map[string]any
}

// Target receives compiled tables.
type Target interface {
	GlyphID(name string) (uint16, bool)
	SetTable(tag string, data []byte)
}

// Compiler compiles the layout features of a font into a target.
type Compiler interface {
	Compile(font Font, target Target) error
}

// Table tags installed by the compiler.
const (
	TagGSUB = "GSUB"
	TagGPOS = "GPOS"
	TagGDEF = "GDEF"
)
