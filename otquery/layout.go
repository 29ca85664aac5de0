package otquery

import (
	"github.com/go-text/typesetting/font/opentype/tables"
)

// LayoutTables lists the OpenType layout tables present in a font.
func LayoutTables(otf *Font) []string {
	var lt []string
	for _, tag := range []string{"GDEF", "GSUB", "GPOS", "BASE", "JSTF"} {
		if otf.table(tag) != nil {
			lt = append(lt, tag)
		}
	}
	return lt
}

// Features returns the feature tags of table GSUB or GPOS, in feature list
// order.
func Features(otf *Font, table string) []string {
	b := otf.table(table)
	if b == nil {
		return nil
	}
	layout, _, err := tables.ParseLayout(b)
	if err != nil {
		tracer().Infof("cannot parse %s: %v", table, err)
		return nil
	}
	tags := make([]string, len(layout.FeatureList.Records))
	for i, rec := range layout.FeatureList.Records {
		tags[i] = rec.Tag.String()
	}
	return tags
}

// LookupCount returns the number of lookups of table GSUB or GPOS.
func LookupCount(otf *Font, table string) int {
	b := otf.table(table)
	if b == nil {
		return 0
	}
	layout, _, err := tables.ParseLayout(b)
	if err != nil {
		return 0
	}
	return len(layout.LookupList.Lookups)
}

// GlyphClass returns the GDEF glyph class of a glyph: 1 for base glyphs, 2
// for ligatures, 3 for marks, 4 for components and 0 if unclassified.
func GlyphClass(otf *Font, gid uint16) uint16 {
	b := otf.table("GDEF")
	if b == nil {
		return 0
	}
	gdef, _, err := tables.ParseGDEF(b)
	if err != nil || gdef.GlyphClassDef == nil {
		return 0
	}
	class, _ := gdef.GlyphClassDef.Class(tables.GlyphID(gid))
	return class
}
