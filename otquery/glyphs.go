package otquery

import (
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/font/opentype/tables"
)

// CharacterMap decodes the best Unicode subtable of table 'cmap'.
// Code points mapped to .notdef are left out.
func CharacterMap(otf *Font) (map[rune]uint16, bool) {
	b := otf.table("cmap")
	if b == nil {
		return nil, false
	}
	cmapTable, _, err := tables.ParseCmap(b)
	if err != nil {
		tracer().Infof("cannot parse cmap: %v", err)
		return nil, false
	}
	cmap, _, err := font.ProcessCmap(cmapTable, tables.FPNone)
	if err != nil {
		tracer().Infof("cannot process cmap: %v", err)
		return nil, false
	}
	m := make(map[rune]uint16)
	for it := cmap.Iter(); it.Next(); {
		r, gid := it.Char()
		if gid == 0 {
			continue
		}
		m[r] = uint16(gid)
	}
	return m, true
}

// GlyphIndex returns the glyph a code point is mapped to, or 0.
func GlyphIndex(otf *Font, codepoint rune) uint16 {
	cmap, ok := CharacterMap(otf)
	if !ok {
		return 0
	}
	return cmap[codepoint]
}

// GlyphNames returns the glyph names stored in a format 2.0 'post' table,
// in glyph order. Standard Macintosh names other than .notdef are not
// resolved and come back empty.
func GlyphNames(otf *Font) ([]string, bool) {
	b := otf.table("post")
	if b == nil {
		return nil, false
	}
	post, _, err := tables.ParsePost(b)
	if err != nil {
		tracer().Infof("cannot parse post: %v", err)
		return nil, false
	}
	names20, ok := post.Names.(tables.PostNames20)
	if !ok {
		return nil, false
	}
	names := make([]string, len(names20.GlyphNameIndexes))
	for i, inx := range names20.GlyphNameIndexes {
		switch {
		case inx == 0:
			names[i] = ".notdef"
		case inx >= 258 && int(inx-258) < len(names20.Strings):
			names[i] = names20.Strings[inx-258]
		}
	}
	return names, true
}
