package fea

// GDEF glyph classes.
const (
	BaseGlyph      uint16 = 1
	LigatureGlyph  uint16 = 2
	MarkGlyph      uint16 = 3
	ComponentGlyph uint16 = 4
)

// CategoriesKey is the font lib key for explicit glyph categories.
const CategoriesKey = "public.openTypeCategories"

var categoryClasses = map[string]uint16{
	"base":      BaseGlyph,
	"ligature":  LigatureGlyph,
	"mark":      MarkGlyph,
	"component": ComponentGlyph,
}

// glyphClasses determines the GDEF glyph classes: from the font lib if it
// has explicit categories, else from anchors (marks carry an "_X" anchor,
// other glyphs with anchors are bases).
func (comp *compilation) glyphClasses() (map[uint16]uint16, error) {
	classes := make(map[uint16]uint16)
	if categories, ok := comp.font.Lib()[CategoriesKey].(map[string]any); ok {
		for _, name := range sortedKeys(categories) {
			category, _ := categories[name].(string)
			if category == "unassigned" {
				continue
			}
			class, ok := categoryClasses[category]
			if !ok {
				comp.tracer().Infof("glyph %s: unknown category %v", name, categories[name])
				continue
			}
			gid, err := comp.gid(name, Pos{})
			if err != nil {
				comp.tracer().Debugf("%s: skipping category of unknown glyph %s", CategoriesKey, name)
				continue
			}
			classes[gid] = class
		}
		return classes, nil
	}
	anchors, err := comp.collectAnchors()
	if err != nil {
		return nil, err
	}
	for name, ga := range anchors {
		gid, err := comp.gid(name, Pos{})
		if err != nil {
			return nil, err
		}
		if ga.isMark() {
			classes[gid] = MarkGlyph
		} else {
			classes[gid] = BaseGlyph
		}
	}
	return classes, nil
}
