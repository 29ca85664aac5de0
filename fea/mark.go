package fea

import (
	"fmt"
	"math"
	"strings"

	"github.com/npillmayer/ufotl/glif"
)

// glyphAnchors holds the usable anchors of a glyph by name.
type glyphAnchors map[string]anchorPoint

// collectAnchors gathers named anchors with both coordinates for all
// glyphs. Incomplete anchors are skipped. If a glyph has more than one
// anchor of the same name, the first one is used.
func (comp *compilation) collectAnchors() (map[string]glyphAnchors, error) {
	if comp.anchors != nil {
		return comp.anchors, nil
	}
	all := make(map[string]glyphAnchors)
	for _, name := range comp.font.GlyphNames() {
		g, err := comp.font.Glyph(name)
		if err != nil {
			return nil, err
		}
		for _, a := range g.Anchors() {
			if !a.HasName || a.Name == "" || !a.X.IsSet() || !a.Y.IsSet() {
				comp.tracer().Infof("glyph %s: skipping incomplete anchor %s", name, a)
				continue
			}
			p, err := anchorCoordinates(a)
			if err != nil {
				return nil, fmt.Errorf("glyph %s: %w", name, err)
			}
			if all[name] == nil {
				all[name] = make(glyphAnchors)
			}
			if _, dup := all[name][a.Name]; !dup {
				all[name][a.Name] = p
			}
		}
	}
	comp.anchors = all
	return all, nil
}

func anchorCoordinates(a glif.Anchor) (anchorPoint, error) {
	x, y := a.X.Round(), a.Y.Round()
	if x < math.MinInt16 || x > math.MaxInt16 || y < math.MinInt16 || y > math.MaxInt16 {
		return anchorPoint{}, fmt.Errorf("anchor %s out of range", a)
	}
	return anchorPoint{x: int16(x), y: int16(y)}, nil
}

// isMark is true for glyphs carrying an attaching anchor ("_top").
func (ga glyphAnchors) isMark() bool {
	for name := range ga {
		if strings.HasPrefix(name, "_") {
			return true
		}
	}
	return false
}

// markLookups builds one mark-to-base lookup per anchor name X, attaching
// glyphs with anchor "_X" to non-mark glyphs with anchor "X".
func (comp *compilation) markLookups() ([]*lookup, error) {
	anchors, err := comp.collectAnchors()
	if err != nil {
		return nil, err
	}
	if len(anchors) == 0 {
		return nil, nil
	}
	attaching := make(map[string]struct{})
	for _, ga := range anchors {
		for name := range ga {
			if base, ok := strings.CutPrefix(name, "_"); ok && base != "" {
				attaching[base] = struct{}{}
			}
		}
	}
	var lookups []*lookup
	for _, anchorName := range sortedKeys(attaching) {
		lk := newLookup(markToBase, 0)
		for _, glyph := range sortedKeys(anchors) {
			ga := anchors[glyph]
			gid, err := comp.gid(glyph, Pos{})
			if err != nil {
				return nil, err
			}
			if p, ok := ga["_"+anchorName]; ok {
				lk.marks[gid] = p
			} else if p, ok := ga[anchorName]; ok && !ga.isMark() {
				lk.bases[gid] = p
			}
		}
		if lk.isEmpty() {
			comp.tracer().Debugf("mark: no bases for anchor %s", anchorName)
			continue
		}
		lookups = append(lookups, lk)
	}
	return lookups, nil
}
