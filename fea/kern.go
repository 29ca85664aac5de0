package fea

import (
	"fmt"
	"math"
	"strings"
)

// Prefixes of kerning group names.
const (
	Kern1Prefix = "public.kern1."
	Kern2Prefix = "public.kern2."
)

// kernLookup builds a pair adjustment lookup from the kerning data of the
// font. Group kerning is expanded to glyph pairs. Where pairs overlap, the
// more specific one wins: glyph-glyph over glyph-group over group-glyph over
// group-group. Pairs involving glyphs the font does not have are skipped.
// Returns nil if the font has no usable kerning.
func (comp *compilation) kernLookup() (*lookup, error) {
	kerning := comp.font.Kerning()
	if len(kerning) == 0 {
		return nil, nil
	}
	groups := comp.font.Groups()
	lk := newLookup(pairPos, IgnoreMarks)
	priority := make(map[[2]uint16]int)
	skipped := 0
	for _, first := range sortedKeys(kerning) {
		left, leftIsGroup, ok := comp.kerningSide(first, Kern1Prefix, groups)
		if !ok {
			skipped += len(kerning[first])
			continue
		}
		row := kerning[first]
		for _, second := range sortedKeys(row) {
			right, rightIsGroup, ok := comp.kerningSide(second, Kern2Prefix, groups)
			if !ok {
				skipped++
				continue
			}
			value, err := kernValue(row[second])
			if err != nil {
				return nil, fmt.Errorf("kerning (%s, %s): %w", first, second, err)
			}
			prio := 0
			if !leftIsGroup {
				prio += 2
			}
			if !rightIsGroup {
				prio++
			}
			vr := valueRecord{XAdvance: value}
			for _, l := range left {
				for _, r := range right {
					pair := [2]uint16{l, r}
					if have, exists := priority[pair]; exists && have >= prio {
						continue
					}
					priority[pair] = prio
					if lk.pairs[l] == nil {
						lk.pairs[l] = make(map[uint16]valueRecord)
					}
					lk.pairs[l][r] = vr
				}
			}
		}
	}
	if skipped > 0 {
		comp.tracer().Debugf("kerning: skipped %d pairs with unknown glyphs or groups", skipped)
	}
	if len(lk.pairs) == 0 {
		return nil, nil
	}
	comp.tracer().Debugf("kerning: %d glyph pairs", len(priority))
	return lk, nil
}

// kerningSide resolves one side of a kerning pair to glyph IDs.
func (comp *compilation) kerningSide(name, prefix string, groups map[string][]string) ([]uint16, bool, bool) {
	if !strings.HasPrefix(name, prefix) {
		gid, err := comp.gid(name, Pos{})
		if err != nil {
			return nil, false, false
		}
		return []uint16{gid}, false, true
	}
	members, ok := groups[name]
	if !ok {
		comp.tracer().Infof("kerning refers to undefined group %s", name)
		return nil, true, false
	}
	gids := make([]uint16, 0, len(members))
	for _, m := range members {
		if gid, err := comp.gid(m, Pos{}); err == nil {
			gids = append(gids, gid)
		}
	}
	return gids, true, len(gids) > 0
}

func kernValue(v float64) (int16, error) {
	r := math.Floor(v + 0.5)
	if r < math.MinInt16 || r > math.MaxInt16 {
		return 0, fmt.Errorf("value %g out of range", v)
	}
	return int16(r), nil
}
