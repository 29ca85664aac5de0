package fea

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"seehuhn.de/go/postscript/funit"
	"seehuhn.de/go/sfnt/glyph"
	"seehuhn.de/go/sfnt/opentype/anchor"
	"seehuhn.de/go/sfnt/opentype/classdef"
	"seehuhn.de/go/sfnt/opentype/coverage"
	"seehuhn.de/go/sfnt/opentype/gdef"
	"seehuhn.de/go/sfnt/opentype/gtab"
	"seehuhn.de/go/sfnt/opentype/markarray"
)

// lookupType returns the GSUB or GPOS lookup type of a lookup.
func (lk *lookup) lookupType() uint16 {
	switch lk.kind {
	case singleSubst:
		return 1
	case ligatureSubst:
		return 4
	case pairPos:
		return 2
	case markToBase:
		return 4
	}
	panic(fmt.Sprintf("lookup of unknown kind %d", lk.kind))
}

// subtable converts a lookup to its single subtable.
func (lk *lookup) subtable() gtab.Subtable {
	switch lk.kind {
	case singleSubst:
		return singleSubtable(lk.single)
	case ligatureSubst:
		return ligatureSubtable(lk.ligatures)
	case pairPos:
		return pairSubtable(lk.pairs)
	case markToBase:
		return markBaseSubtable(lk.marks, lk.bases)
	}
	panic(fmt.Sprintf("lookup of unknown kind %d", lk.kind))
}

// singleSubtable uses format 1 if all substitutions share the same gid
// delta, format 2 otherwise.
func singleSubtable(single map[uint16]uint16) gtab.Subtable {
	gids := sortedKeys(single)
	cov := make(coverage.Set, len(gids))
	delta, constant := uint16(0), true
	for i, gid := range gids {
		cov[glyph.ID(gid)] = true
		d := single[gid] - gid // modulo 65536
		if i == 0 {
			delta = d
		} else if d != delta {
			constant = false
		}
	}
	if constant {
		return &gtab.Gsub1_1{Cov: cov, Delta: glyph.ID(delta)}
	}
	sub := &gtab.Gsub1_2{Cov: cov.ToTable(), SubstituteGlyphIDs: make([]glyph.ID, len(gids))}
	for _, gid := range gids {
		sub.SubstituteGlyphIDs[sub.Cov[glyph.ID(gid)]] = glyph.ID(single[gid])
	}
	return sub
}

// ligatureSubtable orders the ligatures of each set longer ones first.
func ligatureSubtable(ligatures map[uint16][]ligature) gtab.Subtable {
	firsts := sortedKeys(ligatures)
	cov := make(coverage.Set, len(firsts))
	for _, first := range firsts {
		cov[glyph.ID(first)] = true
	}
	sub := &gtab.Gsub4_1{Cov: cov.ToTable(), Repl: make([][]gtab.Ligature, len(firsts))}
	for _, first := range firsts {
		ligs := slices.Clone(ligatures[first])
		sort.SliceStable(ligs, func(i, j int) bool {
			return len(ligs[i].components) > len(ligs[j].components)
		})
		set := make([]gtab.Ligature, len(ligs))
		for i, lig := range ligs {
			set[i] = gtab.Ligature{In: glyphIDs(lig.components[1:]), Out: glyph.ID(lig.glyph)}
		}
		sub.Repl[sub.Cov[glyph.ID(first)]] = set
	}
	return sub
}

// pairSubtable gives only the first glyph of a pair a value record.
func pairSubtable(pairs map[uint16]map[uint16]valueRecord) gtab.Subtable {
	sub := make(gtab.Gpos2_1)
	for first, row := range pairs {
		for second, vr := range row {
			pair := glyph.Pair{Left: glyph.ID(first), Right: glyph.ID(second)}
			sub[pair] = &gtab.PairAdjust{First: &gtab.GposValueRecord{
				XPlacement: funit.Int16(vr.XPlacement),
				YPlacement: funit.Int16(vr.YPlacement),
				XAdvance:   funit.Int16(vr.XAdvance),
				YAdvance:   funit.Int16(vr.YAdvance),
			}}
		}
	}
	return sub
}

// markBaseSubtable puts all marks into a single mark class.
func markBaseSubtable(marks, bases map[uint16]anchorPoint) gtab.Subtable {
	markCov, baseCov := make(coverage.Set, len(marks)), make(coverage.Set, len(bases))
	for gid := range marks {
		markCov[glyph.ID(gid)] = true
	}
	for gid := range bases {
		baseCov[glyph.ID(gid)] = true
	}
	sub := &gtab.Gpos4_1{
		MarkCov:   markCov.ToTable(),
		BaseCov:   baseCov.ToTable(),
		MarkArray: make([]markarray.Record, len(marks)),
		BaseArray: make([][]anchor.Table, len(bases)),
	}
	for gid, p := range marks {
		sub.MarkArray[sub.MarkCov[glyph.ID(gid)]] = markarray.Record{Table: p.table()}
	}
	for gid, p := range bases {
		sub.BaseArray[sub.BaseCov[glyph.ID(gid)]] = []anchor.Table{p.table()}
	}
	return sub
}

func (p anchorPoint) table() anchor.Table {
	return anchor.Table{X: funit.Int16(p.x), Y: funit.Int16(p.y)}
}

// langSysTag maps a language system to the tag under which the layout
// table's script list keeps it.
func langSysTag(ls langSys) (language.Tag, error) {
	s := "und-x-" + strings.ToLower(ls.script)
	if lang := strings.TrimSpace(ls.lang); lang != "dflt" {
		s += "-" + strings.ToLower(lang)
	}
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und, fmt.Errorf("languagesystem %s %s: %w", ls.script, ls.lang, err)
	}
	return tag, nil
}

// layoutInfo assembles a GSUB or GPOS table. Features are sorted by tag and
// registered for every language system.
func layoutInfo(t *layoutTable, langSystems []langSys) (*gtab.Info, error) {
	features := slices.Clone(t.features)
	sort.SliceStable(features, func(i, j int) bool {
		return features[i].tag < features[j].tag
	})
	info := &gtab.Info{ScriptList: make(gtab.ScriptListInfo)}
	all := make([]gtab.FeatureIndex, len(features))
	for i, f := range features {
		all[i] = gtab.FeatureIndex(i)
		feat := &gtab.Feature{Tag: f.tag}
		for _, inx := range f.lookups {
			feat.Lookups = append(feat.Lookups, gtab.LookupIndex(inx))
		}
		info.FeatureList = append(info.FeatureList, feat)
	}
	for _, ls := range langSystems {
		tag, err := langSysTag(ls)
		if err != nil {
			return nil, err
		}
		info.ScriptList[tag] = &gtab.Features{Required: 0xFFFF, Optional: all}
	}
	for _, lk := range t.lookups {
		info.LookupList = append(info.LookupList, &gtab.LookupTable{
			Meta: &gtab.LookupMetaInfo{
				LookupType:  lk.lookupType(),
				LookupFlags: gtab.LookupFlags(lk.flag),
			},
			Subtables: []gtab.Subtable{lk.subtable()},
		})
	}
	return info, nil
}

// encodeLayout encodes a version 1.0 GSUB or GPOS table.
func encodeLayout(t *layoutTable, langSystems []langSys) (data []byte, err error) {
	info, err := layoutInfo(t, langSystems)
	if err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			data, err = nil, fmt.Errorf("cannot encode layout table: %v", r)
		}
	}()
	return info.Encode(), nil
}

// encodeGDEF encodes a version 1.0 GDEF table with glyph classes only.
func encodeGDEF(classes map[uint16]uint16) ([]byte, error) {
	table := &gdef.Table{GlyphClass: make(classdef.Table, len(classes))}
	for gid, class := range classes {
		table.GlyphClass[glyph.ID(gid)] = class
	}
	return table.Encode(), nil
}

func glyphIDs(gids []uint16) []glyph.ID {
	ids := make([]glyph.ID, len(gids))
	for i, gid := range gids {
		ids[i] = glyph.ID(gid)
	}
	return ids
}

func sortedKeys[K ~uint16 | ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
