/*
Package fontshell assembles minimal OpenType font binaries.

A shell font has a glyph order but no outlines. It carries just enough tables
to be a valid container for layout tables: 'head', 'maxp' (version 0.5),
'cmap', 'post' and 'name', plus whatever tables clients install with
SetTable, usually GSUB, GPOS and GDEF produced by a feature compiler.
Tables are encoded and assembled with the seehuhn.de/go/sfnt packages.

# Status

No 'hhea', 'hmtx', 'OS/2' or outline tables are written. Fonts produced by
this package are meant for inspection of compiled layout, not for rendering.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package fontshell

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"

	"github.com/npillmayer/schuko/tracing"
	"seehuhn.de/go/sfnt/header"
	"seehuhn.de/go/sfnt/maxp"
)

// tracer writes to trace with key 'ufotl.fontshell'
func tracer() tracing.Trace {
	return tracing.Select("ufotl.fontshell")
}

// Tags of the tables a shell font always has.
const (
	TagHead = "head"
	TagMaxp = "maxp"
	TagCmap = "cmap"
	TagPost = "post"
	TagName = "name"
)

// ScalerTrueType is the sfnt version written to the font header.
const ScalerTrueType = 0x00010000

// Limits for units per em, as required by table 'head'.
const (
	MinUnitsPerEm = 16
	MaxUnitsPerEm = 16384
)

// ErrNoGlyphOrder is returned by operations which need a glyph order before
// one has been set up.
var ErrNoGlyphOrder = errors.New("font has no glyph order")

// Font is a font shell under construction.
// It is not safe for concurrent use.
type Font struct {
	unitsPerEm uint16
	order      []string
	gids       map[string]uint16
	tables     map[string][]byte
}

// New creates an empty font shell. unitsPerEm is rounded to the nearest
// integer and must be in the range 16…16384.
func New(unitsPerEm float64) (*Font, error) {
	upm := math.Floor(unitsPerEm + 0.5)
	if math.IsNaN(upm) || upm < MinUnitsPerEm || upm > MaxUnitsPerEm {
		return nil, fmt.Errorf("units per em %g out of range %d…%d", unitsPerEm,
			MinUnitsPerEm, MaxUnitsPerEm)
	}
	f := &Font{
		unitsPerEm: uint16(upm),
		gids:       make(map[string]uint16),
		tables:     make(map[string][]byte),
	}
	f.tables[TagHead] = encodeHead(f.unitsPerEm)
	return f, nil
}

// UnitsPerEm returns the design grid size of the font.
func (f *Font) UnitsPerEm() uint16 {
	return f.unitsPerEm
}

// SetupGlyphOrder sets the glyph order of the font and installs table 'maxp'.
// The first glyph must be ".notdef", names must be unique.
func (f *Font) SetupGlyphOrder(names []string) error {
	if len(names) == 0 || names[0] != ".notdef" {
		return errors.New("glyph order must start with .notdef")
	}
	if len(names) > math.MaxUint16 {
		return fmt.Errorf("too many glyphs: %d", len(names))
	}
	gids := make(map[string]uint16, len(names))
	for i, name := range names {
		if _, dup := gids[name]; dup {
			return fmt.Errorf("duplicate glyph name %q in glyph order", name)
		}
		gids[name] = uint16(i)
	}
	f.order = slices.Clone(names)
	f.gids = gids
	f.tables[TagMaxp] = (&maxp.Info{NumGlyphs: len(names)}).Encode()
	tracer().Debugf("glyph order with %d glyphs", len(names))
	return nil
}

// GlyphOrder returns a copy of the glyph order.
func (f *Font) GlyphOrder() []string {
	return slices.Clone(f.order)
}

// GlyphID returns the index of a glyph in the glyph order.
func (f *Font) GlyphID(name string) (uint16, bool) {
	gid, ok := f.gids[name]
	return gid, ok
}

// SetupCharacterMap installs table 'cmap'. Every glyph referenced must be
// part of the glyph order.
func (f *Font) SetupCharacterMap(cmap map[rune]string) error {
	if f.order == nil {
		return ErrNoGlyphOrder
	}
	mapping := make(map[rune]uint16, len(cmap))
	for r, name := range cmap {
		gid, ok := f.gids[name]
		if !ok {
			return fmt.Errorf("character map: U+%04X maps to unknown glyph %q", r, name)
		}
		mapping[r] = gid
	}
	data, err := encodeCmap(mapping)
	if err != nil {
		return err
	}
	f.tables[TagCmap] = data
	return nil
}

// SetupPost installs table 'post' with glyph names.
func (f *Font) SetupPost() error {
	if f.order == nil {
		return ErrNoGlyphOrder
	}
	data, err := encodePost(f.order, f.unitsPerEm)
	if err != nil {
		return err
	}
	f.tables[TagPost] = data
	return nil
}

// SetupName installs table 'name' with the naming records derived from
// family and style.
func (f *Font) SetupName(family, style string) error {
	f.tables[TagName] = encodeName(family, style)
	return nil
}

// SetTable installs or replaces a table. tag must have 4 characters.
func (f *Font) SetTable(tag string, data []byte) {
	tracer().Debugf("installing table %s (%d bytes)", tag, len(data))
	f.tables[tag] = data
}

// Table returns the data of an installed table.
func (f *Font) Table(tag string) ([]byte, bool) {
	data, ok := f.tables[tag]
	return data, ok
}

// TableTags returns the tags of all installed tables in the order of the
// table directory.
func (f *Font) TableTags() []string {
	tags := make([]string, 0, len(f.tables))
	for tag := range f.tables {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}

// WriteTo writes the serialized font to w.
func (f *Font) WriteTo(w io.Writer) (int64, error) {
	if f.order == nil {
		return 0, ErrNoGlyphOrder
	}
	tables := make(map[string][]byte, len(f.tables))
	for tag, data := range f.tables {
		tables[tag] = data
	}
	tables[TagHead] = slices.Clone(f.tables[TagHead]) // gets the checksum adjustment
	return header.Write(w, ScalerTrueType, tables)
}

// Bytes serializes the font.
func (f *Font) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes the serialized font to a file.
func (f *Font) Save(path string) error {
	data, err := f.Bytes()
	if err != nil {
		return err
	}
	if err = os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	tracer().Infof("wrote %s (%d tables, %d bytes)", path, len(f.tables), len(data))
	return nil
}
