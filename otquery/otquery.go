/*
Package otquery answers questions about compiled font binaries: names,
metrics from 'head' and 'maxp', the character map, glyph names, and the
layout features a font carries.

Queries work on raw table data and do not need outlines, so they are suited
for the shell fonts produced by package fontshell.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otquery

import (
	"bytes"
	"fmt"

	"github.com/go-text/typesetting/font/opentype"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'ufotl.otquery'
func tracer() tracing.Trace {
	return tracing.Select("ufotl.otquery")
}

// Font is a parsed font binary. Tables are decoded on demand.
type Font struct {
	ld *opentype.Loader
}

// Parse parses a single-font SFNT binary. data must not change while the
// font is in use.
func Parse(data []byte) (*Font, error) {
	ld, err := opentype.NewLoader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}
	return &Font{ld: ld}, nil
}

// Tables returns the tags of all tables in the font directory.
func (otf *Font) Tables() []opentype.Tag {
	return otf.ld.Tables()
}

// HasTable is true if the font directory lists tag.
func (otf *Font) HasTable(tag opentype.Tag) bool {
	return otf.ld.HasTable(tag)
}

// table returns the raw data of a table, or nil.
func (otf *Font) table(tag string) []byte {
	if otf == nil {
		return nil
	}
	b, err := otf.ld.RawTable(opentype.MustNewTag(tag))
	if err != nil {
		tracer().Debugf("no table %s found in font", tag)
		return nil
	}
	return b
}
