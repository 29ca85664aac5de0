package fontshell

import (
	"fmt"

	"seehuhn.de/go/sfnt/cmap"
	"seehuhn.de/go/sfnt/glyph"
)

// Platform and encoding IDs of 'cmap' and 'name' records.
type PlatformID uint16

const (
	PlatformIDUnicode PlatformID = 0
	PlatformIDWindows PlatformID = 3
)

type EncodingID uint16

const (
	EncodingIDUnicodeBMP  EncodingID = 3 // with platform Unicode
	EncodingIDUnicodeFull EncodingID = 4 // with platform Unicode
	EncodingIDWindowsBMP  EncodingID = 1
	EncodingIDWindowsFull EncodingID = 10
)

func cmapKey(p PlatformID, e EncodingID) cmap.Key {
	return cmap.Key{PlatformID: uint16(p), EncodingID: uint16(e)}
}

// encodeCmap writes a 'cmap' table with a format 4 subtable for the BMP and,
// if needed, a format 12 subtable for all code points.
func encodeCmap(mapping map[rune]uint16) (data []byte, err error) {
	bmp, full := make(cmap.Format4), make(cmap.Format12)
	supplementary := false
	for cp, gid := range mapping {
		if cp < 0 || cp > 0x10FFFF {
			return nil, fmt.Errorf("cmap: invalid code point %d", cp)
		}
		if cp > 0xFFFF {
			supplementary = true
		} else {
			bmp[uint16(cp)] = glyph.ID(gid)
		}
		full[uint32(cp)] = glyph.ID(gid)
	}
	defer func() {
		if r := recover(); r != nil {
			data, err = nil, fmt.Errorf("cmap: %v", r)
		}
	}()
	format4 := bmp.Encode(0)
	table := cmap.Table{
		cmapKey(PlatformIDUnicode, EncodingIDUnicodeBMP): format4,
		cmapKey(PlatformIDWindows, EncodingIDWindowsBMP): format4,
	}
	if supplementary {
		format12 := full.Encode(0)
		table[cmapKey(PlatformIDUnicode, EncodingIDUnicodeFull)] = format12
		table[cmapKey(PlatformIDWindows, EncodingIDWindowsFull)] = format12
	}
	tracer().Debugf("cmap: %d code points, %d outside the BMP", len(mapping), len(full)-len(bmp))
	return table.Encode(), nil
}
