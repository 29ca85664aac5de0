package fontshell

import (
	"fmt"
	"math"

	"seehuhn.de/go/postscript/funit"
	"seehuhn.de/go/sfnt/post"
)

// numMacGlyphNames is the count of standard Macintosh glyph names, which
// occupy the low name indices of a format 2.0 'post' table.
const numMacGlyphNames = 258

// encodePost writes a 'post' table with the glyph names of order. Standard
// Macintosh names are referenced by index, all other names are stored in
// the table. Underline metrics default to fractions of the em.
func encodePost(order []string, unitsPerEm uint16) ([]byte, error) {
	for _, name := range order {
		if len(name) > 255 {
			return nil, fmt.Errorf("post: glyph name too long: %q", name)
		}
	}
	if numMacGlyphNames+len(order) > math.MaxUint16+1 {
		return nil, fmt.Errorf("post: too many glyph names")
	}
	upm := float64(unitsPerEm)
	info := &post.Info{
		UnderlinePosition:  funit.Int16(-math.Round(0.075 * upm)),
		UnderlineThickness: funit.Int16(math.Round(0.05 * upm)),
		Names:              order,
	}
	return info.Encode(), nil
}
