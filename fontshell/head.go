package fontshell

import "seehuhn.de/go/sfnt/head"

// encodeHead writes a version 1.0 'head' table. Timestamps are left at the
// epoch so that output is reproducible. The bounding box is empty as the
// font has no outlines.
func encodeHead(unitsPerEm uint16) []byte {
	info := &head.Info{
		FontRevision:  0x00010000,
		HasYBaseAt0:   true,
		HasXBaseAt0:   true,
		UnitsPerEm:    unitsPerEm,
		LowestRecPPEM: 3,
	}
	return info.Encode()
}
