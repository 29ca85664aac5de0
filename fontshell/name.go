package fontshell

import (
	"strings"

	"seehuhn.de/go/sfnt/name"
)

// encodeName writes a 'name' table with the naming records derived from
// family and style. All records are Windows Unicode BMP, US English.
func encodeName(family, style string) []byte {
	ps := postScriptName(family + "-" + style)
	info := &name.Info{
		Windows: name.Tables{
			"en-US": &name.Table{
				Family:         family,
				Subfamily:      style,
				Identifier:     "1.000;NONE;" + ps,
				FullName:       family + " " + style,
				Version:        "Version 1.000",
				PostScriptName: ps,
			},
		},
	}
	return info.Encode(uint16(EncodingIDWindowsBMP))
}

// postScriptName strips a name to the printable ASCII subset allowed for
// PostScript names, at most 63 characters.
func postScriptName(name string) string {
	var sb strings.Builder
	for _, r := range name {
		if r < 33 || r > 126 || strings.ContainsRune("[](){}<>/%", r) {
			continue
		}
		sb.WriteRune(r)
		if sb.Len() == 63 {
			break
		}
	}
	return sb.String()
}
