package otquery

import (
	"encoding/binary"
	"fmt"
	"iter"

	"golang.org/x/image/font/sfnt"
	"golang.org/x/text/encoding/unicode"
)

const (
	nameHeaderSize = 6
	nameRecordSize = 12
)

// NamesRange yields decoded `(nameID, value)` pairs from a font's `name`
// table.
//
// Only Unicode BMP and Windows BMP records are yielded; malformed or
// out-of-bounds records are skipped.
func NamesRange(otf *Font) iter.Seq2[sfnt.NameID, string] {
	b := checkNameTableSafe(otf.table("name"))
	return func(yield func(sfnt.NameID, string) bool) {
		if b == nil {
			return
		}
		count := int(binary.BigEndian.Uint16(b[2:4]))
		storage := int(binary.BigEndian.Uint16(b[4:6]))
		for i := range count {
			rec := b[nameHeaderSize+i*nameRecordSize:]
			platform := binary.BigEndian.Uint16(rec[0:2])
			encoding := binary.BigEndian.Uint16(rec[2:4])
			if !(platform == 0 && encoding == 3) && !(platform == 3 && encoding == 1) {
				continue
			}
			start := storage + int(binary.BigEndian.Uint16(rec[10:12]))
			end := start + int(binary.BigEndian.Uint16(rec[8:10]))
			if end > len(b) {
				continue
			}
			value, err := decodeNameUTF16(b[start:end])
			if err != nil || value == "" {
				continue
			}
			if !yield(sfnt.NameID(binary.BigEndian.Uint16(rec[6:8])), value) {
				return
			}
		}
	}
}

// FamilyName extracts family and subfamily names from a font's `name` table.
func FamilyName(otf *Font) (family, subfamily string) {
	for nameID, value := range NamesRange(otf) {
		switch nameID {
		case sfnt.NameIDFamily:
			family = value
		case sfnt.NameIDSubfamily:
			subfamily = value
		}
	}
	return
}

// checkNameTableSafe returns b if header and records are in bounds.
func checkNameTableSafe(b []byte) []byte {
	if len(b) < nameHeaderSize {
		return nil
	}
	count := int(binary.BigEndian.Uint16(b[2:4]))
	if storage := int(binary.BigEndian.Uint16(b[4:6])); storage > len(b) {
		tracer().Debugf("name table invalid string offset: %d", storage)
		return nil
	}
	if nameHeaderSize+count*nameRecordSize > len(b) {
		tracer().Debugf("name table record section out of bounds: count=%d", count)
		return nil
	}
	return b
}

func decodeNameUTF16(str []byte) (string, error) {
	dec := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	s, err := dec.Bytes(str)
	if err != nil {
		return "", fmt.Errorf("decoding UTF-16 error: %v", err)
	}
	return string(s), nil
}
