/*
Package ufo reads the parts of a UFO font source needed for layout compilation.

A UFO (Unified Font Object) is a directory of XML property lists and one
GLIF document per glyph. Reader gives read-only access to the glyph name
set of the default layer, to raw GLIF documents by glyph name, and to the
font-level data a feature compiler needs: units per em, feature text,
groups, kerning and the font lib. Glyph documents are not interpreted
here; see package glif for that.

Reader does not validate the source beyond what is needed for reading these
items.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ufo

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"slices"

	"github.com/npillmayer/schuko/tracing"
	"howett.net/plist"
)

// tracer writes to trace with key 'ufotl.ufo'
func tracer() tracing.Trace {
	return tracing.Select("ufotl.ufo")
}

// ErrNoGlyph is returned when requesting a glyph not listed in the glyph set.
var ErrNoGlyph = errors.New("no such glyph")

// DefaultUnitsPerEm is assumed for sources without a unitsPerEm entry.
const DefaultUnitsPerEm = 1000

const (
	metaInfoFile  = "metainfo.plist"
	fontInfoFile  = "fontinfo.plist"
	groupsFile    = "groups.plist"
	kerningFile   = "kerning.plist"
	libFile       = "lib.plist"
	featuresFile  = "features.fea"
	glyphsDir     = "glyphs"
	contentsFile  = "contents.plist"
	defaultFamily = "Untitled"
	defaultStyle  = "Regular"
)

// Reader provides read-only access to a UFO source on disk.
type Reader struct {
	path          string
	formatVersion int
	contents      map[string]string // glyph name → GLIF file name
	info          map[string]any
	trace         tracing.Trace
}

// Option configures a Reader.
type Option func(*Reader)

// WithTrace directs diagnostics of the Reader to t instead of the package
// tracer.
func WithTrace(t tracing.Trace) Option {
	return func(r *Reader) {
		r.trace = t
	}
}

func (r *Reader) tracer() tracing.Trace {
	if r.trace != nil {
		return r.trace
	}
	return tracer()
}

// Open opens the UFO at path and reads its meta information, font info and
// the glyph contents table of the default layer.
func Open(path string, opts ...Option) (*Reader, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("UFO source %q is not a directory", path)
	}
	r := &Reader{path: path}
	for _, opt := range opts {
		opt(r)
	}
	meta := struct {
		Creator       string `plist:"creator"`
		FormatVersion int    `plist:"formatVersion"`
	}{}
	if err := r.readPlist(metaInfoFile, &meta); err != nil {
		return nil, err
	}
	r.formatVersion = meta.FormatVersion
	r.tracer().Debugf("UFO %s: format version %d, created by %q", path, meta.FormatVersion, meta.Creator)
	if err := r.readPlist(filepath.Join(glyphsDir, contentsFile), &r.contents); err != nil {
		return nil, err
	}
	if r.contents == nil {
		r.contents = map[string]string{}
	}
	if err := r.readOptionalPlist(fontInfoFile, &r.info); err != nil {
		return nil, err
	}
	return r, nil
}

// Path returns the path the Reader has been opened with.
func (r *Reader) Path() string {
	return r.path
}

// FormatVersion returns the UFO format version from metainfo.plist.
func (r *Reader) FormatVersion() int {
	return r.formatVersion
}

// GlyphNames returns the names of all glyphs of the default layer, sorted.
func (r *Reader) GlyphNames() []string {
	names := make([]string, 0, len(r.contents))
	for name := range r.contents {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// HasGlyph checks if the default layer contains a glyph.
func (r *Reader) HasGlyph(name string) bool {
	_, ok := r.contents[name]
	return ok
}

// GLIF returns the raw GLIF document of a glyph.
func (r *Reader) GLIF(name string) ([]byte, error) {
	file, ok := r.contents[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoGlyph, name)
	}
	return os.ReadFile(filepath.Join(r.path, glyphsDir, file))
}

// UnitsPerEm returns the unitsPerEm value of fontinfo.plist, or
// DefaultUnitsPerEm if the source does not define one.
func (r *Reader) UnitsPerEm() (float64, error) {
	v, ok := r.info["unitsPerEm"]
	if !ok {
		r.tracer().Infof("UFO %s has no unitsPerEm, assuming %d", r.path, DefaultUnitsPerEm)
		return DefaultUnitsPerEm, nil
	}
	upem, ok := toFloat(v)
	if !ok || upem <= 0 {
		return 0, fmt.Errorf("UFO %s: invalid unitsPerEm %v", r.path, v)
	}
	return upem, nil
}

// FamilyName returns the family name of the font info, or "Untitled".
func (r *Reader) FamilyName() string {
	if s, ok := r.info["familyName"].(string); ok && s != "" {
		return s
	}
	return defaultFamily
}

// StyleName returns the style name of the font info, or "Regular".
func (r *Reader) StyleName() string {
	if s, ok := r.info["styleName"].(string); ok && s != "" {
		return s
	}
	return defaultStyle
}

// Features returns the contents of features.fea, or "" if there is none.
func (r *Reader) Features() (string, error) {
	data, err := os.ReadFile(filepath.Join(r.path, featuresFile))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	return string(data), err
}

// Groups returns the groups of groups.plist (group name → glyph names).
func (r *Reader) Groups() (map[string][]string, error) {
	groups := map[string][]string{}
	err := r.readOptionalPlist(groupsFile, &groups)
	return groups, err
}

// Kerning returns the kerning of kerning.plist as first → second → value,
// where first and second are glyph or group names.
func (r *Reader) Kerning() (map[string]map[string]float64, error) {
	raw := map[string]map[string]any{}
	if err := r.readOptionalPlist(kerningFile, &raw); err != nil {
		return nil, err
	}
	kerning := make(map[string]map[string]float64, len(raw))
	for first, seconds := range raw {
		row := make(map[string]float64, len(seconds))
		for second, v := range seconds {
			value, ok := toFloat(v)
			if !ok {
				return nil, fmt.Errorf("UFO %s: invalid kerning value for (%s, %s): %v",
					r.path, first, second, v)
			}
			row[second] = value
		}
		kerning[first] = row
	}
	return kerning, nil
}

// Lib returns the font lib of lib.plist.
func (r *Reader) Lib() (map[string]any, error) {
	lib := map[string]any{}
	err := r.readOptionalPlist(libFile, &lib)
	return lib, err
}

// --- Helpers ---------------------------------------------------------------

func (r *Reader) readPlist(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(r.path, name))
	if err != nil {
		return err
	}
	if _, err = plist.Unmarshal(data, v); err != nil {
		return fmt.Errorf("UFO %s: cannot read %s: %w", r.path, name, err)
	}
	return nil
}

func (r *Reader) readOptionalPlist(name string, v any) error {
	err := r.readPlist(name, v)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// toFloat converts a plist number (integer or real) to float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case uint64:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}
