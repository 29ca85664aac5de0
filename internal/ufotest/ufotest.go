// Package ufotest writes small UFO font sources for tests.
package ufotest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"howett.net/plist"
)

// Anchor is an anchor declaration. Empty fields are omitted from the GLIF.
type Anchor struct {
	Name, X, Y string
}

// Glyph describes one GLIF document.
type Glyph struct {
	Name     string
	Unicodes []string // hex values, written verbatim
	Anchors  []Anchor
	Comment  string // if non-empty, emitted as an XML comment
	Raw      string // if non-empty, used as the complete GLIF document
}

// Font describes a UFO source.
type Font struct {
	UnitsPerEm any // nil: no unitsPerEm entry
	FamilyName string
	StyleName  string
	Glyphs     []Glyph
	Features   string
	Groups     map[string][]string
	Kerning    map[string]map[string]float64
	Lib        map[string]any
}

// Write creates the UFO in a temporary directory and returns its path.
func Write(t testing.TB, f Font) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Test.ufo")
	if err := WriteTo(path, f); err != nil {
		t.Fatalf("cannot write test UFO: %v", err)
	}
	return path
}

// WriteTo creates the UFO at path.
func WriteTo(path string, f Font) error {
	if err := os.MkdirAll(filepath.Join(path, "glyphs"), 0o755); err != nil {
		return err
	}
	meta := map[string]any{"creator": "org.npillmayer.ufotest", "formatVersion": 3}
	if err := writePlist(filepath.Join(path, "metainfo.plist"), meta); err != nil {
		return err
	}
	info := map[string]any{}
	if f.UnitsPerEm != nil {
		info["unitsPerEm"] = f.UnitsPerEm
	}
	if f.FamilyName != "" {
		info["familyName"] = f.FamilyName
	}
	if f.StyleName != "" {
		info["styleName"] = f.StyleName
	}
	if err := writePlist(filepath.Join(path, "fontinfo.plist"), info); err != nil {
		return err
	}
	contents := map[string]string{}
	for i, g := range f.Glyphs {
		file := fmt.Sprintf("g%04d.glif", i)
		contents[g.Name] = file
		doc := g.Raw
		if doc == "" {
			doc = GLIF(g)
		}
		if err := os.WriteFile(filepath.Join(path, "glyphs", file), []byte(doc), 0o644); err != nil {
			return err
		}
	}
	if err := writePlist(filepath.Join(path, "glyphs", "contents.plist"), contents); err != nil {
		return err
	}
	if f.Features != "" {
		if err := os.WriteFile(filepath.Join(path, "features.fea"), []byte(f.Features), 0o644); err != nil {
			return err
		}
	}
	if f.Groups != nil {
		if err := writePlist(filepath.Join(path, "groups.plist"), f.Groups); err != nil {
			return err
		}
	}
	if f.Kerning != nil {
		if err := writePlist(filepath.Join(path, "kerning.plist"), f.Kerning); err != nil {
			return err
		}
	}
	if f.Lib != nil {
		if err := writePlist(filepath.Join(path, "lib.plist"), f.Lib); err != nil {
			return err
		}
	}
	return nil
}

// GLIF renders a glyph as a format 2 GLIF document.
func GLIF(g Glyph) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&sb, "<glyph name=%q format=\"2\">\n", g.Name)
	sb.WriteString("  <advance width=\"500\"/>\n")
	if g.Comment != "" {
		fmt.Fprintf(&sb, "  <!-- %s -->\n", g.Comment)
	}
	for _, u := range g.Unicodes {
		fmt.Fprintf(&sb, "  <unicode hex=%q/>\n", u)
	}
	for _, a := range g.Anchors {
		sb.WriteString("  <anchor")
		if a.Name != "" {
			fmt.Fprintf(&sb, " name=%q", a.Name)
		}
		if a.X != "" {
			fmt.Fprintf(&sb, " x=%q", a.X)
		}
		if a.Y != "" {
			fmt.Fprintf(&sb, " y=%q", a.Y)
		}
		sb.WriteString("/>\n")
	}
	sb.WriteString("</glyph>\n")
	return sb.String()
}

func writePlist(path string, v any) error {
	data, err := plist.MarshalIndent(v, plist.XMLFormat, "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
