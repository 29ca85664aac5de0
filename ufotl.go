/*
Package ufotl compiles the OpenType layout of UFO font sources into minimal
font binaries.

The pipeline reads a UFO source, builds the character map and anchor table
from the glyph documents, creates a font shell with glyph order, 'cmap',
'post' and 'name', and finally runs a feature compiler against a minimal
font adapter. The result is a font which has layout tables but no outlines,
suitable for inspecting and testing compiled features quickly.

Compilation of a source is single-threaded and shares no state with other
compilations. CompileBatch runs independent compilations in parallel.

# Status

Work in progress. Feature compilation supports a subset of the feature file
syntax only; see package fea.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ufotl

import (
	"fmt"
	"path/filepath"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/ufotl/charmap"
	"github.com/npillmayer/ufotl/fea"
	"github.com/npillmayer/ufotl/fontshell"
	"github.com/npillmayer/ufotl/minfont"
	"github.com/npillmayer/ufotl/ufo"
)

// tracer writes to trace with key 'ufotl'
func tracer() tracing.Trace {
	return tracing.Select("ufotl")
}

// Markers written by Serve after each request.
const (
	SuccessMarker = "---- SUCCESS ----"
	ErrorMarker   = "---- ERROR ----"
)

var _ fea.Target = (*fontshell.Font)(nil)

// FeatureError is returned by CompileMinimumFont if the feature compiler
// failed. The font shell returned alongside holds the tables completed
// before the failure.
type FeatureError struct {
	Path string // font source
	Err  error  // error of the feature compiler
}

func (e *FeatureError) Error() string {
	return fmt.Sprintf("compiling features of %s: %v", e.Path, e.Err)
}

func (e *FeatureError) Unwrap() error {
	return e.Err
}

// Option configures a compilation.
type Option func(*config)

type config struct {
	trace      tracing.Trace
	compiler   fea.Compiler
	unitsPerEm float64
}

// WithTrace directs the diagnostics of all stages of a compilation to t:
// reading the source, building the character map, and feature compilation.
func WithTrace(t tracing.Trace) Option {
	return func(c *config) {
		c.trace = t
	}
}

// WithCompiler replaces the default feature compiler.
func WithCompiler(comp fea.Compiler) Option {
	return func(c *config) {
		c.compiler = comp
	}
}

// WithUnitsPerEm overrides the units per em of the font source.
func WithUnitsPerEm(upm float64) Option {
	return func(c *config) {
		c.unitsPerEm = upm
	}
}

func newConfig(opts []Option) *config {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.trace == nil {
		cfg.trace = tracer()
	}
	if cfg.compiler == nil {
		cfg.compiler = fea.NewCompiler(fea.WithTrace(cfg.trace))
	}
	return cfg
}

// CompileMinimumFont compiles the UFO source at path into a font shell.
//
// If the feature compiler fails, the error is a *FeatureError and the font
// shell is returned nevertheless. For any other error the font is nil.
func CompileMinimumFont(path string, opts ...Option) (*fontshell.Font, error) {
	cfg := newConfig(opts)
	src, err := ufo.Open(path, ufo.WithTrace(cfg.trace))
	if err != nil {
		return nil, err
	}
	names := src.GlyphNames()
	order := charmap.GlyphOrder(names)
	mapping, err := charmap.Build(names, src, filepath.Base(path), charmap.WithTrace(cfg.trace))
	if err != nil {
		return nil, fmt.Errorf("UFO %s: %w", path, err)
	}
	upm := cfg.unitsPerEm
	if upm == 0 {
		if upm, err = src.UnitsPerEm(); err != nil {
			return nil, err
		}
	}
	shell, err := fontshell.New(upm)
	if err != nil {
		return nil, fmt.Errorf("UFO %s: %w", path, err)
	}
	if err = shell.SetupGlyphOrder(order); err != nil {
		return nil, err
	}
	if err = shell.SetupCharacterMap(mapping.CMap); err != nil {
		return nil, err
	}
	if err = shell.SetupPost(); err != nil {
		return nil, err
	}
	if err = shell.SetupName(src.FamilyName(), src.StyleName()); err != nil {
		return nil, err
	}
	adapter, err := minfont.New(src, order, mapping, minfont.WithTrace(cfg.trace))
	if err != nil {
		return nil, err
	}
	cfg.trace.Debugf("compiling features of %s: %d glyphs, %d code points",
		path, len(order), len(mapping.CMap))
	if err = cfg.compiler.Compile(adapter, shell); err != nil {
		return shell, &FeatureError{Path: path, Err: err}
	}
	return shell, nil
}
