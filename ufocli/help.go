package main

import (
	"flag"
	"strings"

	"github.com/pterm/pterm"
)

func helpOp(cmd *Command) error {
	topic := ""
	if len(cmd.args) > 0 {
		topic = cmd.args[0]
	}
	help(topic)
	return nil
}

func usage() {
	pterm.Println("Usage: ufocli [flags] compile|batch|serve|repl|help [args]")
	flag.PrintDefaults()
}

func help(topic string) {
	tracer().Debugf("help %v", topic)
	switch strings.ToLower(topic) {
	case "compile":
		pterm.Info.Println("compile <source.ufo> <font.ttf>")
		pterm.Println(`
	Compiles the layout of a UFO source and writes a minimal font.
	The font contains glyph order, character map, glyph names and naming,
	plus GSUB, GPOS and GDEF as compiled from the source's features.
	Errors in the feature source are reported, and the tables compiled
	so far are written nevertheless.
	`)
	case "batch":
		pterm.Info.Println("batch <source.ufo> ...")
		pterm.Println(`
	Compiles several UFO sources in parallel (see flag -workers).
	Each font is written next to its source, with extension '.ttf'.
	Sources with errors are listed but not written.
	`)
	case "serve", "repl":
		pterm.Info.Println("serve / repl")
		pterm.Println(`
	Reads compile requests line by line. A request is a pair of paths,
	quoted as in a shell:
	+------------------+----------------+
	| "My Font.ufo"    | "My Font.ttf"  |
	+------------------+----------------+
	Each request is answered by its diagnostics and a marker line,
	either ---- SUCCESS ---- or ---- ERROR ----.
	An empty line ends the session.
	`)
	default:
		usage()
	}
}
