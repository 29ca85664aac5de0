/*
Command ufocli compiles the OpenType layout of UFO font sources into minimal
font binaries.

Usage:

	ufocli [flags] compile <source.ufo> <font.ttf>
	ufocli [flags] batch <source.ufo> ...
	ufocli [flags] serve
	ufocli [flags] repl

'serve' answers compile requests read from stdin, one per line, as pairs of
shell-quoted paths. An empty line ends the session. 'repl' does the same
interactively.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/logrusadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/npillmayer/ufotl"
	"github.com/pterm/pterm"
)

// tracer traces with key 'ufotl'
func tracer() tracing.Trace {
	return tracing.Select("ufotl")
}

// tracing keys of the pipeline, all set to the level given by flag -trace
var traceKeys = []string{
	"ufotl", "ufotl.glif", "ufotl.ufo", "ufotl.charmap", "ufotl.minfont",
	"ufotl.fea", "ufotl.fontshell", "ufotl.otquery",
}

func main() {
	initDisplay()

	// command line flags
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	adapter := flag.String("adapter", "go", "Trace adapter [go|logrus]")
	workers := flag.Int("workers", 0, "Number of parallel compilations for 'batch'")
	upm := flag.Float64("upm", 0, "Override units per em of sources")
	flag.Usage = usage
	flag.Parse()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	tracing.RegisterTraceAdapter("logrus", logrusadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter": *adapter,
	}
	for _, key := range traceKeys {
		conf["trace."+key] = "Error" // will set the correct level later
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())
	level, ok := traceLevel(*tlevel)
	if !ok {
		tracer().Errorf("Invalid trace level: %s", *tlevel)
		os.Exit(5)
	}
	for _, key := range traceKeys {
		tracing.Select(key).SetTraceLevel(level)
	}
	tracer().Debugf("Trace level is %s", *tlevel)

	var opts []ufotl.Option
	if *upm != 0 {
		opts = append(opts, ufotl.WithUnitsPerEm(*upm))
	}
	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}
	code, ok := opMap[args[0]]
	if !ok {
		pterm.Error.Printf("Unknown command: %s\n", args[0])
		usage()
		os.Exit(2)
	}
	cmd := &Command{code: code, args: args[1:], workers: *workers, opts: opts}
	if err := commandFn[code](cmd); err != nil {
		tracer().Errorf("%v", err)
		os.Exit(3)
	}
}

func traceLevel(s string) (tracing.TraceLevel, bool) {
	switch s {
	case "Debug":
		return tracing.LevelDebug, true
	case "Info":
		return tracing.LevelInfo, true
	case "Error":
		return tracing.LevelError, true
	}
	return tracing.LevelError, false
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
	pterm.Success.Prefix = pterm.Prefix{
		Text:  " OK ",
		Style: pterm.NewStyle(pterm.BgGreen, pterm.FgBlack),
	}
}

// Command is a sub-command of the CLI together with its arguments.
type Command struct {
	code    int
	args    []string
	workers int
	opts    []ufotl.Option
}

const (
	COMPILE int = iota
	BATCH
	SERVE
	REPL
	HELP
)

var opMap = map[string]int{
	"compile": COMPILE,
	"batch":   BATCH,
	"serve":   SERVE,
	"repl":    REPL,
	"help":    HELP,
}

var commandFn = map[int]func(*Command) error{
	COMPILE: compileOp,
	BATCH:   batchOp,
	SERVE:   serveOp,
	REPL:    replOp,
	HELP:    helpOp,
}

func serveOp(cmd *Command) error {
	return ufotl.Serve(os.Stdin, os.Stdout, cmd.opts...)
}
