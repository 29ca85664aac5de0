package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/ufotl"
	"github.com/npillmayer/ufotl/otquery"
	"github.com/pterm/pterm"
)

func compileOp(cmd *Command) error {
	if len(cmd.args) != 2 {
		return fmt.Errorf("compile expects 2 paths, got %d", len(cmd.args))
	}
	src, dst := cmd.args[0], cmd.args[1]
	spinner, _ := pterm.DefaultSpinner.Start("Compiling " + filepath.Base(src))
	shell, err := ufotl.CompileMinimumFont(src, cmd.opts...)
	var featErr *ufotl.FeatureError
	if err != nil && !errors.As(err, &featErr) {
		spinner.Fail(err.Error())
		return err
	}
	if featErr != nil {
		spinner.Warning(featErr.Error())
	} else {
		spinner.Success("Compiled " + filepath.Base(src))
	}
	data, err := shell.Bytes()
	if err != nil {
		return err
	}
	if err = os.WriteFile(dst, data, 0o644); err != nil {
		return err
	}
	pterm.Info.Printf("Wrote %s (%d bytes)\n", dst, len(data))
	return printSummary(data)
}

// printSummary prints the tables and layout features of a compiled font.
func printSummary(data []byte) error {
	otf, err := otquery.Parse(data)
	if err != nil {
		return err
	}
	family, style := otquery.FamilyName(otf)
	n, _ := otquery.NumGlyphs(otf)
	pterm.Printf("%s %s: %d glyphs, %d code points\n", family, style, n, codePoints(otf))
	table := [][]string{
		{"Table", "Lookups", "Features"},
	}
	for _, tag := range otquery.LayoutTables(otf) {
		lookups, features := "", ""
		if tag == "GSUB" || tag == "GPOS" {
			lookups = fmt.Sprintf("%d", otquery.LookupCount(otf, tag))
			features = strings.Join(otquery.Features(otf, tag), " ")
		}
		table = append(table, []string{tag, lookups, features})
	}
	if len(table) == 1 {
		pterm.Info.Println("Font has no layout tables")
		return nil
	}
	return pterm.DefaultTable.WithHasHeader().WithData(table).Render()
}

func codePoints(otf *otquery.Font) int {
	cmap, _ := otquery.CharacterMap(otf)
	return len(cmap)
}

func batchOp(cmd *Command) error {
	if len(cmd.args) == 0 {
		return errors.New("batch expects at least one UFO source")
	}
	results := ufotl.CompileBatch(cmd.args, cmd.workers, cmd.opts...)
	table := [][]string{
		{"Source", "Status", "Size", "Message"},
	}
	failed := 0
	for _, res := range results {
		status := "ok"
		switch {
		case res.Data == nil:
			status, failed = "failed", failed+1
		case !res.OK():
			status, failed = "partial", failed+1
		default:
			dst := strings.TrimSuffix(res.Path, filepath.Ext(res.Path)) + ".ttf"
			if err := os.WriteFile(dst, res.Data, 0o644); err != nil {
				status, res.Error = "failed", err.Error()
				failed++
			}
		}
		msg, _, _ := strings.Cut(res.Error, "\n")
		table = append(table, []string{filepath.Base(res.Path), status,
			fmt.Sprintf("%d", len(res.Data)), msg})
		if res.Output != "" {
			tracer().Debugf("%s:\n%s", res.Path, res.Output)
		}
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(table).Render(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d sources did not compile cleanly", failed, len(results))
	}
	return nil
}

func replOp(cmd *Command) error {
	repl, err := readline.New("ufo > ")
	if err != nil {
		return err
	}
	defer repl.Close()
	pterm.Info.Println("Welcome to UFO layout compiler")
	pterm.Info.Println("Enter <source.ufo> <font.ttf>, quit with <ctrl>D or an empty line")
	for {
		line, err := repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if !ufotl.ServeRequest(line, os.Stdout, cmd.opts...) {
			break
		}
	}
	pterm.Info.Println("Good bye!")
	return nil
}
