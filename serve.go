package ufotl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"strings"

	"github.com/google/shlex"
)

// Serve reads compile requests from in, one per line, and answers each with
// a marker line on out. A request consists of two shell-quoted tokens, the
// path of a UFO source and the path of the font to write. An empty line or
// end of input ends the session.
func Serve(in io.Reader, out io.Writer, opts ...Option) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if !ServeRequest(scanner.Text(), out, opts...) {
			return nil
		}
	}
	return scanner.Err()
}

// ServeRequest handles a single request line of Serve. It returns false
// for an empty line, which ends the session.
//
// On success the font is written and SuccessMarker is printed. A feature
// compilation error is printed, but still counts as success: the partially
// compiled font is written. Any other failure prints the error followed by
// ErrorMarker. A panic while handling the request is reported like a
// failure and the session continues.
func ServeRequest(line string, out io.Writer, opts ...Option) (more bool) {
	if strings.TrimSpace(line) == "" {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(out, "panic: %v\n%s\n", r, debug.Stack())
			fmt.Fprintln(out, ErrorMarker)
			more = true
		}
	}()
	if err := serveRequest(line, out, opts); err != nil {
		fmt.Fprintln(out, err)
		fmt.Fprintln(out, ErrorMarker)
		return true
	}
	fmt.Fprintln(out, SuccessMarker)
	return true
}

func serveRequest(line string, out io.Writer, opts []Option) error {
	args, err := shlex.Split(line)
	if err != nil {
		return fmt.Errorf("malformed request: %w", err)
	}
	if len(args) != 2 {
		return fmt.Errorf("malformed request: expected 2 paths, got %d", len(args))
	}
	src, dst := args[0], args[1]
	shell, err := CompileMinimumFont(src, opts...)
	var featErr *FeatureError
	if errors.As(err, &featErr) {
		fmt.Fprintln(out, featErr)
	} else if err != nil {
		return err
	}
	tracer().Debugf("writing %s", dst)
	return shell.Save(dst)
}
