package ufotl

import (
	"bytes"
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
)

// Result is the outcome of a captured compilation. It is a plain value and
// may be serialized (JSON, gob) to pass it between processes.
type Result struct {
	Path   string `json:"path"`
	Data   []byte `json:"data,omitempty"`   // font binary, nil on fatal errors
	Output string `json:"output,omitempty"` // trace output of the compilation
	Error  string `json:"error,omitempty"`  // error text, empty on success
}

// OK is true if compilation finished without any error.
func (r Result) OK() bool {
	return r.Error == ""
}

// CompileCaptured compiles the UFO source at path and captures all
// diagnostics into the result. It never panics: a panic during compilation
// is recovered and reported in Result.Error together with a stack trace.
//
// Feature compiler errors are reported in Result.Error while Result.Data
// still holds the partially compiled font.
func CompileCaptured(path string, opts ...Option) (res Result) {
	var buf bytes.Buffer
	trace := gologadapter.New()
	trace.SetOutput(&buf)
	trace.SetTraceLevel(tracing.LevelInfo)
	res.Path = path
	defer func() {
		if r := recover(); r != nil {
			res.Data = nil
			res.Output = buf.String()
			res.Error = fmt.Sprintf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	opts = append([]Option{WithTrace(trace)}, opts...)
	shell, err := CompileMinimumFont(path, opts...)
	var featErr *FeatureError
	if err != nil && !errors.As(err, &featErr) {
		trace.Errorf("%v", err)
		res.Output, res.Error = buf.String(), err.Error()
		return
	}
	if featErr != nil {
		trace.Errorf("%v", featErr)
		res.Error = featErr.Error()
	}
	data, err := shell.Bytes()
	if err != nil {
		trace.Errorf("%v", err)
		res.Output, res.Error = buf.String(), err.Error()
		return
	}
	res.Data, res.Output = data, buf.String()
	return
}

// CompileBatch compiles UFO sources in parallel, using at most workers
// goroutines (GOMAXPROCS if workers < 1). Results are in the order of paths.
func CompileBatch(paths []string, workers int, opts ...Option) []Result {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]Result, len(paths))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers && w < len(paths); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = CompileCaptured(paths[i], opts...)
			}
		}()
	}
	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	tracer().Debugf("batch of %d sources done, %d workers", len(paths), workers)
	return results
}
