// Package driver parses many R files concurrently.
package driver

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/rfmt/r/parser"
)

var log = commonlog.GetLogger("rfmt.driver")

type Options struct {
	// Jobs bounds the number of files parsed at once. Zero means
	// GOMAXPROCS.
	Jobs int
	// Read loads a file. Defaults to os.ReadFile.
	Read func(path string) ([]byte, error)
	// Name maps a path to the file name recorded in positions.
	Name  func(path string) string
	Parse []parser.Option
}

// FileResult is the outcome for one file. Err is set when the file could
// not be read; syntax errors are reported through Result.Diagnostics.
type FileResult struct {
	Path    string
	Source  []byte
	Result  *parser.Result
	Err     error
	Elapsed time.Duration
}

func (r FileResult) Failed() bool {
	return r.Err != nil || (r.Result != nil && r.Result.HasErrors())
}

// ParseFiles parses files in parallel and returns one result per file in
// input order. Cancellation is checked before each file; a cancelled
// context aborts the run with its error.
func ParseFiles(ctx context.Context, files []string, opts Options) ([]FileResult, error) {
	results := make([]FileResult, len(files))
	if len(files) == 0 {
		return results, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	read := opts.Read
	if read == nil {
		read = os.ReadFile
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	log.Debugf("parsing %d files with %d jobs", len(files), jobs)

	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = parseFile(path, read, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func parseFile(path string, read func(string) ([]byte, error), opts Options) FileResult {
	start := time.Now()
	src, err := read(path)
	if err != nil {
		log.Warningf("%s: %s", path, err)
		return FileResult{Path: path, Err: err, Elapsed: time.Since(start)}
	}

	name := path
	if opts.Name != nil {
		name = opts.Name(path)
	}
	popts := append([]parser.Option{parser.WithFile(name)}, opts.Parse...)
	res := parser.Parse(src, popts...)

	elapsed := time.Since(start)
	log.Debugf("%s: %d diagnostics in %s", path, len(res.Diagnostics), elapsed)
	return FileResult{Path: path, Source: src, Result: res, Elapsed: elapsed}
}

type Summary struct {
	Files       int
	Failed      int
	ReadErrors  int
	Diagnostics int
}

func Summarize(results []FileResult) Summary {
	s := Summary{Files: len(results)}
	for _, r := range results {
		if r.Failed() {
			s.Failed++
		}
		if r.Err != nil {
			s.ReadErrors++
		}
		if r.Result != nil {
			s.Diagnostics += len(r.Result.Diagnostics)
		}
	}
	return s
}
