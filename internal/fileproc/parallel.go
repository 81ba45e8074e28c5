// Package fileproc provides concurrent file processing utilities.
package fileproc

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/sourcegraph/conc/pool"
)

// ProcessingError represents an error that occurred while processing a file.
type ProcessingError struct {
	Path string
	Err  error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e ProcessingError) Unwrap() error {
	return e.Err
}

// ProcessingErrors collects multiple file processing errors.
type ProcessingErrors struct {
	Errors []ProcessingError
	mu     sync.Mutex
}

// Add appends an error to the collection (thread-safe).
func (e *ProcessingErrors) Add(path string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, ProcessingError{Path: path, Err: err})
	e.mu.Unlock()
}

// HasErrors returns true if any errors were collected.
func (e *ProcessingErrors) HasErrors() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

// For returns the error recorded for path, if any.
func (e *ProcessingErrors) For(path string) (error, bool) {
	if e == nil {
		return nil, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, pe := range e.Errors {
		if pe.Path == path {
			return pe.Err, true
		}
	}
	return nil, false
}

// Error implements the error interface.
func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch len(e.Errors) {
	case 0:
		return "no errors"
	case 1:
		return e.Errors[0].Error()
	default:
		return fmt.Sprintf("%d files failed to process (first: %v)", len(e.Errors), e.Errors[0])
	}
}

// DefaultWorkers is the worker count used when none is given. Each worker
// mostly waits on a radon subprocess.
var DefaultWorkers = runtime.NumCPU()

// ProgressFunc is called after each file is processed.
type ProgressFunc func()

// ForEachFile calls fn for every file with at most workers running at once.
// Results keep the order of files; failed files are left out of the results
// and reported in the returned errors, which is nil when every file succeeded.
// Files not started before ctx is cancelled fail with the context error.
func ForEachFile[T any](ctx context.Context, files []string, workers int, fn func(context.Context, string) (T, error), onProgress ProgressFunc) ([]T, *ProcessingErrors) {
	if len(files) == 0 {
		return nil, nil
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}

	type indexed struct {
		i int
		v T
	}
	var (
		mu      sync.Mutex
		results = make([]indexed, 0, len(files))
		errs    = &ProcessingErrors{}
	)

	p := pool.New().WithMaxGoroutines(workers).WithContext(ctx)
	for i, path := range files {
		p.Go(func(ctx context.Context) error {
			if onProgress != nil {
				defer onProgress()
			}
			if err := ctx.Err(); err != nil {
				errs.Add(path, err)
				return nil
			}

			v, err := fn(ctx, path)
			if err != nil {
				errs.Add(path, err)
				return nil
			}

			mu.Lock()
			results = append(results, indexed{i: i, v: v})
			mu.Unlock()
			return nil
		})
	}
	_ = p.Wait()

	sort.Slice(results, func(a, b int) bool { return results[a].i < results[b].i })
	out := make([]T, len(results))
	for i, r := range results {
		out[i] = r.v
	}

	if !errs.HasErrors() {
		return out, nil
	}
	sort.Slice(errs.Errors, func(a, b int) bool { return errs.Errors[a].Path < errs.Errors[b].Path })
	return out, errs
}
