package fileproc

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

func TestForEachFile(t *testing.T) {
	files := []string{"/src/a.py", "/src/b.py", "/src/c.py", "/src/d.py"}

	var ticks atomic.Int32
	results, errs := ForEachFile(context.Background(), files, 2, func(_ context.Context, path string) (string, error) {
		return filepath.Base(path), nil
	}, func() { ticks.Add(1) })

	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := []string{"a.py", "b.py", "c.py", "d.py"}
	if strings.Join(results, ",") != strings.Join(want, ",") {
		t.Errorf("results = %v, want %v", results, want)
	}
	if ticks.Load() != int32(len(files)) {
		t.Errorf("progress ticks = %d, want %d", ticks.Load(), len(files))
	}
}

func TestForEachFile_Empty(t *testing.T) {
	results, errs := ForEachFile(context.Background(), nil, 0, func(_ context.Context, path string) (int, error) {
		return 1, nil
	}, nil)
	if results != nil || errs != nil {
		t.Errorf("ForEachFile(nil) = %v, %v", results, errs)
	}
}

func TestForEachFile_CollectsErrors(t *testing.T) {
	boom := errors.New("radon cc failed")
	files := []string{"/src/ok.py", "/src/bad.py", "/src/fine.py"}

	results, errs := ForEachFile(context.Background(), files, 0, func(_ context.Context, path string) (string, error) {
		if strings.Contains(path, "bad") {
			return "", boom
		}
		return path, nil
	}, nil)

	if len(results) != 2 || results[0] != "/src/ok.py" || results[1] != "/src/fine.py" {
		t.Errorf("results = %v", results)
	}
	if errs == nil || len(errs.Errors) != 1 {
		t.Fatalf("errs = %v, want one error", errs)
	}
	if err, ok := errs.For("/src/bad.py"); !ok || !errors.Is(err, boom) {
		t.Errorf("For(bad) = %v, %v", err, ok)
	}
	if _, ok := errs.For("/src/ok.py"); ok {
		t.Error("For(ok) should not report an error")
	}
	if !errors.Is(errs.Errors[0], boom) {
		t.Error("ProcessingError should unwrap to the cause")
	}
	if errs.Error() != "/src/bad.py: radon cc failed" {
		t.Errorf("Error() = %q", errs.Error())
	}
}

func TestForEachFile_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	results, errs := ForEachFile(ctx, []string{"/a.py", "/b.py"}, 1, func(_ context.Context, path string) (string, error) {
		calls.Add(1)
		return path, nil
	}, nil)

	if len(results) != 0 {
		t.Errorf("results = %v, want none", results)
	}
	if calls.Load() != 0 {
		t.Errorf("fn called %d times after cancel", calls.Load())
	}
	if errs == nil || len(errs.Errors) != 2 {
		t.Fatalf("errs = %v, want two", errs)
	}
	if !errors.Is(errs.Errors[0].Err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", errs.Errors[0].Err)
	}
	if !strings.HasPrefix(errs.Error(), "2 files failed to process") {
		t.Errorf("Error() = %q", errs.Error())
	}
}

func TestProcessingErrors_Nil(t *testing.T) {
	var errs *ProcessingErrors
	if _, ok := errs.For("/a.py"); ok {
		t.Error("nil collection should report nothing")
	}
}
