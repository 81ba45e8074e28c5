// Package testutil holds filesystem helpers shared by radonlens tests.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// WriteFile writes content to a file in the real filesystem.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll(%s) error: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile(%s) error: %v", path, err)
	}
}

// ReadFile reads content from a file.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s) error: %v", path, err)
	}
	return string(data)
}

// CreateFileTree creates multiple files from a map of path -> content.
func CreateFileTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		WriteFile(t, filepath.Join(root, name), content)
	}
}

// FakeRadon is a shell script standing in for radon 5.1.0. Every queried
// file reports one function "handle" at line 1 with complexity 1 and a
// maintainability index of 15.5.
const FakeRadon = `#!/bin/sh
case "$1" in
  -v) echo "5.1.0" ;;
  cc) printf '{"%s": [{"type": "function", "rank": "A", "name": "handle", "col_offset": 0, "lineno": 1, "endline": 2, "complexity": 1, "closures": []}]}' "$2" ;;
  mi) printf '{"%s": {"mi": 15.5, "rank": "A"}}' "$2" ;;
  raw) printf '{"%s": {"loc": 2, "lloc": 2, "sloc": 2, "comments": 0, "multi": 0, "blank": 0, "single_comments": 0}}' "$2" ;;
  *) exit 2 ;;
esac
`

// WriteFakeRadon installs FakeRadon as an executable in dir and returns its
// path. Tests are skipped where no POSIX shell is available.
func WriteFakeRadon(t *testing.T, dir string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake radon is a shell script")
	}
	path := filepath.Join(dir, "radon")
	if err := os.WriteFile(path, []byte(FakeRadon), 0755); err != nil {
		t.Fatalf("WriteFile(%s) error: %v", path, err)
	}
	return path
}
