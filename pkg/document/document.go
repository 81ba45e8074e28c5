// Package document holds the live text of open Python files and resolves
// radon positions against it.
package document

import (
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"
)

// NormalizeID turns a file path into the absolute, cleaned form used as a
// document identifier.
func NormalizeID(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty document path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	return filepath.Clean(abs), nil
}

// HashBytes computes a BLAKE3 hash of data as a hex string.
func HashBytes(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Document is one version of an open buffer.
type Document struct {
	ID      string
	Version int
	Hash    string

	text  string
	lines []string
}

// New creates a document at version 1.
func New(id, text string) *Document {
	return newVersion(id, text, 1)
}

func newVersion(id, text string, version int) *Document {
	return &Document{
		ID:      id,
		Version: version,
		Hash:    HashBytes([]byte(text)),
		text:    text,
		lines:   splitLines(text),
	}
}

// splitLines splits on \n, \r\n and \r.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

// Text returns the full buffer.
func (d *Document) Text() string {
	return d.text
}

// LineCount returns the number of lines; an empty buffer has one empty line.
func (d *Document) LineCount() int {
	return len(d.lines)
}

// Line returns line i (zero-based) without its terminator.
func (d *Document) Line(i int) (string, bool) {
	if i < 0 || i >= len(d.lines) {
		return "", false
	}
	return d.lines[i], true
}

// Basename returns the final path element of the document ID.
func (d *Document) Basename() string {
	return filepath.Base(d.ID)
}
