package models

import "strings"

// BlockKind is the kind of code block radon rates.
type BlockKind string

const (
	KindFunction BlockKind = "function"
	KindMethod   BlockKind = "method"
	KindClass    BlockKind = "class"
)

// Title returns the kind with its first letter upper-cased ("Function").
func (k BlockKind) Title() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// Rating is one cyclomatic complexity measurement for a function, method or class.
// Closures holds the functions defined inside this block, mirroring lexical nesting.
type Rating struct {
	Kind       BlockKind `json:"type"`
	Name       string    `json:"name"`
	ClassName  string    `json:"classname,omitempty"`
	Rank       string    `json:"rank"`
	Line       int       `json:"line"`   // 1-based
	Column     int       `json:"column"` // 0-based
	EndLine    int       `json:"endLine"`
	Complexity int       `json:"complexity"`
	Closures   []Rating  `json:"closures"`

	// Range is set once the rating has been resolved against a live buffer.
	Range *Range `json:"range,omitempty"`
}

// Resolved reports whether the rating has a text range.
func (r Rating) Resolved() bool {
	return r.Range != nil
}

// Position returns the zero-based buffer position radon reported for the block.
func (r Rating) Position() Position {
	return Position{Line: r.Line - 1, Character: r.Column}
}

// Walk calls fn for the rating and then every nested closure, depth first.
func (r Rating) Walk(fn func(Rating)) {
	fn(r)
	for _, c := range r.Closures {
		c.Walk(fn)
	}
}

// CountRatings returns the number of ratings including nested closures.
func CountRatings(ratings []Rating) int {
	n := 0
	for _, r := range ratings {
		r.Walk(func(Rating) { n++ })
	}
	return n
}
