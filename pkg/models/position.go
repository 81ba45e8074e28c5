package models

import "fmt"

// Position is a zero-based line/character offset in a text buffer.
type Position struct {
	Line      int `json:"line" toon:"line"`
	Character int `json:"character" toon:"character"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Character)
}

// Range is a text extent on a buffer. End is the offset just past the last character.
type Range struct {
	Start Position `json:"start" toon:"start"`
	End   Position `json:"end" toon:"end"`
}

// Contains reports whether pos lies inside the range, end inclusive.
func (r Range) Contains(pos Position) bool {
	if pos.Line < r.Start.Line || pos.Line > r.End.Line {
		return false
	}
	if pos.Line == r.Start.Line && pos.Character < r.Start.Character {
		return false
	}
	if pos.Line == r.End.Line && pos.Character > r.End.Character {
		return false
	}
	return true
}

func (r Range) String() string {
	return fmt.Sprintf("%s-%s", r.Start, r.End)
}
