package document

import (
	"regexp"

	"github.com/panbanda/radonlens/pkg/models"
)

// wordPattern matches a number literal or a run of characters that are
// neither whitespace nor separators. Offsets are byte offsets, matching
// radon's col_offset.
var wordPattern = regexp.MustCompile("(-?\\d*\\.\\d\\w*)|([^`~!@#$%^&*()\\-=+\\[{\\]}\\\\|;:'\",.<>/?\\s]+)")

// WordRangeAt returns the range of the word containing or touching pos.
func (d *Document) WordRangeAt(pos models.Position) (models.Range, bool) {
	line, ok := d.Line(pos.Line)
	if !ok || pos.Character < 0 || pos.Character > len(line) {
		return models.Range{}, false
	}
	for _, loc := range wordPattern.FindAllStringIndex(line, -1) {
		if loc[0] <= pos.Character && pos.Character <= loc[1] {
			return models.Range{
				Start: models.Position{Line: pos.Line, Character: loc[0]},
				End:   models.Position{Line: pos.Line, Character: loc[1]},
			}, true
		}
		if loc[0] > pos.Character {
			break
		}
	}
	return models.Range{}, false
}

// FirstWordRange returns the range of the first word in the document.
func (d *Document) FirstWordRange() (models.Range, bool) {
	for i, line := range d.lines {
		if loc := wordPattern.FindStringIndex(line); loc != nil {
			return models.Range{
				Start: models.Position{Line: i, Character: loc[0]},
				End:   models.Position{Line: i, Character: loc[1]},
			}, true
		}
	}
	return models.Range{}, false
}

// ResolveRatings attaches a word range to each rating and its closures.
// Ratings whose position has no word are dropped; a dropped parent drops its closures.
func ResolveRatings(d *Document, ratings []models.Rating) []models.Rating {
	out := make([]models.Rating, 0, len(ratings))
	for _, r := range ratings {
		rng, ok := d.WordRangeAt(r.Position())
		if !ok {
			continue
		}
		resolved := r
		resolved.Range = &rng
		if len(r.Closures) > 0 {
			resolved.Closures = ResolveRatings(d, r.Closures)
		}
		out = append(out, resolved)
	}
	return out
}
