package radon

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/panbanda/radonlens/pkg/models"
)

// rawBlock is one entry of `radon cc -j`.
type rawBlock struct {
	Type       string     `json:"type"`
	Name       string     `json:"name"`
	ClassName  string     `json:"classname"`
	Rank       string     `json:"rank"`
	LineNo     int        `json:"lineno"`
	ColOffset  int        `json:"col_offset"`
	EndLine    int        `json:"endline"`
	Complexity int        `json:"complexity"`
	Closures   []rawBlock `json:"closures"`
}

func (b rawBlock) rating() models.Rating {
	r := models.Rating{
		Kind:       models.BlockKind(b.Type),
		Name:       b.Name,
		ClassName:  b.ClassName,
		Rank:       b.Rank,
		Line:       b.LineNo,
		Column:     b.ColOffset,
		EndLine:    b.EndLine,
		Complexity: b.Complexity,
	}
	r.Closures = make([]models.Rating, 0, len(b.Closures))
	for _, c := range b.Closures {
		r.Closures = append(r.Closures, c.rating())
	}
	return r
}

// rawMaintainability is one entry of `radon mi -j -s`.
type rawMaintainability struct {
	MI   float64 `json:"mi"`
	Rank string  `json:"rank"`
}

// rawSourceInfo is one entry of `radon raw -j`.
type rawSourceInfo struct {
	LOC            int `json:"loc"`
	LLOC           int `json:"lloc"`
	SLOC           int `json:"sloc"`
	Comments       int `json:"comments"`
	Multi          int `json:"multi"`
	Blank          int `json:"blank"`
	SingleComments int `json:"single_comments"`
}

// errorEntry is what radon prints for a file it could not analyze.
type errorEntry struct {
	Error *string `json:"error"`
}

// decodeOutput unmarshals radon's path-keyed JSON object.
func decodeOutput(out []byte) (map[string]json.RawMessage, error) {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(out, &entries); err != nil {
		return nil, fmt.Errorf("decoding radon output: %w", err)
	}
	return entries, nil
}

// matchEntry returns the entry whose key is a suffix of path.
// When several keys match, the longest one wins.
func matchEntry(entries map[string]json.RawMessage, path string) (json.RawMessage, bool) {
	var (
		best    string
		matched bool
	)
	for key := range entries {
		if !strings.HasSuffix(path, key) {
			continue
		}
		if !matched || len(key) > len(best) || (len(key) == len(best) && key < best) {
			best = key
			matched = true
		}
	}
	if !matched {
		return nil, false
	}
	return entries[best], true
}

// isErrorEntry reports whether raw is radon's {"error": "..."} marker.
func isErrorEntry(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(trimmed, "{") {
		return false
	}
	var e errorEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return false
	}
	return e.Error != nil
}

// ParseComplexity maps `radon cc -j` output for path into ratings.
func ParseComplexity(out []byte, path string) ([]models.Rating, error) {
	entries, err := decodeOutput(out)
	if err != nil {
		return nil, err
	}
	raw, ok := matchEntry(entries, path)
	if !ok || isErrorEntry(raw) {
		return []models.Rating{}, nil
	}

	var blocks []rawBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return nil, fmt.Errorf("decoding complexity entry: %w", err)
	}
	ratings := make([]models.Rating, 0, len(blocks))
	for _, b := range blocks {
		ratings = append(ratings, b.rating())
	}
	return ratings, nil
}

// ParseMaintainability maps `radon mi -j -s` output for path.
func ParseMaintainability(out []byte, path string) (models.Maintainability, error) {
	entries, err := decodeOutput(out)
	if err != nil {
		return models.Maintainability{}, err
	}
	raw, ok := matchEntry(entries, path)
	if !ok || isErrorEntry(raw) {
		return models.UnanalyzableMaintainability, nil
	}

	var m rawMaintainability
	if err := json.Unmarshal(raw, &m); err != nil {
		return models.Maintainability{}, fmt.Errorf("decoding maintainability entry: %w", err)
	}
	return models.Maintainability{Index: m.MI, Rank: m.Rank}, nil
}

// ParseSourceInfo maps `radon raw -j` output for path.
func ParseSourceInfo(out []byte, path string) (models.SourceInfo, error) {
	entries, err := decodeOutput(out)
	if err != nil {
		return models.SourceInfo{}, err
	}
	raw, ok := matchEntry(entries, path)
	if !ok || isErrorEntry(raw) {
		return models.SourceInfo{}, nil
	}

	var s rawSourceInfo
	if err := json.Unmarshal(raw, &s); err != nil {
		return models.SourceInfo{}, fmt.Errorf("decoding raw entry: %w", err)
	}
	return models.SourceInfo{
		LOC:            s.LOC,
		LLOC:           s.LLOC,
		SLOC:           s.SLOC,
		Comments:       s.Comments,
		Multi:          s.Multi,
		Blank:          s.Blank,
		SingleComments: s.SingleComments,
	}, nil
}
