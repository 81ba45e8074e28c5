package radon

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/radonlens/pkg/models"
)

const ccOutput = `{
  "/work/app/m.py": [
    {"type": "function", "rank": "A", "name": "f", "col_offset": 0, "lineno": 1, "endline": 5, "complexity": 2,
     "closures": [
       {"type": "function", "rank": "A", "name": "inner", "col_offset": 4, "lineno": 2, "endline": 3, "complexity": 1, "closures": []}
     ]},
    {"type": "method", "rank": "B", "name": "run", "classname": "Job", "col_offset": 4, "lineno": 8, "endline": 20, "complexity": 7, "closures": []}
  ]
}`

func TestParseComplexity(t *testing.T) {
	ratings, err := ParseComplexity([]byte(ccOutput), "/work/app/m.py")
	require.NoError(t, err)
	require.Len(t, ratings, 2)

	f := ratings[0]
	assert.Equal(t, models.KindFunction, f.Kind)
	assert.Equal(t, "f", f.Name)
	assert.Equal(t, 1, f.Line)
	assert.Equal(t, 0, f.Column)
	assert.Equal(t, 5, f.EndLine)
	require.Len(t, f.Closures, 1)
	assert.Equal(t, "inner", f.Closures[0].Name)
	assert.Equal(t, 4, f.Closures[0].Column)
	assert.NotNil(t, f.Closures[0].Closures)
	assert.Empty(t, f.Closures[0].Closures)

	m := ratings[1]
	assert.Equal(t, models.KindMethod, m.Kind)
	assert.Equal(t, "Job", m.ClassName)
	assert.Equal(t, 7, m.Complexity)
	assert.Equal(t, "B", m.Rank)
}

func TestParseComplexity_SingleEntry(t *testing.T) {
	out := `{"a/b.py": [{"type":"function","name":"f","rank":"A","lineno":3,"col_offset":0,"endline":5,"complexity":1,"closures":[]}]}`
	ratings, err := ParseComplexity([]byte(out), "a/b.py")
	require.NoError(t, err)
	require.Len(t, ratings, 1)
	assert.Equal(t, 0, ratings[0].Column)
	assert.Equal(t, 3, ratings[0].Line)
	assert.Equal(t, []models.Rating{}, ratings[0].Closures)

	encoded, err := json.Marshal(ratings)
	require.NoError(t, err)
	assert.NotContains(t, string(encoded), "col_offset")
}

func TestParseComplexity_Defaults(t *testing.T) {
	tests := []struct {
		name string
		out  string
	}{
		{"no matching key", `{"/other.py": [{"type": "function", "name": "g", "lineno": 1}]}`},
		{"empty list", `{"m.py": []}`},
		{"error entry", `{"m.py": {"error": "invalid syntax (<unknown>, line 3)"}}`},
		{"empty object", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ratings, err := ParseComplexity([]byte(tt.out), "/work/m.py")
			require.NoError(t, err)
			assert.NotNil(t, ratings)
			assert.Empty(t, ratings)
		})
	}
}

func TestParseComplexity_InvalidJSON(t *testing.T) {
	_, err := ParseComplexity([]byte("Traceback (most recent call last)"), "/work/m.py")
	assert.Error(t, err)
}

func TestMatchEntry_LongestSuffixWins(t *testing.T) {
	out := `{
	  "m.py": {"mi": 10.0, "rank": "B"},
	  "app/m.py": {"mi": 55.5, "rank": "A"}
	}`
	m, err := ParseMaintainability([]byte(out), "/work/app/m.py")
	require.NoError(t, err)
	assert.Equal(t, models.Maintainability{Index: 55.5, Rank: "A"}, m)
}

func TestParseMaintainability(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want models.Maintainability
	}{
		{"match", `{"m.py": {"mi": 71.23, "rank": "A"}}`, models.Maintainability{Index: 71.23, Rank: "A"}},
		{"negative index", `{"m.py": {"mi": -4.5, "rank": "C"}}`, models.Maintainability{Index: -4.5, Rank: "C"}},
		{"no match", `{"x.py": {"mi": 71.23, "rank": "A"}}`, models.UnanalyzableMaintainability},
		{"error entry", `{"m.py": {"error": "boom"}}`, models.UnanalyzableMaintainability},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMaintainability([]byte(tt.out), "/src/m.py")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSourceInfo(t *testing.T) {
	out := `{"/src/m.py": {"loc": 40, "lloc": 30, "sloc": 28, "comments": 4, "multi": 2, "blank": 6, "single_comments": 3}}`
	got, err := ParseSourceInfo([]byte(out), "/src/m.py")
	require.NoError(t, err)
	assert.Equal(t, models.SourceInfo{LOC: 40, LLOC: 30, SLOC: 28, Comments: 4, Multi: 2, Blank: 6, SingleComments: 3}, got)

	got, err = ParseSourceInfo([]byte(`{}`), "/src/m.py")
	require.NoError(t, err)
	assert.Equal(t, models.SourceInfo{}, got)
}
