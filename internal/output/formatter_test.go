package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/panbanda/radonlens/internal/render"
	"github.com/panbanda/radonlens/pkg/models"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"text", FormatText},
		{"JSON", FormatJSON},
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"toon", FormatTOON},
		{"TOON", FormatTOON},
		{"", FormatText},
		{"yaml", FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseFormat(tt.input); got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewFormatterWithFile(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "metrics.json")

	f, err := NewFormatter(FormatJSON, outputPath, true)
	if err != nil {
		t.Fatalf("NewFormatter() error: %v", err)
	}
	if f.colored {
		t.Error("colored should be false when writing to file")
	}
	if err := f.Output(map[string]int{"blocks": 3}); err != nil {
		t.Fatalf("Output() error: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"blocks": 3`) {
		t.Errorf("file content = %s", data)
	}
}

func TestNewFormatterInvalidPath(t *testing.T) {
	if _, err := NewFormatter(FormatText, "/nonexistent/directory/file.txt", false); err == nil {
		t.Error("NewFormatter() should error for invalid path")
	}
}

func TestEncode(t *testing.T) {
	data := map[string]any{"rank": "A", "complexity": 2}

	js, err := Encode(FormatJSON, data)
	if err != nil {
		t.Fatalf("Encode(json) error: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal([]byte(js), &back); err != nil {
		t.Fatalf("Encode(json) produced invalid json: %v", err)
	}

	tn, err := Encode(FormatTOON, data)
	if err != nil {
		t.Fatalf("Encode(toon) error: %v", err)
	}
	if !strings.Contains(tn, "rank") || strings.HasPrefix(tn, "{") {
		t.Errorf("Encode(toon) = %q", tn)
	}
}

func TestTableRenderText(t *testing.T) {
	table := NewTable("app.py", []string{"Line", "Annotation"}, [][]string{
		{"3", "Function \"handle\" is rated A"},
		{"9", "Method \"run\" is rated C"},
	}, nil, nil)

	var buf bytes.Buffer
	if err := table.RenderText(&buf, false); err != nil {
		t.Fatalf("RenderText() error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"app.py", "======", "handle", "run"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTableRenderMarkdown(t *testing.T) {
	table := NewTable("Blocks", []string{"Line", "Rank"}, [][]string{{"1", "A"}}, []string{"total", "1"}, nil)

	var buf bytes.Buffer
	if err := table.RenderMarkdown(&buf); err != nil {
		t.Fatalf("RenderMarkdown() error: %v", err)
	}
	want := "## Blocks\n\n| Line | Rank |\n| --- | --- |\n| 1 | A |\n| total | 1 |\n\n"
	if buf.String() != want {
		t.Errorf("RenderMarkdown() = %q, want %q", buf.String(), want)
	}
}

func TestTableRenderData(t *testing.T) {
	table := NewTable("", []string{"Line", "Rank"}, [][]string{{"1", "A"}, {"2"}}, nil, nil)
	rows, ok := table.RenderData().([]map[string]string)
	if !ok || len(rows) != 2 {
		t.Fatalf("RenderData() = %#v", table.RenderData())
	}
	if rows[0]["Rank"] != "A" {
		t.Errorf("rows[0] = %v", rows[0])
	}
	if _, ok := rows[1]["Rank"]; ok {
		t.Errorf("short row should not have Rank: %v", rows[1])
	}

	wrapped := NewTable("", nil, nil, nil, []int{1, 2})
	if _, ok := wrapped.RenderData().([]int); !ok {
		t.Error("RenderData() should return wrapped data")
	}
}

func sampleReport() *DocumentReport {
	status := render.StatusFor("/src/app.py", models.Maintainability{Index: 15.5, Rank: "A"})
	return &DocumentReport{
		Document: "/src/app.py",
		Annotations: []render.Annotation{
			{
				Range: models.Range{Start: models.Position{Line: 2, Character: 4}, End: models.Position{Line: 2, Character: 10}},
				Rank:  "A",
				Title: "Function \"handle\" is rated A by a complexity of 2. The risk is low - simple block",
			},
		},
		Status: &status,
	}
}

func TestFormatterOutputDocumentReport(t *testing.T) {
	tests := []struct {
		format Format
		want   []string
	}{
		{FormatText, []string{"/src/app.py", "handle", "3:4-3:10", "Maintainability: 15.50 (A)"}},
		{FormatMarkdown, []string{"## /src/app.py", "| 3 | A | 3:4-3:10 |", "Maintainability: 15.50 (A)"}},
		{FormatJSON, []string{`"document": "/src/app.py"`, `"tier": "warning"`}},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			f := NewWriterFormatter(tt.format, &buf, false)
			if err := f.Output(sampleReport()); err != nil {
				t.Fatalf("Output() error: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q:\n%s", want, buf.String())
				}
			}
		})
	}
}

func TestDocumentReport_EmptyAndError(t *testing.T) {
	var buf bytes.Buffer
	empty := &DocumentReport{Document: "/src/empty.py"}
	if err := empty.RenderText(&buf, false); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "/src/empty.py: no blocks\n" {
		t.Errorf("empty report = %q", buf.String())
	}

	buf.Reset()
	failed := &DocumentReport{Document: "/src/bad.py", Error: "radon cc failed"}
	if err := failed.RenderText(&buf, false); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "error: radon cc failed") {
		t.Errorf("error report = %q", buf.String())
	}
}

func TestAnalysisReport(t *testing.T) {
	report := &AnalysisReport{
		Root: "/src",
		Documents: []DocumentReport{
			*sampleReport(),
			{Document: "/src/bad.py", Error: "boom"},
		},
	}
	if report.Failed() != 1 {
		t.Errorf("Failed() = %d, want 1", report.Failed())
	}

	var buf bytes.Buffer
	if err := report.RenderText(&buf, false); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(buf.String(), "2 documents analyzed, 1 failed\n") {
		t.Errorf("summary missing:\n%s", buf.String())
	}

	buf.Reset()
	if err := report.RenderMarkdown(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "# Radon metrics: /src\n\n") {
		t.Errorf("markdown heading = %q", buf.String())
	}
	if !strings.Contains(buf.String(), "**Error:** boom") {
		t.Errorf("markdown missing error:\n%s", buf.String())
	}
}

func TestFormatterOutputRaw(t *testing.T) {
	var buf bytes.Buffer
	f := NewWriterFormatter(FormatMarkdown, &buf, false)
	if err := f.Output(map[string]string{"rank": "B"}); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "```json\n") || !strings.HasSuffix(buf.String(), "```\n") {
		t.Errorf("markdown raw output = %q", buf.String())
	}
}

func TestFormatterMessages(t *testing.T) {
	var buf bytes.Buffer
	f := NewWriterFormatter(FormatText, &buf, false)
	f.Warning("radon %s not found", "cc")
	f.Error("exit %d", 2)
	f.Success("done")
	want := "WARNING: radon cc not found\nERROR: exit 2\ndone\n"
	if buf.String() != want {
		t.Errorf("messages = %q, want %q", buf.String(), want)
	}
}

func TestRankColor(t *testing.T) {
	for _, rank := range []string{"A", "B", "C", "D", "F"} {
		if got := RankColor(rank, "x"); !strings.Contains(got, "x") {
			t.Errorf("RankColor(%s) = %q", rank, got)
		}
	}
}

func TestDocumentReport_RankColumn(t *testing.T) {
	saved := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = saved })

	report := sampleReport()
	report.Annotations = append(report.Annotations, render.Annotation{
		Range: models.Range{Start: models.Position{Line: 9}, End: models.Position{Line: 9, Character: 5}},
		Rank:  "F",
		Title: "Function \"tangle\" is rated F",
	})

	var plain bytes.Buffer
	if err := report.RenderText(&plain, false); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(plain.String(), "\x1b[") {
		t.Errorf("plain output contains escape codes:\n%q", plain.String())
	}
	if !strings.Contains(plain.String(), "RANK") {
		t.Errorf("plain output missing rank header:\n%s", plain.String())
	}

	var colored bytes.Buffer
	if err := report.RenderText(&colored, true); err != nil {
		t.Fatal(err)
	}
	for _, rank := range []string{"A", "F"} {
		if want := RankColor(rank, rank); !strings.Contains(colored.String(), want) {
			t.Errorf("colored output missing %q:\n%q", want, colored.String())
		}
	}
}

func TestFormatterMessagesColored(t *testing.T) {
	saved := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = saved })

	var buf bytes.Buffer
	f := NewWriterFormatter(FormatText, &buf, true)
	f.Success("enabled")
	if !strings.Contains(buf.String(), "enabled") || !strings.Contains(buf.String(), "\x1b[32m") {
		t.Errorf("colored success = %q", buf.String())
	}
}
