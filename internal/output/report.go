package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/panbanda/radonlens/internal/render"
)

// DocumentReport holds the annotations and indicator of one document.
type DocumentReport struct {
	Document    string              `json:"document" toon:"document"`
	Annotations []render.Annotation `json:"annotations" toon:"annotations"`
	Status      *render.Status      `json:"status,omitempty" toon:"status,omitempty"`
	Error       string              `json:"error,omitempty" toon:"error,omitempty"`
}

// RenderData returns the report itself.
func (d *DocumentReport) RenderData() any {
	return d
}

func (d *DocumentReport) table(colored bool) *Table {
	rows := make([][]string, 0, len(d.Annotations))
	for _, a := range d.Annotations {
		rank := a.Rank
		if colored && rank != "" {
			rank = RankColor(rank, rank)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", a.Range.Start.Line+1),
			rank,
			a.Range.String(),
			a.Title,
		})
	}
	return NewTable(d.Document, []string{"Line", "Rank", "Range", "Annotation"}, rows, nil, nil)
}

func (d *DocumentReport) statusLine(colored bool) string {
	if d.Status == nil || !d.Status.Visible {
		return ""
	}
	text := d.Status.Text
	if colored {
		text = d.Status.Terminal()
	}
	return "Maintainability: " + text
}

// RenderText writes the annotations as a table followed by the indicator.
func (d *DocumentReport) RenderText(w io.Writer, colored bool) error {
	if d.Error != "" {
		fmt.Fprintln(w, d.Document)
		msg := "error: " + d.Error
		if colored {
			msg = color.RedString(msg)
		}
		fmt.Fprintln(w, msg)
		return nil
	}
	if len(d.Annotations) == 0 {
		fmt.Fprintf(w, "%s: no blocks\n", d.Document)
		return nil
	}
	if err := d.table(colored).RenderText(w, colored); err != nil {
		return err
	}
	if line := d.statusLine(colored); line != "" {
		fmt.Fprintln(w, line)
	}
	return nil
}

// RenderMarkdown writes the annotations as a markdown table.
func (d *DocumentReport) RenderMarkdown(w io.Writer) error {
	if d.Error != "" {
		fmt.Fprintf(w, "## %s\n\n**Error:** %s\n\n", d.Document, d.Error)
		return nil
	}
	t := d.table(false)
	for i, row := range t.Rows {
		t.Rows[i][3] = strings.ReplaceAll(row[3], "|", "\\|")
	}
	if err := t.RenderMarkdown(w); err != nil {
		return err
	}
	if line := d.statusLine(false); line != "" {
		fmt.Fprintf(w, "%s\n\n", line)
	}
	return nil
}

// AnalysisReport groups the reports of several documents.
type AnalysisReport struct {
	Root      string           `json:"root,omitempty" toon:"root,omitempty"`
	Documents []DocumentReport `json:"documents" toon:"documents"`
}

// Failed returns how many documents could not be analyzed.
func (r *AnalysisReport) Failed() int {
	n := 0
	for _, d := range r.Documents {
		if d.Error != "" {
			n++
		}
	}
	return n
}

// RenderData returns the report itself.
func (r *AnalysisReport) RenderData() any {
	return r
}

// RenderText writes every document followed by a one-line summary.
func (r *AnalysisReport) RenderText(w io.Writer, colored bool) error {
	for i := range r.Documents {
		if err := r.Documents[i].RenderText(w, colored); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	summary := fmt.Sprintf("%d documents analyzed, %d failed", len(r.Documents), r.Failed())
	if colored && r.Failed() > 0 {
		summary = color.YellowString(summary)
	}
	fmt.Fprintln(w, summary)
	return nil
}

// RenderMarkdown writes every document under a top-level heading.
func (r *AnalysisReport) RenderMarkdown(w io.Writer) error {
	title := "Radon metrics"
	if r.Root != "" {
		title += ": " + r.Root
	}
	fmt.Fprintf(w, "# %s\n\n", title)
	for i := range r.Documents {
		if err := r.Documents[i].RenderMarkdown(w); err != nil {
			return err
		}
	}
	return nil
}
