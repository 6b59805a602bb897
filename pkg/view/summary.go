package view

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/lineage/pkg/lineage"
)

// SummaryRow describes the outputs generated for one region.
type SummaryRow struct {
	Region       string   `json:"region"`
	Nodes        int      `json:"nodes"`
	Edges        int      `json:"edges"`
	Roots        int      `json:"roots"`
	FallbackRoot bool     `json:"fallback_root,omitempty"`
	Conflicts    int      `json:"conflicts,omitempty"`
	Placeholders int      `json:"cycle_placeholders,omitempty"`
	Files        []string `json:"files,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// NewSummaryRow fills the counts from a computed region view.
func NewSummaryRow(r Region) SummaryRow {
	row := SummaryRow{
		Region:       r.Region,
		Nodes:        len(r.Graph.Nodes),
		Edges:        len(r.Graph.Edges),
		Roots:        len(r.Roots),
		FallbackRoot: r.FallbackRoot,
		Conflicts:    len(r.Conflicts),
	}
	var count func(*TreeNode)
	count = func(n *TreeNode) {
		if n == nil {
			return
		}
		if n.Cycle {
			row.Placeholders++
		}
		for _, c := range n.Children {
			count(c)
		}
	}
	count(r.Tree)
	return row
}

// Summary is the run report written next to the generated files.
type Summary struct {
	RunID     string       `json:"run_id"`
	Source    string       `json:"source"`
	Generated time.Time    `json:"generated"`
	Rows      []SummaryRow `json:"regions"`
}

// WriteMarkdown renders the report as Markdown. Regions are listed in
// sorted order regardless of the order of s.Rows.
func (s Summary) WriteMarkdown(w io.Writer) error {
	rows := slices.Clone(s.Rows)
	slices.SortFunc(rows, func(a, b SummaryRow) int { return strings.Compare(a.Region, b.Region) })

	var b strings.Builder
	b.WriteString("# District Lineage Summary\n\n")
	if s.Source != "" {
		fmt.Fprintf(&b, "Source: `%s`  \n", s.Source)
	}
	if s.RunID != "" {
		fmt.Fprintf(&b, "Run: `%s`  \n", s.RunID)
	}
	if !s.Generated.IsZero() {
		fmt.Fprintf(&b, "Generated: %s\n", s.Generated.UTC().Format(time.RFC3339))
	}
	b.WriteString("\n")

	var ok, failed []SummaryRow
	for _, r := range rows {
		if r.Error != "" {
			failed = append(failed, r)
		} else {
			ok = append(ok, r)
		}
	}

	fmt.Fprintf(&b, "Outputs were generated for %d region(s):\n\n", len(ok))
	if len(ok) > 0 {
		b.WriteString("| Region | Districts | Events | Roots | Files |\n")
		b.WriteString("|---|---:|---:|---:|---|\n")
		for _, r := range ok {
			roots := fmt.Sprint(r.Roots)
			if r.FallbackRoot {
				roots += " (fallback)"
			}
			fmt.Fprintf(&b, "| %s | %d | %d | %s | %s |\n",
				escapeCell(r.Region), r.Nodes, r.Edges, roots, strings.Join(r.Files, ", "))
		}
		b.WriteString("\n")
	}

	var warnings []string
	for _, r := range ok {
		if r.FallbackRoot {
			warnings = append(warnings, fmt.Sprintf("%s: no origin district; lineage is a pure cycle", r.Region))
		}
		if r.Conflicts > 0 {
			warnings = append(warnings, fmt.Sprintf("%s: %d event(s) disagreed with an earlier formation year", r.Region, r.Conflicts))
		}
		if r.Placeholders > 0 {
			warnings = append(warnings, fmt.Sprintf("%s: %d cycle(s) cut in the lineage tree", r.Region, r.Placeholders))
		}
	}
	if len(warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}

	if len(failed) > 0 {
		b.WriteString("## Failures\n\n")
		for _, r := range failed {
			fmt.Fprintf(&b, "- %s: %s\n", r.Region, r.Error)
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func escapeCell(s string) string { return strings.ReplaceAll(s, "|", `\|`) }

// YearLabel formats a formation or event year for display, using "?" when
// the year is unknown.
func YearLabel(y *int) string { return lineage.FormatYear(y, "?") }
