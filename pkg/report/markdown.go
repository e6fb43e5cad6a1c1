package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/toyinlola/topsis/pkg/interfaces"
)

// MarkdownFormatter writes a report as a Markdown ranking table.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a Markdown report formatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format writes the report as Markdown to the given writer.
func (f *MarkdownFormatter) Format(w io.Writer, report *interfaces.Report) error {
	f.writeHeader(w, report)
	f.writeCriteria(w, report)
	f.writeRanking(w, report)
	f.writeFooter(w, report)
	return nil
}

func (f *MarkdownFormatter) writeHeader(w io.Writer, report *interfaces.Report) {
	fmt.Fprintln(w, "# TOPSIS Ranking")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s\n\n", report.Summary)
}

func (f *MarkdownFormatter) writeCriteria(w io.Writer, report *interfaces.Report) {
	if len(report.Criteria) == 0 {
		return
	}

	fmt.Fprintln(w, "| Criterion | Weight | Impact |")
	fmt.Fprintln(w, "|-----------|--------|--------|")
	for _, c := range report.Criteria {
		fmt.Fprintf(w, "| %s | %g | %s |\n", escapeCell(c.Name), c.Weight, impactLabel(c.Impact))
	}
	fmt.Fprintln(w)
}

func (f *MarkdownFormatter) writeRanking(w io.Writer, report *interfaces.Report) {
	id := "Alternative"
	if len(report.Header) > 0 {
		id = report.Header[0]
	}

	cols := []string{RankColumn, escapeCell(id)}
	for _, c := range report.Criteria {
		cols = append(cols, escapeCell(c.Name))
	}
	cols = append(cols, ScoreColumn)

	fmt.Fprintf(w, "| %s |\n", strings.Join(cols, " | "))
	fmt.Fprintf(w, "|%s\n", strings.Repeat("---|", len(cols)))

	for _, a := range ByRank(report.Alternatives) {
		cells := []string{fmt.Sprintf("%d", a.Rank), escapeCell(a.ID)}
		for _, c := range a.Cells {
			cells = append(cells, escapeCell(c))
		}
		cells = append(cells, fmt.Sprintf("%.4f", a.Score))
		fmt.Fprintf(w, "| %s |\n", strings.Join(cells, " | "))
	}
	fmt.Fprintln(w)
}

func (f *MarkdownFormatter) writeFooter(w io.Writer, report *interfaces.Report) {
	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "*Report ID: %s | Generated: %s*\n",
		report.ID, report.Timestamp.Format("2006-01-02 15:04:05"))
}

// impactLabel returns a human-readable label for an impact.
func impactLabel(i interfaces.Impact) string {
	switch i {
	case interfaces.ImpactBeneficial:
		return "beneficial (+)"
	case interfaces.ImpactCost:
		return "cost (-)"
	default:
		return string(i)
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
