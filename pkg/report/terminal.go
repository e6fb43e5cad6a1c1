package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/toyinlola/topsis/pkg/interfaces"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

// TerminalFormatter writes a color-coded ranking to a terminal.
type TerminalFormatter struct{}

// NewTerminalFormatter creates a terminal report formatter.
func NewTerminalFormatter() *TerminalFormatter {
	return &TerminalFormatter{}
}

// Format writes the report to the given writer using ANSI colors.
func (f *TerminalFormatter) Format(w io.Writer, report *interfaces.Report) error {
	f.writeHeader(w, report)
	if err := f.writeRanking(w, report); err != nil {
		return err
	}
	f.writeFooter(w, report)
	return nil
}

func (f *TerminalFormatter) writeHeader(w io.Writer, report *interfaces.Report) {
	fmt.Fprintf(w, "\n%s%s══════════════════════════════════════════%s\n", colorBold, colorCyan, colorReset)
	fmt.Fprintf(w, "%s%s  TOPSIS Ranking%s\n", colorBold, colorCyan, colorReset)
	fmt.Fprintf(w, "%s%s══════════════════════════════════════════%s\n\n", colorBold, colorCyan, colorReset)
	fmt.Fprintf(w, "  %s%s%s\n\n", colorBold, report.Summary, colorReset)

	if len(report.Criteria) > 0 {
		parts := make([]string, len(report.Criteria))
		for i, c := range report.Criteria {
			parts[i] = fmt.Sprintf("%s(%g,%s)", c.Name, c.Weight, c.Impact)
		}
		fmt.Fprintf(w, "  %sCriteria: %s%s\n\n", colorDim, strings.Join(parts, " "), colorReset)
	}
}

func (f *TerminalFormatter) writeRanking(w io.Writer, report *interfaces.Report) error {
	id := "Alternative"
	if len(report.Header) > 0 {
		id = report.Header[0]
	}

	sorted := ByRank(report.Alternatives)

	var buf strings.Builder
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\n", RankColumn, oneLine(id), ScoreColumn)
	for _, a := range sorted {
		fmt.Fprintf(tw, "%d\t%s\t%.4f\n", a.Rank, oneLine(a.ID), a.Score)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("report: rendering ranking: %w", err)
	}

	// Colors wrap whole lines so escape sequences do not skew column widths.
	for i, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		color := colorBold
		if i > 0 {
			color = rankColor(sorted[i-1].Rank)
		}
		fmt.Fprintf(w, "  %s%s%s\n", color, line, colorReset)
	}
	fmt.Fprintln(w)
	return nil
}

func (f *TerminalFormatter) writeFooter(w io.Writer, report *interfaces.Report) {
	fmt.Fprintf(w, "  %s%s──────────────────────────────────────────%s\n", colorDim, colorCyan, colorReset)
	fmt.Fprintf(w, "  %sAlternatives: %d | Criteria: %d | Report: %s%s\n",
		colorDim, len(report.Alternatives), len(report.Criteria), report.ID, colorReset)
	fmt.Fprintf(w, "  %sGenerated: %s%s\n\n",
		colorDim, report.Timestamp.Format("2006-01-02 15:04:05"), colorReset)
}

// rankColor highlights the winner and the rest of the podium.
func rankColor(rank int) string {
	switch {
	case rank == 1:
		return colorGreen
	case rank <= 3:
		return colorYellow
	default:
		return colorReset
	}
}

func oneLine(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ", "\t", " ").Replace(s)
}
