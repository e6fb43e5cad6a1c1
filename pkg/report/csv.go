package report

import (
	"io"
	"strconv"

	"github.com/toyinlola/topsis/pkg/interfaces"
	"github.com/toyinlola/topsis/pkg/table"
)

// CSVFormatter writes the input table augmented with score and rank columns.
// Rows stay in input order and cells are written as they were read.
type CSVFormatter struct{}

// NewCSVFormatter creates a CSV report formatter.
func NewCSVFormatter() *CSVFormatter {
	return &CSVFormatter{}
}

// Format writes the augmented table as CSV to the given writer.
func (f *CSVFormatter) Format(w io.Writer, report *interfaces.Report) error {
	header := append(append([]string(nil), report.Header...), ScoreColumn, RankColumn)

	rows := make([][]string, len(report.Alternatives))
	for i, a := range report.Alternatives {
		row := make([]string, 0, len(a.Cells)+3)
		row = append(row, a.ID)
		row = append(row, a.Cells...)
		row = append(row, FormatScore(a.Score), strconv.Itoa(a.Rank))
		rows[i] = row
	}

	return table.Write(w, header, rows)
}

// Records returns one map per alternative keyed by output column name,
// with numeric cells as numbers. Used for JSON table payloads.
// A repeated header name gets a ".1", ".2", ... suffix so no column is lost.
func Records(report *interfaces.Report) []map[string]any {
	keys := uniqueNames(report.Header)

	records := make([]map[string]any, len(report.Alternatives))
	for i, a := range report.Alternatives {
		rec := make(map[string]any, len(keys)+2)
		if len(keys) > 0 {
			rec[keys[0]] = a.ID
		}
		for c, v := range a.Values {
			if c+1 < len(keys) {
				rec[keys[c+1]] = v
			}
		}
		rec[ScoreColumn] = a.Score
		rec[RankColumn] = a.Rank
		records[i] = rec
	}
	return records
}

func uniqueNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		seen[n] = true
	}

	out := make([]string, len(names))
	counts := make(map[string]int, len(names))
	for i, n := range names {
		if counts[n] == 0 {
			out[i] = n
			counts[n] = 1
			continue
		}
		for {
			candidate := n + "." + strconv.Itoa(counts[n])
			counts[n]++
			if !seen[candidate] {
				seen[candidate] = true
				out[i] = candidate
				break
			}
		}
	}
	return out
}
