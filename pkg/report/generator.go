// Package report builds ranking reports from a parsed table and its scores.
package report

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/toyinlola/topsis/pkg/interfaces"
	"github.com/toyinlola/topsis/pkg/table"
	"github.com/toyinlola/topsis/pkg/topsis"
)

// Output column names appended to the input table.
const (
	ScoreColumn = "Topsis Score"
	RankColumn  = "Rank"
)

// Generator builds reports from a table and its ranking.
type Generator struct {
	now func() time.Time
}

// NewGenerator creates a report generator.
func NewGenerator() *Generator {
	return &Generator{now: time.Now}
}

// Generate produces a Report. The ranking must be index-aligned with the table rows.
func (g *Generator) Generate(t *interfaces.Table, ranking *interfaces.Ranking, weights []float64, impacts []interfaces.Impact) *interfaces.Report {
	start := g.now()

	names := table.Criteria(t)
	criteria := make([]interfaces.Criterion, len(names))
	for i, name := range names {
		criteria[i] = interfaces.Criterion{Name: name}
		if i < len(weights) {
			criteria[i].Weight = weights[i]
		}
		if i < len(impacts) {
			criteria[i].Impact = impacts[i]
		}
	}

	alts := make([]interfaces.Alternative, len(t.Rows))
	for r, row := range t.Rows {
		values := make([]float64, len(row)-1)
		for c, cell := range row[1:] {
			// Cells were validated when the matrix was built.
			values[c], _ = table.ParseNumber(cell)
		}
		alts[r] = interfaces.Alternative{
			ID:     row[0],
			Cells:  append([]string(nil), row[1:]...),
			Values: values,
			Score:  ranking.Scores[r],
			Rank:   ranking.Ranks[r],
		}
	}

	return &interfaces.Report{
		ID:           "rpt-" + uuid.NewString(),
		Timestamp:    g.now(),
		Header:       append([]string(nil), t.Header...),
		Criteria:     criteria,
		Alternatives: alts,
		Summary:      buildSummary(alts),
		Duration:     g.now().Sub(start),
	}
}

// Evaluate checks the table against the parameters, scores it with calc and
// returns the resulting report. Shape errors take precedence over cell errors.
func (g *Generator) Evaluate(calc *topsis.Calculator, t *interfaces.Table, weights []float64, impacts []interfaces.Impact) (*interfaces.Report, error) {
	if err := topsis.CheckShape(t.CriteriaCount(), len(weights), impacts); err != nil {
		return nil, err
	}

	matrix, err := table.Matrix(t)
	if err != nil {
		return nil, err
	}

	ranking, err := calc.Compute(matrix, weights, impacts)
	if err != nil {
		return nil, err
	}

	return g.Generate(t, ranking, weights, impacts), nil
}

// ByRank returns the alternatives ordered best first. Ties keep input order.
func ByRank(alts []interfaces.Alternative) []interfaces.Alternative {
	sorted := slices.Clone(alts)
	slices.SortStableFunc(sorted, func(a, b interfaces.Alternative) int {
		return a.Rank - b.Rank
	})
	return sorted
}

// FormatScore renders a score with the shortest representation that
// round-trips.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

// buildSummary creates a one-line summary naming the best alternative(s).
func buildSummary(alts []interfaces.Alternative) string {
	if len(alts) == 0 {
		return "No alternatives ranked"
	}

	var leaders []string
	var best float64
	for _, a := range alts {
		if a.Rank == 1 {
			leaders = append(leaders, a.ID)
			best = a.Score
		}
	}

	if len(leaders) == 1 {
		return fmt.Sprintf("%d alternatives ranked; best: %s (score %.4f)", len(alts), leaders[0], best)
	}
	return fmt.Sprintf("%d alternatives ranked; %d tied for best (score %.4f)", len(alts), len(leaders), best)
}
