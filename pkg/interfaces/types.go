// Package interfaces defines the shared types and contracts for all topsis modules.
// This package has ZERO dependencies on any other pkg/ package.
// All cross-module communication goes through types and interfaces defined here.
package interfaces

import "time"

// Impact is the preference direction of a criterion.
type Impact string

const (
	ImpactBeneficial Impact = "+" // Higher values are better
	ImpactCost       Impact = "-" // Lower values are better
)

// Valid reports whether the impact is one of the recognized symbols.
func (i Impact) Valid() bool {
	return i == ImpactBeneficial || i == ImpactCost
}

// Ranking is the result of scoring a decision matrix.
// Scores and Ranks are index-aligned with the matrix rows.
type Ranking struct {
	Scores []float64 `json:"scores"`
	Ranks  []int     `json:"ranks"` // Dense, 1 = best
}

// Table is a parsed tabular input. Column 0 holds the row identifier,
// the remaining columns form the decision matrix.
type Table struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// CriteriaCount returns the number of criterion columns.
func (t *Table) CriteriaCount() int {
	if len(t.Header) == 0 {
		return 0
	}
	return len(t.Header) - 1
}

// Criterion describes one weighted, directed column.
type Criterion struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
	Impact Impact  `json:"impact"`
}

// Alternative is one ranked row of the input table.
type Alternative struct {
	ID     string    `json:"id"`
	Cells  []string  `json:"cells"`  // Criterion cells as they appeared in the input
	Values []float64 `json:"values"` // Parsed criterion values
	Score  float64   `json:"score"`
	Rank   int       `json:"rank"`
}

// Report is the final output of a ranking run.
// Alternatives are kept in input order.
type Report struct {
	ID           string        `json:"id"`
	Timestamp    time.Time     `json:"timestamp"`
	Header       []string      `json:"header"`
	Criteria     []Criterion   `json:"criteria"`
	Alternatives []Alternative `json:"alternatives"`
	Summary      string        `json:"summary"`
	Duration     time.Duration `json:"duration"`
}

// Attachment is a file carried by a Message.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
}

// Message is an outbound notification.
type Message struct {
	To          string       `json:"to"`
	Subject     string       `json:"subject"`
	Body        string       `json:"body"`
	Attachments []Attachment `json:"attachments,omitempty"`
}
