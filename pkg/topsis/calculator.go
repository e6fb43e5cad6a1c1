// Package topsis scores and ranks alternatives by their relative closeness
// to an ideal-best and ideal-worst point (TOPSIS).
package topsis

import (
	"fmt"
	"math"

	"github.com/toyinlola/topsis/pkg/interfaces"
)

// Calculator computes TOPSIS scores and dense ranks.
// It holds no state between calls and is safe for concurrent use.
type Calculator struct {
	allowNonPositiveWeights bool
}

// Option configures the Calculator.
type Option func(*Calculator)

// WithNonPositiveWeights accepts zero and negative weights.
// A zero weight removes the criterion from the distance; a negative one
// inverts its direction.
func WithNonPositiveWeights() Option {
	return func(c *Calculator) {
		c.allowNonPositiveWeights = true
	}
}

// NewCalculator creates a calculator with optional configuration.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compute scores matrix with the default calculator.
func Compute(matrix [][]float64, weights []float64, impacts []interfaces.Impact) (*interfaces.Ranking, error) {
	return NewCalculator().Compute(matrix, weights, impacts)
}

// Compute returns a score in [0,1] and a dense rank for every matrix row.
//
// Each column is divided by its Euclidean norm and multiplied by its weight.
// The ideal best point takes the column maximum for beneficial criteria and
// the minimum for cost criteria; the ideal worst point takes the opposite.
// score = d_worst / (d_best + d_worst). Rank 1 is the highest score.
//
// Either a complete result or exactly one *InputError is returned.
func (c *Calculator) Compute(matrix [][]float64, weights []float64, impacts []interfaces.Impact) (*interfaces.Ranking, error) {
	if err := c.validate(matrix, weights, impacts); err != nil {
		return nil, err
	}

	rows, cols := len(matrix), len(matrix[0])
	weights = relativeWeights(weights)

	weighted := make([][]float64, rows)
	for r := range weighted {
		weighted[r] = make([]float64, cols)
	}
	best := make([]float64, cols)
	worst := make([]float64, cols)

	for col := 0; col < cols; col++ {
		norm := columnNorm(matrix, col)
		if norm == 0 {
			return nil, columnError(ErrDegenerateColumn, col, "column norm is zero")
		}

		hi, lo := math.Inf(-1), math.Inf(1)
		for r := range matrix {
			v := matrix[r][col] / norm * weights[col]
			weighted[r][col] = v
			hi = math.Max(hi, v)
			lo = math.Min(lo, v)
		}

		if impacts[col] == interfaces.ImpactCost {
			hi, lo = lo, hi
		}
		best[col], worst[col] = hi, lo
	}

	scores := make([]float64, rows)
	for r, row := range weighted {
		dBest := distance(row, best)
		dWorst := distance(row, worst)

		total := dBest + dWorst
		if total == 0 {
			return nil, NewInputError(ErrDegenerateRow, r, -1, "row coincides with both ideal points")
		}
		scores[r] = dWorst / total
	}

	return &interfaces.Ranking{
		Scores: scores,
		Ranks:  Rank(scores),
	}, nil
}

func (c *Calculator) validate(matrix [][]float64, weights []float64, impacts []interfaces.Impact) error {
	if len(matrix) == 0 {
		return shapeError("matrix has no rows")
	}

	cols := len(matrix[0])
	if cols == 0 {
		return shapeError("matrix has no columns")
	}
	for r, row := range matrix {
		if len(row) != cols {
			return NewInputError(ErrShapeMismatch, r, -1,
				fmt.Sprintf("row has %d values, want %d", len(row), cols))
		}
	}

	if err := CheckShape(cols, len(weights), impacts); err != nil {
		return err
	}

	for r, row := range matrix {
		for col, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return NewInputError(ErrNonNumeric, r, col, fmt.Sprintf("%v is not a finite number", v))
			}
		}
	}

	for col, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return columnError(ErrInvalidWeight, col, fmt.Sprintf("%v is not a finite number", w))
		}
		if w <= 0 && !c.allowNonPositiveWeights {
			return columnError(ErrInvalidWeight, col, fmt.Sprintf("%v is not positive", w))
		}
	}

	return nil
}

// CheckShape verifies that weights and impacts line up with the criteria
// count and that every impact is a recognized symbol.
func CheckShape(criteria, weights int, impacts []interfaces.Impact) error {
	if weights != criteria || len(impacts) != criteria {
		return shapeError(fmt.Sprintf("%d criteria, %d weights, %d impacts", criteria, weights, len(impacts)))
	}
	for col, imp := range impacts {
		if !imp.Valid() {
			return columnError(ErrInvalidSymbol, col, fmt.Sprintf("%q must be %q or %q",
				string(imp), interfaces.ImpactBeneficial, interfaces.ImpactCost))
		}
	}
	return nil
}

// columnNorm returns the Euclidean norm of column col.
// Values are scaled by the column's largest magnitude first so that the sum
// of squares cannot overflow.
func columnNorm(matrix [][]float64, col int) float64 {
	var scale float64
	for _, row := range matrix {
		scale = math.Max(scale, math.Abs(row[col]))
	}
	if scale == 0 {
		return 0
	}

	var sum float64
	for _, row := range matrix {
		v := row[col] / scale
		sum += v * v
	}
	return scale * math.Sqrt(sum)
}

// relativeWeights returns weights divided by their largest magnitude.
// Scores depend only on the ratios between weights, and keeping the largest
// at 1 stops extreme magnitudes from overflowing or underflowing distances.
func relativeWeights(weights []float64) []float64 {
	var scale float64
	for _, w := range weights {
		scale = math.Max(scale, math.Abs(w))
	}
	out := make([]float64, len(weights))
	for i, w := range weights {
		if scale == 0 {
			out[i] = w
			continue
		}
		out[i] = w / scale
	}
	return out
}

// distance returns the Euclidean distance between a and b, scaled by the
// largest component difference like columnNorm.
func distance(a, b []float64) float64 {
	var scale float64
	for i := range a {
		scale = math.Max(scale, math.Abs(a[i]-b[i]))
	}
	if scale == 0 {
		return 0
	}

	var sum float64
	for i := range a {
		d := (a[i] - b[i]) / scale
		sum += d * d
	}
	return scale * math.Sqrt(sum)
}
