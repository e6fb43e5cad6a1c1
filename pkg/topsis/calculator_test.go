package topsis

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/toyinlola/topsis/pkg/interfaces"
)

const tolerance = 1e-12

var (
	plus  = interfaces.ImpactBeneficial
	minus = interfaces.ImpactCost
)

// referenceMatrix is the classic phone-selection example: price-like first
// three columns are beneficial, the last one is a cost.
func referenceMatrix() [][]float64 {
	return [][]float64{
		{250, 16, 12, 5},
		{200, 16, 8, 3},
		{300, 32, 16, 4},
		{275, 32, 8, 4},
		{225, 16, 16, 2},
	}
}

func referenceWeights() []float64 {
	return []float64{0.25, 0.25, 0.25, 0.25}
}

func referenceImpacts() []interfaces.Impact {
	return []interfaces.Impact{plus, plus, plus, minus}
}

func TestCompute_ReferenceScenario(t *testing.T) {
	got, err := Compute(referenceMatrix(), referenceWeights(), referenceImpacts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Computed by hand with vector normalization and Euclidean distances.
	wantScores := []float64{
		0.25244704365851073,
		0.33851277168245947,
		0.6614872283175406,
		0.48300779397159294,
		0.5829871350835378,
	}
	wantRanks := []int{5, 4, 1, 3, 2}

	if len(got.Scores) != len(wantScores) {
		t.Fatalf("expected %d scores, got %d", len(wantScores), len(got.Scores))
	}
	for i := range wantScores {
		if math.Abs(got.Scores[i]-wantScores[i]) > tolerance {
			t.Errorf("row %d: score got %.17g, want %.17g", i, got.Scores[i], wantScores[i])
		}
		if got.Ranks[i] != wantRanks[i] {
			t.Errorf("row %d: rank got %d, want %d", i, got.Ranks[i], wantRanks[i])
		}
	}

	// Best row is index 2, worst is index 0.
	if got.Ranks[2] != 1 {
		t.Errorf("expected row 2 to rank first, got rank %d", got.Ranks[2])
	}
	if got.Ranks[0] != 5 {
		t.Errorf("expected row 0 to rank last, got rank %d", got.Ranks[0])
	}
}

func TestCompute_ShapeMismatch(t *testing.T) {
	tests := []struct {
		name    string
		matrix  [][]float64
		weights []float64
		impacts []interfaces.Impact
	}{
		{
			name:    "three weights for four columns",
			matrix:  referenceMatrix(),
			weights: []float64{1, 1, 1},
			impacts: referenceImpacts(),
		},
		{
			name:    "five impacts for four columns",
			matrix:  referenceMatrix(),
			weights: referenceWeights(),
			impacts: []interfaces.Impact{plus, plus, plus, plus, minus},
		},
		{
			name:    "no rows",
			matrix:  nil,
			weights: referenceWeights(),
			impacts: referenceImpacts(),
		},
		{
			name:    "no columns",
			matrix:  [][]float64{{}},
			weights: nil,
			impacts: nil,
		},
		{
			name:    "ragged rows",
			matrix:  [][]float64{{1, 2}, {3}},
			weights: []float64{1, 1},
			impacts: []interfaces.Impact{plus, plus},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(tt.matrix, tt.weights, tt.impacts)
			if !errors.Is(err, ErrShapeMismatch) {
				t.Fatalf("expected ErrShapeMismatch, got %v", err)
			}
		})
	}
}

func TestCompute_InvalidSymbol(t *testing.T) {
	impacts := []interfaces.Impact{plus, "x", plus, minus}
	_, err := Compute(referenceMatrix(), referenceWeights(), impacts)
	if !errors.Is(err, ErrInvalidSymbol) {
		t.Fatalf("expected ErrInvalidSymbol, got %v", err)
	}

	var ie *InputError
	if !errors.As(err, &ie) {
		t.Fatalf("expected *InputError, got %T", err)
	}
	if ie.Column != 1 {
		t.Errorf("expected column 1, got %d", ie.Column)
	}
}

func TestCompute_NonFiniteCell(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		m := referenceMatrix()
		m[3][2] = v

		_, err := Compute(m, referenceWeights(), referenceImpacts())
		if !errors.Is(err, ErrNonNumeric) {
			t.Fatalf("%v: expected ErrNonNumeric, got %v", v, err)
		}

		var ie *InputError
		if !errors.As(err, &ie) {
			t.Fatalf("expected *InputError, got %T", err)
		}
		if ie.Row != 3 || ie.Column != 2 {
			t.Errorf("%v: expected row 3 column 2, got row %d column %d", v, ie.Row, ie.Column)
		}
	}
}

func TestCompute_InvalidWeight(t *testing.T) {
	tests := []struct {
		name    string
		weights []float64
		column  int
	}{
		{"zero", []float64{1, 0, 1, 1}, 1},
		{"negative", []float64{1, 1, 1, -2}, 3},
		{"nan", []float64{math.NaN(), 1, 1, 1}, 0},
		{"inf", []float64{1, 1, math.Inf(1), 1}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(referenceMatrix(), tt.weights, referenceImpacts())
			if !errors.Is(err, ErrInvalidWeight) {
				t.Fatalf("expected ErrInvalidWeight, got %v", err)
			}
			var ie *InputError
			if errors.As(err, &ie) && ie.Column != tt.column {
				t.Errorf("expected column %d, got %d", tt.column, ie.Column)
			}
		})
	}
}

func TestCompute_NonPositiveWeightsAllowed(t *testing.T) {
	calc := NewCalculator(WithNonPositiveWeights())

	got, err := calc.Compute(referenceMatrix(), []float64{0.25, 0.25, 0.25, 0}, referenceImpacts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, s := range got.Scores {
		if s < 0 || s > 1 {
			t.Errorf("row %d: score %v out of [0,1]", i, s)
		}
	}

	if _, err := calc.Compute(referenceMatrix(), []float64{1, 1, math.NaN(), 1}, referenceImpacts()); !errors.Is(err, ErrInvalidWeight) {
		t.Errorf("NaN weight must still be rejected, got %v", err)
	}
}

func TestCompute_DegenerateColumn(t *testing.T) {
	m := [][]float64{
		{1, 0, 3},
		{2, 0, 1},
		{3, 0, 2},
	}

	_, err := Compute(m, []float64{1, 1, 1}, []interfaces.Impact{plus, plus, minus})
	if !errors.Is(err, ErrDegenerateColumn) {
		t.Fatalf("expected ErrDegenerateColumn, got %v", err)
	}

	var ie *InputError
	if !errors.As(err, &ie) {
		t.Fatalf("expected *InputError, got %T", err)
	}
	if ie.Column != 1 || ie.Row != -1 {
		t.Errorf("expected column 1 and no row, got row %d column %d", ie.Row, ie.Column)
	}
}

func TestCompute_SingleRowIsDegenerate(t *testing.T) {
	_, err := Compute([][]float64{{250, 16, 12, 5}}, referenceWeights(), referenceImpacts())
	if !errors.Is(err, ErrDegenerateRow) {
		t.Fatalf("expected ErrDegenerateRow, got %v", err)
	}

	var ie *InputError
	if !errors.As(err, &ie) {
		t.Fatalf("expected *InputError, got %T", err)
	}
	if ie.Row != 0 {
		t.Errorf("expected row 0, got %d", ie.Row)
	}
}

func TestCompute_IdenticalRowsAreDegenerate(t *testing.T) {
	m := [][]float64{
		{4, 9},
		{4, 9},
		{4, 9},
	}
	_, err := Compute(m, []float64{1, 1}, []interfaces.Impact{plus, minus})
	if !errors.Is(err, ErrDegenerateRow) {
		t.Fatalf("expected ErrDegenerateRow, got %v", err)
	}
}

func TestCompute_EqualRowsShareRank(t *testing.T) {
	m := [][]float64{
		{10, 2, 7},
		{10, 2, 7},
		{30, 1, 9},
		{20, 5, 3},
	}
	got, err := Compute(m, []float64{1, 1, 1}, []interfaces.Impact{plus, minus, plus})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Scores[0] != got.Scores[1] {
		t.Errorf("identical rows must score identically: %v vs %v", got.Scores[0], got.Scores[1])
	}
	if got.Ranks[0] != got.Ranks[1] {
		t.Errorf("identical rows must share rank: %d vs %d", got.Ranks[0], got.Ranks[1])
	}
	assertDense(t, got.Ranks)
}

func TestCompute_ScaleInvariance(t *testing.T) {
	base, err := Compute(referenceMatrix(), referenceWeights(), referenceImpacts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("matrix scaled", func(t *testing.T) {
		m := referenceMatrix()
		for r := range m {
			for c := range m[r] {
				m[r][c] *= 3.7
			}
		}
		got, err := Compute(m, referenceWeights(), referenceImpacts())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertScoresClose(t, base.Scores, got.Scores)
		assertRanksEqual(t, base.Ranks, got.Ranks)
	})

	t.Run("weights scaled", func(t *testing.T) {
		w := referenceWeights()
		for i := range w {
			w[i] *= 40
		}
		got, err := Compute(referenceMatrix(), w, referenceImpacts())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertScoresClose(t, base.Scores, got.Scores)
		assertRanksEqual(t, base.Ranks, got.Ranks)
	})

	for _, factor := range []float64{1e200, 1e-200, 1e300, 1e-300} {
		t.Run(fmt.Sprintf("weights times %g", factor), func(t *testing.T) {
			w := referenceWeights()
			for i := range w {
				w[i] *= factor
			}
			got, err := Compute(referenceMatrix(), w, referenceImpacts())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assertScoresClose(t, base.Scores, got.Scores)
			assertRanksEqual(t, base.Ranks, got.Ranks)
		})
	}
}

func TestCompute_SmallWeightStillSeparatesRows(t *testing.T) {
	// The first column is constant, so only the tiny-weight column differs.
	m := [][]float64{
		{5, 1},
		{5, 2},
		{5, 3},
	}
	got, err := Compute(m, []float64{1, 1e-200}, []interfaces.Impact{plus, plus})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{0, 0.5, 1}
	assertScoresClose(t, want, got.Scores)
	assertRanksEqual(t, []int{3, 2, 1}, got.Ranks)
}

func TestCompute_ExtremeWeightsGiveFiniteScores(t *testing.T) {
	m := [][]float64{{1, 2}, {2, 1}, {3, 3}}
	impacts := []interfaces.Impact{plus, minus}

	base, err := Compute(m, []float64{1, 1}, impacts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, w := range [][]float64{{1e200, 1e200}, {1e-200, 1e-200}, {1e308, 1e308}} {
		got, err := Compute(m, w, impacts)
		if err != nil {
			t.Fatalf("weights %v: unexpected error: %v", w, err)
		}
		for i, s := range got.Scores {
			if math.IsNaN(s) || s < 0 || s > 1 {
				t.Errorf("weights %v: row %d score %v out of [0,1]", w, i, s)
			}
		}
		assertScoresClose(t, base.Scores, got.Scores)
		assertRanksEqual(t, []int{3, 1, 2}, got.Ranks)
	}
}

func TestCompute_ConstantColumnDirectionIrrelevant(t *testing.T) {
	m := [][]float64{
		{250, 7, 12},
		{200, 7, 8},
		{300, 7, 16},
		{275, 7, 8},
	}
	weights := []float64{1, 2, 1}

	a, err := Compute(m, weights, []interfaces.Impact{plus, plus, minus})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Compute(m, weights, []interfaces.Impact{plus, minus, minus})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertScoresClose(t, a.Scores, b.Scores)
	assertRanksEqual(t, a.Ranks, b.Ranks)
}

func TestCompute_HugeValuesDoNotOverflow(t *testing.T) {
	m := [][]float64{
		{1e200, 1},
		{2e200, 3},
		{3e200, 2},
	}
	got, err := Compute(m, []float64{1, 1}, []interfaces.Impact{plus, plus})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, s := range got.Scores {
		if math.IsNaN(s) || s < 0 || s > 1 {
			t.Errorf("row %d: score %v out of [0,1]", i, s)
		}
	}
}

func TestCompute_Properties(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for iter := 0; iter < 200; iter++ {
		rows := 2 + rng.IntN(12)
		cols := 1 + rng.IntN(6)

		m := make([][]float64, rows)
		for r := range m {
			m[r] = make([]float64, cols)
			for c := range m[r] {
				// Small integer grid so that ties actually happen.
				m[r][c] = float64(1 + rng.IntN(5))
			}
		}
		weights := make([]float64, cols)
		impacts := make([]interfaces.Impact, cols)
		for c := range weights {
			weights[c] = 0.1 + rng.Float64()
			impacts[c] = plus
			if rng.IntN(2) == 0 {
				impacts[c] = minus
			}
		}

		got, err := Compute(m, weights, impacts)
		if errors.Is(err, ErrDegenerateRow) {
			continue
		}
		if err != nil {
			t.Fatalf("iteration %d: unexpected error: %v", iter, err)
		}

		if len(got.Scores) != rows || len(got.Ranks) != rows {
			t.Fatalf("iteration %d: expected %d results, got %d scores and %d ranks",
				iter, rows, len(got.Scores), len(got.Ranks))
		}

		maxScore := math.Inf(-1)
		for _, s := range got.Scores {
			if s < 0 || s > 1 {
				t.Fatalf("iteration %d: score %v out of [0,1]", iter, s)
			}
			maxScore = math.Max(maxScore, s)
		}

		for r := range got.Scores {
			if got.Scores[r] == maxScore && got.Ranks[r] != 1 {
				t.Errorf("iteration %d: max score row %d has rank %d", iter, r, got.Ranks[r])
			}
			for q := range got.Scores {
				if got.Scores[r] > got.Scores[q] && got.Ranks[r] >= got.Ranks[q] {
					t.Errorf("iteration %d: score order %v > %v not reflected in ranks %d, %d",
						iter, got.Scores[r], got.Scores[q], got.Ranks[r], got.Ranks[q])
				}
			}
		}
		assertDense(t, got.Ranks)
	}
}

func TestCompute_DoesNotMutateInput(t *testing.T) {
	m := referenceMatrix()
	w := referenceWeights()

	if _, err := Compute(m, w, referenceImpacts()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := referenceMatrix()
	for r := range m {
		for c := range m[r] {
			if m[r][c] != want[r][c] {
				t.Fatalf("matrix mutated at %d,%d: %v", r, c, m[r][c])
			}
		}
	}
	for i, v := range referenceWeights() {
		if w[i] != v {
			t.Fatalf("weights mutated at %d: %v", i, w[i])
		}
	}
}

func TestInputError_Message(t *testing.T) {
	tests := []struct {
		err  *InputError
		want string
	}{
		{NewInputError(ErrNonNumeric, 2, 1, `"abc"`), `topsis: non-numeric input at row 2, column 1: "abc"`},
		{NewInputError(ErrDegenerateRow, 0, -1, ""), "topsis: degenerate row at row 0"},
		{NewInputError(ErrDegenerateColumn, -1, 3, "column norm is zero"), "topsis: degenerate column at column 3: column norm is zero"},
		{NewInputError(ErrShapeMismatch, -1, -1, "4 criteria, 3 weights, 4 impacts"), "topsis: shape mismatch: 4 criteria, 3 weights, 4 impacts"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}

func assertScoresClose(t *testing.T, want, got []float64) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("expected %d scores, got %d", len(want), len(got))
	}
	for i := range want {
		if math.Abs(want[i]-got[i]) > tolerance {
			t.Errorf("row %d: score got %.17g, want %.17g", i, got[i], want[i])
		}
	}
}

func assertRanksEqual(t *testing.T, want, got []int) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("expected %d ranks, got %d", len(want), len(got))
	}
	for i := range want {
		if want[i] != got[i] {
			t.Errorf("row %d: rank got %d, want %d", i, got[i], want[i])
		}
	}
}

// assertDense checks that the distinct ranks form 1..k without gaps.
func assertDense(t *testing.T, ranks []int) {
	t.Helper()
	seen := make(map[int]bool)
	maxRank := 0
	for _, r := range ranks {
		seen[r] = true
		maxRank = max(maxRank, r)
	}
	for r := 1; r <= maxRank; r++ {
		if !seen[r] {
			t.Errorf("ranks %v are not dense: %d missing", ranks, r)
		}
	}
}
