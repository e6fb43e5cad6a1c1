package topsis

import (
	"math"
	"testing"
)

func TestRank(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		want   []int
	}{
		{"empty", nil, []int{}},
		{"single", []float64{0.4}, []int{1}},
		{"distinct", []float64{0.2, 0.9, 0.5}, []int{3, 1, 2}},
		{"ties share rank without gaps", []float64{0.5, 0.9, 0.5, 0.1}, []int{2, 1, 2, 3}},
		{"all equal", []float64{0.3, 0.3, 0.3}, []int{1, 1, 1}},
		{"tie at the top", []float64{0.8, 0.8, 0.2, 0.6}, []int{1, 1, 3, 2}},
		{"bounds", []float64{0, 1, 0.5}, []int{3, 1, 2}},
		{"nan ranks last and ties", []float64{math.NaN(), 0.4, math.NaN(), 0.7}, []int{3, 2, 3, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rank(tt.scores)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d ranks, got %d", len(tt.want), len(got))
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("Rank(%v) = %v, want %v", tt.scores, got, tt.want)
					break
				}
			}
		})
	}
}
