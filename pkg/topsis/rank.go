package topsis

import (
	"cmp"
	"slices"
)

// Rank returns the dense descending rank of every score.
// The highest score gets rank 1, equal scores share a rank, and the next
// distinct score continues at the following integer.
// Scores from Compute are always finite; a NaN from elsewhere ranks below
// every number, and all NaNs share one rank.
func Rank(scores []float64) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(scores[b], scores[a])
	})

	ranks := make([]int, len(scores))
	rank := 0
	for i, idx := range order {
		if i == 0 || cmp.Compare(scores[idx], scores[order[i-1]]) != 0 {
			rank++
		}
		ranks[idx] = rank
	}
	return ranks
}
