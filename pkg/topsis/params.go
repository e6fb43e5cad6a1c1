package topsis

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/toyinlola/topsis/pkg/interfaces"
)

// Separator splits weight and impact lists.
const Separator = ","

// ParseWeights parses a comma-separated weight list such as "1, 1, 2, 0.5".
// Tokens are trimmed of surrounding whitespace. Positivity is checked by the
// calculator, not here.
func ParseWeights(s string) ([]float64, error) {
	tokens := splitTokens(s)
	weights := make([]float64, len(tokens))
	for i, tok := range tokens {
		if tok == "" {
			return nil, columnError(ErrInvalidWeight, i, "empty weight")
		}
		w, err := strconv.ParseFloat(tok, 64)
		if err != nil || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, columnError(ErrInvalidWeight, i, fmt.Sprintf("%q is not a number", tok))
		}
		weights[i] = w
	}
	return weights, nil
}

// ParseImpacts parses a comma-separated impact list such as "+,+,-,+".
// Tokens are trimmed of surrounding whitespace.
func ParseImpacts(s string) ([]interfaces.Impact, error) {
	tokens := splitTokens(s)
	impacts := make([]interfaces.Impact, len(tokens))
	for i, tok := range tokens {
		imp := interfaces.Impact(tok)
		if !imp.Valid() {
			return nil, columnError(ErrInvalidSymbol, i, fmt.Sprintf("%q must be %q or %q",
				tok, interfaces.ImpactBeneficial, interfaces.ImpactCost))
		}
		impacts[i] = imp
	}
	return impacts, nil
}

// FormatWeights is the inverse of ParseWeights.
func FormatWeights(weights []float64) string {
	parts := make([]string, len(weights))
	for i, w := range weights {
		parts[i] = strconv.FormatFloat(w, 'f', -1, 64)
	}
	return strings.Join(parts, Separator)
}

// FormatImpacts is the inverse of ParseImpacts.
func FormatImpacts(impacts []interfaces.Impact) string {
	parts := make([]string, len(impacts))
	for i, imp := range impacts {
		parts[i] = string(imp)
	}
	return strings.Join(parts, Separator)
}

func splitTokens(s string) []string {
	tokens := strings.Split(s, Separator)
	for i := range tokens {
		tokens[i] = strings.TrimSpace(tokens[i])
	}
	return tokens
}
