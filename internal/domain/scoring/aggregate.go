package scoring

import (
	"fmt"
	"math"

	"github.com/okian/pediscore/internal/domain/reference"
	"github.com/okian/pediscore/internal/domain/types"
)

// Sum totals the sub-scores.
func Sum(s types.SubScores) int { return s.Total() }

// Logistic returns 1 / (1 + e^-(b0 + b1*score)).
func Logistic(b0, b1, score float64) float64 {
	return Probability(b0 + b1*score)
}

// Probability converts a logit into a probability.
func Probability(logit float64) float64 {
	return 1 / (1 + math.Exp(-logit))
}

// Percent converts a probability into a percentage with one decimal,
// clamped to [0, 100].
func Percent(p float64) float64 {
	v := math.Round(p*1000) / 10
	return math.Max(0, math.Min(100, v))
}

// Upper bounds (exclusive, percent) of the mortality risk tiers shared by
// PRISM-3 and PIM-3.
const (
	riskLowUpper      = 1
	riskModerateUpper = 5
	riskHighUpper     = 15
	riskVeryHighUpper = 30
)

var riskTiers = reference.Tiers{
	{Upper: riskLowUpper, Label: "Low Risk"},
	{Upper: riskModerateUpper, Label: "Moderate Risk"},
	{Upper: riskHighUpper, Label: "High Risk"},
	{Upper: riskVeryHighUpper, Label: "Very High Risk"},
	{Upper: reference.Open, Label: "Extremely High Risk"},
}

// RiskTier labels a mortality percentage.
func RiskTier(percent float64) string { return riskTiers.Label(percent) }

func finite(what string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s is not finite", ErrComputation, what)
	}
	return nil
}

func domain(name string, points, ceiling int) types.SubScore {
	return types.SubScore{Domain: name, Points: points, Max: ceiling}
}

// bandOf scores an optional numeric field; an absent value scores zero.
func bandOf(rec Record, name string, b reference.Bands) int {
	if v, ok := rec.Number(name); ok {
		return b.Points(v)
	}
	return 0
}

func unitOf(rec Record, name string) reference.Unit {
	u, _ := reference.ParseUnit(rec.Enum(name))
	return u
}
