package prediction

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// NotApplicable is reported as the improvement when it cannot be computed.
const NotApplicable = "N/A"

// PerformanceGap is a measured area falling short of its target.
type PerformanceGap struct {
	Area    string  `json:"area"`
	Current float64 `json:"current"`
	Target  float64 `json:"target"`
}

// Recommendation is the suggestion derived from one gap.
type Recommendation struct {
	Area                 string  `json:"area"`
	CurrentValue         float64 `json:"currentValue"`
	TargetValue          float64 `json:"targetValue"`
	Suggestion           string  `json:"suggestion"`
	EstimatedImprovement string  `json:"estimatedImprovement"`
}

// GenerateRecommendations maps each gap to a recommendation, in order.
func GenerateRecommendations(gaps []PerformanceGap) []Recommendation {
	out := make([]Recommendation, 0, len(gaps))
	for _, g := range gaps {
		out = append(out, Recommendation{
			Area:                 g.Area,
			CurrentValue:         g.Current,
			TargetValue:          g.Target,
			Suggestion:           fmt.Sprintf("Optimize %s parameters to improve performance", g.Area),
			EstimatedImprovement: EstimatedImprovement(g.Current, g.Target),
		})
	}
	return out
}

// EstimatedImprovement returns the relative change from current to target as
// a percentage with one decimal, e.g. "12.5%". A zero current has no
// relative change and yields NotApplicable.
func EstimatedImprovement(current, target float64) string {
	if current == 0 {
		return NotApplicable
	}
	pct := (target - current) / current * 100
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return NotApplicable
	}
	return decimal.NewFromFloat(pct).StringFixed(1) + "%"
}
