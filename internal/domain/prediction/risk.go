package prediction

import "fmt"

// RiskLevel is the overall risk of a test result. It only escalates.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Thresholds of the risk rules.
const (
	ComplianceThreshold  = 90.0
	VariabilityThreshold = 15.0
)

// RiskFactor is one rule that fired.
type RiskFactor struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// RiskAction is the follow-up suggested for a factor.
type RiskAction struct {
	Action   string `json:"action"`
	Priority string `json:"priority"`
}

// RiskAssessment is the outcome of AnalyzeRiskFactors. Slices are never nil.
type RiskAssessment struct {
	OverallRisk     RiskLevel    `json:"overallRisk"`
	Factors         []RiskFactor `json:"factors"`
	Recommendations []RiskAction `json:"recommendations"`
}

// AnalyzeRiskFactors evaluates the compliance rule, then the variability
// rule. Missing inputs never fire a rule. The domain is accepted for
// per-domain rules and currently does not change the outcome.
func AnalyzeRiskFactors(results Features, _ string) RiskAssessment {
	out := RiskAssessment{
		OverallRisk:     RiskLow,
		Factors:         []RiskFactor{},
		Recommendations: []RiskAction{},
	}

	if v, ok := results.Lookup("complianceRate"); ok && v < ComplianceThreshold {
		out.Factors = append(out.Factors, RiskFactor{
			Type:     "compliance",
			Severity: string(RiskHigh),
			Message:  "Compliance rate below threshold",
		})
		out.OverallRisk = RiskHigh
	}

	if v, ok := results.Lookup("performanceVariability"); ok && v > VariabilityThreshold {
		out.Factors = append(out.Factors, RiskFactor{
			Type:     "variability",
			Severity: string(RiskMedium),
			Message:  "High performance variability detected",
		})
		if out.OverallRisk == RiskLow {
			out.OverallRisk = RiskMedium
		}
	}

	for _, f := range out.Factors {
		out.Recommendations = append(out.Recommendations, RiskAction{
			Action:   fmt.Sprintf("Address %s issues", f.Type),
			Priority: f.Severity,
		})
	}
	return out
}
