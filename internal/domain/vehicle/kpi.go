package vehicle

import "slices"

// KPI levels understood by the dashboard.
const (
	LevelExecutive  = "executive"
	LevelSubsystem  = "subsystem"
	LevelDiagnostic = "diagnostic"
)

var subsystemDomains = []string{
	"suspension", "brakes", "nvh", "ride", "electrical", "thermal", "environment", "fatigue",
}

// ExecutiveFields are the headline indices reported by the executive view.
var ExecutiveFields = []string{
	"safetyComplianceIndex",
	"durabilityMarginPct",
	"nvhComplianceScore",
	"rideComfortIndex",
	"energyEfficiencyIndex",
	"environmentalRobustnessScore",
	"warrantyRiskIndex",
}

// InLevel reports whether a KPI of the given domain is shown at level.
// Diagnostic KPIs are derived from raw data and never stored, so nothing
// matches it. Unknown levels match everything.
func InLevel(level, domain string) bool {
	switch level {
	case LevelExecutive:
		return domain == LevelExecutive
	case LevelSubsystem:
		return slices.Contains(subsystemDomains, domain)
	case LevelDiagnostic:
		return false
	}
	return true
}
