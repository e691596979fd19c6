// Package types contains the response shapes shared by the service and the
// HTTP layer.
package types

import (
	"github.com/sves-daq/backend/internal/domain/model"
	"github.com/sves-daq/backend/internal/domain/prediction"
)

// PredictResponse is returned by the prediction endpoints.
type PredictResponse struct {
	Prediction prediction.Result `json:"prediction"`
	Confidence float64           `json:"confidence"`
	Timestamp  string            `json:"timestamp"`
}

// NewPredictResponse echoes the result's confidence and timestamp at the top level.
func NewPredictResponse(res prediction.Result) PredictResponse {
	return PredictResponse{Prediction: res, Confidence: res.Confidence, Timestamp: res.Timestamp}
}

// RiskResponse is returned by the risk analysis endpoint.
type RiskResponse struct {
	RiskLevel       prediction.RiskLevel    `json:"riskLevel"`
	Factors         []prediction.RiskFactor `json:"factors"`
	Recommendations []prediction.RiskAction `json:"recommendations"`
}

func NewRiskResponse(a prediction.RiskAssessment) RiskResponse {
	return RiskResponse{RiskLevel: a.OverallRisk, Factors: a.Factors, Recommendations: a.Recommendations}
}

// RecommendationsResponse carries generated recommendations. Priority and
// impact are fixed labels.
type RecommendationsResponse struct {
	Recommendations []prediction.Recommendation `json:"recommendations"`
	Priority        string                      `json:"priority"`
	EstimatedImpact string                      `json:"estimatedImpact"`
}

// NewRecommendationsResponse wraps recs with the fixed labels.
func NewRecommendationsResponse(recs []prediction.Recommendation) RecommendationsResponse {
	if recs == nil {
		recs = []prediction.Recommendation{}
	}
	return RecommendationsResponse{Recommendations: recs, Priority: "high", EstimatedImpact: "medium"}
}

// DomainShare is one slice of the test distribution, in whole percent.
type DomainShare struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// DomainPerformance is the mean KPI of one domain's tests.
type DomainPerformance struct {
	Domain      string  `json:"domain"`
	Performance float64 `json:"performance"`
}

// Analytics summarises stored test data by domain.
type Analytics struct {
	DomainDistribution  []DomainShare       `json:"domainDistribution"`
	PerformanceByDomain []DomainPerformance `json:"performanceByDomain"`
}

// KPIFilter selects KPI documents. Empty fields do not filter.
type KPIFilter struct {
	Domain    string
	Level     string
	TestID    string
	ProgramID string
	VehicleID string
}

// DomainFilter narrows a domain view.
type DomainFilter struct {
	TestID    string
	VehicleID string
	ProgramID string
}

// DomainView gathers what one dashboard domain page shows. Failures are
// reported in Error with empty lists.
type DomainView struct {
	Domain string           `json:"domain"`
	KPIs   []model.Document `json:"kpis"`
	Tests  []model.Document `json:"tests"`
	Events []model.Document `json:"events"`
	Error  string           `json:"error,omitempty"`
}

// PluginRun is the outcome of executing an analysis plugin.
type PluginRun struct {
	Success    bool           `json:"success"`
	PluginName string         `json:"pluginName"`
	Timestamp  string         `json:"timestamp"`
	Message    string         `json:"message"`
	Data       map[string]any `json:"data"`
}

// PluginConfig acknowledges a configuration update.
type PluginConfig struct {
	Success    bool   `json:"success"`
	PluginName string `json:"pluginName"`
	Message    string `json:"message"`
	Config     any    `json:"config"`
}

// Created acknowledges a stored document.
type Created struct {
	ID      string `json:"id"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message"`
}
