// Package probe exercises a running backend's prediction API from the
// outside: single requests and concurrent contract verification.
package probe

import (
	"errors"
	"time"
)

// Defaults of the probe.
const (
	DefaultBaseURL = "http://localhost:3000"
	DefaultCount   = 500
	DefaultTimeout = 10 * time.Second
)

var (
	ErrUnhealthy  = errors.New("service unhealthy")
	ErrStatus     = errors.New("unexpected status")
	ErrViolations = errors.New("contract violations found")
)

// Config holds configuration for a verification run.
type Config struct {
	BaseURL string
	Count   int
	Workers int
	Timeout time.Duration
	Verbose bool
}

// PredictRequest is the body of POST /api/ml/predict.
type PredictRequest struct {
	TestData  map[string]float64 `json:"testData"`
	ModelType string             `json:"modelType,omitempty"`
	TestID    string             `json:"testId,omitempty"`
}

// PredictResponse mirrors the gateway's prediction reply.
type PredictResponse struct {
	Prediction struct {
		Value      float64 `json:"value"`
		Confidence float64 `json:"confidence"`
		Model      string  `json:"model"`
		Timestamp  string  `json:"timestamp"`
	} `json:"prediction"`
	Confidence float64 `json:"confidence"`
	Timestamp  string  `json:"timestamp"`
}

// Stats summarises a verification run.
type Stats struct {
	Submitted  int
	Failed     int
	Violations []Violation
	PerModel   map[string]int
	Duration   time.Duration
}
