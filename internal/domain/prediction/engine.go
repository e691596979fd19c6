// Package prediction implements the heuristic prediction engine: per-model
// formulas over a feature bag, risk factor analysis and improvement
// recommendations.
package prediction

import (
	"math"
	"math/rand/v2"
	"time"
)

// TimestampLayout is the UTC millisecond ISO-8601 layout of Result.Timestamp.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

const (
	defaultBase   = 75.0
	defaultSpread = 10.0
)

// Result is the engine output.
type Result struct {
	Value      float64 `json:"value"`
	Confidence float64 `json:"confidence"`
	Model      string  `json:"model"`
	Timestamp  string  `json:"timestamp"`
}

// Engine evaluates predictions. The zero value is not usable; use NewEngine.
// An Engine is safe for concurrent use when its jitter source is.
type Engine struct {
	jitter func() float64
	now    func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithJitter sets the source of uniform [0,1) draws for the default heuristic.
func WithJitter(fn func() float64) Option {
	return func(e *Engine) {
		if fn != nil {
			e.jitter = fn
		}
	}
}

// WithClock sets the time source for result timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine builds an engine. The default jitter is math/rand/v2, which is
// safe for concurrent use.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{jitter: rand.Float64, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Predict evaluates the formula selected by modelType. Unknown names use the
// default heuristic; the returned Model echoes modelType verbatim.
func (e *Engine) Predict(features Features, modelType string) Result {
	model, _ := ParseModelType(modelType)
	return e.Evaluate(features, model, modelType)
}

// Evaluate runs a parsed model and labels the result with name.
func (e *Engine) Evaluate(features Features, model ModelType, name string) Result {
	if features == nil {
		features = Features{}
	}
	return Result{
		Value:      clamp(e.score(features, model), 0, 100),
		Confidence: model.Confidence(),
		Model:      name,
		Timestamp:  e.now().UTC().Format(TimestampLayout),
	}
}

func (e *Engine) score(f Features, model ModelType) float64 {
	switch model {
	case ModelRemainingLife:
		return mean(
			f.score("peakStrain", 50, func(v float64) float64 { return math.Max(0, 100-v/25) }),
			f.score("cycleCount", 50, func(v float64) float64 { return math.Min(100, v/500) }),
			f.score("minerDamageTotal", 50, func(v float64) float64 { return math.Max(0, 100-v*100) }),
		)
	case ModelFailureRisk:
		return mean(
			f.score("peakStrain", 50, func(v float64) float64 { return math.Min(100, v/20) }),
			f.score("asymmetryMetrics", 30, func(v float64) float64 { return math.Min(100, v*5) }),
			f.score("driftIndicators", 20, func(v float64) float64 { return math.Min(100, v*1000) }),
		)
	case ModelBrakeFade:
		return mean(
			f.score("brakeTemperature", 50, func(v float64) float64 { return math.Min(100, v/5) }),
			f.score("brakePressure", 50, func(v float64) float64 { return math.Min(100, v/0.7) }),
			f.score("fadeSlope", 50, func(v float64) float64 { return math.Max(0, 100+v*500) }),
		)
	case ModelSquealLikelihood:
		return mean(
			f.score("dominantFrequency", 50, func(v float64) float64 { return math.Min(100, v/30) }),
			f.score("splMax", 50, func(v float64) float64 { return math.Min(100, v/1.1) }),
			f.score("orderAmplitude", 50, func(v float64) float64 { return math.Min(100, v*200) }),
		)
	case ModelFastenerLoosening:
		return mean(
			f.score("clampLoadLossRate", 30, func(v float64) float64 { return math.Min(100, math.Abs(v*1000)) }),
			f.score("vibrationRMS", 40, func(v float64) float64 { return math.Min(100, v*150) }),
			f.score("shockVelocity", 30, func(v float64) float64 { return math.Min(100, v*25) }),
		)
	case ModelBottomOut:
		return mean(
			f.score("shockVelocity", 50, func(v float64) float64 { return math.Min(100, v*25) }),
			f.score("wheelTravel", 50, func(v float64) float64 { return math.Min(100, v/2) }),
			f.score("verticalAcceleration", 50, func(v float64) float64 { return math.Min(100, v*100) }),
		)
	case ModelRideDiscomfort:
		return mean(
			f.score("iso2631WeightedRMS", 50, func(v float64) float64 { return math.Max(0, 100-v*100) }),
			f.score("exposureHours", 50, func(v float64) float64 { return math.Max(0, 100-v*10) }),
		)
	case ModelNVHCompliance:
		return mean(
			f.score("splMax", 50, func(v float64) float64 { return math.Max(0, 100-(v-70)*2) }),
			f.score("dominantFrequency", 50, func(v float64) float64 {
				if v > 2000 {
					return 30
				}
				return 70
			}),
			f.score("vibrationRMS", 50, func(v float64) float64 { return math.Max(0, 100-v*200) }),
		)
	case ModelWarrantyClaim:
		return mean(
			f.score("failureRiskScore", 30, func(v float64) float64 { return v * 100 }),
			100-f.score("complianceRate", 80, func(v float64) float64 { return v * 100 }),
			f.score("performanceVariability", 50, func(v float64) float64 { return math.Min(100, v*5) }),
		)
	case ModelUnspecified:
	}
	return defaultBase + (e.jitter()*2*defaultSpread - defaultSpread)
}

func mean(xs ...float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// clamp bounds v to [lo, hi]. NaN maps to lo.
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
