package probe

import (
	"math/rand/v2"

	"github.com/sves-daq/backend/internal/domain/prediction"
)

// featureRange bounds the random values drawn for one feature.
type featureRange struct {
	key      string
	min, max float64
}

// ranges cover every input read by the engine, including values that push
// sub-scores past their clamps and a few negative slopes.
var ranges = []featureRange{
	{"peakStrain", 0, 3000},
	{"cycleCount", 0, 80000},
	{"minerDamageTotal", 0, 1.5},
	{"asymmetryMetrics", 0, 30},
	{"driftIndicators", 0, 0.2},
	{"brakeTemperature", 0, 700},
	{"brakePressure", 0, 100},
	{"fadeSlope", -0.3, 0.1},
	{"dominantFrequency", 0, 4000},
	{"splMax", 40, 130},
	{"orderAmplitude", 0, 1},
	{"clampLoadLossRate", -0.2, 0.2},
	{"vibrationRMS", 0, 1},
	{"shockVelocity", 0, 6},
	{"wheelTravel", 0, 250},
	{"verticalAcceleration", 0, 2},
	{"iso2631WeightedRMS", 0, 2},
	{"exposureHours", 0, 12},
	{"failureRiskScore", 0, 1.2},
	{"complianceRate", 0, 1.2},
	{"performanceVariability", 0, 40},
}

// Generator draws feature bags. Each feature is present with probability
// 3/4 so defaults get exercised too.
type Generator struct {
	rnd *rand.Rand
}

// NewGenerator returns a generator seeded for reproducible runs.
func NewGenerator(seed uint64) *Generator {
	return &Generator{rnd: rand.New(rand.NewPCG(seed, seed^0x5ee5da9))}
}

// Features returns one random feature bag.
func (g *Generator) Features() map[string]float64 {
	out := make(map[string]float64, len(ranges))
	for _, r := range ranges {
		if g.rnd.IntN(4) == 0 {
			continue
		}
		out[r.key] = r.min + g.rnd.Float64()*(r.max-r.min)
	}
	return out
}

// Requests builds n requests cycling through the default heuristic and
// every named model.
func (g *Generator) Requests(n int) []PredictRequest {
	names := []string{prediction.DefaultModelName}
	for _, m := range prediction.Models() {
		names = append(names, m.String())
	}
	out := make([]PredictRequest, n)
	for i := range out {
		out[i] = PredictRequest{TestData: g.Features(), ModelType: names[i%len(names)]}
	}
	return out
}
