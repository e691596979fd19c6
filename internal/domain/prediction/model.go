package prediction

// ModelType is the closed set of heuristic formulas the engine knows.
// ModelUnspecified selects the jittered default heuristic.
type ModelType int

const (
	ModelUnspecified ModelType = iota
	ModelRemainingLife
	ModelFailureRisk
	ModelBrakeFade
	ModelSquealLikelihood
	ModelFastenerLoosening
	ModelBottomOut
	ModelRideDiscomfort
	ModelNVHCompliance
	ModelWarrantyClaim
)

// DefaultModelName is used when a request names no model.
const DefaultModelName = "default"

var modelNames = map[ModelType]string{
	ModelUnspecified:       DefaultModelName,
	ModelRemainingLife:     "remainingLife",
	ModelFailureRisk:       "failureRisk",
	ModelBrakeFade:         "brakeFade",
	ModelSquealLikelihood:  "squealLikelihood",
	ModelFastenerLoosening: "fastenerLoosening",
	ModelBottomOut:         "bottomOut",
	ModelRideDiscomfort:    "rideDiscomfort",
	ModelNVHCompliance:     "nvhCompliance",
	ModelWarrantyClaim:     "warrantyClaim",
}

var modelsByName = func() map[string]ModelType {
	m := make(map[string]ModelType, len(modelNames))
	for t, n := range modelNames {
		m[n] = t
	}
	return m
}()

// String returns the wire name of the model.
func (m ModelType) String() string {
	if n, ok := modelNames[m]; ok {
		return n
	}
	return DefaultModelName
}

// ParseModelType maps a wire name onto a ModelType. Names are case-sensitive.
// The second result is false for names outside the known set; those map to
// ModelUnspecified. "default" is known and maps to ModelUnspecified too.
func ParseModelType(name string) (ModelType, bool) {
	t, ok := modelsByName[name]
	return t, ok
}

// Models lists every named formula, excluding the default heuristic.
func Models() []ModelType {
	return []ModelType{
		ModelRemainingLife,
		ModelFailureRisk,
		ModelBrakeFade,
		ModelSquealLikelihood,
		ModelFastenerLoosening,
		ModelBottomOut,
		ModelRideDiscomfort,
		ModelNVHCompliance,
		ModelWarrantyClaim,
	}
}

// Confidence is the fixed self-reported certainty of a model.
func (m ModelType) Confidence() float64 {
	switch m {
	case ModelRemainingLife:
		return 0.88
	case ModelFailureRisk:
		return 0.82
	case ModelBrakeFade:
		return 0.90
	case ModelSquealLikelihood:
		return 0.85
	case ModelFastenerLoosening:
		return 0.87
	case ModelBottomOut:
		return 0.86
	case ModelRideDiscomfort:
		return 0.89
	case ModelNVHCompliance:
		return 0.84
	case ModelWarrantyClaim:
		return 0.83
	case ModelUnspecified:
		return 0.85
	}
	return 0.85
}
