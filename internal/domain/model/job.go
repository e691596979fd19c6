package model

import "time"

// PredictionJob carries a served prediction to the persistence workers.
type PredictionJob struct {
	JobID      string
	TestID     string
	ModelType  string
	Value      float64
	Confidence float64
	Timestamp  string
	Features   map[string]float64
	EnqueuedAt time.Time
}

// Document renders the job in its ml_predictions shape.
func (j PredictionJob) Document() Document {
	features := make(map[string]any, len(j.Features))
	for k, v := range j.Features {
		features[k] = v
	}
	return Document{
		"testId":     j.TestID,
		"modelType":  j.ModelType,
		"model":      j.ModelType,
		"value":      j.Value,
		"confidence": j.Confidence,
		"timestamp":  j.Timestamp,
		"features":   features,
		"jobId":      j.JobID,
	}
}
