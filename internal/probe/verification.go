package probe

import (
	"fmt"
	"time"

	"github.com/sves-daq/backend/internal/domain/prediction"
)

// Violation is one broken guarantee of a prediction reply.
type Violation struct {
	Model  string
	Reason string
}

func (v Violation) String() string { return v.Model + ": " + v.Reason }

// Verify checks a reply against the prediction contract: bounded value,
// the model's fixed confidence, the echoed model name and a UTC
// millisecond timestamp mirrored at the top level.
func Verify(req PredictRequest, resp PredictResponse) []Violation {
	var out []Violation
	add := func(format string, args ...any) {
		out = append(out, Violation{Model: req.ModelType, Reason: fmt.Sprintf(format, args...)})
	}

	p := resp.Prediction
	if p.Value < 0 || p.Value > 100 {
		add("value %.4f outside [0,100]", p.Value)
	}

	m, known := prediction.ParseModelType(req.ModelType)
	if !known {
		m = prediction.ModelUnspecified
	}
	if p.Confidence != m.Confidence() {
		add("confidence %.2f, want %.2f", p.Confidence, m.Confidence())
	}
	if m == prediction.ModelUnspecified && (p.Value < 65 || p.Value >= 85) {
		add("default heuristic value %.4f outside [65,85)", p.Value)
	}

	want := req.ModelType
	if want == "" {
		want = prediction.DefaultModelName
	}
	if p.Model != want {
		add("model %q, want %q", p.Model, want)
	}

	if _, err := time.Parse(prediction.TimestampLayout, p.Timestamp); err != nil {
		add("timestamp %q not in %s", p.Timestamp, prediction.TimestampLayout)
	}
	if resp.Confidence != p.Confidence {
		add("top-level confidence %.2f differs from prediction", resp.Confidence)
	}
	if resp.Timestamp != p.Timestamp {
		add("top-level timestamp %q differs from prediction", resp.Timestamp)
	}
	return out
}
