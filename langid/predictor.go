package langid

import "context"

// Unbounded requests every prediction the model can produce.
const Unbounded = -1

// Prediction is a raw model output pair.
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Predictor is the language-identification model interface.
// Predict returns at most k predictions sorted by descending confidence (k <= 0 means unbounded).
// Implementations must be safe for concurrent use.
type Predictor interface {
	Predict(ctx context.Context, text string, k int) ([]Prediction, error)
}

// PredictorFunc adapts a function to Predictor.
type PredictorFunc func(ctx context.Context, text string, k int) ([]Prediction, error)

// Predict calls f.
func (f PredictorFunc) Predict(ctx context.Context, text string, k int) ([]Prediction, error) {
	return f(ctx, text, k)
}
