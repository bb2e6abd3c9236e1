package fasttext

import (
	"context"
	"fmt"

	"github.com/viant/langprobe/langid"
)

// Model exposes a fastText endpoint as a langid.Predictor.
type Model struct {
	C *Client
}

// Open creates a model handle and verifies the endpoint once.
func Open(ctx context.Context, model, baseURL string, opts ...ClientOption) (*Model, error) {
	if baseURL != "" {
		opts = append([]ClientOption{WithBaseURL(baseURL)}, opts...)
	}
	client := NewClientWithOptions(model, opts...)
	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("%w: fasttext endpoint %v unavailable: %v", langid.ErrConfiguration, client.BaseURL, err)
	}
	return &Model{C: client}, nil
}

func (m *Model) Predict(ctx context.Context, text string, k int) ([]langid.Prediction, error) {
	if m == nil || m.C == nil {
		return nil, fmt.Errorf("%w: fasttext model not configured", langid.ErrConfiguration)
	}
	labels, scores, err := m.C.Predict(ctx, text, k)
	if err != nil {
		return nil, err
	}
	predictions := make([]langid.Prediction, len(labels))
	for i, label := range labels {
		predictions[i] = langid.Prediction{Label: label, Confidence: scores[i]}
	}
	return predictions, nil
}
