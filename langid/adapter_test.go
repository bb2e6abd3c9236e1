package langid

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type stubPredictor struct {
	predictions []Prediction
	err         error
	calls       int
	lastK       int
}

func (s *stubPredictor) Predict(_ context.Context, _ string, k int) ([]Prediction, error) {
	s.calls++
	s.lastK = k
	return s.predictions, s.err
}

func TestAdapter_Detect(t *testing.T) {
	tests := []struct {
		name        string
		predictions []Prediction
		options     Options
		expected    List
	}{
		{
			name:        "sorted and canonical",
			predictions: []Prediction{{Label: "__label__fr", Confidence: 0.7}, {Label: "__label__EN", Confidence: 0.2}},
			expected:    List{{Code: "fr", Confidence: 0.7}, {Code: "en", Confidence: 0.2}},
		},
		{
			name:        "min confidence excludes entry before top k",
			predictions: []Prediction{{Label: "de", Confidence: 0.3}, {Label: "fr", Confidence: 0.6}, {Label: "en", Confidence: 0.55}},
			options:     Options{MinConfidence: 0.5, TopK: 2},
			expected:    List{{Code: "fr", Confidence: 0.6}, {Code: "en", Confidence: 0.55}},
		},
		{
			name:        "low entry does not consume top k",
			predictions: []Prediction{{Label: "fr", Confidence: 0.9}, {Label: "de", Confidence: 0.3}},
			options:     Options{MinConfidence: 0.5, TopK: 2},
			expected:    List{{Code: "fr", Confidence: 0.9}},
		},
		{
			name:        "duplicates keep highest",
			predictions: []Prediction{{Label: "en", Confidence: 0.4}, {Label: "__label__en", Confidence: 0.5}},
			expected:    List{{Code: "en", Confidence: 0.5}},
		},
		{
			name:        "ties ordered by code",
			predictions: []Prediction{{Label: "nl", Confidence: 0.5}, {Label: "de", Confidence: 0.5}},
			expected:    List{{Code: "de", Confidence: 0.5}, {Code: "nl", Confidence: 0.5}},
		},
		{
			name:        "confidence clamped",
			predictions: []Prediction{{Label: "en", Confidence: 1.00001}},
			expected:    List{{Code: "en", Confidence: 1}},
		},
		{
			name:     "no predictions",
			expected: List{},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			predictor := &stubPredictor{predictions: tc.predictions}
			adapter, err := NewAdapter(predictor, tc.options)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got, err := adapter.Detect(context.Background(), "some text")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("expected %v, got %v", tc.expected, got)
			}
			if predictor.calls != 1 {
				t.Errorf("expected exactly one model call, got %d", predictor.calls)
			}
		})
	}
}

func TestAdapter_TopKPassedToModel(t *testing.T) {
	predictor := &stubPredictor{}
	adapter, _ := NewAdapter(predictor, Options{TopK: 3})
	_, _ = adapter.Detect(context.Background(), "text")
	if predictor.lastK != 3 {
		t.Fatalf("expected k=3, got %d", predictor.lastK)
	}
	adapter, _ = NewAdapter(predictor, Options{})
	_, _ = adapter.Detect(context.Background(), "text")
	if predictor.lastK != Unbounded {
		t.Fatalf("expected unbounded k, got %d", predictor.lastK)
	}
}

func TestAdapter_EmptyText(t *testing.T) {
	predictor := &stubPredictor{predictions: []Prediction{{Label: "en", Confidence: 1}}}
	adapter, _ := NewAdapter(predictor, Options{})
	got, err := adapter.Detect(context.Background(), "")
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty list, got %v %v", got, err)
	}
}

func TestAdapter_Configuration(t *testing.T) {
	if _, err := NewAdapter(nil, Options{}); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if _, err := NewAdapter(&stubPredictor{}, Options{MinConfidence: 1.5}); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if _, err := NewAdapter(&stubPredictor{}, Options{Policy: "retry"}); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	var adapter *Adapter
	if _, err := adapter.Detect(context.Background(), "text"); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestAdapter_FailurePolicy(t *testing.T) {
	failure := errors.New("connection reset")
	tests := []struct {
		name      string
		policy    FailurePolicy
		err       error
		expectErr error
	}{
		{name: "degrade", policy: FailureDegrade, err: failure},
		{name: "default degrades", policy: "", err: failure},
		{name: "propagate", policy: FailurePropagate, err: failure, expectErr: ErrModelInvocation},
		{name: "configuration never degrades", policy: FailureDegrade, err: ErrConfiguration, expectErr: ErrConfiguration},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			adapter, err := NewAdapter(&stubPredictor{err: tc.err}, Options{Policy: tc.policy})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got, err := adapter.Detect(context.Background(), "text")
			if tc.expectErr == nil {
				if err != nil || len(got) != 0 {
					t.Fatalf("expected degraded empty list, got %v %v", got, err)
				}
				return
			}
			if !errors.Is(err, tc.expectErr) {
				t.Fatalf("expected %v, got %v", tc.expectErr, err)
			}
		})
	}
}

func TestDetectLanguage(t *testing.T) {
	predictor := PredictorFunc(func(ctx context.Context, text string, k int) ([]Prediction, error) {
		return []Prediction{{Label: "__label__ja", Confidence: 0.8}, {Label: "__label__zh", Confidence: 0.15}, {Label: "__label__ko", Confidence: 0.05}}, nil
	})
	got, err := DetectLanguage(context.Background(), predictor, "日本語", 2, 0.1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := List{{Code: "ja", Confidence: 0.8}, {Code: "zh", Confidence: 0.15}}
	if !reflect.DeepEqual(got, expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}
}
