package langid

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// FailurePolicy selects how a failed model call is handled.
type FailurePolicy string

const (
	// FailureDegrade replaces a failed model call with an empty list.
	FailureDegrade FailurePolicy = "degrade"
	// FailurePropagate returns the model error to the caller.
	FailurePropagate FailurePolicy = "propagate"
)

// ParseFailurePolicy parses a policy name; empty selects FailureDegrade.
func ParseFailurePolicy(name string) (FailurePolicy, error) {
	switch FailurePolicy(strings.ToLower(strings.TrimSpace(name))) {
	case "", FailureDegrade:
		return FailureDegrade, nil
	case FailurePropagate:
		return FailurePropagate, nil
	}
	return "", fmt.Errorf("unsupported failure policy: %q", name)
}

// Options controls list filtering and failure handling.
type Options struct {
	// MinConfidence drops entries below the threshold, applied before TopK.
	MinConfidence float64 `yaml:"minConfidence" json:"minConfidence"`
	// TopK truncates the list; zero or negative means unbounded.
	TopK int `yaml:"topK" json:"topK"`
	// Policy selects model failure handling.
	Policy FailurePolicy `yaml:"failurePolicy" json:"failurePolicy"`
}

// Adapter wraps a Predictor and normalizes its output into a List.
type Adapter struct {
	predictor Predictor
	options   Options
}

// NewAdapter creates an adapter around an already loaded model handle.
func NewAdapter(predictor Predictor, options Options) (*Adapter, error) {
	if predictor == nil {
		return nil, fmt.Errorf("%w: language model is not loaded", ErrConfiguration)
	}
	if options.MinConfidence < 0 || options.MinConfidence > 1 {
		return nil, fmt.Errorf("%w: min confidence %v outside [0,1]", ErrConfiguration, options.MinConfidence)
	}
	policy, err := ParseFailurePolicy(string(options.Policy))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	options.Policy = policy
	return &Adapter{predictor: predictor, options: options}, nil
}

// Options returns the adapter options.
func (a *Adapter) Options() Options {
	return a.options
}

// Predict invokes the model exactly once for non blank text and normalizes the result.
// Model failures are returned wrapped in ErrModelInvocation, configuration failures
// in ErrConfiguration; the failure policy is not applied.
func (a *Adapter) Predict(ctx context.Context, text string) (List, error) {
	if a == nil || a.predictor == nil {
		return nil, fmt.Errorf("%w: language model is not loaded", ErrConfiguration)
	}
	if strings.TrimSpace(text) == "" {
		return List{}, nil
	}
	k := Unbounded
	if a.options.TopK > 0 {
		k = a.options.TopK
	}
	predictions, err := a.predictor.Predict(ctx, text, k)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, ErrConfiguration) || errors.Is(err, ErrModelInvocation) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrModelInvocation, err)
	}
	return Normalize(predictions, a.options.MinConfidence, a.options.TopK), nil
}

// Detect is Predict with the failure policy applied: under FailureDegrade a failed model
// call yields an empty list and no error.
func (a *Adapter) Detect(ctx context.Context, text string) (List, error) {
	languages, err := a.Predict(ctx, text)
	if err != nil && a.Degrades(err) {
		return List{}, nil
	}
	return languages, err
}

// Degrades reports whether err is absorbed by the failure policy.
func (a *Adapter) Degrades(err error) bool {
	return a.options.Policy == FailureDegrade && errors.Is(err, ErrModelInvocation)
}

// DetectLanguage returns the normalized languages of text using predictor.
func DetectLanguage(ctx context.Context, predictor Predictor, text string, topK int, minConfidence float64) (List, error) {
	adapter, err := NewAdapter(predictor, Options{MinConfidence: minConfidence, TopK: topK, Policy: FailurePropagate})
	if err != nil {
		return nil, err
	}
	return adapter.Detect(ctx, text)
}
