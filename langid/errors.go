package langid

import "errors"

var (
	// ErrConfiguration indicates the model is unavailable, unreadable or misconfigured.
	// It is fatal and never retried.
	ErrConfiguration = errors.New("langid: model configuration error")

	// ErrModelInvocation indicates a single model call failed.
	ErrModelInvocation = errors.New("langid: model invocation failed")
)
