package corpus

import "errors"

// ErrInput marks a document that cannot be analyzed; the run continues without it.
var ErrInput = errors.New("invalid input document")
