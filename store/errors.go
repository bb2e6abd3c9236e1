package store

import "errors"

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("run not found")
