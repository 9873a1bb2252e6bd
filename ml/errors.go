package ml

import "errors"

var (
	// ErrModelUnavailable means the artifact could not be loaded. It is fatal
	// at startup.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrInvalidInput means the feature vector does not fit the estimator.
	ErrInvalidInput = errors.New("invalid input")
)
