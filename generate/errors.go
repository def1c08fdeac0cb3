package generate

import "errors"

var (
	// ErrNotConfigured means no usable model backend could be built from config.
	ErrNotConfigured = errors.New("model service not configured")
	// ErrModelLoad is fatal for the process: prediction stays disabled.
	ErrModelLoad = errors.New("model load failed")
	// ErrGeneration is transient and scoped to one prediction.
	ErrGeneration = errors.New("generation failed")
)
