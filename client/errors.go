package client

import "errors"

var (
	// ErrValidation marks input rejected locally, before any network
	// traffic (empty names, blank answers, missing vote selection).
	ErrValidation = errors.New("invalid input")

	// ErrNetwork marks a failed request or channel operation. State is
	// left unchanged when it is returned.
	ErrNetwork = errors.New("network failure")
)
