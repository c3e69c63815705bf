package engine

import "errors"

// Sentinel errors.
var (
	ErrInvalidInput = errors.New("invalid input")
)
