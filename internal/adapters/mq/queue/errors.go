package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	ErrFull   = errors.New("analysis queue is full")
	ErrClosed = errors.New("analysis queue is closed")
)
