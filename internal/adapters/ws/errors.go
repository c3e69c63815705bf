package ws

import "errors"

// Sentinel kinds for hub errors.
var (
	ErrInvalidUpdate = errors.New("invalid process update")
	ErrClosed        = errors.New("hub is closed")
)
