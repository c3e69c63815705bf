package repository

import "errors"

// Sentinel kinds for shortlist errors.
var (
	ErrNotFound     = errors.New("analysis not found")
	ErrInvalidLimit = errors.New("invalid shortlist limit")
	ErrInvalidEntry = errors.New("invalid analysis record")
)
