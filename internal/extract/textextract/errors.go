package textextract

import "errors"

// Sentinel errors.
var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooLarge        = errors.New("file too large")
	ErrEmptyText       = errors.New("no text could be extracted")
)
