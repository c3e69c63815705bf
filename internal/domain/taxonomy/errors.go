package taxonomy

import "errors"

// Sentinel errors.
var (
	ErrInvalidTaxonomy = errors.New("invalid taxonomy")
	ErrLoadTaxonomy    = errors.New("load taxonomy failed")
)
