package llm

import "errors"

// Sentinel errors.
var (
	ErrDisabled      = errors.New("llm parsing disabled: no api key")
	ErrEmptyResponse = errors.New("llm returned an empty response")
	ErrSchema        = errors.New("llm response does not match the candidate schema")
)
