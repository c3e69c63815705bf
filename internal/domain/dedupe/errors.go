package dedupe

import "errors"

// ErrDuplicate is returned by callers that reject a fingerprint already seen.
var ErrDuplicate = errors.New("duplicate submission")
