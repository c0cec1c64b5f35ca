package history

import "errors"

// Sentinel kinds for fetch failures. Fetch recovers from all of them; they are
// exposed for FetchErr callers and tests.
var (
	ErrInvalidDate       = errors.New("invalid calendar date")
	ErrEmptyResponse     = errors.New("empty completion")
	ErrMalformedResponse = errors.New("malformed completion")
	ErrNoEvents          = errors.New("completion contained no events")
)
