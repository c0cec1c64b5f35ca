package llm

import "errors"

// Sentinel kinds for llm errors.
var (
	ErrMissingAPIKey = errors.New("openai api key not configured")
	ErrNoChoices     = errors.New("completion returned no choices")
	ErrRateLimited   = errors.New("completion rate limit wait failed")
)
