package service

import "errors"

// Sentinel error kinds for the service.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrInvalidDate  = errors.New("invalid calendar date")
	ErrInvalidCount = errors.New("count must be positive")
)
