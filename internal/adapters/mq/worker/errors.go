package worker

import "errors"

// Sentinel kinds for worker errors.
var (
	ErrStopped      = errors.New("worker pool stopped")
	ErrBackpressure = errors.New("worker pool queue full")
	ErrPanic        = errors.New("job panicked")
)
