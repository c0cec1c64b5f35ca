// Package history fetches candidate historical events for a calendar date
// from a text-generation service.
//
// Fetch never fails: any request, dispatch or parse error is logged and the
// built-in fallback list is returned instead.
package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/onthisday/internal/domain/model"
	"github.com/okian/onthisday/pkg/logger"
	"github.com/okian/onthisday/pkg/metrics"
)

// Completer produces a single text completion for a system instruction and prompt.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Executor runs a blocking call off the caller's goroutine and waits for it.
type Executor interface {
	Do(ctx context.Context, fn func(ctx context.Context) (string, error)) (string, error)
}

// Option applies a configuration option to the Fetcher.
type Option func(*Fetcher)

// WithExecutor dispatches completions through e, typically a worker pool.
func WithExecutor(e Executor) Option {
	return func(f *Fetcher) {
		if e != nil {
			f.executor = e
		}
	}
}

// WithLogger sets a custom logger for the fetcher.
func WithLogger(l logger.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// Fetcher retrieves candidate events for a date.
type Fetcher struct {
	completer Completer
	executor  Executor
	logger    logger.Logger
}

// NewFetcher creates a fetcher backed by c.
func NewFetcher(c Completer, opts ...Option) *Fetcher {
	f := &Fetcher{
		completer: c,
		executor:  goExecutor{},
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = logger.Get().Named("history")
	}
	return f
}

// Fetch returns the candidate events for month/day, or the fallback list if
// anything goes wrong. The result is never empty.
func (f *Fetcher) Fetch(ctx context.Context, month, day int) []model.Event {
	events, err := f.FetchErr(ctx, month, day)
	if err != nil {
		f.logger.Error(ctx, "error fetching historical events",
			logger.Int("month", month),
			logger.Int("day", day),
			logger.Error(err),
		)
		metrics.RecordFetch(metrics.OutcomeFallback)
		metrics.RecordFallback(fallbackReason(err))

		f.logger.Warn(ctx, "using fallback events", logger.String("date", fmt.Sprintf("%d/%d", month, day)))
		return FallbackEvents()
	}

	metrics.RecordFetch(metrics.OutcomeSuccess)
	metrics.RecordEventsFetched(len(events))
	f.logger.Info(ctx, "fetched events",
		logger.Int("count", len(events)),
		logger.String("date", fmt.Sprintf("%d/%d", month, day)),
	)
	return events
}

// FetchErr is Fetch without the fallback: it reports why a fetch failed.
func (f *Fetcher) FetchErr(ctx context.Context, month, day int) ([]model.Event, error) {
	prompt, err := Prompt(month, day)
	if err != nil {
		return nil, err
	}
	if f.completer == nil {
		return nil, errors.New("no completer configured")
	}

	start := time.Now()
	content, err := f.executor.Do(ctx, func(ctx context.Context) (string, error) {
		return f.completer.Complete(ctx, SystemInstruction, prompt)
	})
	metrics.RecordCompletionLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordCompletionError()
		return nil, fmt.Errorf("completion request: %w", err)
	}

	events, err := ParseResponse(content)
	if err != nil {
		f.logger.Debug(ctx, "unparseable completion", logger.String("content", content))
		return nil, err
	}
	return events, nil
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidDate):
		return "invalid_date"
	case errors.Is(err, ErrEmptyResponse), errors.Is(err, ErrNoEvents):
		return "empty_response"
	case errors.Is(err, ErrMalformedResponse):
		return "parse_error"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "request_error"
	}
}

// goExecutor runs each call on its own goroutine. It is the default when no
// worker pool is supplied.
type goExecutor struct{}

func (goExecutor) Do(ctx context.Context, fn func(ctx context.Context) (string, error)) (string, error) {
	type result struct {
		value string
		err   error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		done <- result{value: v, err: err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
