// Package service wires the history fetcher, the event selector and the worker
// pool into the operations the HTTP API and the daily job depend on.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/okian/onthisday/internal/adapters/mq/queue"
	"github.com/okian/onthisday/internal/adapters/mq/worker"
	"github.com/okian/onthisday/internal/domain/history"
	"github.com/okian/onthisday/internal/domain/model"
	"github.com/okian/onthisday/internal/domain/selection"
	"github.com/okian/onthisday/pkg/logger"
	"github.com/okian/onthisday/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultQueueSize   = 256
	stopTimeout        = 10 * time.Second
	defaultSelectCount = selection.DefaultCount
)

// Service implements the API dependencies for the history system.
type Service struct {
	mu sync.RWMutex

	// Core components
	completer history.Completer
	queue     *queue.InMemoryQueue
	pool      *worker.Pool
	fetcher   *history.Fetcher
	selector  *selection.Selector
	scheduler *cron.Cron

	// Configuration
	workerCount   int
	queueSize     int
	selectCount   int
	dailySchedule string
	now           func() time.Time
	seed          *int64

	// State
	started  bool
	cancel   context.CancelFunc
	lastRun  time.Time
	lastBest []model.Event

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of completion workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending completions.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithSelectCount sets how many events the daily job selects.
func WithSelectCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.selectCount = count
		}
	}
}

// WithDailySchedule sets the cron expression of the daily job. An empty
// expression disables it.
func WithDailySchedule(spec string) Option {
	return func(s *Service) {
		s.dailySchedule = spec
	}
}

// WithClock sets the time source used for "today" and the historical filter.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRandomSeed makes SelectBest reproducible.
func WithRandomSeed(seed int64) Option {
	return func(s *Service) {
		s.seed = &seed
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service backed by c with default configuration.
func New(c history.Completer, opts ...Option) *Service {
	s := &Service{
		completer:   c,
		workerCount: runtime.NumCPU(),
		queueSize:   defaultQueueSize,
		selectCount: defaultSelectCount,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	return s
}

// Start initializes the worker pool, fetcher and selector and schedules the
// daily job. Components outlive ctx; they run until Stop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting history service...")

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue)
	s.pool.Start(runCtx)

	s.fetcher = history.NewFetcher(s.completer, history.WithExecutor(s.pool))
	selOpts := []selection.Option{selection.WithClock(s.now)}
	if s.seed != nil {
		selOpts = append(selOpts, selection.WithRandomSeed(*s.seed))
	}
	s.selector = selection.NewSelector(selOpts...)

	if s.dailySchedule != "" {
		sched := cron.New(cron.WithLocation(time.UTC))
		if _, err := sched.AddFunc(s.dailySchedule, func() { s.runDaily(runCtx) }); err != nil {
			cancel()
			_ = s.pool.Shutdown(ctx)
			return fmt.Errorf("schedule daily job %q: %w", s.dailySchedule, err)
		}
		sched.Start()
		s.scheduler = sched
	}

	s.cancel = cancel
	s.started = true
	s.logger.Info(ctx, "history service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.String("dailySchedule", s.dailySchedule),
	)

	return nil
}

// Stop gracefully shuts down the service. In-flight completions are given a
// bounded time to finish.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	scheduler, pool, cancelRun := s.scheduler, s.pool, s.cancel
	s.scheduler = nil
	s.started = false
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping history service...")

	// A running daily job needs the lock, so wait for it unlocked.
	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	if err := pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
	}
	cancelRun()

	s.logger.Info(ctx, "history service stopped")
}

// Events returns the candidate events for month/day. It falls back to the
// built-in list when the completion service cannot be used.
func (s *Service) Events(ctx context.Context, month, day int) ([]model.Event, error) {
	fetcher, _, err := s.components(month, day)
	if err != nil {
		return nil, err
	}
	return fetcher.Fetch(ctx, month, day), nil
}

// Best fetches the events for month/day and returns one of the most
// interesting.
func (s *Service) Best(ctx context.Context, month, day int) (model.Event, error) {
	fetcher, selector, err := s.components(month, day)
	if err != nil {
		return model.Event{}, err
	}
	return selector.SelectBest(ctx, fetcher.Fetch(ctx, month, day)), nil
}

// Top fetches the events for month/day and returns up to count of them in
// descending interest order.
func (s *Service) Top(ctx context.Context, month, day, count int) ([]model.Event, error) {
	if count < 1 {
		return nil, ErrInvalidCount
	}
	fetcher, selector, err := s.components(month, day)
	if err != nil {
		return nil, err
	}
	return selector.SelectBestN(ctx, fetcher.Fetch(ctx, month, day), count), nil
}

// Today returns the selected events for the current UTC date.
func (s *Service) Today(ctx context.Context) ([]model.Event, error) {
	month, day := s.today()
	return s.Top(ctx, month, day, s.selectCount)
}

// Now returns the service clock reading.
func (s *Service) Now() time.Time {
	return s.now()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":       s.started,
		"workerCount":   s.workerCount,
		"queueSize":     s.queueSize,
		"selectCount":   s.selectCount,
		"dailySchedule": s.dailySchedule,
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		stats["queueLength"] = queueLen
		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.pool.Size())
	}
	if !s.lastRun.IsZero() {
		stats["lastDailyRun"] = s.lastRun.Format(time.RFC3339)
		stats["lastDailyCount"] = len(s.lastBest)
	}

	return stats
}

func (s *Service) components(month, day int) (*history.Fetcher, *selection.Selector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return nil, nil, ErrNotStarted
	}
	if !model.ValidDate(month, day) {
		return nil, nil, fmt.Errorf("%w: %d/%d", ErrInvalidDate, month, day)
	}
	return s.fetcher, s.selector, nil
}

func (s *Service) today() (month, day int) {
	now := s.now().UTC()
	return int(now.Month()), now.Day()
}
