// Package selection ranks candidate historical events and picks the most
// interesting ones.
//
// Both selection modes share one ranking routine: filter to the historical
// subset, score, stable sort. They differ only in the final pick strategy.
package selection

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/okian/onthisday/internal/domain/model"
	"github.com/okian/onthisday/pkg/logger"
	"github.com/okian/onthisday/pkg/metrics"
)

// Default selection configuration constants.
const (
	DefaultCount     = 5
	randomPoolSize   = 3
	minimumAgeYears  = 50
	logSnippetLength = 100
)

// Selection modes, used as metric labels.
const (
	modeBest = "best"
	modeTopN = "top_n"
)

// Scored pairs an event with its heuristic score.
type Scored struct {
	Event model.Event
	Score int
}

// strategy picks the final selection from a ranked, non-empty list.
type strategy func(ranked []Scored) []Scored

// Option applies a configuration option to the Selector.
type Option func(*Selector)

// WithClock sets the time source used to compute the current year.
func WithClock(now func() time.Time) Option {
	return func(s *Selector) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRandomSeed makes the top-3 pick reproducible.
func WithRandomSeed(seed int64) Option {
	return func(s *Selector) {
		s.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // selection variety, not security
	}
}

// WithLogger sets a custom logger for the selector.
func WithLogger(l logger.Logger) Option {
	return func(s *Selector) {
		if l != nil {
			s.logger = l
		}
	}
}

// Selector picks events. It is safe for concurrent use.
type Selector struct {
	now    func() time.Time
	logger logger.Logger

	mu  sync.Mutex
	rng *rand.Rand // nil means the auto-seeded global source
}

// NewSelector creates a selector with configuration options.
func NewSelector(opts ...Option) *Selector {
	s := &Selector{
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("selection")
	}
	return s
}

// SelectBest returns one event drawn uniformly from the three best scored
// candidates, so repeated calls on the same data vary.
func (s *Selector) SelectBest(ctx context.Context, events []model.Event) model.Event {
	picked := s.choose(events, s.randomTop(randomPoolSize))
	metrics.RecordSelection(modeBest)
	metrics.RecordSelectionScore(picked[0].Score)

	s.logger.Info(ctx, "selected event",
		logger.String("year", picked[0].Event.Year.String()),
		logger.String("description", snippet(picked[0].Event.Description, logSnippetLength)),
		logger.Int("score", picked[0].Score),
	)
	return picked[0].Event
}

// SelectBestN returns up to count events in score order. The result is
// deterministic and never empty. A count below one selects DefaultCount.
func (s *Selector) SelectBestN(ctx context.Context, events []model.Event, count int) []model.Event {
	if count < 1 {
		count = DefaultCount
	}
	picked := s.choose(events, topN(count))
	metrics.RecordSelection(modeTopN)

	out := make([]model.Event, len(picked))
	for i, p := range picked {
		out[i] = p.Event
		metrics.RecordSelectionScore(p.Score)
	}

	s.logger.Info(ctx, "selected events", logger.Int("count", len(out)))
	for _, p := range picked {
		s.logger.Info(ctx, "selected event",
			logger.String("year", p.Event.Year.String()),
			logger.String("description", snippet(p.Event.Description, 80)),
			logger.Int("score", p.Score),
		)
	}
	return out
}

// Rank filters events to the historical subset, scores them and sorts by
// descending score. Ties keep their input order.
func (s *Selector) Rank(events []model.Event) []Scored {
	pool := s.historical(events)
	ranked := make([]Scored, len(pool))
	for i, e := range pool {
		ranked[i] = Scored{Event: e, Score: Score(e)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// choose runs the shared ranking and applies pick. It never returns an empty slice.
func (s *Selector) choose(events []model.Event, pick strategy) []Scored {
	fallback := []Scored{{Event: FallbackEvent(), Score: Score(FallbackEvent())}}
	if len(events) == 0 {
		return fallback
	}
	picked := pick(s.Rank(events))
	if len(picked) == 0 {
		return fallback
	}
	return picked
}

// historical keeps valid events more than minimumAgeYears old, or all events
// when none are.
func (s *Selector) historical(events []model.Event) []model.Event {
	cutoff := s.now().Year() - minimumAgeYears
	out := make([]model.Event, 0, len(events))
	for _, e := range events {
		if y, ok := e.Year.Int(); ok && y < cutoff && e.Valid() {
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		return events
	}
	return out
}

func (s *Selector) randomTop(size int) strategy {
	return func(ranked []Scored) []Scored {
		n := min(size, len(ranked))
		if n == 0 {
			return nil
		}
		i := s.intn(n)
		return ranked[i : i+1]
	}
}

func topN(count int) strategy {
	return func(ranked []Scored) []Scored {
		return ranked[:min(count, len(ranked))]
	}
}

func (s *Selector) intn(n int) int {
	if s.rng == nil {
		return rand.Intn(n) //nolint:gosec // selection variety, not security
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

func snippet(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
