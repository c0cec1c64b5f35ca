package service

import (
	"context"
	"fmt"

	"github.com/okian/onthisday/pkg/logger"
	"github.com/okian/onthisday/pkg/metrics"
)

// RunDaily selects today's events and logs them. It is what the cron schedule
// triggers and may also be called directly.
func (s *Service) RunDaily(ctx context.Context) error {
	return s.runDaily(ctx)
}

func (s *Service) runDaily(ctx context.Context) error {
	month, day := s.today()
	events, err := s.Today(ctx)
	if err != nil {
		metrics.RecordDailyRun("error")
		s.logger.Error(ctx, "daily selection failed", logger.Error(err))
		return fmt.Errorf("daily selection: %w", err)
	}

	s.mu.Lock()
	s.lastRun = s.now()
	s.lastBest = events
	s.mu.Unlock()

	metrics.RecordDailyRun(metrics.OutcomeSuccess)
	log := s.logger.With(logger.String("date", fmt.Sprintf("%d/%d", month, day)))
	log.Info(ctx, "on this day", logger.Int("count", len(events)))
	for i, e := range events {
		log.Info(ctx, "historical event",
			logger.Int("rank", i+1),
			logger.String("type", string(e.Type)),
			logger.String("year", e.Year.String()),
			logger.String("description", e.Description),
		)
	}
	return nil
}
