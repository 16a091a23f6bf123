package scheduler

import (
	"context"
	"log/slog"
	"time"

	"seinfeld/internal/domain"
)

// Updater runs one pass over every active person.
type Updater interface {
	UpdateAll(ctx context.Context) (*domain.UpdateStats, error)
}

type Scheduler struct {
	updater  Updater
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

// NewScheduler creates a scheduler running a pass every interval. Each pass
// is bounded by timeout, or by the interval when timeout is zero.
func NewScheduler(updater Updater, interval, timeout time.Duration, logger *slog.Logger) *Scheduler {
	if timeout <= 0 {
		timeout = interval
	}
	return &Scheduler{
		updater:  updater,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
	}
}

// Start runs a pass immediately and then on every tick until ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval, "timeout", s.timeout)

	s.runUpdate(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runUpdate(ctx)
		}
	}
}

func (s *Scheduler) runUpdate(ctx context.Context) {
	updateCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.updater.UpdateAll(updateCtx); err != nil {
		s.logger.Error("update failed", "error", err)
	}
}
