// Package scheduler runs the periodic sweep that releases stale pending
// reservations, so indefinitely forgotten holds do not sit on capacity.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type expiredReleaser interface {
	ReleaseExpired(ctx context.Context, ttl time.Duration) (int, error)
}

type Scheduler struct {
	reservations expiredReleaser
	interval     time.Duration
	ttl          time.Duration
	logger       *zap.Logger
}

func New(reservations expiredReleaser, interval, ttl time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		reservations: reservations,
		interval:     interval,
		ttl:          ttl,
		logger:       logger,
	}
}

// Start blocks until ctx is cancelled, sweeping once per interval.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("reservation sweep started",
		zap.Duration("interval", s.interval),
		zap.Duration("ttl", s.ttl),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reservation sweep stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	released, err := s.reservations.ReleaseExpired(ctx, s.ttl)
	if err != nil {
		s.logger.Error("failed to release expired reservations", zap.Error(err))
		return
	}
	if released > 0 {
		s.logger.Info("stale reservations released", zap.Int("count", released))
	}
}
