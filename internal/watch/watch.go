// Package watch refreshes the reference data on a cron schedule.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"airdata/internal/core/logger"

	"github.com/robfig/cron/v3"
)

// Job is one refresh run.
type Job func(ctx context.Context) error

// Scheduler runs a Job once at start and then on every schedule tick.
// A run that is still in progress when the next tick fires is skipped.
type Scheduler struct {
	schedule string
	job      Job
	logger   *logger.Logger
	cron     *cron.Cron
}

// New creates a scheduler for a cron spec with a leading seconds field,
// e.g. "0 0 4 * * *".
func New(schedule string, job Job, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.NewLogger(logger.WithName("watch"))
	}
	cronLog := cron.PrintfLogger(slog.NewLogLogger(log.Handler(), slog.LevelInfo))
	return &Scheduler{
		schedule: schedule,
		job:      job,
		logger:   log,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cronLog))),
	}
}

// Start blocks until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.RunOnce(ctx); err != nil {
			s.logger.Error("scheduled refresh failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.schedule, err)
	}

	if err := s.RunOnce(ctx); err != nil {
		s.logger.Error("initial refresh failed", "error", err)
	}

	s.logger.Info("watching reference data", "schedule", s.schedule)
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info("watch stopped")
	return ctx.Err()
}

// RunOnce runs the job immediately.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	start := time.Now()
	if err := s.job(ctx); err != nil {
		return fmt.Errorf("refresh failed after %s: %w", time.Since(start).Round(time.Millisecond), err)
	}
	s.logger.Debug("refresh finished", "duration", time.Since(start).Round(time.Millisecond))
	return nil
}
