package usecase

import (
	"context"
	"log/slog"
	"time"

	"TrendsLibrary/internal/logging"
	"TrendsLibrary/internal/ports"
)

// RunFunc is a unit of recurring work, such as one static-site run.
type RunFunc func(ctx context.Context, trigger time.Time) error

// Scheduler wires the cron driver with a recurring runner.
type Scheduler struct {
	driver ports.Scheduler
	run    RunFunc
	logger *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring jobs.
func NewScheduler(driver ports.Scheduler, run RunFunc, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Scheduler{driver: driver, run: run, logger: logger}
}

// Start registers the run func with the provided scheduler. Run errors are logged, not returned.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.run == nil {
		return nil
	}

	job := func(trigger time.Time) {
		if err := s.run(ctx, trigger); err != nil {
			s.logger.Error("scheduled run failed", "trigger", trigger, "error", err)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
