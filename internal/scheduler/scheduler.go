// Package scheduler runs the pipeline on a fixed interval for long-lived
// deployments where no external cron is available.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
)

// RunFunc executes one pipeline run.
type RunFunc func(ctx context.Context)

// Scheduler triggers pipeline runs on a fixed interval.
type Scheduler struct {
	scheduler *gocron.Scheduler
	interval  time.Duration
	run       RunFunc
	logger    zerolog.Logger
}

// New creates a Scheduler that invokes run every interval.
func New(interval time.Duration, run RunFunc, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		interval:  interval,
		run:       run,
		logger:    logger,
	}
}

// Start schedules the periodic run and starts the scheduler in the
// background. The first run fires immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("invalid scheduler interval %s", s.interval)
	}

	_, err := s.scheduler.Every(s.interval).Do(func() {
		s.logger.Info().Dur("interval", s.interval).Msg("scheduled pipeline run starting")
		s.run(ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule pipeline job: %w", err)
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}
