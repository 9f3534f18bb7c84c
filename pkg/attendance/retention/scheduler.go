package retention

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the sweeper on a fixed interval.
type Scheduler struct {
	sweeper *Sweeper
	cron    *cron.Cron
	mu      sync.Mutex
	logger  *slog.Logger
	running bool
}

// NewScheduler creates a new retention scheduler.
func NewScheduler(sweeper *Sweeper) *Scheduler {
	return &Scheduler{
		sweeper: sweeper,
		cron:    cron.New(),
		logger:  slog.Default().With("component", "attendance.retention.scheduler"),
	}
}

// Start runs one sweep immediately (when RunOnStart is set) and schedules
// further sweeps every Interval. The scheduler stops when ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	spec := fmt.Sprintf("@every %s", s.sweeper.config.Interval)
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid sweep interval %q: %w", s.sweeper.config.Interval, err)
	}

	if s.sweeper.config.RunOnStart {
		s.runSweep(ctx)
	}

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(spec, func() {
		s.runSweep(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("retention scheduler started",
		"interval", s.sweeper.config.Interval,
		"threshold_hours", s.sweeper.ThresholdHours(),
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// runSweep executes a scheduled sweep. Errors are logged only.
func (s *Scheduler) runSweep(ctx context.Context) {
	_, err := s.sweeper.SweepOnce(ctx)
	switch {
	case errors.Is(err, ErrSweepInProgress):
		s.logger.Debug("scheduled sweep skipped, another sweep is running")
	case err != nil:
		s.logger.Error("scheduled sweep failed", "error", err)
	}
}

// Stop stops the scheduler and waits for a running sweep to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.running = false
		s.logger.Info("retention scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextRun returns the next scheduled sweep time, or nil when not scheduled.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil || !s.running {
		return nil
	}

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}
