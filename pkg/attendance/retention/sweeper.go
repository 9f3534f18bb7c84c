package retention

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"rollcall-hq/attendance/pkg/attendance"
)

// DefaultPlaceholder is shown instead of a reclaimed photo.
const DefaultPlaceholder = "/static/default-avatar.png"

// ErrSweepInProgress is returned when a sweep is requested while another one
// is running.
var ErrSweepInProgress = errors.New("retention sweep already in progress")

// Config contains configuration for the retention sweeper.
type Config struct {
	// Threshold is the photo retention window.
	// Default: 48 hours
	Threshold time.Duration

	// Interval is the time between scheduled sweeps.
	// Default: 1 hour
	Interval time.Duration

	// RunOnStart runs one sweep when the scheduler starts.
	// Default: true
	RunOnStart bool

	// Placeholder is the photo reference shown for reclaimed photos.
	Placeholder string
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		Threshold:   48 * time.Hour,
		Interval:    time.Hour,
		RunOnStart:  true,
		Placeholder: DefaultPlaceholder,
	}
}

// State is the sweeper state.
type State int

const (
	// Idle means no sweep is running.
	Idle State = iota
	// Sweeping means a sweep is in progress.
	Sweeping
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Sweeping:
		return "sweeping"
	default:
		return "unknown"
	}
}

// RecordStore is the store surface used by the sweeper.
type RecordStore interface {
	Update(ctx context.Context, fn func(records []attendance.Record) (bool, error)) error
}

// PhotoDeleter removes photos by reference. Deleting a missing photo must
// succeed.
type PhotoDeleter interface {
	Delete(ctx context.Context, ref string) error
}

// Result describes one sweep.
type Result struct {
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Duration   time.Duration `json:"duration"`
	Cutoff     time.Time     `json:"cutoff"`

	Scanned  int `json:"scanned"`  // Records examined
	Expired  int `json:"expired"`  // Records with a photo older than the cutoff
	Cleared  int `json:"cleared"`  // Photos deleted and references cleared
	Failures int `json:"failures"` // Photos that could not be deleted
	Skipped  int `json:"skipped"`  // Records with an unparseable timestamp
}

// Sweeper reclaims photos of records older than the threshold.
type Sweeper struct {
	store  RecordStore
	photos PhotoDeleter
	clock  *attendance.Clock
	config *Config
	logger *slog.Logger

	// OnSweep, when set, is called after every sweep attempt that ran.
	OnSweep func(Result, error)

	// sweepMu is held for the duration of a sweep.
	sweepMu sync.Mutex

	mu         sync.RWMutex
	state      State
	lastResult *Result
	lastErr    error

	scheduler *Scheduler
}

// NewSweeper creates a sweeper. A nil config uses DefaultConfig.
func NewSweeper(store RecordStore, photos PhotoDeleter, clock *attendance.Clock, config *Config) *Sweeper {
	defaults := DefaultConfig()
	if config == nil {
		config = defaults
	}
	if config.Threshold <= 0 {
		config.Threshold = defaults.Threshold
	}
	if config.Interval <= 0 {
		config.Interval = defaults.Interval
	}
	if config.Placeholder == "" {
		config.Placeholder = defaults.Placeholder
	}

	s := &Sweeper{
		store:  store,
		photos: photos,
		clock:  clock,
		config: config,
		logger: slog.Default().With("component", "attendance.retention"),
	}
	s.scheduler = NewScheduler(s)

	return s
}

// Scheduler returns the sweeper's scheduler.
func (s *Sweeper) Scheduler() *Scheduler {
	return s.scheduler
}

// Config returns the sweeper configuration.
func (s *Sweeper) Config() Config {
	return *s.config
}

// State returns the current state.
func (s *Sweeper) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state
}

// Cutoff returns the oldest timestamp whose photo is still retained.
func (s *Sweeper) Cutoff() time.Time {
	return s.clock.Now().Add(-s.config.Threshold)
}

// SweepOnce runs one sweep. It returns ErrSweepInProgress without waiting
// when another sweep is running.
func (s *Sweeper) SweepOnce(ctx context.Context) (Result, error) {
	if !s.sweepMu.TryLock() {
		return Result{}, ErrSweepInProgress
	}
	defer s.sweepMu.Unlock()

	s.setState(Sweeping)
	defer s.setState(Idle)

	result := Result{StartedAt: s.clock.Now()}
	result.Cutoff = result.StartedAt.Add(-s.config.Threshold)

	s.logger.Debug("retention sweep started", "cutoff", result.Cutoff.Format(attendance.TimestampLayout))

	err := s.store.Update(ctx, func(records []attendance.Record) (bool, error) {
		for i := range records {
			if err := ctx.Err(); err != nil {
				return false, err
			}

			r := &records[i]
			result.Scanned++
			if !r.HasPhoto() {
				continue
			}

			ts, err := s.clock.Parse(r.Timestamp)
			if err != nil {
				result.Skipped++
				s.logger.Warn("skipping record with unparseable timestamp",
					"id", r.ID,
					"timestamp", r.Timestamp,
					"error", err,
				)
				continue
			}
			if !ts.Before(result.Cutoff) {
				continue
			}

			result.Expired++
			if err := s.photos.Delete(ctx, r.PhotoRef); err != nil {
				result.Failures++
				s.logger.Error("failed to delete expired photo",
					"id", r.ID,
					"photo", r.PhotoRef,
					"error", err,
				)
				continue
			}

			s.logger.Debug("reclaimed photo", "id", r.ID, "mssv", r.StudentID, "photo", r.PhotoRef)
			r.PhotoRef = ""
			result.Cleared++
		}
		return result.Cleared > 0, nil
	})

	result.FinishedAt = s.clock.Now()
	result.Duration = result.FinishedAt.Sub(result.StartedAt)

	if err != nil {
		err = attendance.NewSweepError(s.ThresholdHours(), err)
		s.logger.Error("retention sweep aborted", "error", err)
	} else if result.Cleared > 0 || result.Failures > 0 {
		s.logger.Info("retention sweep completed",
			"cleared", result.Cleared,
			"failures", result.Failures,
			"skipped", result.Skipped,
			"duration", result.Duration,
		)
	} else {
		s.logger.Debug("retention sweep completed, nothing to reclaim", "scanned", result.Scanned)
	}

	s.mu.Lock()
	s.lastResult = &result
	s.lastErr = err
	s.mu.Unlock()

	if s.OnSweep != nil {
		s.OnSweep(result, err)
	}

	return result, err
}

// IsImageRetained reports whether a photo taken at timestamp is still within
// the retention window. Blank or unparseable timestamps are not retained.
func (s *Sweeper) IsImageRetained(timestamp string) bool {
	if timestamp == "" {
		return false
	}
	ts, err := s.clock.Parse(timestamp)
	if err != nil {
		return false
	}
	return !ts.Before(s.Cutoff())
}

// DisplayPhoto returns the reference a view should show for rec: its photo
// while retained, the placeholder otherwise.
func (s *Sweeper) DisplayPhoto(rec attendance.Record) string {
	if rec.HasPhoto() && s.IsImageRetained(rec.Timestamp) {
		return rec.PhotoRef
	}
	return s.config.Placeholder
}

// ThresholdHours returns the retention threshold in whole hours.
func (s *Sweeper) ThresholdHours() int {
	return int(s.config.Threshold / time.Hour)
}

// Status is a snapshot of the sweeper and its schedule.
type Status struct {
	State          string     `json:"state"`
	ThresholdHours int        `json:"threshold_hours"`
	Interval       string     `json:"interval"`
	Running        bool       `json:"is_running"`
	NextRun        *time.Time `json:"next_cleanup,omitempty"`
	LastResult     *Result    `json:"last_result,omitempty"`
	LastError      string     `json:"last_error,omitempty"`
}

// Status returns a snapshot of the sweeper state.
func (s *Sweeper) Status() Status {
	s.mu.RLock()
	status := Status{
		State:          s.state.String(),
		ThresholdHours: s.ThresholdHours(),
		Interval:       s.config.Interval.String(),
	}
	if s.lastResult != nil {
		last := *s.lastResult
		status.LastResult = &last
	}
	if s.lastErr != nil {
		status.LastError = s.lastErr.Error()
	}
	s.mu.RUnlock()

	status.Running = s.scheduler.IsRunning()
	status.NextRun = s.scheduler.NextRun()

	return status
}

func (s *Sweeper) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}
