package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"rollcall-hq/attendance/pkg/attendance"
	"rollcall-hq/attendance/pkg/attendance/aggregate"
	"rollcall-hq/attendance/pkg/attendance/checkin"
	"rollcall-hq/attendance/pkg/attendance/dedup"
	"rollcall-hq/attendance/pkg/attendance/retention"
	"rollcall-hq/attendance/pkg/attendance/store"
	"rollcall-hq/attendance/pkg/attendance/uploads"
	"rollcall-hq/attendance/pkg/config"
	"rollcall-hq/attendance/pkg/roster"
	"rollcall-hq/attendance/pkg/telemetry"
)

// app holds the components shared by the server and the offline commands.
type app struct {
	cfg   *config.Config
	clock *attendance.Clock

	persistence store.Persistence
	store       *store.Store
	uploads     *uploads.Dir
	roster      *roster.Roster

	checkins   *checkin.Service
	aggregator *aggregate.Aggregator
	sweeper    *retention.Sweeper

	// loadErr is the error the store reported when loading, typically a
	// corrupt log. The store still serves reads when it is set.
	loadErr error
}

// openPersistence selects the storage backend named in the config.
func openPersistence(cfg *config.StorageConfig) (store.Persistence, error) {
	switch cfg.Backend {
	case "json":
		return store.NewJSONFile(cfg.JSON.Path), nil
	case "sqlite":
		return store.NewSQLite(store.SQLiteConfig{
			Path:        cfg.SQLite.Path,
			Driver:      cfg.SQLite.Driver,
			BusyTimeout: cfg.SQLite.BusyTimeout,
		})
	case "memory":
		return store.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}
}

// newApp opens the store, the upload directory and the roster and builds
// the services on top of them. A corrupt log is reported in app.loadErr
// rather than as an error.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	clock, err := attendance.LoadClock(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	persistence, err := openPersistence(&cfg.Storage)
	if err != nil {
		return nil, err
	}

	st := store.New(persistence, store.Options{Clock: clock})
	loadErr := st.Load(ctx)
	if loadErr != nil && !errors.Is(loadErr, attendance.ErrStoreCorrupt) {
		_ = persistence.Close()
		return nil, loadErr
	}

	dir, err := uploads.NewDir(cfg.Uploads.Dir, cfg.Uploads.URLPrefix)
	if err != nil {
		_ = persistence.Close()
		return nil, err
	}

	r := roster.New(cfg.Roster.Path)
	if err := r.Reload(ctx); err != nil && !errors.Is(err, roster.ErrRosterNotFound) {
		slog.Warn("roster could not be loaded", "path", cfg.Roster.Path, "error", err)
	}

	a := &app{
		cfg:         cfg,
		clock:       clock,
		persistence: persistence,
		store:       st,
		uploads:     dir,
		roster:      r,
		loadErr:     loadErr,
	}

	a.checkins = checkin.NewService(st, dir, r, dedup.New(st, clock), clock, checkin.Config{
		MaxPhotoBytes:        cfg.Server.MaxUploadBytes,
		AllowUnknownStudents: cfg.Roster.AllowUnknown,
	})
	a.aggregator = aggregate.NewAggregator(st, r, clock)
	a.sweeper = retention.NewSweeper(st, dir, clock, &retention.Config{
		Threshold:   cfg.Retention.Threshold,
		Interval:    cfg.Retention.Interval,
		RunOnStart:  cfg.Retention.RunOnStart,
		Placeholder: cfg.Uploads.Placeholder,
	})

	return a, nil
}

// resetCorruptStore moves a corrupt log aside and starts an empty one.
func (a *app) resetCorruptStore(ctx context.Context) error {
	if a.loadErr == nil {
		return nil
	}
	moved, err := a.store.Reset(ctx)
	if err != nil {
		return err
	}
	slog.Warn("corrupt attendance log reset", "quarantined_to", moved)
	a.loadErr = nil
	return nil
}

// instrument points the component hooks at the metrics collector and
// registers the health checks.
func (a *app) instrument(tel *telemetry.Telemetry) error {
	m := tel.Metrics

	a.checkins.OnOutcome = m.RecordCheckin
	a.sweeper.OnSweep = func(res retention.Result, err error) {
		m.RecordSweep(res.Duration, res.Cleared, res.Failures, err)
	}
	if err := m.RegisterGaugeFunc("records", "Records in the attendance log", func() float64 {
		return float64(a.store.Len())
	}); err != nil {
		return fmt.Errorf("failed to register records gauge: %w", err)
	}

	h := tel.Health
	h.RegisterCheck("store", func(ctx context.Context) error {
		return a.store.Corrupt()
	})
	h.RegisterCheck("uploads", func(ctx context.Context) error {
		return a.uploads.Writable()
	})
	h.RegisterAdvisoryCheck("roster", func(ctx context.Context) error {
		return a.roster.Ready()
	})

	return nil
}

// requireHealthyStore returns the load error for commands that must not
// work on a corrupt log.
func (a *app) requireHealthyStore() error {
	if a.loadErr != nil {
		return fmt.Errorf("%w (run 'rollcall store repair' or 'rollcall run --reset-corrupt-store')", a.loadErr)
	}
	return nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		slog.Warn("failed to close store", "error", err)
	}
}
