package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // cgo driver, registered as "sqlite3"
	_ "modernc.org/sqlite"          // pure Go driver, registered as "sqlite"

	"rollcall-hq/attendance/pkg/attendance"
)

const (
	// DriverCGO selects github.com/mattn/go-sqlite3.
	DriverCGO = "sqlite3"

	// DriverPure selects modernc.org/sqlite.
	DriverPure = "sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS attendance_records (
    seq INTEGER PRIMARY KEY,
    id TEXT NOT NULL,
    mssv TEXT NOT NULL,
    ten TEXT NOT NULL DEFAULT '',
    ip TEXT NOT NULL DEFAULT '',
    hinh_anh TEXT NOT NULL DEFAULT '',
    thoi_gian TEXT NOT NULL,
    ngay TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_attendance_ngay ON attendance_records(ngay);
CREATE INDEX IF NOT EXISTS idx_attendance_mssv ON attendance_records(mssv);
`

// SQLiteConfig contains configuration for the SQLite backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// Driver is DriverCGO or DriverPure.
	// Default: DriverPure
	Driver string

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() SQLiteConfig {
	return SQLiteConfig{
		Path:        "logs/diem_danh.db",
		Driver:      DriverPure,
		BusyTimeout: 5 * time.Second,
	}
}

// SQLite persists records in a single table. Save replaces the table
// contents inside one transaction.
type SQLite struct {
	db     *sql.DB
	config SQLiteConfig
	logger *slog.Logger
}

// NewSQLite opens (and if needed creates) the database.
func NewSQLite(cfg SQLiteConfig) (*SQLite, error) {
	defaults := DefaultSQLiteConfig()
	if cfg.Path == "" {
		cfg.Path = defaults.Path
	}
	if cfg.Driver == "" {
		cfg.Driver = defaults.Driver
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = defaults.BusyTimeout
	}
	if cfg.Driver != DriverCGO && cfg.Driver != DriverPure {
		return nil, attendance.NewStorageError("sqlite", "open",
			fmt.Errorf("unsupported driver %q (want %q or %q)", cfg.Driver, DriverCGO, DriverPure))
	}

	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, attendance.NewStorageError("sqlite", "mkdir", err)
		}
	}

	db, err := sql.Open(cfg.Driver, cfg.Path)
	if err != nil {
		return nil, attendance.NewStorageError("sqlite", "open", err)
	}

	// SQLite only supports a single writer; pragmas are per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLite{
		db:     db,
		config: cfg,
		logger: slog.Default().With("component", "attendance.store.sqlite"),
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Info("SQLite attendance store initialized",
		"path", cfg.Path,
		"driver", cfg.Driver,
	)

	return s, nil
}

func (s *SQLite) initialize() error {
	if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return attendance.NewStorageError("sqlite", "enable_wal", err)
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return attendance.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(sqliteSchema); err != nil {
		return attendance.NewStorageError("sqlite", "create_schema", err)
	}
	return nil
}

// Name implements Persistence.
func (s *SQLite) Name() string {
	return "sqlite"
}

// Load implements Persistence. A freshly created database loads as an empty
// log.
func (s *SQLite) Load(ctx context.Context) ([]attendance.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, mssv, ten, ip, hinh_anh, thoi_gian, ngay
		FROM attendance_records
		ORDER BY seq`)
	if err != nil {
		return nil, attendance.NewStorageError("sqlite", "load", err)
	}
	defer rows.Close()

	records := []attendance.Record{}
	for rows.Next() {
		var r attendance.Record
		if err := rows.Scan(&r.ID, &r.StudentID, &r.StudentName, &r.SourceAddress, &r.PhotoRef, &r.Timestamp, &r.Day); err != nil {
			return nil, attendance.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, attendance.NewStorageError("sqlite", "load", err)
	}

	return records, nil
}

// Save implements Persistence.
func (s *SQLite) Save(ctx context.Context, records []attendance.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return attendance.NewStorageError("sqlite", "begin", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM attendance_records"); err != nil {
		return attendance.NewStorageError("sqlite", "clear", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO attendance_records (seq, id, mssv, ten, ip, hinh_anh, thoi_gian, ngay)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return attendance.NewStorageError("sqlite", "prepare", err)
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx, i+1, r.ID, r.StudentID, r.StudentName, r.SourceAddress, r.PhotoRef, r.Timestamp, r.Day); err != nil {
			return attendance.NewStorageError("sqlite", "insert", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return attendance.NewStorageError("sqlite", "commit", err)
	}
	return nil
}

// Close implements Persistence.
func (s *SQLite) Close() error {
	return s.db.Close()
}
