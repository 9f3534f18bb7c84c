package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"rollcall-hq/attendance/pkg/attendance"
)

// Persistence loads and saves the complete record collection.
type Persistence interface {
	// Load returns every stored record in append order. It returns
	// attendance.ErrStoreNotFound when nothing has been stored yet and
	// *attendance.CorruptStoreError when the stored data cannot be parsed.
	Load(ctx context.Context) ([]attendance.Record, error)

	// Save replaces the stored collection with records.
	Save(ctx context.Context, records []attendance.Record) error

	// Name identifies the backend in errors and logs.
	Name() string

	// Close releases resources held by the backend.
	Close() error
}

// Quarantiner is implemented by persistence backends that can move an
// unreadable backing file out of the way.
type Quarantiner interface {
	// Quarantine renames the backing file and returns its new path.
	Quarantine(ctx context.Context, stamp string) (string, error)
}

// Guard inspects the current records before an append. A non-nil error
// aborts the append and is returned to the caller unchanged. Guards must not
// retain or modify the slice.
type Guard func(existing []attendance.Record) error

// Options configures a Store.
type Options struct {
	// Clock stamps quarantined files. Default: UTC clock.
	Clock *attendance.Clock

	// NewID generates record identifiers. Default: UUID v4.
	NewID func() string
}

// Store is the single writer of the attendance log.
type Store struct {
	persistence Persistence
	clock       *attendance.Clock
	newID       func() string
	logger      *slog.Logger

	mu      sync.RWMutex
	records []attendance.Record
	corrupt error
}

// New creates a store on top of persistence. Call Load before use.
func New(persistence Persistence, opts Options) *Store {
	if opts.Clock == nil {
		opts.Clock = attendance.NewClock(nil)
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}

	return &Store{
		persistence: persistence,
		clock:       opts.Clock,
		newID:       opts.NewID,
		logger:      slog.Default().With("component", "attendance.store", "backend", persistence.Name()),
		records:     []attendance.Record{},
	}
}

// Load reads the full collection from persistence. A missing backing file
// yields an empty collection that is persisted immediately. A malformed one
// leaves the store empty and marked corrupt.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.persistence.Load(ctx)
	switch {
	case errors.Is(err, attendance.ErrStoreNotFound):
		s.logger.Info("attendance log not found, starting empty")
		if err := s.persistence.Save(ctx, []attendance.Record{}); err != nil {
			return s.storageError("create", err)
		}
		s.records = []attendance.Record{}
		s.corrupt = nil
		return nil

	case errors.Is(err, attendance.ErrStoreCorrupt):
		s.logger.Error("attendance log is corrupt, writes disabled until repaired or reset", "error", err)
		s.records = []attendance.Record{}
		s.corrupt = err
		return err

	case err != nil:
		return s.storageError("load", err)
	}

	assigned := 0
	for i := range records {
		if records[i].ID == "" {
			records[i].ID = s.newID()
			assigned++
		}
	}
	if assigned > 0 {
		if err := s.persistence.Save(ctx, records); err != nil {
			return s.storageError("save", err)
		}
		s.logger.Info("assigned identifiers to legacy records", "count", assigned)
	}

	s.records = records
	s.corrupt = nil
	s.logger.Info("attendance log loaded", "records", len(records))

	return nil
}

// Append adds rec at the end of the log and rewrites the backing store.
// No duplicate checking is performed. The stored record, including its
// assigned ID, is returned.
func (s *Store) Append(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	return s.AppendIf(ctx, rec, nil)
}

// AppendIf appends rec only if guard accepts the current records. The guard
// runs inside the store's critical section.
func (s *Store) AppendIf(ctx context.Context, rec attendance.Record, guard Guard) (attendance.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.corrupt != nil {
		return attendance.Record{}, attendance.ErrStoreCorrupt
	}

	if guard != nil {
		if err := guard(s.records); err != nil {
			return attendance.Record{}, err
		}
	}

	if rec.ID == "" {
		rec.ID = s.newID()
	}

	next := make([]attendance.Record, len(s.records), len(s.records)+1)
	copy(next, s.records)
	next = append(next, rec)

	if err := s.persistence.Save(ctx, next); err != nil {
		return attendance.Record{}, s.storageError("append", err)
	}

	s.records = next
	s.logger.Debug("record appended", "id", rec.ID, "mssv", rec.StudentID, "day", rec.Day)

	return rec, nil
}

// DeleteByID removes the first record with the given identifier and returns
// it. *attendance.NotFoundError is returned when no record matches.
func (s *Store) DeleteByID(ctx context.Context, id string) (attendance.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.corrupt != nil {
		return attendance.Record{}, attendance.ErrStoreCorrupt
	}

	idx := -1
	for i := range s.records {
		if s.records[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return attendance.Record{}, attendance.NewNotFoundError("record", id)
	}

	removed := s.records[idx]
	next := make([]attendance.Record, 0, len(s.records)-1)
	next = append(next, s.records[:idx]...)
	next = append(next, s.records[idx+1:]...)

	if err := s.persistence.Save(ctx, next); err != nil {
		return attendance.Record{}, s.storageError("delete", err)
	}

	s.records = next
	s.logger.Info("record deleted", "id", id, "mssv", removed.StudentID)

	return removed, nil
}

// Update applies fn to a copy of the records. When fn reports a change the
// copy replaces the collection with a single rewrite. An error from fn
// aborts without writing.
func (s *Store) Update(ctx context.Context, fn func(records []attendance.Record) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.corrupt != nil {
		return attendance.ErrStoreCorrupt
	}

	working := attendance.CloneRecords(s.records)
	changed, err := fn(working)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	if err := s.persistence.Save(ctx, working); err != nil {
		return s.storageError("update", err)
	}

	s.records = working
	return nil
}

// Reset discards a corrupt backing file and starts with an empty log. When
// the backend supports it the corrupt file is moved aside first.
func (s *Store) Reset(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var moved string
	if q, ok := s.persistence.(Quarantiner); ok && s.corrupt != nil {
		stamp := s.clock.Now().Format("20060102-150405")
		path, err := q.Quarantine(ctx, stamp)
		if err != nil {
			return "", s.storageError("quarantine", err)
		}
		moved = path
	}

	if err := s.persistence.Save(ctx, []attendance.Record{}); err != nil {
		return moved, s.storageError("reset", err)
	}

	s.records = []attendance.Record{}
	s.corrupt = nil
	s.logger.Warn("attendance log reset", "quarantined_to", moved)

	return moved, nil
}

// All returns a copy of every record in append order.
func (s *Store) All() []attendance.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return attendance.CloneRecords(s.records)
}

// FilterByDay returns the records whose Day equals day.
func (s *Store) FilterByDay(day string) []attendance.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []attendance.Record{}
	for _, r := range s.records {
		if r.Day == day {
			out = append(out, r)
		}
	}
	return out
}

// FilterByDateRange returns the records whose Day lies in [start, end].
// Either bound may be empty to leave that side open.
func (s *Store) FilterByDateRange(start, end string) []attendance.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []attendance.Record{}
	for _, r := range s.records {
		if start != "" && r.Day < start {
			continue
		}
		if end != "" && r.Day > end {
			continue
		}
		out = append(out, r)
	}
	return out
}

// View calls fn with the live record slice under the read lock. fn must not
// retain or modify the slice.
func (s *Store) View(fn func(records []attendance.Record)) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fn(s.records)
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

// Corrupt returns the load error that disabled writes, or nil.
func (s *Store) Corrupt() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.corrupt
}

// Backend returns the persistence backend name.
func (s *Store) Backend() string {
	return s.persistence.Name()
}

// Close releases the persistence backend.
func (s *Store) Close() error {
	return s.persistence.Close()
}

func (s *Store) storageError(op string, err error) error {
	var se *attendance.StorageError
	if errors.As(err, &se) {
		return err
	}
	return attendance.NewStorageError(s.persistence.Name(), op, err)
}
