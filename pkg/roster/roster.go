// Package roster loads the student list the attendance summary is joined
// against.
//
// The roster is read from an .xlsx workbook (first sheet) or a .csv file with
// the columns MSSV and Tên Sinh Viên. Lookups are trimmed and
// case-insensitive. A Watcher reloads the roster when the file changes.
package roster

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"rollcall-hq/attendance/pkg/attendance"
)

// DefaultPath is the conventional roster location.
const DefaultPath = "danh_sach_sinh_vien.xlsx"

// Roster is a reloadable, concurrency-safe student list. It implements
// attendance.RosterSource.
type Roster struct {
	path   string
	logger *slog.Logger

	mu       sync.RWMutex
	entries  []attendance.RosterEntry
	index    map[string]int
	source   string
	loadedAt time.Time
	loadErr  error
}

// New returns an empty roster backed by path. Call Reload to read it.
func New(path string) *Roster {
	if path == "" {
		path = DefaultPath
	}
	return &Roster{
		path:    path,
		logger:  slog.Default().With("component", "roster"),
		entries: []attendance.RosterEntry{},
		index:   map[string]int{},
	}
}

// FromEntries returns a roster holding entries, with no backing file.
func FromEntries(entries []attendance.RosterEntry) *Roster {
	r := New("")
	r.set(entries, "memory")
	return r
}

// Path returns the configured roster path.
func (r *Roster) Path() string {
	return r.path
}

// Reload re-reads the roster file. On failure the previous entries are kept.
// A missing file yields ErrRosterNotFound and an empty roster.
func (r *Roster) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	source, err := Resolve(r.path)
	if err != nil {
		r.mu.Lock()
		r.entries = []attendance.RosterEntry{}
		r.index = map[string]int{}
		r.source = ""
		r.loadErr = err
		r.mu.Unlock()

		r.logger.Warn("roster file not found, summaries will list attended students only", "path", r.path)
		return err
	}

	entries, err := LoadFile(source)
	if err != nil {
		r.mu.Lock()
		r.loadErr = err
		r.mu.Unlock()

		r.logger.Error("failed to load roster, keeping previous entries", "path", source, "error", err)
		return err
	}

	r.set(entries, source)
	r.logger.Info("roster loaded", "path", source, "students", len(entries))

	return nil
}

func (r *Roster) set(entries []attendance.RosterEntry, source string) {
	index := make(map[string]int, len(entries))
	for i, e := range entries {
		index[attendance.NormalizeStudentID(e.StudentID)] = i
	}

	r.mu.Lock()
	r.entries = entries
	r.index = index
	r.source = source
	r.loadedAt = time.Now()
	r.loadErr = nil
	r.mu.Unlock()
}

// Entries returns a copy of the roster in file order. A nil roster has no
// entries.
func (r *Roster) Entries() []attendance.RosterEntry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]attendance.RosterEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Lookup finds a student by identifier (trimmed, case-insensitive).
func (r *Roster) Lookup(studentID string) (attendance.RosterEntry, bool) {
	if r == nil {
		return attendance.RosterEntry{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[attendance.NormalizeStudentID(studentID)]
	if !ok {
		return attendance.RosterEntry{}, false
	}
	return r.entries[i], true
}

// Len returns the number of students.
func (r *Roster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}

// Info describes the last load.
type Info struct {
	Path     string    `json:"path"`
	Source   string    `json:"source,omitempty"`
	Students int       `json:"students"`
	LoadedAt time.Time `json:"loaded_at,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Info returns details of the last load.
func (r *Roster) Info() Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info := Info{
		Path:     r.path,
		Source:   r.source,
		Students: len(r.entries),
		LoadedAt: r.loadedAt,
	}
	if r.loadErr != nil {
		info.Error = r.loadErr.Error()
	}
	return info
}

// Ready returns nil when the roster was loaded from a file.
func (r *Roster) Ready() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.loadErr != nil {
		return r.loadErr
	}
	if r.source == "" {
		return errors.New("roster not loaded")
	}
	return nil
}
