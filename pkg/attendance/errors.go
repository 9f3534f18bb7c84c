package attendance

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreNotFound is returned by persistence strategies when the backing
	// file does not exist yet.
	ErrStoreNotFound = errors.New("attendance store not found")

	// ErrStoreCorrupt is returned by mutating store operations while the
	// backing file is known to be unreadable. The operator must repair or
	// reset the store first.
	ErrStoreCorrupt = errors.New("attendance store is corrupt")
)

// ValidationError reports a submission rejected before touching the store.
type ValidationError struct {
	Field   string // Offending input field ("mssv", "hinhAnh", "date", ...)
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error [field=%s]: %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// DuplicateError reports a second check-in for the same student and day.
type DuplicateError struct {
	StudentID string
	Day       string
}

// Error implements the error interface.
func (e *DuplicateError) Error() string {
	return fmt.Sprintf("student %s already checked in on %s", e.StudentID, e.Day)
}

// NewDuplicateError creates a new DuplicateError.
func NewDuplicateError(studentID, day string) *DuplicateError {
	return &DuplicateError{
		StudentID: studentID,
		Day:       day,
	}
}

// NotFoundError reports a lookup miss.
type NotFoundError struct {
	Kind string // "record" or "student"
	ID   string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(kind, id string) *NotFoundError {
	return &NotFoundError{
		Kind: kind,
		ID:   id,
	}
}

// StorageError represents a read, write or delete failure against the
// backing file, the database or the upload directory.
type StorageError struct {
	Backend   string // "json", "sqlite", "memory", "uploads"
	Operation string // "load", "save", "delete", ...
	Cause     error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{
		Backend:   backend,
		Operation: operation,
		Cause:     cause,
	}
}

// CorruptStoreError reports a backing file that exists but cannot be parsed.
// It matches ErrStoreCorrupt with errors.Is.
type CorruptStoreError struct {
	Path  string
	Cause error
}

// Error implements the error interface.
func (e *CorruptStoreError) Error() string {
	return fmt.Sprintf("attendance store %s is corrupt: %v", e.Path, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *CorruptStoreError) Unwrap() error {
	return e.Cause
}

// Is makes errors.Is(err, ErrStoreCorrupt) hold for any CorruptStoreError.
func (e *CorruptStoreError) Is(target error) bool {
	return target == ErrStoreCorrupt
}

// NewCorruptStoreError creates a new CorruptStoreError.
func NewCorruptStoreError(path string, cause error) *CorruptStoreError {
	return &CorruptStoreError{
		Path:  path,
		Cause: cause,
	}
}

// SweepError represents a sweep cycle aborted by a store failure.
type SweepError struct {
	ThresholdHours int
	Cause          error
}

// Error implements the error interface.
func (e *SweepError) Error() string {
	return fmt.Sprintf("retention sweep error [threshold_hours=%d]: %v", e.ThresholdHours, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *SweepError) Unwrap() error {
	return e.Cause
}

// NewSweepError creates a new SweepError.
func NewSweepError(thresholdHours int, cause error) *SweepError {
	return &SweepError{
		ThresholdHours: thresholdHours,
		Cause:          cause,
	}
}

// ExportError represents an error during export.
type ExportError struct {
	Format      string
	RecordCount int
	Cause       error
}

// Error implements the error interface.
func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [format=%s, record_count=%d]: %v", e.Format, e.RecordCount, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *ExportError) Unwrap() error {
	return e.Cause
}

// NewExportError creates a new ExportError.
func NewExportError(format string, recordCount int, cause error) *ExportError {
	return &ExportError{
		Format:      format,
		RecordCount: recordCount,
		Cause:       cause,
	}
}
