package attendance

import (
	"context"
	"io"
	"strings"
)

// Record is a single check-in. It is immutable once written except for
// PhotoRef, which the retention sweeper blanks when the photo is reclaimed.
type Record struct {
	// ID identifies the record for delete-by-id. Legacy logs written without
	// one are assigned an ID when loaded.
	ID string `json:"id,omitempty"`

	StudentID     string `json:"mssv"`     // Student identifier as submitted (trimmed)
	StudentName   string `json:"ten"`      // Name snapshot at submission time
	SourceAddress string `json:"ip"`       // Submitting network address
	PhotoRef      string `json:"hinhAnh"`  // Relative photo path, "" once reclaimed
	Timestamp     string `json:"thoiGian"` // "2006-01-02 15:04:05" in the civil timezone
	Day           string `json:"ngay"`     // "2006-01-02" in the civil timezone
}

// MatchesStudent reports whether the record belongs to studentID using the
// roster matching rule: trimmed and case-insensitive.
func (r *Record) MatchesStudent(studentID string) bool {
	return NormalizeStudentID(r.StudentID) == NormalizeStudentID(studentID)
}

// HasPhoto reports whether the record still references a stored photo.
func (r *Record) HasPhoto() bool {
	return strings.TrimSpace(r.PhotoRef) != ""
}

// NormalizeStudentID folds a student identifier into its comparison form.
func NormalizeStudentID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// CloneRecords returns a deep copy of records. Record has no reference
// fields so a slice copy is sufficient.
func CloneRecords(records []Record) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	return out
}

// RosterEntry is one student on the roster. Entries are unique by StudentID.
type RosterEntry struct {
	StudentID   string `json:"mssv"`
	DisplayName string `json:"ten"`
}

// RosterSource supplies the roster to the aggregator. Implementations must be
// safe for concurrent use.
type RosterSource interface {
	// Entries returns the roster in its original order.
	Entries() []RosterEntry

	// Lookup finds a student by identifier (trimmed, case-insensitive).
	Lookup(studentID string) (RosterEntry, bool)
}

// AttendedStudent is a roster entry joined with its latest submission.
type AttendedStudent struct {
	StudentID     string `json:"mssv"`
	StudentName   string `json:"ten"`
	Timestamp     string `json:"thoiGian"`
	PhotoRef      string `json:"hinhAnh"`
	SourceAddress string `json:"ip"`
}

// SubmissionDetail is the latest submission seen for a student.
type SubmissionDetail struct {
	StudentName   string `json:"ten"`
	Timestamp     string `json:"thoiGian"`
	PhotoRef      string `json:"hinhAnh"`
	SourceAddress string `json:"ip"`
}

// Summary is the derived attendance view for an optional day.
type Summary struct {
	TotalStudents         int                         `json:"total_students"`
	AttendedCount         int                         `json:"attended_count"`
	NotAttendedCount      int                         `json:"not_attended_count"`
	AttendanceRatePercent float64                     `json:"attendance_rate"`
	Attended              []AttendedStudent           `json:"attended_students"`
	NotAttended           []RosterEntry               `json:"not_attended_students"`
	Details               map[string]SubmissionDetail `json:"attendance_details"`
	SelectedDate          string                      `json:"selected_date,omitempty"`
}

// Stats summarises the whole log.
type Stats struct {
	TotalRecords           int     `json:"total_attendance_records"`
	TodayCount             int     `json:"today_attendance"`
	DistinctDays           int     `json:"unique_dates"`
	AverageDailyAttendance float64 `json:"average_daily_attendance"`
	LastAttendance         *string `json:"last_attendance"`
}

// Exporter writes records in a specific format.
type Exporter interface {
	// Export writes records to w. An empty slice is valid input.
	Export(ctx context.Context, records []Record, w io.Writer) error

	// ContentType is the MIME type of the produced output.
	ContentType() string
}
