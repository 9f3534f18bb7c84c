// Package dedup answers "has this student already checked in on this day?".
//
// The key is the student identifier (trimmed, case-insensitive) per civil
// day. Lookups scan the log linearly.
package dedup

import (
	"strings"

	"rollcall-hq/attendance/pkg/attendance"
)

// RecordReader exposes a read-locked view of the record log.
type RecordReader interface {
	View(fn func(records []attendance.Record))
}

// Index answers dedup queries against a record log.
type Index struct {
	records RecordReader
	clock   *attendance.Clock
}

// New creates an index over records using clock to determine "today".
func New(records RecordReader, clock *attendance.Clock) *Index {
	return &Index{records: records, clock: clock}
}

// HasAttendedToday reports whether studentID has a record dated today in
// the civil timezone. A blank identifier never matches.
func (x *Index) HasAttendedToday(studentID string) bool {
	return x.HasAttendedOn(studentID, x.clock.Today())
}

// HasAttendedOn reports whether studentID has a record dated day.
func (x *Index) HasAttendedOn(studentID, day string) bool {
	if strings.TrimSpace(studentID) == "" {
		return false
	}

	found := false
	x.records.View(func(records []attendance.Record) {
		found = attendedOn(records, studentID, day)
	})
	return found
}

// Conflict returns *attendance.DuplicateError when records already contain a
// check-in for studentID on day. It is meant to run as a store append guard.
func Conflict(records []attendance.Record, studentID, day string) error {
	if attendedOn(records, studentID, day) {
		return attendance.NewDuplicateError(strings.TrimSpace(studentID), day)
	}
	return nil
}

func attendedOn(records []attendance.Record, studentID, day string) bool {
	key := attendance.NormalizeStudentID(studentID)
	if key == "" {
		return false
	}
	for i := range records {
		if records[i].Day == day && attendance.NormalizeStudentID(records[i].StudentID) == key {
			return true
		}
	}
	return false
}
