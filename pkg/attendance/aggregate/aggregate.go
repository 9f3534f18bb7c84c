// Package aggregate derives attendance summaries and log statistics.
//
// Summarize joins the log against a roster for an optional day. When no
// roster is available SummarizeAttendedOnly reports the attended students
// alone. Neither function mutates its inputs.
package aggregate

import (
	"math"
	"strings"

	"rollcall-hq/attendance/pkg/attendance"
)

// Summarize computes the attendance summary of records against roster,
// restricted to day when day is non-empty.
func Summarize(records []attendance.Record, roster []attendance.RosterEntry, day string) attendance.Summary {
	details, latest := collect(records, day)

	summary := attendance.Summary{
		TotalStudents: len(roster),
		Attended:      []attendance.AttendedStudent{},
		NotAttended:   []attendance.RosterEntry{},
		Details:       details,
		SelectedDate:  day,
	}

	for _, entry := range roster {
		detail, ok := latest[attendance.NormalizeStudentID(entry.StudentID)]
		if !ok {
			summary.NotAttended = append(summary.NotAttended, entry)
			continue
		}

		name := detail.StudentName
		if strings.TrimSpace(name) == "" {
			name = entry.DisplayName
		}
		summary.Attended = append(summary.Attended, attendance.AttendedStudent{
			StudentID:     entry.StudentID,
			StudentName:   name,
			Timestamp:     detail.Timestamp,
			PhotoRef:      detail.PhotoRef,
			SourceAddress: detail.SourceAddress,
		})
	}

	summary.AttendedCount = len(summary.Attended)
	summary.NotAttendedCount = len(summary.NotAttended)
	summary.AttendanceRatePercent = Rate(summary.AttendedCount, summary.TotalStudents)

	return summary
}

// SummarizeAttendedOnly is the roster-less variant of Summarize. The total is
// the number of distinct attended students and nobody is reported absent.
func SummarizeAttendedOnly(records []attendance.Record, day string) attendance.Summary {
	details, _ := collect(records, day)

	summary := attendance.Summary{
		Attended:     []attendance.AttendedStudent{},
		NotAttended:  []attendance.RosterEntry{},
		Details:      details,
		SelectedDate: day,
	}

	seen := make(map[string]bool, len(details))
	for _, r := range records {
		if day != "" && r.Day != day {
			continue
		}
		key := attendance.NormalizeStudentID(r.StudentID)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true

		id := strings.TrimSpace(r.StudentID)
		d := details[id]
		summary.Attended = append(summary.Attended, attendance.AttendedStudent{
			StudentID:     id,
			StudentName:   d.StudentName,
			Timestamp:     d.Timestamp,
			PhotoRef:      d.PhotoRef,
			SourceAddress: d.SourceAddress,
		})
	}

	summary.TotalStudents = len(summary.Attended)
	summary.AttendedCount = len(summary.Attended)
	summary.AttendanceRatePercent = Rate(summary.AttendedCount, summary.TotalStudents)

	return summary
}

// Rate returns attended/total as a percentage rounded to one decimal place,
// or 0 when total is 0.
func Rate(attended, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(attended)/float64(total)*1000) / 10
}

// collect builds the submission detail map keyed by trimmed student id and a
// second view keyed by normalized id. Later records overwrite earlier ones.
func collect(records []attendance.Record, day string) (map[string]attendance.SubmissionDetail, map[string]attendance.SubmissionDetail) {
	details := make(map[string]attendance.SubmissionDetail)
	latest := make(map[string]attendance.SubmissionDetail)

	for _, r := range records {
		if day != "" && r.Day != day {
			continue
		}
		id := strings.TrimSpace(r.StudentID)
		if id == "" {
			continue
		}
		detail := attendance.SubmissionDetail{
			StudentName:   r.StudentName,
			Timestamp:     r.Timestamp,
			PhotoRef:      r.PhotoRef,
			SourceAddress: r.SourceAddress,
		}
		details[id] = detail
		latest[attendance.NormalizeStudentID(id)] = detail
	}

	return details, latest
}
