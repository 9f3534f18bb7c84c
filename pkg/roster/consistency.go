package roster

import (
	"sort"
	"strings"

	"rollcall-hq/attendance/pkg/attendance"
)

// Issue kinds reported by CheckConsistency.
const (
	IssueUnknownStudent = "unknown_mssv"
	IssueEmptyName      = "empty_names"
	IssueNameMismatch   = "name_mismatch"
	IssueDuplicate      = "duplicate_attendance"
)

// IssueDetail identifies one offending student.
type IssueDetail struct {
	StudentID   string `json:"mssv"`
	LoggedName  string `json:"ten,omitempty"`
	RosterName  string `json:"roster_ten,omitempty"`
	Day         string `json:"ngay,omitempty"`
	RecordCount int    `json:"count,omitempty"`
}

// Issue groups details of one kind.
type Issue struct {
	Kind    string        `json:"type"`
	Count   int           `json:"count"`
	Details []IssueDetail `json:"details"`
}

// Report is the result of a consistency check.
type Report struct {
	Day                    string  `json:"date,omitempty"`
	TotalStudents          int     `json:"total_students"`
	TotalRecords           int     `json:"total_attendance_logs"`
	UniqueAttendedStudents int     `json:"unique_attended_students"`
	NotAttendedStudents    int     `json:"not_attended_students"`
	Issues                 []Issue `json:"issues"`
}

// CheckConsistency compares log records against the roster. Callers pass
// the records of the day (or range) they want checked. It reports records
// whose student is not on the roster, records without a name, records whose
// name differs from the roster, and students with more than one record on
// the same day.
func CheckConsistency(records []attendance.Record, entries []attendance.RosterEntry, day string) Report {
	byID := make(map[string]attendance.RosterEntry, len(entries))
	for _, e := range entries {
		byID[attendance.NormalizeStudentID(e.StudentID)] = e
	}

	report := Report{
		Day:           day,
		TotalStudents: len(entries),
		TotalRecords:  len(records),
		Issues:        []Issue{},
	}

	var unknown, empty, mismatch []IssueDetail
	type dayKey struct{ id, day string }
	counts := make(map[dayKey]int)
	displayID := make(map[dayKey]string)
	attended := make(map[string]bool)

	for _, r := range records {
		key := attendance.NormalizeStudentID(r.StudentID)
		attended[key] = true

		dk := dayKey{key, r.Day}
		counts[dk]++
		if _, ok := displayID[dk]; !ok {
			displayID[dk] = strings.TrimSpace(r.StudentID)
		}

		if strings.TrimSpace(r.StudentName) == "" {
			empty = append(empty, IssueDetail{StudentID: r.StudentID, Day: r.Day})
		}

		entry, onRoster := byID[key]
		switch {
		case len(entries) > 0 && !onRoster:
			unknown = append(unknown, IssueDetail{StudentID: r.StudentID, LoggedName: r.StudentName, Day: r.Day})
		case onRoster && strings.TrimSpace(r.StudentName) != "" &&
			!strings.EqualFold(strings.TrimSpace(r.StudentName), strings.TrimSpace(entry.DisplayName)):
			mismatch = append(mismatch, IssueDetail{
				StudentID:  r.StudentID,
				LoggedName: r.StudentName,
				RosterName: entry.DisplayName,
				Day:        r.Day,
			})
		}
	}

	var dups []IssueDetail
	for dk, n := range counts {
		if n > 1 {
			dups = append(dups, IssueDetail{StudentID: displayID[dk], Day: dk.day, RecordCount: n})
		}
	}
	sort.Slice(dups, func(i, j int) bool {
		if dups[i].Day != dups[j].Day {
			return dups[i].Day < dups[j].Day
		}
		return dups[i].StudentID < dups[j].StudentID
	})

	report.UniqueAttendedStudents = len(attended)
	for _, e := range entries {
		if !attended[attendance.NormalizeStudentID(e.StudentID)] {
			report.NotAttendedStudents++
		}
	}

	for _, issue := range []Issue{
		{Kind: IssueUnknownStudent, Details: unknown},
		{Kind: IssueEmptyName, Details: empty},
		{Kind: IssueNameMismatch, Details: mismatch},
		{Kind: IssueDuplicate, Details: dups},
	} {
		if len(issue.Details) == 0 {
			continue
		}
		issue.Count = len(issue.Details)
		report.Issues = append(report.Issues, issue)
	}

	return report
}

// Find returns the issue of kind, if reported.
func (r Report) Find(kind string) (Issue, bool) {
	for _, issue := range r.Issues {
		if issue.Kind == kind {
			return issue, true
		}
	}
	return Issue{}, false
}
