package roster

import (
	"testing"

	"rollcall-hq/attendance/pkg/attendance"
)

func TestCheckConsistency(t *testing.T) {
	entries := []attendance.RosterEntry{
		{StudentID: "SV001", DisplayName: "Nguyễn Văn A"},
		{StudentID: "SV002", DisplayName: "Trần Thị B"},
		{StudentID: "SV003", DisplayName: "Lê Văn C"},
	}
	records := []attendance.Record{
		{StudentID: "SV001", StudentName: "Nguyễn Văn A", Day: "2024-01-01"},
		{StudentID: "sv001", StudentName: "nguyễn văn a", Day: "2024-01-01"},
		{StudentID: "SV002", StudentName: "Someone Else", Day: "2024-01-01"},
		{StudentID: "SV999", StudentName: "Stranger", Day: "2024-01-01"},
		{StudentID: "SV003", StudentName: "", Day: "2024-01-01"},
	}

	report := CheckConsistency(records, entries, "2024-01-01")

	if report.TotalStudents != 3 || report.TotalRecords != 5 {
		t.Errorf("Unexpected totals %+v", report)
	}
	if report.UniqueAttendedStudents != 4 {
		t.Errorf("Expected 4 unique attended ids, got %d", report.UniqueAttendedStudents)
	}
	if report.NotAttendedStudents != 0 {
		t.Errorf("Expected 0 not attended, got %d", report.NotAttendedStudents)
	}

	tests := []struct {
		kind  string
		count int
		id    string
	}{
		{IssueUnknownStudent, 1, "SV999"},
		{IssueEmptyName, 1, "SV003"},
		{IssueNameMismatch, 1, "SV002"},
		{IssueDuplicate, 1, "SV001"},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			issue, ok := report.Find(tt.kind)
			if !ok {
				t.Fatalf("issue %s not reported", tt.kind)
			}
			if issue.Count != tt.count || len(issue.Details) != tt.count {
				t.Errorf("Expected %d details, got %d", tt.count, issue.Count)
			}
			if issue.Details[0].StudentID != tt.id {
				t.Errorf("Expected %s, got %s", tt.id, issue.Details[0].StudentID)
			}
		})
	}

	dup, _ := report.Find(IssueDuplicate)
	if dup.Details[0].RecordCount != 2 {
		t.Errorf("Expected duplicate count 2, got %d", dup.Details[0].RecordCount)
	}
}

func TestCheckConsistency_Clean(t *testing.T) {
	entries := []attendance.RosterEntry{{StudentID: "SV001", DisplayName: "A"}, {StudentID: "SV002", DisplayName: "B"}}
	records := []attendance.Record{{StudentID: "SV001", StudentName: "A", Day: "2024-01-01"}}

	report := CheckConsistency(records, entries, "2024-01-01")
	if len(report.Issues) != 0 {
		t.Errorf("Expected no issues, got %+v", report.Issues)
	}
	if report.NotAttendedStudents != 1 {
		t.Errorf("Expected 1 not attended, got %d", report.NotAttendedStudents)
	}
}

func TestCheckConsistency_NoRoster(t *testing.T) {
	records := []attendance.Record{{StudentID: "SV001", StudentName: "A", Day: "2024-01-01"}}
	report := CheckConsistency(records, nil, "")

	if _, ok := report.Find(IssueUnknownStudent); ok {
		t.Error("unknown-student issues need a roster to compare against")
	}
}
