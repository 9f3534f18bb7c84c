package main

import (
	"context"
	"reflect"
	"testing"

	"rollcall-hq/attendance/pkg/attendance"
	"rollcall-hq/attendance/pkg/roster"
)

func TestRecordTable(t *testing.T) {
	table := recordTable{
		{ID: "r1", StudentID: "SV001", StudentName: "Nguyen Van A", SourceAddress: "10.0.0.1", PhotoRef: "uploads/a.jpg", Timestamp: "2024-01-15 08:00:00", Day: "2024-01-15"},
		{ID: "r2", StudentID: "SV002", Timestamp: "2024-01-15 08:05:00", Day: "2024-01-15"},
	}

	if got := len(table.Header()); got != 6 {
		t.Fatalf("header has %d columns, want 6", got)
	}

	rows := table.Rows()
	want := [][]string{
		{"r1", "SV001", "Nguyen Van A", "2024-01-15 08:00:00", "10.0.0.1", "uploads/a.jpg"},
		{"r2", "SV002", "", "2024-01-15 08:05:00", "", "-"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("Rows() = %v, want %v", rows, want)
	}
}

func TestIssueTable(t *testing.T) {
	report := roster.Report{
		Issues: []roster.Issue{
			{Kind: roster.IssueUnknownStudent, Count: 1, Details: []roster.IssueDetail{{StudentID: "SV999", LoggedName: "X"}}},
			{Kind: roster.IssueDuplicate, Count: 1, Details: []roster.IssueDetail{{StudentID: "SV001", Day: "2024-01-15", RecordCount: 2}}},
			{Kind: roster.IssueEmptyName, Count: 0},
		},
	}

	table := issueTable(report)
	if got := table.issueCount(); got != 2 {
		t.Errorf("issueCount() = %d, want 2", got)
	}

	rows := table.Rows()
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[1][5] != "2" || rows[0][5] != "" {
		t.Errorf("count column = %q / %q", rows[0][5], rows[1][5])
	}
}

func TestSelectRecords(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Backend = "memory"

	a, err := newApp(context.Background(), cfg)
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	defer a.close()

	for _, rec := range []attendance.Record{
		{StudentID: "SV001", Timestamp: "2024-01-14 08:00:00", Day: "2024-01-14"},
		{StudentID: "SV001", Timestamp: "2024-01-15 08:00:00", Day: "2024-01-15"},
		{StudentID: "SV002", Timestamp: "2024-01-16 08:00:00", Day: "2024-01-16"},
	} {
		if _, err := a.store.Append(context.Background(), rec); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name            string
		day, start, end string
		want            int
		wantErr         bool
	}{
		{name: "all", want: 3},
		{name: "one day", day: "2024-01-15", want: 1},
		{name: "range", start: "2024-01-15", end: "2024-01-16", want: 2},
		{name: "open ended", start: "2024-01-15", want: 2},
		{name: "reversed range", start: "2024-01-16", end: "2024-01-14", wantErr: true},
		{name: "malformed day", day: "15/01/2024", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := selectRecords(a, tt.day, tt.start, tt.end)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("selectRecords() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d records, want %d", len(got), tt.want)
			}
		})
	}
}
