package roster

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"rollcall-hq/attendance/pkg/attendance"
)

func writeWorkbook(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs() failed: %v", err)
	}
}

func TestParseRows(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
		want []attendance.RosterEntry
	}{
		{
			name: "standard header",
			rows: [][]string{
				{"MSSV", "Tên Sinh Viên"},
				{"SV001", "Nguyễn Văn A"},
				{" SV002 ", " Trần Thị B "},
			},
			want: []attendance.RosterEntry{
				{StudentID: "SV001", DisplayName: "Nguyễn Văn A"},
				{StudentID: "SV002", DisplayName: "Trần Thị B"},
			},
		},
		{
			name: "columns located by header name",
			rows: [][]string{
				{"STT", "Tên Sinh Viên", "MSSV"},
				{"1", "A", "SV001"},
			},
			want: []attendance.RosterEntry{{StudentID: "SV001", DisplayName: "A"}},
		},
		{
			name: "skips blanks, header repeats and nan",
			rows: [][]string{
				{"\ufeffMSSV", "Tên Sinh Viên"},
				{"", ""},
				{"MSSV", "Tên Sinh Viên"},
				{"nan", "X"},
				{"SV003", "NaN"},
				{"SV004", "D"},
			},
			want: []attendance.RosterEntry{{StudentID: "SV004", DisplayName: "D"}},
		},
		{
			name: "missing name gets default, missing id dropped",
			rows: [][]string{
				{"MSSV", "Tên Sinh Viên"},
				{"SV005"},
				{"", "No Id"},
			},
			want: []attendance.RosterEntry{{StudentID: "SV005", DisplayName: "Sinh viên SV005"}},
		},
		{
			name: "first duplicate wins",
			rows: [][]string{
				{"MSSV", "Tên Sinh Viên"},
				{"SV001", "First"},
				{"sv001", "Second"},
			},
			want: []attendance.RosterEntry{{StudentID: "SV001", DisplayName: "First"}},
		},
		{
			name: "empty input",
			rows: nil,
			want: []attendance.RosterEntry{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseRows(tt.rows)
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d entries, got %d: %+v", len(tt.want), len(got), got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("entry %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestRoster_ReloadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "danh_sach_sinh_vien.xlsx")
	writeWorkbook(t, path, [][]interface{}{
		{"MSSV", "Tên Sinh Viên"},
		{"SV001", "Nguyễn Văn A"},
		{"SV002", "Trần Thị B"},
	})

	r := New(path)
	if err := r.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() failed: %v", err)
	}

	if r.Len() != 2 {
		t.Fatalf("Expected 2 students, got %d", r.Len())
	}
	entry, ok := r.Lookup("  sv002 ")
	if !ok || entry.DisplayName != "Trần Thị B" {
		t.Errorf("Lookup() = %+v, %v", entry, ok)
	}
	if _, ok := r.Lookup("SV999"); ok {
		t.Error("Lookup() found an unknown student")
	}
	if err := r.Ready(); err != nil {
		t.Errorf("Ready() = %v", err)
	}
	if info := r.Info(); info.Source != path || info.Students != 2 {
		t.Errorf("Unexpected info %+v", info)
	}
}

func TestRoster_FallsBackToCSV(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "danh_sach_sinh_vien.csv")
	content := "MSSV,Tên Sinh Viên\nSV001,\"Nguyễn, Văn A\"\nSV002,B\n"
	if err := os.WriteFile(csvPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	r := New(filepath.Join(dir, "danh_sach_sinh_vien.xlsx"))
	if err := r.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() failed: %v", err)
	}

	entries := r.Entries()
	if len(entries) != 2 || entries[0].DisplayName != "Nguyễn, Văn A" {
		t.Errorf("Unexpected entries %+v", entries)
	}
	if r.Info().Source != csvPath {
		t.Errorf("Expected csv source, got %s", r.Info().Source)
	}
}

func TestRoster_Missing(t *testing.T) {
	r := New(filepath.Join(t.TempDir(), "missing.xlsx"))

	err := r.Reload(context.Background())
	if !errors.Is(err, ErrRosterNotFound) {
		t.Fatalf("Expected ErrRosterNotFound, got %v", err)
	}
	if r.Len() != 0 {
		t.Error("Expected empty roster")
	}
	if r.Ready() == nil {
		t.Error("Ready() should fail for a missing roster")
	}
}

func TestRoster_KeepsEntriesOnParseFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roster.xlsx")
	writeWorkbook(t, path, [][]interface{}{{"MSSV", "Tên Sinh Viên"}, {"SV001", "A"}})

	r := New(path)
	if err := r.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := r.Reload(context.Background()); err == nil {
		t.Fatal("Expected reload of a broken workbook to fail")
	}
	if r.Len() != 1 {
		t.Errorf("Expected previous entries to be kept, got %d", r.Len())
	}
}

func TestRoster_NilSafe(t *testing.T) {
	var r *Roster
	if r.Entries() != nil {
		t.Error("nil roster must have no entries")
	}
	if _, ok := r.Lookup("SV001"); ok {
		t.Error("nil roster must not find students")
	}
}

func TestFromEntries(t *testing.T) {
	r := FromEntries([]attendance.RosterEntry{{StudentID: "SV001", DisplayName: "A"}})
	if _, ok := r.Lookup("sv001"); !ok {
		t.Error("Lookup() failed")
	}
	if r.Ready() != nil {
		t.Error("in-memory roster should be ready")
	}
}

func TestLoadFile_UnsupportedFormat(t *testing.T) {
	_, err := LoadFile("roster.txt")
	if err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("Expected unsupported format error, got %v", err)
	}
}
