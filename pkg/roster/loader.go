package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"rollcall-hq/attendance/pkg/attendance"
)

const (
	// ColumnStudentID is the header of the identifier column.
	ColumnStudentID = "MSSV"

	// ColumnName is the header of the display name column.
	ColumnName = "Tên Sinh Viên"
)

// ErrRosterNotFound is returned when neither the roster file nor its
// alternate format exists.
var ErrRosterNotFound = errors.New("roster file not found")

// Resolve returns the roster file to load for path. When path does not exist
// the sibling with the other supported extension (.xlsx or .csv) is tried.
// Spreadsheets win over CSV when path has no extension.
func Resolve(path string) (string, error) {
	candidates := []string{path}

	ext := strings.ToLower(filepath.Ext(path))
	base := strings.TrimSuffix(path, filepath.Ext(path))
	switch ext {
	case ".xlsx":
		candidates = append(candidates, base+".csv")
	case ".csv":
		candidates = append(candidates, base+".xlsx")
	case "":
		candidates = []string{path + ".xlsx", path + ".csv"}
	}

	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrRosterNotFound, path)
}

// LoadFile reads roster entries from an .xlsx or .csv file.
func LoadFile(path string) ([]attendance.RosterEntry, error) {
	var rows [][]string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		rows, err = readSpreadsheet(path)
	case ".csv":
		rows, err = readCSVFile(path)
	default:
		return nil, fmt.Errorf("unsupported roster format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	return ParseRows(rows), nil
}

// readSpreadsheet returns the rows of the first sheet.
func readSpreadsheet(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, errors.New("excel file does not contain any sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows from sheet %s: %w", sheetName, err)
	}
	return rows, nil
}

func readCSVFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadCSV(f)
}

// ReadCSV reads all rows of a CSV roster. Ragged rows are allowed.
func ReadCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv roster: %w", err)
	}
	return rows, nil
}

// ParseRows converts raw rows into roster entries. The first row is the
// header; the MSSV and Tên Sinh Viên columns are located by name and default
// to the first two columns. Blank rows, repeated headers and "nan" cells are
// skipped. Rows without an identifier are dropped. A missing name becomes
// "Sinh viên <id>". The first occurrence of an identifier wins.
func ParseRows(rows [][]string) []attendance.RosterEntry {
	logger := slog.Default().With("component", "roster.loader")
	entries := []attendance.RosterEntry{}
	if len(rows) == 0 {
		return entries
	}

	idCol, nameCol := 0, 1
	header := rows[0]
	for i, cell := range header {
		switch normalizeHeader(cell) {
		case strings.ToLower(ColumnStudentID):
			idCol = i
		case strings.ToLower(ColumnName):
			nameCol = i
		}
	}

	seen := make(map[string]bool)
	for n, row := range rows[1:] {
		id := cellAt(row, idCol)
		name := cellAt(row, nameCol)

		if id == "" && name == "" {
			continue
		}
		if id == ColumnStudentID || name == ColumnName {
			continue
		}
		if strings.EqualFold(id, "nan") || strings.EqualFold(name, "nan") {
			continue
		}
		if id == "" {
			logger.Warn("skipping roster row without student id", "row", n+2, "name", name)
			continue
		}

		key := attendance.NormalizeStudentID(id)
		if seen[key] {
			logger.Warn("duplicate student id in roster", "row", n+2, "mssv", id)
			continue
		}
		seen[key] = true

		if name == "" {
			name = "Sinh viên " + id
		}
		entries = append(entries, attendance.RosterEntry{StudentID: id, DisplayName: name})
	}

	return entries
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func normalizeHeader(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	return strings.ToLower(strings.TrimSpace(s))
}
