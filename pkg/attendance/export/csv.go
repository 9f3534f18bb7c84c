package export

import (
	"bufio"
	"context"
	"io"
	"strings"

	"rollcall-hq/attendance/pkg/attendance"
)

// CSVHeader is the first line of every CSV export.
const CSVHeader = "MSSV,Tên,Thời gian,IP,Hình ảnh,Ngày"

// CSVExporter exports records as CSV. The name column is always quoted;
// other columns are quoted only when they contain a separator, quote or
// line break.
type CSVExporter struct{}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// ContentType implements attendance.Exporter.
func (e *CSVExporter) ContentType() string {
	return "text/csv; charset=utf-8"
}

// Export writes the header and one line per record. An empty slice yields
// the header alone.
func (e *CSVExporter) Export(ctx context.Context, records []attendance.Record, w io.Writer) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(CSVHeader + "\n"); err != nil {
		return attendance.NewExportError(FormatCSV, len(records), err)
	}

	for i := range records {
		if i%500 == 0 {
			if err := ctx.Err(); err != nil {
				return attendance.NewExportError(FormatCSV, len(records), err)
			}
		}
		if _, err := bw.WriteString(FormatCSVRow(records[i]) + "\n"); err != nil {
			return attendance.NewExportError(FormatCSV, len(records), err)
		}
	}

	if err := bw.Flush(); err != nil {
		return attendance.NewExportError(FormatCSV, len(records), err)
	}
	return nil
}

// FormatCSVRow renders a record without the trailing newline.
func FormatCSVRow(r attendance.Record) string {
	fields := []string{
		field(r.StudentID),
		quote(r.StudentName),
		field(r.Timestamp),
		field(r.SourceAddress),
		field(r.PhotoRef),
		field(r.Day),
	}
	return strings.Join(fields, ",")
}

func field(s string) string {
	if strings.ContainsAny(s, ",\"\r\n") {
		return quote(s)
	}
	return s
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
