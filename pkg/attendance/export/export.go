// Package export writes attendance records as JSON or CSV.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"rollcall-hq/attendance/pkg/attendance"
)

const (
	// FormatJSON selects the pretty-printed JSON array.
	FormatJSON = "json"

	// FormatCSV selects CSV with the MSSV,Tên,Thời gian,IP,Hình ảnh,Ngày header.
	FormatCSV = "csv"
)

// ForFormat returns the exporter for format (case-insensitive). Unknown
// formats yield *attendance.ExportError.
func ForFormat(format string) (attendance.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatJSON:
		return NewJSONExporter(), nil
	case FormatCSV:
		return NewCSVExporter(), nil
	default:
		return nil, attendance.NewExportError(format, 0, fmt.Errorf("unsupported export format %q", format))
	}
}

// Export writes records to w in format.
func Export(ctx context.Context, format string, records []attendance.Record, w io.Writer) error {
	exporter, err := ForFormat(format)
	if err != nil {
		var ee *attendance.ExportError
		if errors.As(err, &ee) {
			ee.RecordCount = len(records)
		}
		return err
	}
	return exporter.Export(ctx, records, w)
}

// Filename returns the download name for an export of day (or of the whole
// log when day is empty).
func Filename(format, day string) string {
	ext := strings.ToLower(strings.TrimSpace(format))
	if ext == "" {
		ext = FormatJSON
	}
	if day == "" {
		return "diem_danh." + ext
	}
	return fmt.Sprintf("diem_danh_%s.%s", day, ext)
}
