package export

import (
	"context"
	"encoding/json"
	"io"

	"rollcall-hq/attendance/pkg/attendance"
)

// JSONExporter exports records as a pretty-printed JSON array.
type JSONExporter struct{}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// ContentType implements attendance.Exporter.
func (e *JSONExporter) ContentType() string {
	return "application/json; charset=utf-8"
}

// Export writes records as a JSON array indented with two spaces. An empty
// slice is written as [].
func (e *JSONExporter) Export(ctx context.Context, records []attendance.Record, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return attendance.NewExportError(FormatJSON, len(records), err)
	}

	if len(records) == 0 {
		_, err := w.Write([]byte("[]"))
		return err
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return attendance.NewExportError(FormatJSON, len(records), err)
	}

	if _, err := w.Write(data); err != nil {
		return attendance.NewExportError(FormatJSON, len(records), err)
	}
	return nil
}
