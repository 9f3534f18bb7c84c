package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"rollcall-hq/attendance/pkg/attendance"
	"rollcall-hq/attendance/pkg/attendance/export"
	"rollcall-hq/attendance/pkg/cli"
)

var recordsFlags struct {
	date   string
	start  string
	end    string
	output string
	format string
	out    string
}

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Inspect and maintain the attendance log",
	Long: `Inspect and maintain the attendance log without starting the server.

The commands operate on the storage backend named in the configuration.
Do not run write commands against a JSON log that a running server owns.`,
}

var recordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List attendance records",
	Long: `List attendance records, optionally restricted to one day or a range
of days (inclusive).

Examples:
  # All records
  rollcall records list

  # One day
  rollcall records list --date 2024-01-15

  # A range as CSV
  rollcall records list --start 2024-01-01 --end 2024-01-31 --output csv`,
	Args: cobra.NoArgs,
	RunE: runRecordsList,
}

var recordsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one attendance record by id",
	Long: `Delete one attendance record by id. The stored photo is kept; the retention
sweep only reclaims photos of records still in the log.

Example:
  rollcall records delete 0b6f1d2e-6c3a-4f0e-9f5d-3b8a1e2c4d5f`,
	Args: cobra.ExactArgs(1),
	RunE: runRecordsDelete,
}

var recordsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export attendance records as JSON or CSV",
	Long: `Export attendance records in the same formats the HTTP export serves.

Examples:
  # JSON to stdout
  rollcall records export

  # CSV for one day to a file
  rollcall records export --format csv --date 2024-01-15 --out attendance.csv`,
	Args: cobra.NoArgs,
	RunE: runRecordsExport,
}

func init() {
	rootCmd.AddCommand(recordsCmd)
	recordsCmd.AddCommand(recordsListCmd)
	recordsCmd.AddCommand(recordsDeleteCmd)
	recordsCmd.AddCommand(recordsExportCmd)

	recordsListCmd.Flags().StringVar(&recordsFlags.date, "date", "", "only records of this day (YYYY-MM-DD)")
	recordsListCmd.Flags().StringVar(&recordsFlags.start, "start", "", "first day of the range (YYYY-MM-DD)")
	recordsListCmd.Flags().StringVar(&recordsFlags.end, "end", "", "last day of the range (YYYY-MM-DD)")
	recordsListCmd.Flags().StringVarP(&recordsFlags.output, "output", "o", "text", "output format (text, json, csv)")

	recordsExportCmd.Flags().StringVarP(&recordsFlags.format, "format", "f", export.FormatJSON, "export format (json, csv)")
	recordsExportCmd.Flags().StringVar(&recordsFlags.date, "date", "", "only records of this day (YYYY-MM-DD)")
	recordsExportCmd.Flags().StringVar(&recordsFlags.out, "out", "", "write to this file instead of stdout")

	_ = recordsListCmd.RegisterFlagCompletionFunc("output", completeValues("text", "json", "csv"))
	_ = recordsExportCmd.RegisterFlagCompletionFunc("format", completeValues(export.FormatJSON, export.FormatCSV))
}

// recordTable renders records as rows for the text and CSV formatters.
type recordTable []attendance.Record

func (t recordTable) Header() []string {
	return []string{"ID", "MSSV", "NAME", "TIME", "IP", "PHOTO"}
}

func (t recordTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, r := range t {
		photo := r.PhotoRef
		if photo == "" {
			photo = "-"
		}
		rows = append(rows, []string{r.ID, r.StudentID, r.StudentName, r.Timestamp, r.SourceAddress, photo})
	}
	return rows
}

// openApp loads the config and opens the components for an offline command.
// Logs go to stderr so command output stays clean.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if _, err := setupTelemetry(cfg, os.Stderr); err != nil {
		return nil, err
	}
	return newApp(ctx, cfg)
}

// checkDay validates an optional day flag.
func checkDay(clock *attendance.Clock, flag, day string) error {
	if day == "" {
		return nil
	}
	if _, err := clock.ParseDay(day); err != nil {
		return cli.NewConfigError(flag, fmt.Sprintf("expected a date in YYYY-MM-DD format, got %q", day))
	}
	return nil
}

// selectRecords applies the --date, --start and --end flags.
func selectRecords(a *app, day, start, end string) ([]attendance.Record, error) {
	for flag, v := range map[string]string{"date": day, "start": start, "end": end} {
		if err := checkDay(a.clock, flag, v); err != nil {
			return nil, err
		}
	}

	switch {
	case day != "":
		return a.store.FilterByDay(day), nil
	case start != "" || end != "":
		if start != "" && end != "" && start > end {
			return nil, cli.NewConfigError("start", "start must not be after end")
		}
		return a.store.FilterByDateRange(start, end), nil
	default:
		return a.store.All(), nil
	}
}

func runRecordsList(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(recordsFlags.output)
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	records, err := selectRecords(a, recordsFlags.date, recordsFlags.start, recordsFlags.end)
	if err != nil {
		return err
	}

	var data interface{} = recordTable(records)
	if format == cli.FormatJSON {
		data = records
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), data)
}

func runRecordsDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.requireHealthyStore(); err != nil {
		return cli.NewCommandError("records delete", err)
	}

	rec, err := a.store.DeleteByID(cmd.Context(), strings.TrimSpace(args[0]))
	if err != nil {
		return cli.NewCommandError("records delete", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted record %s (%s, %s)\n", rec.ID, rec.StudentID, rec.Timestamp)
	return nil
}

func runRecordsExport(cmd *cobra.Command, args []string) error {
	exporter, err := export.ForFormat(recordsFlags.format)
	if err != nil {
		return cli.NewConfigError("format", err.Error())
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	records, err := selectRecords(a, recordsFlags.date, "", "")
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := exporter.Export(cmd.Context(), records, &buf); err != nil {
		return cli.NewCommandError("records export", err)
	}

	if recordsFlags.out == "" {
		_, err := io.Copy(cmd.OutOrStdout(), &buf)
		return err
	}
	if err := os.WriteFile(recordsFlags.out, buf.Bytes(), 0o644); err != nil {
		return cli.NewCommandError("records export", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "✓ Exported %d records to %s\n", len(records), recordsFlags.out)
	return nil
}
