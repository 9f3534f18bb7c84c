package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"rollcall-hq/attendance/pkg/cli"
	"rollcall-hq/attendance/pkg/roster"
)

var rosterFlags struct {
	date   string
	output string
}

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Inspect the student roster",
}

var rosterCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Compare the attendance log against the roster",
	Long: `Compare the attendance log against the roster and report records of
unknown students, records without a name, names that differ from the roster,
and students with more than one record on the same day.

Exits with status 1 when any issue is found.

Examples:
  rollcall roster check
  rollcall roster check --date 2024-01-15 --output json`,
	Args: cobra.NoArgs,
	RunE: runRosterCheck,
}

func init() {
	rootCmd.AddCommand(rosterCmd)
	rosterCmd.AddCommand(rosterCheckCmd)

	rosterCheckCmd.Flags().StringVar(&rosterFlags.date, "date", "", "only check records of this day (YYYY-MM-DD)")
	rosterCheckCmd.Flags().StringVarP(&rosterFlags.output, "output", "o", "text", "output format (text, json, csv)")
	_ = rosterCheckCmd.RegisterFlagCompletionFunc("output", completeValues("text", "json", "csv"))
}

// issueTable flattens a report into one row per offending student.
type issueTable roster.Report

func (t issueTable) Header() []string {
	return []string{"ISSUE", "MSSV", "LOGGED NAME", "ROSTER NAME", "DAY", "COUNT"}
}

func (t issueTable) Rows() [][]string {
	var rows [][]string
	for _, issue := range t.Issues {
		for _, d := range issue.Details {
			count := ""
			if d.RecordCount > 0 {
				count = strconv.Itoa(d.RecordCount)
			}
			rows = append(rows, []string{issue.Kind, d.StudentID, d.LoggedName, d.RosterName, d.Day, count})
		}
	}
	return rows
}

func (t issueTable) issueCount() int {
	n := 0
	for _, issue := range t.Issues {
		n += issue.Count
	}
	return n
}

func runRosterCheck(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(rosterFlags.output)
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.roster.Ready(); err != nil {
		return cli.NewCommandError("roster check", err)
	}

	records, err := selectRecords(a, rosterFlags.date, "", "")
	if err != nil {
		return err
	}

	report := roster.CheckConsistency(records, a.roster.Entries(), rosterFlags.date)
	table := issueTable(report)

	var data interface{} = table
	if format == cli.FormatJSON {
		data = report
	}
	if err := cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), data); err != nil {
		return err
	}

	if n := table.issueCount(); n > 0 {
		return cli.NewCommandError("roster check", fmt.Errorf("%d consistency issues found", n))
	}
	if format == cli.FormatText {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %d records consistent with %d students\n", report.TotalRecords, report.TotalStudents)
	}
	return nil
}
