package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rollcall-hq/attendance/pkg/cli"
)

var sweepFlags struct {
	output string
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run one photo retention sweep",
	Long: `Run one photo retention sweep against the configured store and upload
directory, then exit.

Photos of records older than the retention threshold are deleted and the
records keep their place in the log without a photo. This runs regardless of
retention.enabled, which only controls the scheduled sweep of the server.

Examples:
  rollcall sweep
  rollcall sweep --output json`,
	Args: cobra.NoArgs,
	RunE: runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)

	sweepCmd.Flags().StringVarP(&sweepFlags.output, "output", "o", "text", "output format (text, json)")
	_ = sweepCmd.RegisterFlagCompletionFunc("output", completeValues("text", "json"))
}

func runSweep(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(sweepFlags.output)
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.requireHealthyStore(); err != nil {
		return cli.NewCommandError("sweep", err)
	}

	res, err := a.sweeper.SweepOnce(cmd.Context())
	if err != nil {
		return cli.NewCommandError("sweep", err)
	}

	if format == cli.FormatJSON {
		return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), res)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Sweep completed in %s\n", res.Duration)
	cutoff, _ := a.clock.Stamp(res.Cutoff)
	fmt.Fprintf(out, "  Cutoff:   %s\n", cutoff)
	fmt.Fprintf(out, "  Scanned:  %d\n", res.Scanned)
	fmt.Fprintf(out, "  Expired:  %d\n", res.Expired)
	fmt.Fprintf(out, "  Cleared:  %d\n", res.Cleared)
	if res.Failures > 0 {
		fmt.Fprintf(out, "  Failures: %d\n", res.Failures)
	}
	if res.Skipped > 0 {
		fmt.Fprintf(out, "  Skipped:  %d (unreadable timestamps)\n", res.Skipped)
	}
	return nil
}
