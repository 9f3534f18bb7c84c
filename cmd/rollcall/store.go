package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"rollcall-hq/attendance/pkg/attendance"
	"rollcall-hq/attendance/pkg/attendance/store"
	"rollcall-hq/attendance/pkg/cli"
)

var storeFlags struct {
	reset bool
}

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Maintain the attendance log storage",
}

var storeRepairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Repair a damaged JSON attendance log",
	Long: `Repair a JSON attendance log left unreadable by an interrupted edit, such
as a dangling comma after the last record.

A log that is valid is left untouched. A log that cannot be repaired is
reported; pass --reset to move it aside and start an empty log instead.
Stop the server before repairing the log it serves.

Examples:
  rollcall store repair
  rollcall store repair --reset`,
	Args: cobra.NoArgs,
	RunE: runStoreRepair,
}

func init() {
	rootCmd.AddCommand(storeCmd)
	storeCmd.AddCommand(storeRepairCmd)

	storeRepairCmd.Flags().BoolVar(&storeFlags.reset, "reset", false, "quarantine the log and start empty when it cannot be repaired")
}

func runStoreRepair(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Storage.Backend != "json" {
		return cli.NewConfigError("storage.backend", fmt.Sprintf("repair only applies to the json backend, not %q", cfg.Storage.Backend))
	}

	file := store.NewJSONFile(cfg.Storage.JSON.Path)
	changed, err := file.Repair(cmd.Context())
	switch {
	case errors.Is(err, attendance.ErrStoreNotFound):
		fmt.Fprintf(cmd.OutOrStdout(), "✓ No attendance log at %s, nothing to repair\n", file.Path())
		return nil
	case errors.Is(err, attendance.ErrStoreCorrupt):
		if !storeFlags.reset {
			return cli.NewCommandError("store repair", err)
		}
		return resetStore(cmd)
	case err != nil:
		return cli.NewCommandError("store repair", err)
	}

	if changed {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Repaired %s\n", file.Path())
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is valid, no changes made\n", file.Path())
	}
	return nil
}

// resetStore quarantines the corrupt log and writes an empty one.
func resetStore(cmd *cobra.Command) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return cli.NewCommandError("store repair", err)
	}
	defer a.close()

	moved := a.loadErr != nil
	if err := a.resetCorruptStore(cmd.Context()); err != nil {
		return cli.NewCommandError("store repair", err)
	}
	if moved {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Corrupt log moved aside, started an empty log")
	}
	return nil
}
