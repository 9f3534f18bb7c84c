package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"rollcall-hq/attendance/pkg/cli"
	"rollcall-hq/attendance/pkg/config"
	"rollcall-hq/attendance/pkg/telemetry"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "rollcall",
	Short: "Rollcall - student check-in log with photo retention",
	Long: `Rollcall records student check-ins. Each check-in carries a student id
and a photo; a student can check in once per day.

Photos older than the retention threshold (48 hours by default) are deleted
by a periodic sweep and the record keeps its place in the log without one.

Configuration is read from the file given with --config and from
ROLLCALL_* environment variables, which take precedence.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with a status derived from the
// returned error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults and ROLLCALL_* variables when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
}

// loadConfig loads the process configuration once.
func loadConfig() (*config.Config, error) {
	if err := config.Initialize(cfgFile); err != nil {
		return nil, cli.NewConfigError("config", fmt.Sprintf("failed to load config: %v", err))
	}
	return config.GetConfig(), nil
}

// setupTelemetry builds the logger, metrics and health checker and installs
// the logger as the slog default. Logs go to w.
func setupTelemetry(cfg *config.Config, w io.Writer) (*telemetry.Telemetry, error) {
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	tel, err := telemetry.New(&cfg.Telemetry, telemetry.BuildInfo{
		Version:   Version,
		Commit:    GitCommit,
		BuildTime: BuildDate,
	}, w)
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	tel.Logger.SetDefault()
	return tel, nil
}
