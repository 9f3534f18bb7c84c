package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"rollcall-hq/attendance/pkg/cli"
	"rollcall-hq/attendance/pkg/config"
	"rollcall-hq/attendance/pkg/roster"
	"rollcall-hq/attendance/pkg/server"
)

var runFlags struct {
	listenAddress     string
	logLevel          string
	dryRun            bool
	resetCorruptStore bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the attendance server",
	Long: `Start the attendance server with the specified configuration.

The server accepts check-ins, serves the attendance log and summaries, and
runs the photo retention sweep on the configured interval.

A corrupt attendance log does not stop the server: reads return an empty
log and check-ins are refused until the log is repaired or reset.

Examples:
  # Start with defaults
  rollcall run

  # Start with a config file
  rollcall run --config /etc/rollcall/config.yaml

  # Override listen address
  rollcall run --listen 0.0.0.0:8080

  # Move a corrupt log aside and start with an empty one
  rollcall run --reset-corrupt-store

  # Validate config without starting server
  rollcall run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
	runCmd.Flags().BoolVar(&runFlags.resetCorruptStore, "reset-corrupt-store", false, "quarantine a corrupt attendance log and start empty")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	if runFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration valid")
		return nil
	}

	tel, err := setupTelemetry(cfg, os.Stdout)
	if err != nil {
		return err
	}

	ctx, cancel := cli.SetupSignalHandler()
	defer cancel()

	printBanner(cmd, cfg)

	a, err := newApp(ctx, cfg)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer a.close()

	if a.loadErr != nil {
		if runFlags.resetCorruptStore {
			if err := a.resetCorruptStore(ctx); err != nil {
				return cli.NewCommandError("run", err)
			}
		} else {
			slog.Error("attendance log is corrupt, check-ins are disabled", "error", a.loadErr)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Attendance log loaded (%s, %d records)\n", a.store.Backend(), a.store.Len())

	if err := a.instrument(tel); err != nil {
		return cli.NewCommandError("run", err)
	}

	if err := a.roster.Ready(); err == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Roster loaded (%d students)\n", a.roster.Len())
	} else {
		slog.Warn("no roster loaded, names will be empty", "path", cfg.Roster.Path, "error", err)
	}

	if cfg.Roster.Watch {
		watcher, err := roster.NewWatcher(a.roster, roster.WatcherConfig{
			DebounceInterval: cfg.Roster.DebounceInterval,
		})
		if err != nil {
			slog.Warn("roster watcher disabled", "error", err)
		} else {
			watcher.OnReload = tel.Metrics.RecordRosterReload
			go func() {
				if err := watcher.Watch(ctx); err != nil {
					slog.Warn("roster watcher stopped", "error", err)
				}
			}()
			defer func() { _ = watcher.Stop() }()
		}
	}

	if cfg.Retention.Enabled {
		scheduler := a.sweeper.Scheduler()
		if err := scheduler.Start(ctx); err != nil {
			return cli.NewCommandError("run", err)
		}
		defer scheduler.Stop()
		if next := scheduler.NextRun(); next != nil {
			slog.Debug("retention scheduler started", "next_sweep", next)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Photo retention enabled (%s threshold, every %s)\n",
			cfg.Retention.Threshold, cfg.Retention.Interval)
	}

	srv, err := server.New(cfg, server.Dependencies{
		Store:      a.store,
		Checkins:   a.checkins,
		Aggregator: a.aggregator,
		Sweeper:    a.sweeper,
		Roster:     a.roster,
		Uploads:    a.uploads,
		Clock:      a.clock,
		Telemetry:  tel,
	})
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Health endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Health.LivenessPath)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "\nPress Ctrl+C to stop")

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "✓ Server stopped")
	return nil
}

func printBanner(cmd *cobra.Command, cfg *config.Config) {
	fmt.Fprintf(cmd.OutOrStdout(), "Rollcall v%s\n", Version)
	fmt.Fprintf(cmd.OutOrStdout(), "Loading configuration from: %s\n", config.Source())
	fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration loaded")

	slog.Debug("storage", "backend", cfg.Storage.Backend)
	slog.Debug("timezone", "name", cfg.Timezone)
	if !cfg.Retention.Enabled {
		slog.Debug("photo retention disabled")
	}
}
