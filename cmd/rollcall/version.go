package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"rollcall-hq/attendance/pkg/cli"
	"rollcall-hq/attendance/pkg/telemetry/health"
)

// Set with -ldflags "-X main.Version=... -X main.GitCommit=... -X main.BuildDate=...".
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var versionFlags struct {
	output string
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Print the version, Git commit and build date of this binary. The JSON
form matches the server's version endpoint.`,
	Args: cobra.NoArgs,
	RunE: runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().StringVarP(&versionFlags.output, "output", "o", "text", "output format (text, json)")
	_ = versionCmd.RegisterFlagCompletionFunc("output", completeValues("text", "json"))
}

func runVersion(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(versionFlags.output)
	if err != nil {
		return err
	}

	info := health.VersionInfo{
		Version:   Version,
		Commit:    GitCommit,
		BuildTime: BuildDate,
		GoVersion: runtime.Version(),
	}
	if format == cli.FormatJSON {
		return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), info)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Rollcall %s\n", info.Version)
	fmt.Fprintf(out, "Git Commit: %s\n", info.Commit)
	fmt.Fprintf(out, "Build Date: %s\n", info.BuildTime)
	fmt.Fprintf(out, "Go Version: %s\n", info.GoVersion)
	fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	return nil
}
