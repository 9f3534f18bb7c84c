/*
Package cli provides command-line interface utilities for the rollcall
command.

Output Formatting:

Command results are printed as text, JSON or CSV. Results that implement
Table are aligned in columns for text output and written row by row for CSV:

	format, err := cli.ParseFormat(outputFlag)
	if err != nil {
		return err
	}
	if err := cli.NewFormatter(format).FormatTo(os.Stdout, result); err != nil {
		return err
	}

Exit Codes:

ExitCode maps an error returned by a command to the process exit status:
configuration problems exit with 2 and a corrupt attendance log with 3.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, cancel := cli.SetupSignalHandler()
	defer cancel()
*/
package cli
