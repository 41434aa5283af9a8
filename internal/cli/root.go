// Package cli provides the command-line interface for haplog.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bogdangi/haproxy-log-analysis/internal/cli/commands"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	rootCmd := NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		// Print error to stderr (SilenceErrors prevents Cobra from doing this)
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2 // Configuration or runtime error
	}
	return commands.ExitCode
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "haplog",
		Short: "Analyze HAProxy access logs",
		Long: `haplog is a batch analysis tool for HAProxy HTTP-format access logs.

It splits a log into valid and invalid lines, optionally restricts analysis
to a time window, restores true chronological order by accept date (HAProxy
logs connections in completion order, not acceptance order), and runs a
fixed catalogue of analytics commands:

  traffic counters, status/method/path histograms, per-server load,
  slow-request detection, most frequent client addresses, and backend
  queue congestion peaks.

Use 'haplog commands' to list the available analytics commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add subcommands
	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(commands.NewCommandsCommand())
	rootCmd.AddCommand(commands.NewCheckCommand())
	rootCmd.AddCommand(commands.NewDetectCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
