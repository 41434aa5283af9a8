package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bogdangi/haproxy-log-analysis/pkg/analytics"
	"github.com/bogdangi/haproxy-log-analysis/pkg/config"
	"github.com/bogdangi/haproxy-log-analysis/pkg/parser"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a haplog configuration file without running analysis.

Checks:
  - YAML syntax
  - Time window notation (start, delta)
  - Threshold values
  - Command names against the registry
  - Log source file existence (warning only)`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	fmt.Printf("Validating %s...\n", configPath)

	// Load and validate config
	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	// Command names are dispatch identifiers, check them against the registry
	for _, name := range cfg.Commands {
		if _, ok := analytics.Lookup(name); !ok {
			return fmt.Errorf("validation failed: commands: unknown command %q", name)
		}
	}

	// Report what we found
	fmt.Printf("\nConfiguration valid!\n")
	fmt.Printf("  Log sources: %d pattern(s)\n", len(cfg.LogSources))
	if start, ok := cfg.TimeWindow.StartTime(); ok {
		if delta, ok := cfg.TimeWindow.DeltaDuration(); ok {
			fmt.Printf("  Window:      %s for %s\n", start.Format("02/Jan/2006:15:04:05"), delta)
		} else {
			fmt.Printf("  Window:      from %s\n", start.Format("02/Jan/2006:15:04:05"))
		}
	}
	if len(cfg.Commands) > 0 {
		fmt.Printf("  Commands:    %d\n", len(cfg.Commands))
	} else {
		fmt.Printf("  Commands:    all (%d)\n", len(analytics.Names()))
	}

	// Check if log sources exist (warnings only)
	files, err := parser.ExpandGlobs(cfg.LogSources)
	if err != nil {
		fmt.Printf("\nWarning: Error expanding log source patterns: %v\n", err)
	} else if len(files) == 0 {
		fmt.Printf("\nWarning: No files match log source patterns\n")
	} else {
		fmt.Printf("\nLog files matched: %d\n", len(files))
		for _, f := range files {
			fmt.Printf("  - %s\n", f)
		}
	}

	return nil
}
