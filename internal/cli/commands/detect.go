package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bogdangi/haproxy-log-analysis/pkg/detector"
)

// DetectOptions holds options for the detect command.
type DetectOptions struct {
	SampleSize int
}

// NewDetectCommand creates the detect command.
func NewDetectCommand() *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect <log-file>",
		Short: "Detect the line format of a log file",
		Long: `Sample a log file and report which access-log format its lines match.

haplog analyzes HAProxy HTTP-format logs; detect tells you whether a file
is in that format before you spend time on a full run, and names the format
when it is not (HAProxy TCP log, web-server combined log, ...).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.SampleSize, "sample-size", 100, "Number of lines to sample")

	return cmd
}

func runDetect(ctx context.Context, path string, opts *DetectOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	d := detector.New(detector.WithSampleSize(opts.SampleSize))
	result, err := d.DetectFromFile(ctx, path)
	if err != nil {
		return fmt.Errorf("detecting format: %w", err)
	}

	fmt.Printf("Sampled %d line(s) from %s\n\n", result.SampledLines, path)

	if !result.HasMatch() {
		fmt.Println("No known access-log format matched.")
		return nil
	}

	for _, match := range result.Matches {
		fmt.Printf("  %-28s %3.0f%% (%d line(s))\n",
			match.Format.Name, match.Confidence*100, match.MatchCount)
		if match.Format.Hint != "" {
			fmt.Printf("    Hint: %s\n", match.Format.Hint)
		}
	}
	fmt.Println()

	best := result.BestMatch()
	if best.Format.Supported {
		fmt.Println("This file can be analyzed with 'haplog run'.")
	} else {
		fmt.Printf("Best match %q is not analyzable by haplog.\n", best.Format.Name)
		ExitCode = 1
	}

	return nil
}
