package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bogdangi/haproxy-log-analysis/pkg/analytics"
	"github.com/bogdangi/haproxy-log-analysis/pkg/config"
	"github.com/bogdangi/haproxy-log-analysis/pkg/logstore"
	"github.com/bogdangi/haproxy-log-analysis/pkg/output"
	"github.com/bogdangi/haproxy-log-analysis/pkg/parser"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// RunOptions holds command-line options for the run command.
type RunOptions struct {
	Config   string
	Start    string
	Delta    string
	Commands []string
	Output   string
	Verbose  bool
	Quiet    bool

	// Threshold overrides; 0 means "use config/default".
	SlowMillis   int
	QueuePeakMin int
	TopIPCount   int

	FailOnInvalid bool
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run [log-file|glob ...]",
		Short: "Run analytics commands over HAProxy logs",
		Long: `Ingest one or more HAProxy HTTP-format log files and run analytics
commands over the valid entries.

Log files can be given as arguments (globs are expanded) or through the
log_sources list of a --config file. Pass "-" to read from stdin.

By default every available command runs; use --command to pick specific
ones (see 'haplog commands' for the list).

Exit codes:
  0 - Analysis completed
  1 - Invalid lines found and --fail-on-invalid was set
  2 - Configuration or runtime error`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args, opts)
		},
	}

	// Flags
	cmd.Flags().StringVar(&opts.Config, "config", "", "Optional YAML config file")
	cmd.Flags().StringVarP(&opts.Start, "start", "s", "", `Window start, e.g. "11/Dec/2013:13:00:00" (inclusive)`)
	cmd.Flags().StringVarP(&opts.Delta, "delta", "d", "", `Window length from start, e.g. "45m", "3h30m" (inclusive)`)
	cmd.Flags().StringSliceVarP(&opts.Commands, "command", "c", nil, "Analytics command(s) to run (can be repeated; default: all)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Include run metadata in the report")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no per-command results")
	cmd.Flags().IntVar(&opts.SlowMillis, "slow-ms", 0, "Slow-request threshold in milliseconds (default 1000)")
	cmd.Flags().IntVar(&opts.QueuePeakMin, "peak-min", 0, "Queue depth a congestion run must exceed (default 1)")
	cmd.Flags().IntVar(&opts.TopIPCount, "top-count", 0, "How many client addresses top_ips returns (default 10)")
	cmd.Flags().BoolVar(&opts.FailOnInvalid, "fail-on-invalid", false, "Exit 1 when any line fails to parse")

	return cmd
}

func runRun(cmd *cobra.Command, args []string, opts *RunOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	startedAt := time.Now()

	// Load configuration (optional; flags override)
	cfg := config.DefaultConfig()
	if opts.Config != "" {
		loaded, err := config.Load(ctx, opts.Config)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	sources := args
	if len(sources) == 0 {
		sources = cfg.LogSources
	}
	if len(sources) == 0 {
		return fmt.Errorf("no log source configured (pass log files as arguments or set log_sources in a config file)")
	}

	storeOpts, window, err := resolveWindow(cfg, opts)
	if err != nil {
		return err
	}

	commandNames, err := resolveCommands(cfg, opts)
	if err != nil {
		return err
	}

	thresholds := resolveThresholds(cfg, opts)

	formatter, err := createFormatter(opts)
	if err != nil {
		return err
	}

	source, files, err := openSource(sources)
	if err != nil {
		return err
	}
	defer source.Close()

	// Ingest
	store := logstore.New(parser.NewHTTPLogParser(), storeOpts...)
	if err := store.Ingest(ctx, source); err != nil {
		return fmt.Errorf("ingesting logs: %w", err)
	}

	// Run the analytics commands
	queries := analytics.New(store, thresholds)
	results := make([]output.CommandResult, 0, len(commandNames))
	for _, name := range commandNames {
		command, ok := analytics.Lookup(name)
		if !ok {
			// resolveCommands already validated names
			return fmt.Errorf("unknown command %q", name)
		}
		results = append(results, output.CommandResult{
			Command: name,
			Result:  command.Run(queries),
		})
	}

	report := output.NewReport(files, window, output.Summary{
		TotalLines:   store.TotalLines(),
		ValidLines:   len(store.ValidEntries()),
		InvalidLines: store.CounterOfInvalidLines(),
	}, results, startedAt)

	if err := formatter.Format(ctx, report, os.Stdout); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if opts.FailOnInvalid && store.CounterOfInvalidLines() > 0 {
		ExitCode = 1
	}

	return nil
}

// resolveWindow merges window flags over the config file and builds the
// store options plus the report metadata view of the window.
func resolveWindow(cfg *config.Config, opts *RunOptions) ([]logstore.Option, *output.TimeWindow, error) {
	start, hasStart := cfg.TimeWindow.StartTime()
	delta, hasDelta := cfg.TimeWindow.DeltaDuration()

	if opts.Start != "" {
		parsed, err := config.ParseStartTime(opts.Start)
		if err != nil {
			return nil, nil, err
		}
		start, hasStart = parsed, true
	}

	if opts.Delta != "" {
		parsed, err := parseDelta(opts.Delta)
		if err != nil {
			return nil, nil, err
		}
		delta, hasDelta = parsed, true
	}

	if hasDelta && !hasStart {
		return nil, nil, fmt.Errorf("--delta requires --start")
	}

	if !hasStart {
		return nil, nil, nil
	}

	storeOpts := []logstore.Option{logstore.WithStartTime(start)}
	window := &output.TimeWindow{Start: start}
	if hasDelta {
		storeOpts = append(storeOpts, logstore.WithDelta(delta))
		window.End = start.Add(delta)
	}
	return storeOpts, window, nil
}

// resolveCommands merges the command selection (flags over config, default
// full catalogue) and validates every name against the registry.
func resolveCommands(cfg *config.Config, opts *RunOptions) ([]string, error) {
	names := opts.Commands
	if len(names) == 0 {
		names = cfg.Commands
	}
	if len(names) == 0 {
		return analytics.Names(), nil
	}

	for _, name := range names {
		if _, ok := analytics.Lookup(name); !ok {
			return nil, fmt.Errorf("unknown command %q (see 'haplog commands')", name)
		}
	}
	return names, nil
}

func resolveThresholds(cfg *config.Config, opts *RunOptions) analytics.Thresholds {
	thresholds := analytics.Thresholds{
		SlowRequestMillis: cfg.Thresholds.SlowRequestMillis,
		QueuePeakMin:      cfg.Thresholds.QueuePeakMin,
		TopIPCount:        cfg.Thresholds.TopIPCount,
	}
	if opts.SlowMillis > 0 {
		thresholds.SlowRequestMillis = opts.SlowMillis
	}
	if opts.QueuePeakMin > 0 {
		thresholds.QueuePeakMin = opts.QueuePeakMin
	}
	if opts.TopIPCount > 0 {
		thresholds.TopIPCount = opts.TopIPCount
	}
	return thresholds
}

// openSource turns the source list into a LineSource. "-" alone selects
// stdin; anything else is expanded as file paths and globs.
func openSource(sources []string) (parser.LineSource, []string, error) {
	if len(sources) == 1 && sources[0] == "-" {
		return parser.NewReaderSource(os.Stdin), []string{"-"}, nil
	}

	files, err := parser.ExpandGlobs(sources)
	if err != nil {
		return nil, nil, fmt.Errorf("expanding log sources: %w", err)
	}
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("no log files matched patterns: %v", sources)
	}
	return parser.NewFileSource(files), files, nil
}

func createFormatter(opts *RunOptions) (output.Formatter, error) {
	formatOpts := output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
	}

	switch opts.Output {
	case "text":
		return output.NewTextFormatter(formatOpts), nil
	case "json":
		return output.NewJSONFormatter(formatOpts), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}
}
