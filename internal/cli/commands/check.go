package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bogdangi/haproxy-log-analysis/pkg/config"
	"github.com/bogdangi/haproxy-log-analysis/pkg/parser"
)

// CheckOptions holds options for the check command.
type CheckOptions struct {
	Start      string
	Delta      string
	SampleSize int
	Verbose    bool
}

// DiagnosticResult represents the result of a single pre-flight check.
type DiagnosticResult struct {
	Check    string
	Status   string // "ok", "warning", "error"
	Message  string
	Suggests []string
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &CheckOptions{}

	cmd := &cobra.Command{
		Use:   "check <log-file|glob ...>",
		Short: "Pre-flight checks before running analysis",
		Long: `Check that an analysis run would be meaningful.

Verifies:
  - Log files exist, are readable and are not empty
  - A sample of lines actually parses as HAProxy HTTP format
  - Window flags (--start/--delta) are well-formed

Exit codes:
  0 - All checks passed (warnings allowed)
  1 - At least one check failed`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Start, "start", "s", "", "Window start to verify")
	cmd.Flags().StringVarP(&opts.Delta, "delta", "d", "", "Window length to verify")
	cmd.Flags().IntVar(&opts.SampleSize, "sample-size", 100, "Number of lines to sample per file")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show passing checks in detail")

	return cmd
}

func runCheck(patterns []string, opts *CheckOptions) error {
	var results []DiagnosticResult

	files, result := checkSources(patterns)
	results = append(results, result)

	for _, file := range files {
		results = append(results, checkFile(file))
		results = append(results, checkParseRate(file, opts.SampleSize))
	}

	results = append(results, checkWindow(opts)...)

	printDiagnostics(results, opts)
	return nil
}

func checkSources(patterns []string) ([]string, DiagnosticResult) {
	result := DiagnosticResult{Check: "Log sources"}

	files, err := parser.ExpandGlobs(patterns)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot expand patterns: %v", err)
		return nil, result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("%d file(s) from %d pattern(s)", len(files), len(patterns))
	return files, result
}

func checkFile(path string) DiagnosticResult {
	result := DiagnosticResult{Check: fmt.Sprintf("File: %s", path)}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		result.Status = "error"
		result.Message = "File not found"
		result.Suggests = []string{"Check the file path is correct"}
		return result
	}
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot access file: %v", err)
		result.Suggests = []string{"Check file permissions"}
		return result
	}
	if info.IsDir() {
		result.Status = "error"
		result.Message = "Path is a directory, not a file"
		return result
	}
	if info.Size() == 0 {
		result.Status = "warning"
		result.Message = "File is empty"
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("Readable, %d bytes", info.Size())
	return result
}

// checkParseRate parses a head sample of the file and grades how much of
// it conforms to the HAProxy HTTP log grammar.
func checkParseRate(path string, sampleSize int) DiagnosticResult {
	result := DiagnosticResult{Check: fmt.Sprintf("Parse rate: %s", path)}

	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot open file: %v", err)
		return result
	}
	defer f.Close()

	lineParser := parser.NewHTTPLogParser()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	sampled, valid := 0, 0
	for scanner.Scan() && sampled < sampleSize {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		sampled++
		if _, err := lineParser.Parse(line); err == nil {
			valid++
		}
	}
	if err := scanner.Err(); err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot read file: %v", err)
		return result
	}

	if sampled == 0 {
		result.Status = "warning"
		result.Message = "No lines to sample"
		return result
	}

	rate := float64(valid) / float64(sampled)
	result.Message = fmt.Sprintf("%d of %d sampled line(s) parse (%.0f%%)", valid, sampled, rate*100)

	switch {
	case valid == 0:
		result.Status = "error"
		result.Suggests = []string{
			"Run 'haplog detect' to identify the actual line format",
			"haplog requires 'option httplog' format logs",
		}
	case rate < 0.9:
		result.Status = "warning"
		result.Suggests = []string{"Unparsable lines are counted by counter_invalid, not analyzed"}
	default:
		result.Status = "ok"
	}
	return result
}

func checkWindow(opts *CheckOptions) []DiagnosticResult {
	var results []DiagnosticResult

	if opts.Start != "" {
		result := DiagnosticResult{Check: "Window start"}
		if start, err := config.ParseStartTime(opts.Start); err != nil {
			result.Status = "error"
			result.Message = err.Error()
			result.Suggests = []string{`Use HAProxy accept-date notation, e.g. "11/Dec/2013:13:00:00"`}
		} else {
			result.Status = "ok"
			result.Message = fmt.Sprintf("Parsed as %s", start.Format("02/Jan/2006:15:04:05"))
		}
		results = append(results, result)
	}

	if opts.Delta != "" {
		result := DiagnosticResult{Check: "Window delta"}
		switch delta, err := parseDelta(opts.Delta); {
		case err != nil:
			result.Status = "error"
			result.Message = err.Error()
		case opts.Start == "":
			result.Status = "warning"
			result.Message = "Delta has no effect without --start"
		default:
			result.Status = "ok"
			result.Message = fmt.Sprintf("Window length %s", delta)
		}
		results = append(results, result)
	}

	return results
}

// parseDelta parses a window length, rejecting non-positive values.
func parseDelta(s string) (time.Duration, error) {
	delta, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid delta %q: %w", s, err)
	}
	if delta <= 0 {
		return 0, fmt.Errorf("delta must be positive, got %s", delta)
	}
	return delta, nil
}

func printDiagnostics(results []DiagnosticResult, opts *CheckOptions) {
	fmt.Println("=== haplog pre-flight checks ===")
	fmt.Println()

	okCount := 0
	warnCount := 0
	errCount := 0

	for _, r := range results {
		var icon string
		switch r.Status {
		case "ok":
			icon = "PASS"
			okCount++
		case "warning":
			icon = "WARN"
			warnCount++
		case "error":
			icon = "FAIL"
			errCount++
		}

		fmt.Printf("[%s] %s\n", icon, r.Check)
		if opts.Verbose || r.Status != "ok" {
			fmt.Printf("    %s\n", r.Message)
		}
		for _, s := range r.Suggests {
			fmt.Printf("      Hint: %s\n", s)
		}
	}

	fmt.Println()
	fmt.Println("---")
	fmt.Printf("Summary: %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

	if errCount > 0 {
		fmt.Println("\nFix the errors above before running analysis.")
		ExitCode = 1
	} else if warnCount > 0 {
		fmt.Println("\nAnalysis is possible but has warnings.")
	} else {
		fmt.Println("\nReady to run!")
	}
}
