package output

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bogdangi/haproxy-log-analysis/pkg/analytics"
)

// acceptDateFormat is how accept times are rendered, matching HAProxy's
// own log notation.
const acceptDateFormat = "02/Jan/2006:15:04:05.000"

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	fmt.Fprintf(w, "haplog: %d lines read, %d valid, %d invalid, %d command(s) run\n",
		report.Summary.TotalLines,
		report.Summary.ValidLines,
		report.Summary.InvalidLines,
		report.Summary.CommandsRun)
	return nil
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	fmt.Fprintln(w, "=== haplog analysis report ===")
	fmt.Fprintln(w)

	for i := range report.Results {
		f.formatResult(&report.Results[i], w)
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d lines read, %d valid, %d invalid\n",
		report.Summary.TotalLines,
		report.Summary.ValidLines,
		report.Summary.InvalidLines)

	if f.opts.Verbose {
		fmt.Fprintf(w, "Run ID: %s\n", report.Metadata.RunID)
		fmt.Fprintf(w, "Sources: %s\n", strings.Join(report.Metadata.Sources, ", "))
		if tw := report.Metadata.TimeWindow; tw != nil {
			if tw.End.IsZero() {
				fmt.Fprintf(w, "Window: from %s\n", tw.Start.Format(acceptDateFormat))
			} else {
				fmt.Fprintf(w, "Window: %s to %s\n",
					tw.Start.Format(acceptDateFormat), tw.End.Format(acceptDateFormat))
			}
		}
		fmt.Fprintf(w, "Duration: %s\n", report.Metadata.Duration.Round(time.Millisecond))
	}

	return nil
}

func (f *TextFormatter) formatResult(result *CommandResult, w io.Writer) {
	switch result.Kind {
	case analytics.KindCount:
		fmt.Fprintf(w, "%s: %d\n\n", result.Command, result.Count)
	case analytics.KindHistogram:
		f.formatHistogram(result, w)
	case analytics.KindDurations:
		f.formatDurations(result, w)
	case analytics.KindTopIPs:
		f.formatTopIPs(result, w)
	case analytics.KindPeaks:
		f.formatPeaks(result, w)
	default:
		fmt.Fprintf(w, "%s: (unrenderable result kind %q)\n\n", result.Command, result.Kind)
	}
}

// formatHistogram renders buckets by count descending; key order breaks
// ties so output is stable across runs.
func (f *TextFormatter) formatHistogram(result *CommandResult, w io.Writer) {
	fmt.Fprintf(w, "[%s]\n", result.Command)

	if len(result.Histogram) == 0 {
		fmt.Fprintln(w, "  (empty)")
		fmt.Fprintln(w)
		return
	}

	keys := make([]string, 0, len(result.Histogram))
	width := 0
	for key := range result.Histogram {
		keys = append(keys, key)
		if len(key) > width {
			width = len(key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if result.Histogram[keys[i]] != result.Histogram[keys[j]] {
			return result.Histogram[keys[i]] > result.Histogram[keys[j]]
		}
		return keys[i] < keys[j]
	})

	for _, key := range keys {
		fmt.Fprintf(w, "  %-*s %d\n", width, key, result.Histogram[key])
	}
	fmt.Fprintln(w)
}

func (f *TextFormatter) formatDurations(result *CommandResult, w io.Writer) {
	fmt.Fprintf(w, "[%s] %d request(s)\n", result.Command, len(result.Durations))

	if len(result.Durations) > 0 {
		rendered := make([]string, len(result.Durations))
		for i, ms := range result.Durations {
			rendered[i] = strconv.Itoa(ms)
		}
		fmt.Fprintf(w, "  %s ms\n", strings.Join(rendered, " "))
	}
	fmt.Fprintln(w)
}

func (f *TextFormatter) formatTopIPs(result *CommandResult, w io.Writer) {
	fmt.Fprintf(w, "[%s]\n", result.Command)

	if len(result.TopIPs) == 0 {
		fmt.Fprintln(w, "  (no captured client addresses)")
		fmt.Fprintln(w)
		return
	}

	width := 0
	for _, ip := range result.TopIPs {
		if len(ip.IP) > width {
			width = len(ip.IP)
		}
	}
	for _, ip := range result.TopIPs {
		fmt.Fprintf(w, "  %-*s %d\n", width, ip.IP, ip.Repetitions)
	}
	fmt.Fprintln(w)
}

func (f *TextFormatter) formatPeaks(result *CommandResult, w io.Writer) {
	fmt.Fprintf(w, "[%s] %d peak(s)\n", result.Command, len(result.Peaks))

	for _, peak := range result.Peaks {
		fmt.Fprintf(w, "  - peak=%d span=%d first=%s last=%s\n",
			peak.Peak,
			peak.Span,
			peak.First.Format(acceptDateFormat),
			peak.Last.Format(acceptDateFormat))
	}
	fmt.Fprintln(w)
}
