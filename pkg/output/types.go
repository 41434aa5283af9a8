// Package output provides report assembly and formatting for analytics
// results.
package output

import (
	"time"

	"github.com/google/uuid"

	"github.com/bogdangi/haproxy-log-analysis/pkg/analytics"
)

// Report is the complete output of one analysis run.
type Report struct {
	// Summary provides aggregate statistics.
	Summary Summary `json:"summary"`

	// Results holds one entry per executed command, in execution order.
	Results []CommandResult `json:"results"`

	// Metadata provides context about the run.
	Metadata Metadata `json:"metadata"`
}

// CommandResult pairs a command name with its result.
type CommandResult struct {
	Command string `json:"command"`
	analytics.Result
}

// Summary provides aggregate statistics.
type Summary struct {
	// CommandsRun is the number of analytics commands executed.
	CommandsRun int `json:"commands_run"`

	// TotalLines is the count of all lines read, valid and invalid.
	TotalLines int `json:"total_lines"`

	// ValidLines is the number of entries retained for analysis.
	ValidLines int `json:"valid_lines"`

	// InvalidLines is the number of lines that failed parsing.
	InvalidLines int `json:"invalid_lines"`
}

// Metadata provides context about the analysis run.
type Metadata struct {
	// RunID uniquely identifies this run.
	RunID string `json:"run_id"`

	// Sources lists the log files that were analyzed.
	Sources []string `json:"sources"`

	// TimeWindow is the accept-date filter that was applied, if any.
	TimeWindow *TimeWindow `json:"time_window,omitempty"`

	// AnalyzedAt is when the analysis was performed.
	AnalyzedAt time.Time `json:"analyzed_at"`

	// Duration is how long ingestion plus analytics took.
	Duration time.Duration `json:"duration"`
}

// TimeWindow represents the applied accept-date filter.
// A zero End means the window was unbounded above.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end,omitempty"`
}

// NewReport assembles a Report from run results.
func NewReport(sources []string, window *TimeWindow, summary Summary, results []CommandResult, startedAt time.Time) *Report {
	summary.CommandsRun = len(results)
	return &Report{
		Summary: summary,
		Results: results,
		Metadata: Metadata{
			RunID:      uuid.New().String(),
			Sources:    sources,
			TimeWindow: window,
			AnalyzedAt: time.Now(),
			Duration:   time.Since(startedAt),
		},
	}
}
