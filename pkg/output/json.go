package output

import (
	"context"
	"encoding/json"
	"io"
)

// JSONFormatter formats reports as JSON.
type JSONFormatter struct {
	opts FormatOptions
}

// NewJSONFormatter creates a new JSON formatter with the given options.
func NewJSONFormatter(opts FormatOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Name returns the format name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// Format renders the report as JSON. Quiet mode emits the summary alone;
// the default emits summary and results; verbose adds the run metadata.
func (f *JSONFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if f.opts.Quiet {
		return encoder.Encode(report.Summary)
	}

	view := struct {
		Summary  Summary         `json:"summary"`
		Results  []CommandResult `json:"results"`
		Metadata *Metadata       `json:"metadata,omitempty"`
	}{
		Summary: report.Summary,
		Results: report.Results,
	}
	if f.opts.Verbose {
		view.Metadata = &report.Metadata
	}

	return encoder.Encode(view)
}
