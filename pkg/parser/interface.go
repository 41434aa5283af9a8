package parser

import "context"

// LineParser turns one stripped raw log line into a LogEntry.
// A line that does not conform to the expected grammar is reported with a
// non-nil error; the returned entry is nil in that case and no field values
// are reliable.
type LineParser interface {
	Parse(line string) (*LogEntry, error)
}

// LineSource provides an iterator over raw log lines.
// Implementations must be safe for sequential access (not concurrent).
type LineSource interface {
	// Next returns the next raw line, without its trailing newline.
	// Returns io.EOF when no more lines are available.
	Next(ctx context.Context) (string, error)

	// Close releases any resources held by the source.
	Close() error
}
