package logstore

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/bogdangi/haproxy-log-analysis/pkg/parser"
)

// sliceSource feeds a fixed set of lines, like a file would.
type sliceSource struct {
	lines []string
	pos   int
}

func (s *sliceSource) Next(_ context.Context) (string, error) {
	if s.pos >= len(s.lines) {
		return "", io.EOF
	}
	line := s.lines[s.pos]
	s.pos++
	return line, nil
}

func (s *sliceSource) Close() error { return nil }

// logLine builds a minimal valid HTTP-format line accepted at the given
// date, e.g. "09/Dec/2013:12:59:46.633".
func logLine(accept string) string {
	return fmt.Sprintf(`10.0.1.2:33317 [%s] http-in static/srv1 `+
		`10/0/30/69/109 200 2750 - - ---- 1/1/1/1/0 0/0 "GET / HTTP/1.1"`, accept)
}

func ingest(t *testing.T, lines []string, opts ...Option) *Store {
	t.Helper()
	store := New(parser.NewHTTPLogParser(), opts...)
	if err := store.Ingest(context.Background(), &sliceSource{lines: lines}); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	return store
}

func TestIngest_Partition(t *testing.T) {
	store := ingest(t, []string{
		logLine("09/Dec/2013:12:59:46.633"),
		"  this line is garbage  ",
		logLine("09/Dec/2013:12:59:47.000"),
		"",
	})

	if store.TotalLines() != 4 {
		t.Errorf("TotalLines() = %d, want 4", store.TotalLines())
	}
	if len(store.ValidEntries()) != 2 {
		t.Errorf("len(ValidEntries()) = %d, want 2", len(store.ValidEntries()))
	}
	if store.CounterOfInvalidLines() != 2 {
		t.Errorf("CounterOfInvalidLines() = %d, want 2", store.CounterOfInvalidLines())
	}

	// Invalid lines are kept verbatim after whitespace trimming, in file order.
	invalid := store.InvalidLines()
	if invalid[0] != "this line is garbage" {
		t.Errorf("InvalidLines()[0] = %q, want trimmed raw text", invalid[0])
	}
	if invalid[1] != "" {
		t.Errorf("InvalidLines()[1] = %q, want empty string", invalid[1])
	}

	// With no window configured, every line is either valid or invalid.
	if got := len(store.ValidEntries()) + store.CounterOfInvalidLines(); got != store.TotalLines() {
		t.Errorf("valid+invalid = %d, want TotalLines() = %d", got, store.TotalLines())
	}
}

func TestIngest_SortsByAcceptDate(t *testing.T) {
	// Completion order differs from acceptance order: the slow connection
	// accepted first is logged last.
	store := ingest(t, []string{
		logLine("09/Dec/2013:13:00:02.000"),
		logLine("09/Dec/2013:12:59:59.000"),
		logLine("09/Dec/2013:13:00:01.500"),
	})

	entries := store.ValidEntries()
	if len(entries) != 3 {
		t.Fatalf("len(ValidEntries()) = %d, want 3", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].AcceptDate.Before(entries[i-1].AcceptDate) {
			t.Errorf("entries not sorted: [%d]=%v after [%d]=%v",
				i-1, entries[i-1].AcceptDate, i, entries[i].AcceptDate)
		}
	}
}

func TestIngest_WindowBoundaries(t *testing.T) {
	start := time.Date(2013, time.December, 9, 13, 0, 0, 0, time.UTC)
	delta := time.Minute // end = 13:01:00

	store := ingest(t, []string{
		logLine("09/Dec/2013:12:59:59.999"), // strictly before start: dropped
		logLine("09/Dec/2013:13:00:00.000"), // equals start: included
		logLine("09/Dec/2013:13:00:30.000"), // inside: included
		logLine("09/Dec/2013:13:01:00.000"), // equals end: included
		logLine("09/Dec/2013:13:01:00.001"), // strictly after end: dropped
		"garbage",
	}, WithStartTime(start), WithDelta(delta))

	if got := len(store.ValidEntries()); got != 3 {
		t.Errorf("len(ValidEntries()) = %d, want 3", got)
	}

	// Window-excluded lines still count as read, and are not invalid.
	if store.TotalLines() != 6 {
		t.Errorf("TotalLines() = %d, want 6", store.TotalLines())
	}
	if store.CounterOfInvalidLines() != 1 {
		t.Errorf("CounterOfInvalidLines() = %d, want 1", store.CounterOfInvalidLines())
	}
	if got := len(store.ValidEntries()) + store.CounterOfInvalidLines(); got > store.TotalLines() {
		t.Errorf("valid+invalid = %d exceeds TotalLines() = %d", got, store.TotalLines())
	}
}

func TestIngest_StartOnlyWindow(t *testing.T) {
	start := time.Date(2013, time.December, 9, 13, 0, 0, 0, time.UTC)

	store := ingest(t, []string{
		logLine("09/Dec/2013:12:00:00.000"),
		logLine("09/Dec/2013:13:00:00.000"),
		logLine("09/Dec/2013:23:59:59.000"), // unbounded above without delta
	}, WithStartTime(start))

	if got := len(store.ValidEntries()); got != 2 {
		t.Errorf("len(ValidEntries()) = %d, want 2", got)
	}
}

func TestIngest_DeltaWithoutStartIsIgnored(t *testing.T) {
	store := ingest(t, []string{
		logLine("09/Dec/2013:12:00:00.000"),
		logLine("10/Dec/2013:12:00:00.000"),
	}, WithDelta(time.Minute))

	if got := len(store.ValidEntries()); got != 2 {
		t.Errorf("len(ValidEntries()) = %d, want 2 (no window without start)", got)
	}
}

func TestIngest_NoSource(t *testing.T) {
	store := New(parser.NewHTTPLogParser())
	if err := store.Ingest(context.Background(), nil); err != ErrNoSource {
		t.Fatalf("Ingest(nil) error = %v, want ErrNoSource", err)
	}
}

func TestIngest_Twice(t *testing.T) {
	store := New(parser.NewHTTPLogParser())
	if err := store.Ingest(context.Background(), &sliceSource{}); err != nil {
		t.Fatalf("first Ingest() error = %v", err)
	}
	if err := store.Ingest(context.Background(), &sliceSource{}); err != ErrAlreadyIngested {
		t.Fatalf("second Ingest() error = %v, want ErrAlreadyIngested", err)
	}
}

func TestIngest_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := New(parser.NewHTTPLogParser())
	if err := store.Ingest(ctx, &sliceSource{lines: []string{"x"}}); err != context.Canceled {
		t.Fatalf("Ingest() error = %v, want context.Canceled", err)
	}
}
