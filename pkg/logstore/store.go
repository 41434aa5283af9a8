// Package logstore ingests a reverse-proxy access log, partitions lines into
// valid and invalid sets, applies an optional time window, and restores true
// chronological order by accept date.
package logstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/bogdangi/haproxy-log-analysis/pkg/parser"
)

// ErrNoSource is returned by Ingest when no line source is configured.
var ErrNoSource = errors.New("no log source configured")

// ErrAlreadyIngested is returned by Ingest when the store has already been
// populated. A store holds exactly one ingestion run; a new run requires a
// new instance.
var ErrAlreadyIngested = errors.New("store already ingested")

// Store owns the valid/invalid partition of one ingestion run.
//
// Valid entries are sorted by accept date after ingestion completes. HAProxy
// writes a log line only once the connection has finished, so file order is
// completion order: a fast connection accepted later can be logged before a
// slow one accepted earlier. Sorting by accept date recovers the real order
// in which connections reached the proxy, which acceptance-time analytics
// (queue peak detection in particular) depend on.
type Store struct {
	lineParser parser.LineParser

	startTime time.Time
	hasStart  bool
	delta     time.Duration
	endTime   time.Time
	hasEnd    bool

	totalLines   int
	validEntries []*parser.LogEntry
	invalidLines []string
	ingested     bool
}

// Option configures a Store.
type Option func(*Store)

// WithStartTime excludes entries accepted strictly before start.
// The boundary is inclusive.
func WithStartTime(start time.Time) Option {
	return func(s *Store) {
		s.startTime = start
		s.hasStart = true
	}
}

// WithDelta bounds the window at start+delta (inclusive). It has no effect
// unless WithStartTime is also given.
func WithDelta(delta time.Duration) Option {
	return func(s *Store) {
		s.delta = delta
	}
}

// New creates a Store that parses lines with lineParser.
func New(lineParser parser.LineParser, opts ...Option) *Store {
	s := &Store{lineParser: lineParser}
	for _, opt := range opts {
		opt(s)
	}
	if s.hasStart && s.delta > 0 {
		s.endTime = s.startTime.Add(s.delta)
		s.hasEnd = true
	}
	return s
}

// Ingest consumes the source to exhaustion, partitioning each line:
//   - lines that fail to parse are recorded verbatim (whitespace-trimmed)
//     in the invalid set; a parse failure is never fatal
//   - valid entries outside the configured time window are silently
//     dropped (still counted in TotalLines, not counted as invalid)
//   - remaining entries form the valid set, stably sorted by accept date
//
// Analytics are only well-defined after Ingest returns nil.
func (s *Store) Ingest(ctx context.Context, source parser.LineSource) error {
	if source == nil {
		return ErrNoSource
	}
	if s.ingested {
		return ErrAlreadyIngested
	}
	s.ingested = true

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := source.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading log source: %w", err)
		}

		s.totalLines++
		stripped := strings.TrimSpace(line)

		entry, err := s.lineParser.Parse(stripped)
		if err != nil {
			s.invalidLines = append(s.invalidLines, stripped)
			continue
		}

		if !s.inTimeRange(entry.AcceptDate) {
			continue
		}

		s.validEntries = append(s.validEntries, entry)
	}

	// Stable so entries with equal accept dates keep file order.
	sort.SliceStable(s.validEntries, func(i, j int) bool {
		return s.validEntries[i].AcceptDate.Before(s.validEntries[j].AcceptDate)
	})

	return nil
}

// inTimeRange reports whether an accept date falls within the configured
// window. Both boundaries are inclusive; with no start time everything is
// in range.
func (s *Store) inTimeRange(acceptDate time.Time) bool {
	if !s.hasStart {
		return true
	}
	if acceptDate.Before(s.startTime) {
		return false
	}
	if s.hasEnd && acceptDate.After(s.endTime) {
		return false
	}
	return true
}

// TotalLines returns the count of all lines read, valid and invalid,
// including window-excluded ones.
func (s *Store) TotalLines() int {
	return s.totalLines
}

// ValidEntries returns the valid entries in accept-date order.
// The returned slice is shared; callers must not mutate it.
func (s *Store) ValidEntries() []*parser.LogEntry {
	return s.validEntries
}

// InvalidLines returns the raw lines that failed parsing, in file order.
func (s *Store) InvalidLines() []string {
	return s.invalidLines
}

// CounterOfInvalidLines returns the number of lines that failed parsing.
func (s *Store) CounterOfInvalidLines() int {
	return len(s.invalidLines)
}
