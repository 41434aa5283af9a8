package analytics

import "time"

// QueuePeak describes one contiguous run of queued requests whose maximum
// backend queue depth exceeded the configured threshold.
type QueuePeak struct {
	// Peak is the maximum backend queue depth observed in the run.
	Peak int `json:"peak"`

	// Span is the number of entries in the run with a non-empty queue.
	Span int `json:"span"`

	// First is the accept time of the first queued entry in the run.
	First time.Time `json:"first"`

	// Last is the accept time of the entry that closed the run: the first
	// entry with an empty queue after the run, or the final entry
	// processed when the log ends while still queued.
	Last time.Time `json:"last"`
}

// QueuePeaks detects contiguous runs of entries (in chronological order)
// with a non-empty backend queue and reports each run whose maximum depth
// strictly exceeds Thresholds.QueuePeakMin.
//
// Single forward pass over the already-sorted valid entries. The span and
// first-on-queue markers reset only when a run is emitted, so a run that
// never clears the threshold folds into the next qualifying run rather
// than being reported on its own.
func (c *Commands) QueuePeaks() []QueuePeak {
	threshold := c.thresholds.QueuePeakMin

	var peaks []QueuePeak
	currentPeak := 0
	queue := 0

	currentSpan := 0
	var firstOnQueue time.Time

	var lastAcceptDate time.Time

	for _, entry := range c.store.ValidEntries() {
		queue = entry.QueueBackend
		lastAcceptDate = entry.AcceptDate

		if queue > 0 {
			currentSpan++
			if firstOnQueue.IsZero() {
				firstOnQueue = entry.AcceptDate
			}
		}

		if queue == 0 && currentPeak > threshold {
			peaks = append(peaks, QueuePeak{
				Peak:  currentPeak,
				Span:  currentSpan,
				First: firstOnQueue,
				Last:  entry.AcceptDate,
			})
			currentPeak = 0
			currentSpan = 0
			firstOnQueue = time.Time{}
		}

		if queue > currentPeak {
			currentPeak = queue
		}
	}

	// A run still open at the end of input.
	if queue > 0 && currentPeak > threshold {
		peaks = append(peaks, QueuePeak{
			Peak:  currentPeak,
			Span:  currentSpan,
			First: firstOnQueue,
			Last:  lastAcceptDate,
		})
	}

	return peaks
}
