// Package analytics implements the fixed catalogue of read-only queries
// computed over an ingested log store.
package analytics

import (
	"github.com/bogdangi/haproxy-log-analysis/pkg/logstore"
)

// Thresholds holds the tunable limits used by the analytics commands.
type Thresholds struct {
	// SlowRequestMillis is the response time above which a request is
	// reported by slow_requests. The comparison is strict.
	SlowRequestMillis int

	// QueuePeakMin is the backend queue depth a run must strictly exceed
	// for queue_peaks to report it.
	QueuePeakMin int

	// TopIPCount is the maximum number of entries returned by top_ips.
	TopIPCount int
}

// DefaultThresholds returns the standard limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SlowRequestMillis: 1000,
		QueuePeakMin:      1,
		TopIPCount:        10,
	}
}

// Commands computes analytics over a finalized store. Every command is a
// pure read: commands share no state, may run in any order, and return the
// same result on repeated invocation. Calling them on a store that has not
// been ingested yields zero/empty results.
type Commands struct {
	store      *logstore.Store
	thresholds Thresholds
}

// New creates the analytics command set over store.
func New(store *logstore.Store, thresholds Thresholds) *Commands {
	return &Commands{store: store, thresholds: thresholds}
}

// Counter returns the number of valid log lines.
func (c *Commands) Counter() int {
	return len(c.store.ValidEntries())
}

// CounterInvalid returns the number of lines that failed parsing.
func (c *Commands) CounterInvalid() int {
	return c.store.CounterOfInvalidLines()
}

// HTTPMethods returns a histogram of HTTP methods.
func (c *Commands) HTTPMethods() map[string]int {
	methods := make(map[string]int)
	for _, entry := range c.store.ValidEntries() {
		methods[entry.HTTPMethod]++
	}
	return methods
}

// StatusCodes returns a histogram of HTTP status codes.
func (c *Commands) StatusCodes() map[int]int {
	statusCodes := make(map[int]int)
	for _, entry := range c.store.ValidEntries() {
		statusCodes[entry.StatusCode]++
	}
	return statusCodes
}

// RequestPaths returns a histogram of request paths.
func (c *Commands) RequestPaths() map[string]int {
	paths := make(map[string]int)
	for _, entry := range c.store.ValidEntries() {
		paths[entry.HTTPPath]++
	}
	return paths
}

// ServerLoad returns a histogram of how many requests each downstream
// server handled.
func (c *Commands) ServerLoad() map[string]int {
	servers := make(map[string]int)
	for _, entry := range c.store.ValidEntries() {
		servers[entry.ServerName]++
	}
	return servers
}

// IPCounter returns a histogram of client identifiers taken from the
// captured request headers with the surrounding brackets stripped.
// Entries without a header capture are excluded.
//
// This requires HAProxy to capture exactly one request header carrying the
// forwarded client address (usually X-Forwarded-For).
func (c *Commands) IPCounter() map[string]int {
	ips := make(map[string]int)
	for _, entry := range c.store.ValidEntries() {
		if entry.CapturedRequestHeaders == nil {
			continue
		}
		headers := *entry.CapturedRequestHeaders
		if len(headers) < 2 {
			continue
		}
		ips[headers[1:len(headers)-1]]++
	}
	return ips
}

// SlowRequests returns the response time of every request that took
// strictly more than Thresholds.SlowRequestMillis, in chronological order.
func (c *Commands) SlowRequests() []int {
	var slow []int
	for _, entry := range c.store.ValidEntries() {
		if entry.TimeWaitResponse > c.thresholds.SlowRequestMillis {
			slow = append(slow, entry.TimeWaitResponse)
		}
	}
	return slow
}
