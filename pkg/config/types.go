// Package config provides configuration loading and validation for haplog.
package config

import "time"

// Config is the root configuration structure loaded from YAML.
type Config struct {
	LogSources []string         `yaml:"log_sources"`
	TimeWindow TimeWindowConfig `yaml:"time_window,omitempty"`
	Thresholds ThresholdConfig  `yaml:"thresholds,omitempty"`
	Commands   []string         `yaml:"commands,omitempty"`
}

// TimeWindowConfig restricts analysis to entries accepted within a window.
type TimeWindowConfig struct {
	// Start is the inclusive lower bound, in HAProxy accept-date notation:
	// "02/Jan/2006" optionally extended with ":15", ":15:04" or ":15:04:05".
	Start string `yaml:"start,omitempty"`

	// Delta is the window length as a Go duration string (e.g. "45m",
	// "3h30m"). Only meaningful together with Start.
	Delta string `yaml:"delta,omitempty"`

	// Parsed forms (populated during validation).
	parsedStart time.Time
	parsedDelta time.Duration
}

// StartTime returns the parsed window start, if one is configured.
func (t *TimeWindowConfig) StartTime() (time.Time, bool) {
	return t.parsedStart, !t.parsedStart.IsZero()
}

// DeltaDuration returns the parsed window length, if one is configured.
func (t *TimeWindowConfig) DeltaDuration() (time.Duration, bool) {
	return t.parsedDelta, t.parsedDelta > 0
}

// ThresholdConfig holds the analytics limits.
type ThresholdConfig struct {
	// SlowRequestMillis is the response time in milliseconds above which a
	// request counts as slow.
	SlowRequestMillis int `yaml:"slow_request_ms,omitempty"`

	// QueuePeakMin is the backend queue depth a congestion run must exceed
	// to be reported.
	QueuePeakMin int `yaml:"queue_peak_min,omitempty"`

	// TopIPCount is how many client addresses top_ips returns.
	TopIPCount int `yaml:"top_ip_count,omitempty"`
}
