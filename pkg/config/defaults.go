package config

import (
	"os"
	"strconv"
	"strings"
)

// Default values for configuration.
const (
	DefaultSlowRequestMillis = 1000
	DefaultQueuePeakMin      = 1
	DefaultTopIPCount        = 10
)

// Environment variable names.
const (
	EnvLogSources        = "HAPLOG_LOG_SOURCES"
	EnvSlowRequestMillis = "HAPLOG_SLOW_REQUEST_MS"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LogSources: []string{},
		Thresholds: ThresholdConfig{
			SlowRequestMillis: DefaultSlowRequestMillis,
			QueuePeakMin:      DefaultQueuePeakMin,
			TopIPCount:        DefaultTopIPCount,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides.
func (c *Config) applyEnvironmentOverrides() {
	if sources := os.Getenv(EnvLogSources); sources != "" {
		c.LogSources = c.LogSources[:0]
		for _, source := range strings.Split(sources, ",") {
			if source = strings.TrimSpace(source); source != "" {
				c.LogSources = append(c.LogSources, source)
			}
		}
	}

	if ms := os.Getenv(EnvSlowRequestMillis); ms != "" {
		if n, err := strconv.Atoi(ms); err == nil && n >= 0 {
			c.Thresholds.SlowRequestMillis = n
		}
	}
}
