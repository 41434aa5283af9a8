package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// startTimeLayouts are the accepted window-start notations, most specific
// first. They mirror HAProxy's accept-date field at decreasing granularity.
var startTimeLayouts = []string{
	"02/Jan/2006:15:04:05",
	"02/Jan/2006:15:04",
	"02/Jan/2006:15",
	"02/Jan/2006",
}

// ParseStartTime parses a window start in any accepted notation.
func ParseStartTime(s string) (time.Time, error) {
	for _, layout := range startTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid start time %q (expected e.g. %q)", s, "11/Dec/2013:13:00:00")
}

// Load reads and validates a configuration file.
func Load(_ context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks a configuration for errors and parses the time window.
func Validate(cfg *Config) error {
	if len(cfg.LogSources) == 0 {
		return errors.New("log_sources: at least one log source is required")
	}

	if err := validateTimeWindow(&cfg.TimeWindow); err != nil {
		return fmt.Errorf("time_window: %w", err)
	}

	if err := validateThresholds(&cfg.Thresholds); err != nil {
		return fmt.Errorf("thresholds: %w", err)
	}

	return nil
}

func validateTimeWindow(tw *TimeWindowConfig) error {
	if tw.Start != "" {
		start, err := ParseStartTime(tw.Start)
		if err != nil {
			return err
		}
		tw.parsedStart = start
	}

	if tw.Delta != "" {
		if tw.Start == "" {
			return errors.New("delta requires start")
		}
		delta, err := time.ParseDuration(tw.Delta)
		if err != nil {
			return fmt.Errorf("invalid delta: %w", err)
		}
		if delta <= 0 {
			return fmt.Errorf("delta must be positive, got %s", delta)
		}
		tw.parsedDelta = delta
	}

	return nil
}

func validateThresholds(t *ThresholdConfig) error {
	if t.SlowRequestMillis < 0 {
		return fmt.Errorf("slow_request_ms must be >= 0, got %d", t.SlowRequestMillis)
	}
	if t.QueuePeakMin < 0 {
		return fmt.Errorf("queue_peak_min must be >= 0, got %d", t.QueuePeakMin)
	}
	if t.TopIPCount < 1 {
		return fmt.Errorf("top_ip_count must be >= 1, got %d", t.TopIPCount)
	}
	return nil
}
