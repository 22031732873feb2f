package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/neteinstein/pickaname/internal/state"
)

var validOutputs = []string{"auto", "text", "markdown", "json", "yaml"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.StatePath == "" {
		return fmt.Errorf("state_path is required")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %d", c.BatchSize)
	}
	if _, err := state.ParseSearchMode(string(c.SearchMode)); err != nil {
		return err
	}
	if !isValidOutput(c.OutputFormat) {
		return fmt.Errorf("unknown output format %q (want one of %s)", c.OutputFormat, strings.Join(validOutputs, ", "))
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if c.WatchDebounce < 0 {
		return fmt.Errorf("watch_debounce must not be negative")
	}
	return nil
}

func isValidOutput(s string) bool {
	if s == "" {
		return true
	}
	for _, v := range validOutputs {
		if s == v {
			return true
		}
	}
	return false
}

// ParseLogLevel converts a level name into a slog.Level. Empty means info.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

// Level returns the effective log level. Verbose forces debug.
func (c *Config) Level() slog.Level {
	if c.Verbose {
		return slog.LevelDebug
	}
	lvl, err := ParseLogLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}
