// Package config loads pickaname configuration.
//
// Sources are layered with koanf, lowest to highest precedence: built-in
// defaults, pickaname.yaml, a .env file, PICKANAME_* environment
// variables and finally command-line flags.
package config

import (
	"time"

	"github.com/neteinstein/pickaname/internal/importer"
	"github.com/neteinstein/pickaname/internal/seed"
	"github.com/neteinstein/pickaname/internal/state"
)

// Config holds all CLI configuration options.
type Config struct {
	StatePath       string           `koanf:"state_path"`
	SeedPath        string           `koanf:"seed_path"`
	SeedTable       string           `koanf:"seed_table"`
	BatchSize       int              `koanf:"batch_size"`
	SearchMode      state.SearchMode `koanf:"search_mode"`
	LogLevel        string           `koanf:"log_level"`
	Verbose         bool             `koanf:"verbose"`
	OutputFormat    string           `koanf:"output"`
	MetricsTextfile string           `koanf:"metrics_textfile"`
	WatchDebounce   time.Duration    `koanf:"watch_debounce"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultStateFile     = ".pickaname/names.db"
	DefaultSeedTable     = seed.DefaultTable
	DefaultBatchSize     = importer.DefaultBatchSize
	DefaultSearchMode    = state.SearchCaseInsensitive
	DefaultLogLevel      = "info"
	DefaultOutput        = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultWatchDebounce = 200 * time.Millisecond
)

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		StatePath:     DefaultStateFile,
		SeedTable:     DefaultSeedTable,
		BatchSize:     DefaultBatchSize,
		SearchMode:    DefaultSearchMode,
		LogLevel:      DefaultLogLevel,
		OutputFormat:  DefaultOutput,
		WatchDebounce: DefaultWatchDebounce,
	}
}
