package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neteinstein/pickaname/internal/state"
)

func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "")
	fs.String("state", "", "")
	fs.String("seed", "", "")
	fs.Int("batch-size", 0, "")
	fs.String("search-mode", "", "")
	fs.BoolP("verbose", "v", false, "")
	fs.StringP("output", "o", "", "")
	return fs
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, DefaultStateFile), cfg.StatePath)
	assert.Empty(t, cfg.SeedPath)
	assert.Equal(t, "TABLE_NAMES", cfg.SeedTable)
	assert.Equal(t, 500, cfg.BatchSize)
	assert.Equal(t, state.SearchCaseInsensitive, cfg.SearchMode)
	assert.Equal(t, "auto", cfg.OutputFormat)
	assert.Equal(t, DefaultWatchDebounce, cfg.WatchDebounce)
	assert.Empty(t, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_Precedence(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		dotenv    string
		env       map[string]string
		args      []string
		wantBatch int
		wantMode  state.SearchMode
	}{
		{
			name:      "file overrides defaults",
			yaml:      "batch_size: 100\nsearch_mode: sensitive\n",
			wantBatch: 100,
			wantMode:  state.SearchCaseSensitive,
		},
		{
			name:      "dotenv overrides file",
			yaml:      "batch_size: 100\n",
			dotenv:    "PICKANAME_BATCH_SIZE=200\nOTHER=ignored\n",
			wantBatch: 200,
			wantMode:  state.SearchCaseInsensitive,
		},
		{
			name:      "env overrides dotenv",
			yaml:      "batch_size: 100\n",
			dotenv:    "PICKANAME_BATCH_SIZE=200\n",
			env:       map[string]string{"PICKANAME_BATCH_SIZE": "300"},
			wantBatch: 300,
			wantMode:  state.SearchCaseInsensitive,
		},
		{
			name:      "flags override env",
			env:       map[string]string{"PICKANAME_BATCH_SIZE": "300", "PICKANAME_SEARCH_MODE": "sensitive"},
			args:      []string{"--batch-size", "400", "--search-mode", "insensitive"},
			wantBatch: 400,
			wantMode:  state.SearchCaseInsensitive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			dir := t.TempDir()
			t.Chdir(dir)
			if tt.yaml != "" {
				writeFile(t, dir, "pickaname.yaml", tt.yaml)
			}
			if tt.dotenv != "" {
				writeFile(t, dir, ".env", tt.dotenv)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			flags := newFlags()
			require.NoError(t, flags.Parse(tt.args))

			cfg, err := LoadConfig("", flags)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBatch, cfg.BatchSize)
			assert.Equal(t, tt.wantMode, cfg.SearchMode)
		})
	}
}

func TestLoadConfig_PathResolution(t *testing.T) {
	ResetConfig()
	projectDir := t.TempDir()
	cfgPath := writeFile(t, projectDir, "custom.yaml", "state_path: data/names.db\nseed_path: seed/database.data\n")

	workDir := t.TempDir()
	t.Chdir(workDir)

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)
	assert.Equal(t, cfgPath, GetConfigFileUsed())
	assert.Equal(t, projectDir, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(projectDir, "data", "names.db"), cfg.StatePath)
	assert.Equal(t, filepath.Join(projectDir, "seed", "database.data"), cfg.SeedPath)

	// Flag paths are relative to the working directory.
	ResetConfig()
	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--state", "local.db"}))
	cfg, err = LoadConfig(cfgPath, flags)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(workDir, "local.db"), cfg.StatePath)
}

func TestLoadConfig_FindsProjectFromSubdirectory(t *testing.T) {
	ResetConfig()
	projectDir := t.TempDir()
	cfgPath := writeFile(t, projectDir, "pickaname.yaml", "state_path: data/names.db\nbatch_size: 50\n")
	writeFile(t, projectDir, ".env", "PICKANAME_SEARCH_MODE=sensitive\n")

	child := filepath.Join(projectDir, "a", "b")
	require.NoError(t, os.MkdirAll(child, 0o750))
	t.Chdir(child)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, cfgPath, GetConfigFileUsed())
	assert.Equal(t, projectDir, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(projectDir, "data", "names.db"), cfg.StatePath)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, state.SearchCaseSensitive, cfg.SearchMode, ".env is read from the project root")
}

func TestFindConfigFileUpward_Bounded(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pickaname.yml", "batch_size: 10\n")

	deep := root
	for i := range maxUpwardSearchLevels {
		deep = filepath.Join(deep, fmt.Sprintf("d%d", i))
	}
	require.NoError(t, os.MkdirAll(deep, 0o750))

	assert.Equal(t, filepath.Join(root, "pickaname.yml"), findConfigFileUpward(filepath.Dir(deep)))
	assert.Empty(t, findConfigFileUpward(deep), "search stops after the level limit")
}

func TestLoadConfig_MemoryState(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())
	t.Setenv("PICKANAME_STATE_PATH", ":memory:")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, ":memory:", cfg.StatePath)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		errSubstr string
	}{
		{"unknown search mode", "search_mode: fuzzy\n", "unknown search mode"},
		{"zero batch size", "batch_size: 0\n", "batch_size must be positive"},
		{"bad output", "output: html\n", "unknown output format"},
		{"bad yaml", "batch_size: [\n", "error reading config file"},
		{"bad duration", "watch_debounce: soon\n", "unable to decode config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			dir := t.TempDir()
			t.Chdir(dir)
			writeFile(t, dir, "pickaname.yaml", tt.yaml)

			_, err := LoadConfig("", nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestLoadConfig_WatchDebounce(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())
	t.Setenv("PICKANAME_WATCH_DEBOUNCE", "1s")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, time.Second, cfg.WatchDebounce)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"empty state path", func(c *Config) { c.StatePath = "" }, true},
		{"negative batch", func(c *Config) { c.BatchSize = -1 }, true},
		{"unknown mode", func(c *Config) { c.SearchMode = "fuzzy" }, true},
		{"yaml output", func(c *Config) { c.OutputFormat = "yaml" }, false},
		{"csv output", func(c *Config) { c.OutputFormat = "csv" }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"negative debounce", func(c *Config) { c.WatchDebounce = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_Level(t *testing.T) {
	c := Default()
	assert.Equal(t, slog.LevelInfo, c.Level())

	c.LogLevel = "warn"
	assert.Equal(t, slog.LevelWarn, c.Level())

	c.Verbose = true
	assert.Equal(t, slog.LevelDebug, c.Level())
}

func TestGetLogger(t *testing.T) {
	// Falls back to a discard logger.
	require.NotNil(t, GetLogger(context.Background()))

	logger := slog.New(slog.DiscardHandler)
	ctx := context.WithValue(context.Background(), LoggerKey(), logger)
	assert.Same(t, logger, GetLogger(ctx))
}
