package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/neteinstein/pickaname/internal/state"
)

const (
	envPrefix  = "PICKANAME_"
	dotEnvFile = ".env"
)

var configFileNames = []string{"pickaname.yaml", "pickaname.yml"}

// maxUpwardSearchLevels bounds the search for a project config above the working directory.
const maxUpwardSearchLevels = 10

// loggerKey is used to store logger in context.
type loggerKey struct{}

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config
)

// configFileIn returns the first config file present in dir, or "".
func configFileIn(dir string) string {
	for _, name := range configFileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// findConfigFileUpward searches startDir and its parents for a config file.
// Returns "" if none is found within maxUpwardSearchLevels.
func findConfigFileUpward(startDir string) string {
	dir := startDir
	for range maxUpwardSearchLevels {
		if path := configFileIn(dir); path != "" {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}
	return ""
}

// findConfigFile returns the explicit path, or the nearest config file at or
// above dir.
func findConfigFile(explicit, dir string) string {
	if explicit != "" {
		return explicit
	}
	return findConfigFileUpward(dir)
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty, already absolute or :memory:.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// envKey maps PICKANAME_STATE_PATH to state_path.
func envKey(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, envPrefix))
}

// flagKey maps a flag name to its config key.
func flagKey(name string) string {
	switch name {
	case "state":
		return "state_path"
	case "seed":
		return "seed_path"
	default:
		return strings.ReplaceAll(name, "-", "_")
	}
}

// pathFlags are flags whose values are relative to the working directory.
var pathFlags = map[string]string{
	"state": "state_path",
	"seed":  "seed_path",
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// LoadConfig loads configuration from defaults, file, .env, environment
// variables and flags. Later sources override earlier ones.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k = koanf.New(".")

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	projectRoot := cwd

	// 1. Defaults
	def := Default()
	if err := k.Load(confmap.Provider(map[string]any{
		"state_path":     def.StatePath,
		"seed_table":     def.SeedTable,
		"batch_size":     def.BatchSize,
		"search_mode":    string(def.SearchMode),
		"log_level":      def.LogLevel,
		"verbose":        false,
		"output":         def.OutputFormat,
		"watch_debounce": def.WatchDebounce.String(),
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file. Its directory is the project root.
	configFileUsed = findConfigFile(cfgFile, cwd)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
		if abs, err := filepath.Abs(configFileUsed); err == nil {
			projectRoot = filepath.Dir(abs)
		}
	}

	// 3. .env next to the project root. It does not modify the process environment.
	if err := loadDotEnv(filepath.Join(projectRoot, dotEnvFile)); err != nil {
		return nil, err
	}

	// 4. Environment variables (PICKANAME_ prefix)
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 5. Flags, only when explicitly set
	flagPaths := map[string]string{}
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			if key, ok := pathFlags[f.Name]; ok {
				if abs, err := filepath.Abs(f.Value.String()); err == nil && f.Value.String() != ":memory:" {
					flagPaths[key] = abs
				}
			}
			return flagKey(f.Name), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 6. Decode
	cfg := Config{}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				searchModeHook(),
			),
			WeaklyTypedInput: true,
			Result:           &cfg,
		},
	}); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// 7. Resolve paths. Flag values are relative to the working directory,
	// everything else to the project root.
	cfg.ProjectRoot = projectRoot
	if p, ok := flagPaths["state_path"]; ok {
		cfg.StatePath = p
	} else {
		cfg.StatePath = resolvePathRelativeTo(cfg.StatePath, projectRoot)
	}
	if p, ok := flagPaths["seed_path"]; ok {
		cfg.SeedPath = p
	} else {
		cfg.SeedPath = resolvePathRelativeTo(cfg.SeedPath, projectRoot)
	}
	cfg.MetricsTextfile = resolvePathRelativeTo(cfg.MetricsTextfile, projectRoot)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	currentConfig = &cfg
	return &cfg, nil
}

func loadDotEnv(path string) error {
	vars, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	values := make(map[string]any, len(vars))
	for name, v := range vars {
		if strings.HasPrefix(name, envPrefix) {
			values[envKey(name)] = v
		}
	}
	if err := k.Load(confmap.Provider(values, "."), nil); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// searchModeHook decodes strings into state.SearchMode, rejecting unknown values.
func searchModeHook() mapstructure.DecodeHookFuncType {
	return func(_ reflect.Type, to reflect.Type, data any) (any, error) {
		if to != reflect.TypeOf(state.SearchMode("")) {
			return data, nil
		}
		s, ok := data.(string)
		if !ok {
			return data, nil
		}
		return state.ParseSearchMode(s)
	}
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the configuration loaded by the last LoadConfig call.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() any {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
