package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/neteinstein/pickaname/internal/cli/config"
	"github.com/neteinstein/pickaname/internal/cli/output"
	"github.com/neteinstein/pickaname/internal/importer"
	"github.com/neteinstein/pickaname/internal/names"
	"github.com/neteinstein/pickaname/internal/notifier"
	"github.com/neteinstein/pickaname/internal/seed"
	"github.com/neteinstein/pickaname/internal/state"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Store    *state.SQLiteStore
	Seed     seed.Source
	Importer *importer.Importer
	Names    *names.Service
	Notifier *notifier.Notifier
	Registry *prometheus.Registry
	Renderer *output.Renderer
}

// NewCommandContext opens the store and wires the importer and query layer.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	store, err := openStore(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	reg := prometheus.NewRegistry()
	n := notifier.New()
	src := seed.FromPath(cfg.SeedPath)
	imp := importer.New(store, src,
		importer.WithBatchSize(cfg.BatchSize),
		importer.WithTable(cfg.SeedTable),
		importer.WithLogger(logger),
		importer.WithMetrics(importer.NewMetrics(reg)),
		importer.WithNotifier(n),
		importer.WithRunStore(store),
	)
	svc := names.NewService(store, names.WithInitializer(imp), names.WithNotifier(n))

	cleanup := func() {
		if cfg.MetricsTextfile != "" {
			if err := importer.WriteTextfile(cfg.MetricsTextfile, reg); err != nil {
				logger.Warn("metrics not written", slog.String("error", err.Error()))
			}
		}
		n.Close()
		_ = store.Close()
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Store:    store,
		Seed:     src,
		Importer: imp,
		Names:    svc,
		Notifier: n,
		Registry: reg,
		Renderer: newRenderer(cmd, cfg),
	}, cleanup, nil
}

// NewCommandContextWithoutStore creates a CommandContext without a store.
// Useful for commands that don't need database access.
func NewCommandContextWithoutStore(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: newRenderer(cmd, cfg),
	}
}

func newRenderer(cmd *cobra.Command, cfg *config.Config) *output.Renderer {
	return output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))
}

// getConfig returns the loaded configuration, or defaults when none was loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}

func openStore(cfg *config.Config, logger *slog.Logger) (*state.SQLiteStore, error) {
	if cfg.StatePath != ":memory:" {
		if dir := filepath.Dir(cfg.StatePath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create state directory: %w", err)
			}
		}
	}

	store := state.NewSQLiteStore(logger, state.WithSearchMode(cfg.SearchMode))
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, err
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}
