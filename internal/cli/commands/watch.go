package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	var seedWatch bool

	cmd := &cobra.Command{
		Use:   "watch [query]",
		Short: "Re-render the name list whenever the store changes",
		Long: `Render the allowed names, optionally filtered by a search query, and
render again after every change to the store. Stop with Ctrl+C.

With --seed-watch the seed file given by --seed is watched as well and
re-imported when it changes.`,
		Example: `  pickaname watch jo
  pickaname watch --seed ./database.data --seed-watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			return runWatch(cmd, query, seedWatch)
		},
	}

	cmd.Flags().BoolVar(&seedWatch, "seed-watch", false, "Re-import when the seed file changes")
	return cmd
}

func runWatch(cmd *cobra.Command, query string, seedWatch bool) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if seedWatch && cmdCtx.Cfg.SeedPath == "" {
		return errors.New("--seed-watch needs a seed file (--seed or seed_path)")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	svc := cmdCtx.Names
	pings := svc.Subscribe()

	g.Go(func() error {
		defer svc.Unsubscribe(pings)
		return renderLoop(ctx, cmd, cmdCtx, query, pings)
	})

	// Import off the render path; the first render waits for it.
	g.Go(func() error {
		return cmdCtx.Importer.EnsurePopulated(ctx)
	})

	if seedWatch {
		g.Go(func() error {
			return watchSeed(ctx, cmdCtx.Cfg.SeedPath, cmdCtx.Cfg.WatchDebounce, cmdCtx.Logger, func() {
				if _, err := cmdCtx.Importer.Run(ctx); err != nil {
					cmdCtx.Renderer.Error(err.Error())
				}
			})
		})
	}

	return g.Wait()
}

func renderLoop(ctx context.Context, cmd *cobra.Command, cmdCtx *CommandContext, query string, pings <-chan struct{}) error {
	render := func() error {
		list, err := cmdCtx.Names.Search(ctx, query)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			// Query failures are shown, not fatal.
			cmdCtx.Renderer.Error(err.Error())
			return nil
		}
		if err := cmdCtx.Renderer.Names(searchTitle(query), list); err != nil {
			return err
		}
		cmdCtx.Renderer.Muted(fmt.Sprintf("Updated %s", time.Now().Format(time.TimeOnly)))
		return nil
	}

	if err := render(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-pings:
			if !ok {
				return nil
			}
			if err := render(); err != nil {
				return err
			}
		}
	}
}

// watchSeed calls onChange after the seed file settles following a write.
// The parent directory is watched so editors that replace the file are seen.
// onChange runs on the calling goroutine, so watchSeed never returns while
// a callback is still running.
func watchSeed(ctx context.Context, path string, debounce time.Duration, logger *slog.Logger, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	logger.Debug("watching seed", slog.String("path", abs))

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("seed changed", slog.String("op", event.Op.String()))

			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("seed watcher error", slog.String("error", err.Error()))
		}
	}
}
