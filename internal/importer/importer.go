// Package importer populates the name store from a seed resource.
//
// The first read of an empty store triggers the import through
// EnsurePopulated. Concurrent callers block on the same guard, so the
// import runs at most once and nobody observes a partially written set.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/neteinstein/pickaname/internal/notifier"
	"github.com/neteinstein/pickaname/internal/seed"
	"github.com/neteinstein/pickaname/pkg/core"
)

// DefaultBatchSize is the number of records written per transaction.
const DefaultBatchSize = 500

// ErrSeedUnreadable is returned when the seed resource cannot be opened or read.
var ErrSeedUnreadable = errors.New("seed resource unreadable")

// Report summarizes one import.
type Report struct {
	RunID     string           `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Source    string           `json:"source" yaml:"source"`
	Succeeded int              `json:"succeeded" yaml:"succeeded"`
	Failed    int              `json:"failed" yaml:"failed"`
	Failures  []seed.LineError `json:"-" yaml:"-"`
	Batches   int              `json:"batches" yaml:"batches"`
	Duration  time.Duration    `json:"duration" yaml:"duration"`
}

// Importer writes parsed seed records into a NameStore.
type Importer struct {
	store     core.NameStore
	runs      core.ImportRunStore
	source    seed.Source
	table     string
	batchSize int
	logger    *slog.Logger
	metrics   *Metrics
	notifier  *notifier.Notifier

	mu      sync.Mutex
	done    bool
	partial bool
}

// Option configures an Importer.
type Option func(*Importer)

// WithBatchSize sets the number of records per transaction.
// Non-positive values keep the default.
func WithBatchSize(n int) Option {
	return func(i *Importer) {
		if n > 0 {
			i.batchSize = n
		}
	}
}

// WithTable sets the table name expected in seed statements.
func WithTable(table string) Option {
	return func(i *Importer) { i.table = table }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Importer) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithMetrics enables import metrics.
func WithMetrics(m *Metrics) Option {
	return func(i *Importer) { i.metrics = m }
}

// WithNotifier broadcasts a change ping after each successful import.
func WithNotifier(n *notifier.Notifier) Option {
	return func(i *Importer) { i.notifier = n }
}

// WithRunStore records every import that reaches the store.
func WithRunStore(runs core.ImportRunStore) Option {
	return func(i *Importer) { i.runs = runs }
}

// New creates an Importer reading from source into store.
func New(store core.NameStore, source seed.Source, opts ...Option) *Importer {
	i := &Importer{
		store:     store,
		source:    source,
		table:     seed.DefaultTable,
		batchSize: DefaultBatchSize,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// EnsurePopulated imports the seed unless the store already holds a
// finished import. It does the work at most once per Importer: later calls
// return immediately.
//
// An unreadable seed is logged and swallowed; the store stays empty and
// no retry happens in this process. Store errors are returned and leave
// the guard open so a later call can retry.
func (i *Importer) EnsurePopulated(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.done {
		return nil
	}

	populated, err := i.populated(ctx)
	if err != nil {
		return err
	}
	if populated {
		i.done = true
		return nil
	}

	_, err = i.run(ctx)
	switch {
	case errors.Is(err, ErrSeedUnreadable):
		i.done = true
		return nil
	case err != nil:
		return err
	}

	i.done = true
	return nil
}

// Populated reports whether the store holds a complete import.
func (i *Importer) Populated(ctx context.Context) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.populated(ctx)
}

// populated reports whether the store holds a complete import. A non-empty
// store whose latest recorded run did not complete holds a partial set.
// Stores written without run tracking count as complete.
func (i *Importer) populated(ctx context.Context) (bool, error) {
	if i.partial {
		return false, nil
	}
	n, err := i.store.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check store: %w", err)
	}
	if n == 0 {
		return false, nil
	}
	if i.runs == nil {
		return true, nil
	}
	run, err := i.runs.GetLatestImportRun(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check latest import run: %w", err)
	}
	if run != nil && run.Status != core.RunStatusCompleted {
		i.logger.Info("latest import did not complete",
			slog.String("run_id", run.ID), slog.String("status", string(run.Status)))
		return false, nil
	}
	return true, nil
}

// Run imports the seed unconditionally. Existing ids are replaced.
func (i *Importer) Run(ctx context.Context) (*Report, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	report, err := i.run(ctx)
	if err != nil {
		return report, err
	}
	i.done = true
	return report, nil
}

func (i *Importer) run(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{Source: i.source.Name()}
	logger := i.logger.With(slog.String("source", report.Source))

	result, err := i.parse()
	if err != nil {
		logger.Error("seed import aborted", slog.String("error", err.Error()))
		i.metrics.observeRun(string(core.RunStatusFailed), start, 0, 0)
		return report, err
	}

	report.Succeeded = result.Succeeded()
	report.Failed = result.Failed()
	report.Failures = result.Failures
	for _, f := range result.Failures {
		logger.Debug("skipped seed line", slog.Int("line", f.Line), slog.String("error", f.Err.Error()))
	}

	var run *core.ImportRun
	if i.runs != nil {
		run, err = i.runs.CreateImportRun(ctx, report.Source)
		if err != nil {
			return report, fmt.Errorf("failed to record import run: %w", err)
		}
		report.RunID = run.ID
	}

	if err := i.write(ctx, result.Records, report); err != nil {
		i.partial = true
		i.complete(context.WithoutCancel(ctx), run, core.RunStatusFailed, 0, report.Failed, err.Error())
		i.metrics.observeRun(string(core.RunStatusFailed), start, 0, report.Failed)
		logger.Error("seed import failed", slog.String("error", err.Error()))
		return report, err
	}

	i.partial = false
	i.complete(ctx, run, core.RunStatusCompleted, report.Succeeded, report.Failed, "")
	report.Duration = time.Since(start)
	i.metrics.observeRun(string(core.RunStatusCompleted), start, report.Succeeded, report.Failed)

	logger.Info("seed import finished",
		slog.Int("succeeded", report.Succeeded),
		slog.Int("failed", report.Failed),
		slog.Duration("duration", report.Duration))

	if i.notifier != nil {
		i.notifier.Broadcast()
	}
	return report, nil
}

func (i *Importer) parse() (*seed.Result, error) {
	rc, err := i.source.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSeedUnreadable, err)
	}
	defer func() { _ = rc.Close() }()

	result, err := seed.Parse(rc, seed.WithTable(i.table))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSeedUnreadable, err)
	}
	return result, nil
}

func (i *Importer) write(ctx context.Context, records []core.NameRecord, report *Report) error {
	for start := 0; start < len(records); start += i.batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+i.batchSize, len(records))
		if err := i.store.BulkUpsert(ctx, records[start:end]); err != nil {
			return fmt.Errorf("failed to write batch at record %d: %w", start, err)
		}
		report.Batches++
	}
	return nil
}

// complete records the run outcome. Failures are logged, not returned.
func (i *Importer) complete(ctx context.Context, run *core.ImportRun, status core.RunStatus, succeeded, failed int, errMsg string) {
	if run == nil {
		return
	}
	if err := i.runs.CompleteImportRun(ctx, run.ID, status, succeeded, failed, errMsg); err != nil {
		i.logger.Warn("failed to record import run outcome",
			slog.String("run_id", run.ID), slog.String("error", err.Error()))
	}
}
