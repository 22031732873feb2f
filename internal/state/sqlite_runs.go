package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/neteinstein/pickaname/pkg/core"
)

const selectImportRunColumns = `SELECT id, source, status, started_at, completed_at, succeeded, failed, error FROM import_runs`

// CreateImportRun records the start of an import from source.
func (s *SQLiteStore) CreateImportRun(ctx context.Context, source string) (*core.ImportRun, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	run := &core.ImportRun{
		ID:        uuid.NewString(),
		Source:    source,
		Status:    core.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}

	s.logger.Debug("creating import run", slog.String("id", run.ID), slog.String("source", source))

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO import_runs (id, source, status, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.Source, string(run.Status), run.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create import run: %w", err)
	}

	return run, nil
}

// CompleteImportRun marks a run as finished with the given status and counts.
func (s *SQLiteStore) CompleteImportRun(ctx context.Context, id string, status core.RunStatus, succeeded, failed int, errMsg string) error {
	if s.db == nil {
		return errNotOpened
	}

	var errorVal sql.NullString
	if errMsg != "" {
		errorVal = sql.NullString{String: errMsg, Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE import_runs SET status = ?, completed_at = ?, succeeded = ?, failed = ?, error = ? WHERE id = ?`,
		string(status), time.Now().UTC(), succeeded, failed, errorVal, id)
	if err != nil {
		return fmt.Errorf("failed to complete import run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("import run not found: %s", id)
	}
	return nil
}

// GetLatestImportRun returns the most recently started run, or nil when none exist.
func (s *SQLiteStore) GetLatestImportRun(ctx context.Context) (*core.ImportRun, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	row := s.db.QueryRowContext(ctx, selectImportRunColumns+` ORDER BY started_at DESC, rowid DESC LIMIT 1`)
	run, err := scanImportRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // No runs found, return nil without error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest import run: %w", err)
	}
	return run, nil
}

// ListImportRuns returns the most recent runs up to limit, newest first.
func (s *SQLiteStore) ListImportRuns(ctx context.Context, limit int) ([]*core.ImportRun, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	rows, err := s.db.QueryContext(ctx, selectImportRunColumns+` ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list import runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*core.ImportRun
	for rows.Next() {
		run, err := scanImportRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan import run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate import runs: %w", err)
	}
	return runs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanImportRun(row rowScanner) (*core.ImportRun, error) {
	var (
		run         core.ImportRun
		status      string
		completedAt sql.NullTime
		errMsg      sql.NullString
	)
	if err := row.Scan(&run.ID, &run.Source, &status, &run.StartedAt, &completedAt,
		&run.Succeeded, &run.Failed, &errMsg); err != nil {
		return nil, err
	}
	run.Status = core.RunStatus(status)
	if completedAt.Valid {
		t := completedAt.Time
		run.CompletedAt = &t
	}
	run.Error = errMsg.String
	return &run, nil
}
