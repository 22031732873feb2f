package core

import (
	"context"
	"time"
)

// NameStore defines keyed storage for name records.
// Duplicate ids never error on write: the later record replaces the earlier one.
type NameStore interface {
	BulkUpsert(ctx context.Context, records []NameRecord) error
	Count(ctx context.Context) (int64, error)
	// FindByID reports found=false when no record has the id.
	FindByID(ctx context.Context, id int64) (record NameRecord, found bool, err error)
	QueryAllowed(ctx context.Context) ([]NameRecord, error)
	QuerySearch(ctx context.Context, substring string) ([]NameRecord, error)
}

// ImportRunStore tracks import attempts.
type ImportRunStore interface {
	CreateImportRun(ctx context.Context, source string) (*ImportRun, error)
	CompleteImportRun(ctx context.Context, id string, status RunStatus, succeeded, failed int, errMsg string) error
	GetLatestImportRun(ctx context.Context) (*ImportRun, error)
}

// RunStatus represents the status of an import run.
type RunStatus string

// Run status constants.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// ImportRun is one recorded attempt of writing the seed into the store.
type ImportRun struct {
	ID          string     `json:"id" yaml:"id"`
	Source      string     `json:"source" yaml:"source"`
	Status      RunStatus  `json:"status" yaml:"status"`
	StartedAt   time.Time  `json:"started_at" yaml:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	Succeeded   int        `json:"succeeded" yaml:"succeeded"`
	Failed      int        `json:"failed" yaml:"failed"`
	Error       string     `json:"error,omitempty" yaml:"error,omitempty"`
}
