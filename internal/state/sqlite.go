// Package state provides the SQLite record store for name records.
package state

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/neteinstein/pickaname/pkg/core"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

const memoryPath = ":memory:"

var errNotOpened = errors.New("database not opened")

// SearchMode selects how QuerySearch compares names.
type SearchMode string

// Search modes.
const (
	SearchCaseInsensitive SearchMode = "insensitive"
	SearchCaseSensitive   SearchMode = "sensitive"
)

// ParseSearchMode converts a configuration value into a SearchMode.
// An empty value selects SearchCaseInsensitive.
func ParseSearchMode(s string) (SearchMode, error) {
	switch SearchMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", SearchCaseInsensitive:
		return SearchCaseInsensitive, nil
	case SearchCaseSensitive:
		return SearchCaseSensitive, nil
	default:
		return "", fmt.Errorf("unknown search mode %q (want %q or %q)", s, SearchCaseInsensitive, SearchCaseSensitive)
	}
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithSearchMode sets the case policy of QuerySearch.
func WithSearchMode(mode SearchMode) Option {
	return func(s *SQLiteStore) {
		if mode != "" {
			s.searchMode = mode
		}
	}
}

// SQLiteStore implements core.NameStore and core.ImportRunStore using SQLite.
type SQLiteStore struct {
	db         *sql.DB
	path       string
	logger     *slog.Logger
	searchMode SearchMode
}

var (
	_ core.NameStore      = (*SQLiteStore)(nil)
	_ core.ImportRunStore = (*SQLiteStore)(nil)
)

// NewSQLiteStore creates a new SQLite store instance. Call Open before use.
// If logger is nil, a discard logger is used.
func NewSQLiteStore(logger *slog.Logger, opts ...Option) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &SQLiteStore{
		logger:     logger,
		searchMode: SearchCaseInsensitive,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSQLiteStoreWithDB wraps an already opened connection.
// The schema is not migrated; call Migrate when needed.
func NewSQLiteStoreWithDB(db *sql.DB, logger *slog.Logger, opts ...Option) *SQLiteStore {
	s := NewSQLiteStore(logger, opts...)
	s.db = db
	return s
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := path
	if path != memoryPath {
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if path == memoryPath {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.logger.Debug("opened state database", slog.String("path", path))

	s.db = db
	s.path = path
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the path passed to Open.
func (s *SQLiteStore) Path() string { return s.path }

// SearchMode returns the configured QuerySearch case policy.
func (s *SQLiteStore) SearchMode() SearchMode { return s.searchMode }
