package testutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/neteinstein/pickaname/internal/state"
)

// SeedLine renders one well-formed seed statement.
func SeedLine(id int64, name, gender string, allowed int, notes string) string {
	return fmt.Sprintf(
		"INSERT INTO TABLE_NAMES(_id,NAMES_NAME,NAMES_GENDER,NAMES_ALLOWED,NAMES_NOTES) VALUES (%d,'%s','%s',%d,'%s');",
		id, name, gender, allowed, notes)
}

// WriteSeedFile writes lines to a seed file in a temp dir and returns its path.
func WriteSeedFile(t testing.TB, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "database.data")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))
	return path
}

// NewStore returns a migrated in-memory store closed at test cleanup.
func NewStore(t testing.TB, opts ...state.Option) *state.SQLiteStore {
	t.Helper()
	store := state.NewSQLiteStore(NewTestLogger(t), opts...)
	require.NoError(t, store.Open(":memory:"))
	require.NoError(t, store.Migrate())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// ErrUnreadable is returned by UnreadableSource.
var ErrUnreadable = errors.New("seed resource unavailable")

// UnreadableSource is a seed source whose Open always fails.
type UnreadableSource struct {
	opens atomic.Int32
}

// Open implements seed.Source.
func (s *UnreadableSource) Open() (io.ReadCloser, error) {
	s.opens.Add(1)
	return nil, ErrUnreadable
}

// Name implements seed.Source.
func (s *UnreadableSource) Name() string { return "unreadable" }

// Opens reports how many times Open was called.
func (s *UnreadableSource) Opens() int { return int(s.opens.Load()) }

// CountingSource wraps seed text and counts opens.
type CountingSource struct {
	Text  string
	opens atomic.Int32
}

// Open implements seed.Source.
func (s *CountingSource) Open() (io.ReadCloser, error) {
	s.opens.Add(1)
	return io.NopCloser(strings.NewReader(s.Text)), nil
}

// Name implements seed.Source.
func (s *CountingSource) Name() string { return "memory" }

// Opens reports how many times Open was called.
func (s *CountingSource) Opens() int { return int(s.opens.Load()) }
