package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neteinstein/pickaname/pkg/core"
)

func setupTestStore(t *testing.T, opts ...Option) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(nil, opts...)
	require.NoError(t, store.Open(":memory:"))
	require.NoError(t, store.Migrate())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleRecords() []core.NameRecord {
	return []core.NameRecord{
		{ID: 3, Name: "José", GenderCode: "M", Allowed: 1},
		{ID: 1, Name: "João", GenderCode: "M", Allowed: 1, Notes: "Forma de John"},
		{ID: 2, Name: "Maria", GenderCode: "F", Allowed: 1},
		{ID: 4, Name: "Jayden", GenderCode: "M", Allowed: 0, Notes: "Não permitido"},
		{ID: 5, Name: "100%", GenderCode: "", Allowed: 1},
	}
}

func namesOf(records []core.NameRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}

func TestSQLiteStore_OpenClose(t *testing.T) {
	store := NewSQLiteStore(nil)
	require.NoError(t, store.Open(":memory:"))
	assert.Equal(t, ":memory:", store.Path())
	assert.Equal(t, SearchCaseInsensitive, store.SearchMode())
	require.NoError(t, store.Close())
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	store := NewSQLiteStore(nil)
	ctx := context.Background()

	_, err := store.Count(ctx)
	assert.ErrorIs(t, err, errNotOpened)
	assert.ErrorIs(t, store.BulkUpsert(ctx, sampleRecords()), errNotOpened)
	_, _, err = store.FindByID(ctx, 1)
	assert.ErrorIs(t, err, errNotOpened)
	assert.ErrorIs(t, store.Migrate(), errNotOpened)
}

func TestSQLiteStore_Migrate(t *testing.T) {
	store := setupTestStore(t)

	version, err := store.GetMigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(3), version)

	// Re-running is a no-op.
	require.NoError(t, store.Migrate())
}

func TestSQLiteStore_BulkUpsert(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		batches [][]core.NameRecord
		want    int64
	}{
		{
			name: "empty batch is a no-op",
			batches: [][]core.NameRecord{
				nil,
			},
			want: 0,
		},
		{
			name:    "inserts all records",
			batches: [][]core.NameRecord{sampleRecords()},
			want:    5,
		},
		{
			name: "same id across batches replaces",
			batches: [][]core.NameRecord{
				{{ID: 1, Name: "Ana", GenderCode: "F", Allowed: 1}},
				{{ID: 1, Name: "Rita", GenderCode: "F", Allowed: 1}},
			},
			want: 1,
		},
		{
			name: "same id within a batch keeps the last",
			batches: [][]core.NameRecord{
				{
					{ID: 7, Name: "Ana", GenderCode: "F", Allowed: 1},
					{ID: 7, Name: "Rita", GenderCode: "F", Allowed: 0},
				},
			},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := setupTestStore(t)
			for _, batch := range tt.batches {
				require.NoError(t, store.BulkUpsert(ctx, batch))
			}
			n, err := store.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestSQLiteStore_UpsertReplacesAllFields(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	require.NoError(t, store.BulkUpsert(ctx, []core.NameRecord{{ID: 1, Name: "Ana", GenderCode: "F", Allowed: 1, Notes: "a"}}))
	require.NoError(t, store.BulkUpsert(ctx, []core.NameRecord{{ID: 1, Name: "Rui", GenderCode: "M", Allowed: 0, Notes: "b"}}))

	got, found, err := store.FindByID(ctx, 1)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, core.NameRecord{ID: 1, Name: "Rui", GenderCode: "M", Allowed: 0, Notes: "b"}, got)

	// The folded search column follows the replacement.
	hits, err := store.QuerySearch(ctx, "ana")
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSQLiteStore_FindByID(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	require.NoError(t, store.BulkUpsert(ctx, sampleRecords()))

	got, found, err := store.FindByID(ctx, 4)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Jayden", got.Name)
	assert.False(t, got.IsAllowed())

	_, found, err = store.FindByID(ctx, 999)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSQLiteStore_QueryAllowed(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	got, err := store.QueryAllowed(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, store.BulkUpsert(ctx, sampleRecords()))

	got, err = store.QueryAllowed(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"João", "Maria", "José", "100%"}, namesOf(got))
	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1].ID, got[i].ID)
	}
}

func TestSQLiteStore_QuerySearch(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		mode  SearchMode
		query string
		want  []string
	}{
		{"insensitive lower", SearchCaseInsensitive, "jo", []string{"João", "José"}},
		{"insensitive upper with accent", SearchCaseInsensitive, "JOÃO", []string{"João"}},
		{"insensitive includes disallowed", SearchCaseInsensitive, "jay", []string{"Jayden"}},
		{"percent is literal", SearchCaseInsensitive, "%", []string{"100%"}},
		{"underscore is literal", SearchCaseInsensitive, "_", nil},
		{"no match", SearchCaseInsensitive, "xyz", nil},
		{"sensitive exact case", SearchCaseSensitive, "Jo", []string{"João", "José"}},
		{"sensitive wrong case", SearchCaseSensitive, "jo", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := setupTestStore(t, WithSearchMode(tt.mode))
			require.NoError(t, store.BulkUpsert(ctx, sampleRecords()))

			got, err := store.QuerySearch(ctx, tt.query)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, namesOf(got))
		})
	}
}

func TestParseSearchMode(t *testing.T) {
	tests := []struct {
		in      string
		want    SearchMode
		wantErr bool
	}{
		{"", SearchCaseInsensitive, false},
		{"insensitive", SearchCaseInsensitive, false},
		{" Sensitive ", SearchCaseSensitive, false},
		{"fuzzy", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSearchMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// --- Import run lifecycle tests ---

func TestSQLiteStore_ImportRunLifecycle(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	latest, err := store.GetLatestImportRun(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	run, err := store.CreateImportRun(ctx, "embedded:data/database.data")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, core.RunStatusRunning, run.Status)

	require.NoError(t, store.CompleteImportRun(ctx, run.ID, core.RunStatusCompleted, 28, 2, ""))

	latest, err = store.GetLatestImportRun(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, run.ID, latest.ID)
	assert.Equal(t, core.RunStatusCompleted, latest.Status)
	assert.Equal(t, 28, latest.Succeeded)
	assert.Equal(t, 2, latest.Failed)
	assert.NotNil(t, latest.CompletedAt)
	assert.Empty(t, latest.Error)

	second, err := store.CreateImportRun(ctx, "file:seed.data")
	require.NoError(t, err)
	require.NoError(t, store.CompleteImportRun(ctx, second.ID, core.RunStatusFailed, 0, 0, "seed unreadable"))

	runs, err := store.ListImportRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.ID, runs[0].ID)
	assert.Equal(t, "seed unreadable", runs[0].Error)
}

func TestSQLiteStore_CompleteUnknownImportRun(t *testing.T) {
	store := setupTestStore(t)
	err := store.CompleteImportRun(context.Background(), "missing", core.RunStatusCompleted, 0, 0, "")
	assert.Error(t, err)
}
