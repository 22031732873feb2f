package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/neteinstein/pickaname/internal/search"
	"github.com/neteinstein/pickaname/pkg/core"
)

const (
	upsertNameSQL = `INSERT INTO TABLE_NAMES (_id, NAMES_NAME, NAMES_GENDER, NAMES_ALLOWED, NAMES_NOTES, NAMES_NAME_FOLDED)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(_id) DO UPDATE SET
			NAMES_NAME = excluded.NAMES_NAME,
			NAMES_GENDER = excluded.NAMES_GENDER,
			NAMES_ALLOWED = excluded.NAMES_ALLOWED,
			NAMES_NOTES = excluded.NAMES_NOTES,
			NAMES_NAME_FOLDED = excluded.NAMES_NAME_FOLDED`

	selectNameColumns = `SELECT _id, NAMES_NAME, COALESCE(NAMES_GENDER, ''), COALESCE(NAMES_ALLOWED, 0), COALESCE(NAMES_NOTES, '')
		FROM TABLE_NAMES`

	countNamesSQL        = `SELECT COUNT(*) FROM TABLE_NAMES`
	findNameByIDSQL      = selectNameColumns + ` WHERE _id = ?`
	queryAllowedSQL      = selectNameColumns + ` WHERE NAMES_ALLOWED = 1 ORDER BY _id ASC`
	querySearchSQL       = selectNameColumns + ` WHERE instr(NAMES_NAME, ?) > 0 ORDER BY _id ASC`
	querySearchFoldedSQL = selectNameColumns + ` WHERE instr(NAMES_NAME_FOLDED, ?) > 0 ORDER BY _id ASC`
)

// BulkUpsert inserts or replaces each record by id inside a single transaction.
// Later records in the slice win over earlier ones with the same id.
func (s *SQLiteStore) BulkUpsert(ctx context.Context, records []core.NameRecord) (retErr error) {
	if s.db == nil {
		return errNotOpened
	}
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, upsertNameSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.ID, r.Name, r.GenderCode, r.Allowed, r.Notes, search.Fold(r.Name)); err != nil {
			return fmt.Errorf("failed to upsert name %d: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upsert: %w", err)
	}

	s.logger.Debug("upserted names", slog.Int("count", len(records)))
	return nil
}

// Count returns the number of stored records.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	if s.db == nil {
		return 0, errNotOpened
	}

	var n int64
	if err := s.db.QueryRowContext(ctx, countNamesSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count names: %w", err)
	}
	return n, nil
}

// FindByID returns the record with the given id. found is false when absent.
func (s *SQLiteStore) FindByID(ctx context.Context, id int64) (core.NameRecord, bool, error) {
	if s.db == nil {
		return core.NameRecord{}, false, errNotOpened
	}

	var r core.NameRecord
	err := s.db.QueryRowContext(ctx, findNameByIDSQL, id).
		Scan(&r.ID, &r.Name, &r.GenderCode, &r.Allowed, &r.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return core.NameRecord{}, false, nil
	}
	if err != nil {
		return core.NameRecord{}, false, fmt.Errorf("failed to get name %d: %w", id, err)
	}
	return r, true, nil
}

// QueryAllowed returns all allowed records ordered by ascending id.
func (s *SQLiteStore) QueryAllowed(ctx context.Context) ([]core.NameRecord, error) {
	return s.queryNames(ctx, "allowed names", queryAllowedSQL)
}

// QuerySearch returns all records, allowed or not, whose name contains
// substring, ordered by ascending id. Case handling follows the store's
// SearchMode.
func (s *SQLiteStore) QuerySearch(ctx context.Context, substring string) ([]core.NameRecord, error) {
	if s.searchMode == SearchCaseSensitive {
		return s.queryNames(ctx, "search names", querySearchSQL, substring)
	}
	return s.queryNames(ctx, "search names", querySearchFoldedSQL, search.Fold(substring))
}

func (s *SQLiteStore) queryNames(ctx context.Context, what, query string, args ...any) ([]core.NameRecord, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", what, err)
	}
	defer func() { _ = rows.Close() }()

	var records []core.NameRecord
	for rows.Next() {
		var r core.NameRecord
		if err := rows.Scan(&r.ID, &r.Name, &r.GenderCode, &r.Allowed, &r.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", what, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", what, err)
	}

	return records, nil
}
