package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/placeroute/internal/core/domain"
)

// PlaceStore implements ports.PlaceStore on the places table. Each saved
// list is identified by name and replaced as a whole.
type PlaceStore struct {
	db   *DB
	list string
}

func NewPlaceStore(db *DB, list string) *PlaceStore {
	return &PlaceStore{db: db, list: list}
}

// LoadRecords returns the records of the list in saved order. A list that was
// never saved yields domain.ErrNotFound.
func (s *PlaceStore) LoadRecords(ctx context.Context) ([]string, error) {
	var exists bool
	if err := s.db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM place_lists WHERE name = $1)`, s.list,
	).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: place list %q", domain.ErrNotFound, s.list)
	}

	rows, err := s.db.Pool.Query(ctx, `
		SELECT record FROM places
		WHERE list_name = $1
		ORDER BY position
	`, s.list)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []string{}
	for rows.Next() {
		var rec string
		if err := rows.Scan(&rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SaveRecords replaces the stored list in one transaction.
func (s *PlaceStore) SaveRecords(ctx context.Context, records []string) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO place_lists (name, updated_at) VALUES ($1, now())
		ON CONFLICT (name) DO UPDATE SET updated_at = now()
	`, s.list); err != nil {
		return fmt.Errorf("upsert list: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM places WHERE list_name = $1`, s.list); err != nil {
		return fmt.Errorf("clear list: %w", err)
	}

	rows := make([][]any, len(records))
	for i, rec := range records {
		rows[i] = []any{s.list, i, rec}
	}
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"places"},
		[]string{"list_name", "position", "record"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return fmt.Errorf("copy places: %w", err)
	}

	return tx.Commit(ctx)
}
