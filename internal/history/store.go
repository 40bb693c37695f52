// Package history keeps recently submitted find and replace queries so the
// find form can recall them.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sahilm/fuzzy"
	_ "modernc.org/sqlite"

	"github.com/duydb2/cloud9/internal/model"
)

// DefaultLimit is the number of entries kept per kind.
const DefaultLimit = 100

type Store struct {
	db    *sql.DB
	limit int
}

// Open opens (creating if needed) the history database at path.
func Open(path string, limit int) (*Store, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}
	for _, pragma := range []string{
		`PRAGMA journal_mode=WAL`,
		`PRAGMA busy_timeout=5000`,
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history: %w", err)
	}
	return &Store{db: db, limit: limit}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS history (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			kind       TEXT NOT NULL,
			query      TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_history_kind_query ON history(kind, query);
	`)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Add records query as the most recent entry of kind. An existing identical
// entry moves to the top instead of being duplicated.
func (s *Store) Add(ctx context.Context, kind, query string) error {
	if query == "" {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM history WHERE kind = ? AND query = ?`, kind, query); err != nil {
		return fmt.Errorf("dedupe history: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO history (kind, query, created_at) VALUES (?, ?, ?)`,
		kind, query, time.Now().UnixMilli(),
	); err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM history WHERE kind = ? AND id NOT IN (
			SELECT id FROM history WHERE kind = ? ORDER BY id DESC LIMIT ?
		)`, kind, kind, s.limit,
	); err != nil {
		return fmt.Errorf("trim history: %w", err)
	}
	return tx.Commit()
}

// List returns up to n entries of kind, newest first. n <= 0 lists all.
func (s *Store) List(ctx context.Context, kind string, n int) ([]model.HistoryEntry, error) {
	if n <= 0 {
		n = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, query, created_at FROM history WHERE kind = ? ORDER BY id DESC LIMIT ?`,
		kind, n,
	)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var out []model.HistoryEntry
	for rows.Next() {
		var (
			e  model.HistoryEntry
			ms int64
		)
		if err := rows.Scan(&e.ID, &e.Kind, &e.Query, &ms); err != nil {
			return nil, err
		}
		e.CreatedAt = time.UnixMilli(ms)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Clear removes every entry of kind, or all entries when kind is empty.
func (s *Store) Clear(ctx context.Context, kind string) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if kind == "" {
		res, err = s.db.ExecContext(ctx, `DELETE FROM history`)
	} else {
		res, err = s.db.ExecContext(ctx, `DELETE FROM history WHERE kind = ?`, kind)
	}
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	return res.RowsAffected()
}

type entrySource []model.HistoryEntry

func (e entrySource) String(i int) string { return e[i].Query }
func (e entrySource) Len() int            { return len(e) }

// Filter returns the entries fuzzily matching q, best match first. An empty
// q returns entries unchanged.
func Filter(entries []model.HistoryEntry, q string) []model.HistoryEntry {
	if q == "" {
		return entries
	}
	matches := fuzzy.FindFrom(q, entrySource(entries))
	out := make([]model.HistoryEntry, 0, len(matches))
	for _, m := range matches {
		out = append(out, entries[m.Index])
	}
	return out
}
