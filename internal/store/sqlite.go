package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteBackend keeps the seen snapshot in a SQLite table.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend opens (or creates) a SQLite database at dbPath and ensures
// the seen_postings table exists.
func NewSQLiteBackend(dbPath string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS seen_postings (
		seq        INTEGER PRIMARY KEY,
		posting_id TEXT NOT NULL UNIQUE,
		saved_at   DATETIME DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating seen_postings table: %w", err)
	}

	return &SQLiteBackend{db: db}, nil
}

func (b *SQLiteBackend) Name() string { return "sqlite" }

// Load returns the stored IDs in insertion order.
func (b *SQLiteBackend) Load(ctx context.Context) ([]string, error) {
	rows, err := b.db.QueryContext(ctx, "SELECT posting_id FROM seen_postings ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("querying seen_postings: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning seen_postings: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Save replaces the table contents in one transaction.
func (b *SQLiteBackend) Save(ctx context.Context, ids []string) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM seen_postings"); err != nil {
		return fmt.Errorf("clearing seen_postings: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO seen_postings (seq, posting_id) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, id := range ids {
		if _, err := stmt.ExecContext(ctx, i+1, id); err != nil {
			return fmt.Errorf("inserting %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seen_postings: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
