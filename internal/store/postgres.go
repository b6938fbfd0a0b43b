package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresBackend keeps the seen snapshot in a Postgres table.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

// NewPostgresBackend connects to databaseURL, verifies the pool and ensures
// the seen_postings table exists.
func NewPostgresBackend(ctx context.Context, databaseURL string) (*PostgresBackend, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("creating postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	_, err = pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS seen_postings (
		seq        BIGINT PRIMARY KEY,
		posting_id TEXT NOT NULL UNIQUE,
		saved_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating seen_postings table: %w", err)
	}

	return &PostgresBackend{pool: pool}, nil
}

func (b *PostgresBackend) Name() string { return "postgres" }

// Load returns the stored IDs in insertion order.
func (b *PostgresBackend) Load(ctx context.Context) ([]string, error) {
	rows, err := b.pool.Query(ctx, "SELECT posting_id FROM seen_postings ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("querying seen_postings: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning seen_postings: %w", err)
	}
	return ids, nil
}

// Save replaces the table contents in one transaction using COPY.
func (b *PostgresBackend) Save(ctx context.Context, ids []string) error {
	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM seen_postings"); err != nil {
		return fmt.Errorf("clearing seen_postings: %w", err)
	}

	rows := make([][]any, len(ids))
	for i, id := range ids {
		rows[i] = []any{int64(i + 1), id}
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"seen_postings"}, []string{"seq", "posting_id"}, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("copying seen_postings: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing seen_postings: %w", err)
	}
	return nil
}

func (b *PostgresBackend) Close() error {
	b.pool.Close()
	return nil
}
