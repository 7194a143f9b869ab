// Package postgres implements a Postgres-backed storage.Repository using pgx
// v5. Inserts go through the binary COPY protocol, which is the fastest bulk
// path Postgres offers.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cleanse/internal/schema"
	"cleanse/internal/storage"
)

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return NewRepository(ctx, cfg)
	})
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
	cfg  storage.Config
}

// NewRepository constructs a Repository from a pgxpool DSN.
func NewRepository(ctx context.Context, cfg storage.Config) (*Repository, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("postgres: DSN must not be empty")
	}
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: pgxpool: %w", err)
	}
	return &Repository{pool: pool, cfg: cfg}, nil
}

// EnsureTable creates the cleaned-transactions table if it does not exist.
func (r *Repository) EnsureTable(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	transaction_id   TEXT PRIMARY KEY,
	item             TEXT,
	quantity         DOUBLE PRECISION,
	price_per_unit   DOUBLE PRECISION,
	total_spent      DOUBLE PRECISION,
	payment_method   TEXT,
	location         TEXT,
	transaction_date DATE
)`, fqn(r.cfg.Table))
	if _, err := r.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("postgres: create table: %w", err)
	}
	return nil
}

// InsertTransactions bulk-loads the records with COPY.
func (r *Repository) InsertTransactions(ctx context.Context, recs []*schema.Transaction) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	rows := make([][]any, len(recs))
	for i, t := range recs {
		rows[i] = t.Row()
	}
	n, err := r.pool.CopyFrom(ctx, tableIdent(r.cfg.Table), schema.Columns, pgx.CopyFromRows(rows))
	if err != nil {
		return n, fmt.Errorf("postgres: copy: %w", err)
	}
	return n, nil
}

// Close closes the connection pool.
func (r *Repository) Close() { r.pool.Close() }

// tableIdent splits a possibly schema-qualified table name into a pgx
// identifier.
func tableIdent(table string) pgx.Identifier {
	parts := strings.Split(table, ".")
	return pgx.Identifier(parts)
}

// fqn quotes a possibly schema-qualified table name for embedding in DDL.
func fqn(table string) string {
	return tableIdent(table).Sanitize()
}
