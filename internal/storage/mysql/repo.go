// Package mysql implements a MySQL-backed storage.Repository using
// database/sql and the go-sql-driver. Inserts use multi-row VALUES lists,
// MySQL's practical bulk path without LOAD DATA.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"cleanse/internal/schema"
	"cleanse/internal/storage"
)

func init() {
	storage.Register("mysql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return NewRepository(ctx, cfg)
	})
}

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg storage.Config
}

// NewRepository opens a MySQL connection pool, e.g. DSN
// "user:pass@tcp(127.0.0.1:3306)/sales?parseTime=true".
func NewRepository(ctx context.Context, cfg storage.Config) (*Repository, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("mysql: DSN must not be empty")
	}
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("mysql: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql: ping: %w", err)
	}
	return &Repository{db: db, cfg: cfg}, nil
}

// EnsureTable creates the cleaned-transactions table if it does not exist.
func (r *Repository) EnsureTable(ctx context.Context) error {
	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s ("+
		"transaction_id VARCHAR(64) PRIMARY KEY, "+
		"item VARCHAR(64), "+
		"quantity DOUBLE, "+
		"price_per_unit DOUBLE, "+
		"total_spent DOUBLE, "+
		"payment_method VARCHAR(64), "+
		"location VARCHAR(64), "+
		"transaction_date DATE)", r.cfg.Table)
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("mysql: create table: %w", err)
	}
	return nil
}

// InsertTransactions writes the records with a single multi-row INSERT.
func (r *Repository) InsertTransactions(ctx context.Context, recs []*schema.Transaction) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	rowPlaceholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(schema.Columns)), ", ") + ")"
	placeholders := make([]string, len(recs))
	args := make([]any, 0, len(recs)*len(schema.Columns))
	for i, t := range recs {
		placeholders[i] = rowPlaceholder
		args = append(args, t.Row()...)
	}

	stmt := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES %s",
		r.cfg.Table,
		strings.Join(schema.Columns, ", "),
		strings.Join(placeholders, ", "),
	)
	res, err := r.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("mysql: insert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mysql: rows affected: %w", err)
	}
	return n, nil
}

// Close closes the underlying connection pool.
func (r *Repository) Close() { _ = r.db.Close() }
