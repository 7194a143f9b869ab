// Package storage defines the storage-agnostic sink contract for cleaned
// transactions plus a registry of concrete backends. Backends live in
// subpackages and register themselves with the factory in their init
// functions; callers select one by kind and never import drivers directly.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"cleanse/internal/schema"
)

// Config selects and configures a storage backend.
type Config struct {
	Kind            string // "sqlite", "postgres", "mysql"
	DSN             string
	Table           string
	AutoCreateTable bool
}

// Repository is the minimal sink interface for cleaned transactions.
type Repository interface {
	// EnsureTable creates the destination table when it does not exist.
	EnsureTable(ctx context.Context) error

	// InsertTransactions writes the records and returns how many were
	// inserted. Rows align with schema.Columns; null fields become SQL NULL.
	InsertTransactions(ctx context.Context, recs []*schema.Transaction) (int64, error)

	// Close releases the underlying connections.
	Close()
}

// Factory builds a Repository from a Config.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs a backend factory under kind. Backends call this from
// init; a duplicate kind panics because it is a programming error.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := factories[kind]; dup {
		panic(fmt.Sprintf("storage: duplicate backend %q", kind))
	}
	factories[kind] = f
}

// New constructs the backend selected by cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unknown backend %q (registered: %v)", cfg.Kind, Kinds())
	}
	return f(ctx, cfg)
}

// Kinds returns the registered backend kinds in sorted order.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
