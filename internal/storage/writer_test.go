package storage

import (
	"context"
	"errors"
	"testing"

	"cleanse/internal/schema"
)

type fakeRepo struct {
	batches []int
	failAt  int // 1-based batch index to fail on; 0 never fails
}

func (f *fakeRepo) EnsureTable(ctx context.Context) error { return nil }

func (f *fakeRepo) InsertTransactions(ctx context.Context, recs []*schema.Transaction) (int64, error) {
	f.batches = append(f.batches, len(recs))
	if f.failAt != 0 && len(f.batches) == f.failAt {
		return 0, errors.New("boom")
	}
	return int64(len(recs)), nil
}

func (f *fakeRepo) Close() {}

func someRecords(n int) []*schema.Transaction {
	out := make([]*schema.Transaction, n)
	for i := range out {
		out[i] = &schema.Transaction{TransactionID: "txn"}
	}
	return out
}

/*
TestWriteBatches verifies the batching math: records split into batchSize
chunks with a short final batch, and the returned total covers every record.
*/
func TestWriteBatches(t *testing.T) {
	repo := &fakeRepo{}
	n, err := Write(context.Background(), repo, someRecords(25), 10)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != 25 {
		t.Fatalf("total=%d; want 25", n)
	}
	if len(repo.batches) != 3 || repo.batches[0] != 10 || repo.batches[2] != 5 {
		t.Fatalf("batches=%v; want [10 10 5]", repo.batches)
	}
}

/*
TestWriteDefaultBatchSize verifies that a non-positive batch size picks the
default.
*/
func TestWriteDefaultBatchSize(t *testing.T) {
	repo := &fakeRepo{}
	if _, err := Write(context.Background(), repo, someRecords(DefaultBatchSize+1), 0); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(repo.batches) != 2 || repo.batches[0] != DefaultBatchSize {
		t.Fatalf("batches=%v; want [%d 1]", repo.batches, DefaultBatchSize)
	}
}

/*
TestWriteStopsOnError verifies that a failing batch aborts the run and the
total reflects only what was inserted before the failure.
*/
func TestWriteStopsOnError(t *testing.T) {
	repo := &fakeRepo{failAt: 2}
	n, err := Write(context.Background(), repo, someRecords(30), 10)
	if err == nil {
		t.Fatalf("want error from failing batch")
	}
	if n != 10 {
		t.Fatalf("total=%d; want 10", n)
	}
	if len(repo.batches) != 2 {
		t.Fatalf("batches=%v; must stop after the failure", repo.batches)
	}
}

/*
TestWriteEmpty verifies that an empty record set writes nothing.
*/
func TestWriteEmpty(t *testing.T) {
	repo := &fakeRepo{}
	n, err := Write(context.Background(), repo, nil, 10)
	if err != nil || n != 0 || len(repo.batches) != 0 {
		t.Fatalf("n=%d err=%v batches=%v; want no writes", n, err, repo.batches)
	}
}

/*
TestRegistry verifies factory registration and lookup, including the error
listing registered kinds for an unknown backend.
*/
func TestRegistry(t *testing.T) {
	Register("fake", func(ctx context.Context, cfg Config) (Repository, error) {
		return &fakeRepo{}, nil
	})

	repo, err := New(context.Background(), Config{Kind: "fake"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	repo.Close()

	if _, err := New(context.Background(), Config{Kind: "bogus"}); err == nil {
		t.Fatalf("unknown backend must error")
	}

	found := false
	for _, k := range Kinds() {
		if k == "fake" {
			found = true
		}
	}
	if !found {
		t.Fatalf("Kinds()=%v; want to include fake", Kinds())
	}
}
