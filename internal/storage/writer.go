package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"cleanse/internal/schema"
)

// DefaultBatchSize bounds rows per insert batch when the config does not say
// otherwise.
const DefaultBatchSize = 500

// Write persists the cleaned records through repo in batches of batchSize
// (<= 0 selects DefaultBatchSize), logging progress per flushed batch. It
// returns the total inserted and the first error encountered.
func Write(ctx context.Context, repo Repository, recs []*schema.Transaction, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	var total int64
	start := time.Now()
	for len(recs) > 0 {
		n := batchSize
		if n > len(recs) {
			n = len(recs)
		}
		inserted, err := repo.InsertTransactions(ctx, recs[:n])
		total += inserted
		if err != nil {
			return total, fmt.Errorf("storage: insert batch: %w", err)
		}
		recs = recs[n:]
		log.Printf("writer: inserted=%d total=%d remaining=%d elapsed=%s",
			inserted, total, len(recs), time.Since(start).Truncate(time.Millisecond))
	}
	return total, nil
}
