// Package cleaner implements the five-stage cleaning pipeline for raw sales
// transactions: normalization, price imputation from the item catalog, item
// inference from unit prices, arithmetic resolution of the
// quantity * price_per_unit = total_spent identity, and a terminal completion
// policy. Stages run strictly in sequence over the full record set; within a
// stage, per-record work may fan out across a bounded worker group because no
// record's transformation reads another record's value.
package cleaner

import (
	"context"

	"golang.org/x/sync/errgroup"

	"cleanse/internal/schema"
)

// Stage is one transformation over the full record set. Apply may mutate
// records in place and returns the set that feeds the next stage.
type Stage interface {
	Name() string
	Apply(ctx context.Context, recs []*schema.Transaction) []*schema.Transaction
}

// forEach runs fn over every record, using up to workers goroutines when
// workers > 1. Stage transforms never fail; errors do not propagate from fn.
func forEach(ctx context.Context, workers int, recs []*schema.Transaction, fn func(*schema.Transaction)) {
	if workers <= 1 || len(recs) < 2 {
		for _, r := range recs {
			fn(r)
		}
		return
	}
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, r := range recs {
		r := r
		g.Go(func() error {
			fn(r)
			return nil
		})
	}
	_ = g.Wait()
}
