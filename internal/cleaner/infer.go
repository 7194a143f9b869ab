package cleaner

import (
	"context"

	"cleanse/internal/catalog"
	"cleanse/internal/schema"
)

// ItemInferencer is stage 3. It resolves an unknown item from the inverse
// price table when the unit price identifies exactly one catalog item.
// Prices shared by several items stay unknown; the catalog compares prices
// at 2-decimal granularity rather than by raw float equality.
type ItemInferencer struct {
	Catalog *catalog.Catalog
	Workers int
}

// Name implements Stage.
func (ItemInferencer) Name() string { return "infer_item" }

// Apply implements Stage.
func (s ItemInferencer) Apply(ctx context.Context, recs []*schema.Transaction) []*schema.Transaction {
	forEach(ctx, s.Workers, recs, s.transform)
	return recs
}

func (s ItemInferencer) transform(t *schema.Transaction) {
	if t.Item != schema.Unknown || t.PricePerUnit == nil {
		return
	}
	if item, ok := s.Catalog.ItemFor(*t.PricePerUnit); ok {
		t.Item = item
	}
}
