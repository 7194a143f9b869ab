package cleaner

import (
	"context"

	"cleanse/internal/catalog"
	"cleanse/internal/schema"
)

// PriceImputer is stage 2. It fills a missing price_per_unit from the item
// catalog when the item is known. Items absent from the catalog are left
// null for the arithmetic resolver or the completion policy to handle.
type PriceImputer struct {
	Catalog *catalog.Catalog
	Workers int
}

// Name implements Stage.
func (PriceImputer) Name() string { return "impute_price" }

// Apply implements Stage.
func (p PriceImputer) Apply(ctx context.Context, recs []*schema.Transaction) []*schema.Transaction {
	forEach(ctx, p.Workers, recs, p.transform)
	return recs
}

func (p PriceImputer) transform(t *schema.Transaction) {
	if t.PricePerUnit != nil || t.Item == schema.Unknown {
		return
	}
	if price, ok := p.Catalog.PriceFor(t.Item); ok {
		t.PricePerUnit = &price
	}
}
