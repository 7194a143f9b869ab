package cleaner

import (
	"context"

	"cleanse/internal/schema"
)

// ArithmeticResolver is stage 4. When exactly one of quantity,
// price_per_unit, and total_spent is missing, it derives the missing value
// from the identity quantity * price_per_unit = total_spent. Division by zero
// is guarded: the field simply stays null. Records with two or more missing
// numeric fields pass through unchanged.
type ArithmeticResolver struct {
	Workers int
}

// Name implements Stage.
func (ArithmeticResolver) Name() string { return "resolve_arithmetic" }

// Apply implements Stage.
func (r ArithmeticResolver) Apply(ctx context.Context, recs []*schema.Transaction) []*schema.Transaction {
	forEach(ctx, r.Workers, recs, resolveRecord)
	return recs
}

func resolveRecord(t *schema.Transaction) {
	q, p, s := t.Quantity, t.PricePerUnit, t.TotalSpent
	switch {
	case q == nil && p != nil && s != nil:
		if *p != 0 {
			v := *s / *p
			t.Quantity = &v
		}
	case p == nil && q != nil && s != nil:
		if *q != 0 {
			v := *s / *q
			t.PricePerUnit = &v
		}
	case s == nil && q != nil && p != nil:
		v := *q * *p
		t.TotalSpent = &v
	}
}
