package cleaner

import (
	"context"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"cleanse/internal/schema"
)

// Normalizer is stage 1. It maps raw text cells to typed values or null and
// standardizes categorical casing and formatting:
//
//   - placeholder anomalies (empty, "unknown", "error"; case-insensitive)
//     become the unknown sentinel for categorical fields and null for
//     numeric/date fields,
//   - categorical values are lowercased; payment_method additionally replaces
//     spaces with underscores and location drops dash characters,
//   - numeric and date cells that fail to parse degrade to null, never to an
//     error.
//
// Normalization is idempotent: re-applying it to already-normalized values
// yields no further change.
type Normalizer struct {
	Workers int
}

// Name implements Stage.
func (Normalizer) Name() string { return "normalize" }

// Run converts a raw batch into typed transactions. The caller is expected to
// have verified the transaction_id precondition first.
func (n Normalizer) Run(ctx context.Context, raws []schema.RawRecord) []*schema.Transaction {
	out := make([]*schema.Transaction, len(raws))
	if n.Workers <= 1 || len(raws) < 2 {
		for i, raw := range raws {
			out[i] = normalizeRecord(raw)
		}
		return out
	}
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(n.Workers)
	for i, raw := range raws {
		i, raw := i, raw
		g.Go(func() error {
			out[i] = normalizeRecord(raw)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Apply re-normalizes the text fields of typed records. It exists so the
// normalizer composes as a Stage and so idempotence is checkable on typed
// output; parsed numeric and date fields are already canonical.
func (n Normalizer) Apply(ctx context.Context, recs []*schema.Transaction) []*schema.Transaction {
	forEach(ctx, n.Workers, recs, func(t *schema.Transaction) {
		t.TransactionID = strings.ToLower(strings.TrimSpace(t.TransactionID))
		t.Item = normalizeCategorical(t.Item)
		t.PaymentMethod = normalizePayment(t.PaymentMethod)
		t.Location = normalizeLocation(t.Location)
	})
	return recs
}

func normalizeRecord(raw schema.RawRecord) *schema.Transaction {
	return &schema.Transaction{
		TransactionID: strings.ToLower(strings.TrimSpace(raw[schema.ColTransactionID])),
		Item:          normalizeCategorical(raw[schema.ColItem]),
		Quantity:      parseNumber(raw[schema.ColQuantity]),
		PricePerUnit:  parseNumber(raw[schema.ColPricePerUnit]),
		TotalSpent:    parseNumber(raw[schema.ColTotalSpent]),
		PaymentMethod: normalizePayment(raw[schema.ColPaymentMethod]),
		Location:      normalizeLocation(raw[schema.ColLocation]),
		Date:          parseDate(raw[schema.ColDate]),
	}
}

// IsAnomaly reports whether a raw cell is one of the recognized placeholder
// values signifying missing or invalid data.
func IsAnomaly(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unknown", "error":
		return true
	}
	return false
}

func normalizeCategorical(s string) string {
	if IsAnomaly(s) {
		return schema.Unknown
	}
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizePayment(s string) string {
	return strings.ReplaceAll(normalizeCategorical(s), " ", "_")
}

func normalizeLocation(s string) string {
	return strings.ReplaceAll(normalizeCategorical(s), "-", "")
}

// parseNumber returns nil for anomalies and for unparsable text; a failed
// parse is treated identically to a recognized anomaly.
func parseNumber(s string) *float64 {
	if IsAnomaly(s) {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseDate(s string) *time.Time {
	if IsAnomaly(s) {
		return nil
	}
	d, err := time.Parse(schema.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &d
}
