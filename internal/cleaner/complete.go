package cleaner

import (
	"context"
	"fmt"
	"math"
	"strings"

	"cleanse/internal/schema"
)

// Mode selects the terminal completion strategy applied after arithmetic
// resolution. Exactly one mode is active per run; it is an explicit
// configuration choice, never inferred from the data.
type Mode string

const (
	// ModeStrict retains only records with every field present and no
	// categorical field equal to the unknown sentinel.
	ModeStrict Mode = "strict"

	// ModeAverageFill replaces remaining numeric nulls with the column mean
	// (over non-null stage-4 values) rounded to 2 decimals. Categorical
	// fields and dates are never imputed in this mode.
	ModeAverageFill Mode = "average_fill"
)

// ParseMode validates a completion-mode string from configuration.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeStrict, "":
		return ModeStrict, nil
	case ModeAverageFill:
		return ModeAverageFill, nil
	}
	return "", fmt.Errorf("unknown completion mode %q (want %q or %q)", s, ModeStrict, ModeAverageFill)
}

// CompletionPolicy is stage 5. It needs the full stage-4 record set up front
// because average fill derives column means from the whole batch before any
// record is finalized.
type CompletionPolicy struct {
	Mode Mode

	// Dropped, when set, receives every record removed in strict mode.
	Dropped func(*schema.Transaction)
}

// Name implements Stage.
func (CompletionPolicy) Name() string { return "complete" }

// Apply implements Stage.
func (c CompletionPolicy) Apply(_ context.Context, recs []*schema.Transaction) []*schema.Transaction {
	if c.Mode == ModeAverageFill {
		return c.fillAverages(recs)
	}
	return c.dropIncomplete(recs)
}

func (c CompletionPolicy) dropIncomplete(recs []*schema.Transaction) []*schema.Transaction {
	out := make([]*schema.Transaction, 0, len(recs))
	for _, t := range recs {
		if t.Complete() {
			out = append(out, t)
			continue
		}
		if c.Dropped != nil {
			c.Dropped(t)
		}
	}
	return out
}

// fillAverages computes per-column means over the records that have the
// respective field, rounds each mean to 2 decimals, and assigns that single
// value to every remaining null in the column. A column with no non-null
// values has no mean and its nulls are left in place.
func (c CompletionPolicy) fillAverages(recs []*schema.Transaction) []*schema.Transaction {
	fields := []struct {
		get func(*schema.Transaction) *float64
		set func(*schema.Transaction, float64)
	}{
		{func(t *schema.Transaction) *float64 { return t.Quantity },
			func(t *schema.Transaction, v float64) { t.Quantity = &v }},
		{func(t *schema.Transaction) *float64 { return t.PricePerUnit },
			func(t *schema.Transaction, v float64) { t.PricePerUnit = &v }},
		{func(t *schema.Transaction) *float64 { return t.TotalSpent },
			func(t *schema.Transaction, v float64) { t.TotalSpent = &v }},
	}
	for _, f := range fields {
		m, ok := columnMean(recs, f.get)
		if !ok {
			continue
		}
		fill := round2(m)
		for _, t := range recs {
			if f.get(t) == nil {
				f.set(t, fill)
			}
		}
	}
	return recs
}

func columnMean(recs []*schema.Transaction, get func(*schema.Transaction) *float64) (float64, bool) {
	var sum float64
	var n int
	for _, t := range recs {
		if v := get(t); v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
