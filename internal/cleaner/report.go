package cleaner

import (
	"strconv"
	"strings"
	"time"

	"github.com/zeebo/xxh3"

	"cleanse/internal/schema"
)

// Report summarizes one pipeline run for logs, metrics, and tests. The
// dropped fraction is a property of the data, not an enforced constraint;
// callers decide whether it is acceptably low.
type Report struct {
	RunID           string
	Mode            Mode
	Input           int
	Output          int
	Dropped         int
	DroppedFraction float64
	Duration        time.Duration
	Stages          []StageStats
}

// StageStats describes one stage of a run. Changed counts records whose
// fingerprint differs from the previous stage's snapshot (or that were
// dropped by the stage).
type StageStats struct {
	Name     string
	In       int
	Out      int
	Changed  int
	Duration time.Duration
}

// fingerprint hashes a record's rendered fields with xxh3 so stage diffs are
// cheap to compute. Fields are separated by \x1f; null cells render as \x00.
func fingerprint(t *schema.Transaction) uint64 {
	var b strings.Builder
	b.WriteString(t.TransactionID)
	sep(&b)
	b.WriteString(t.Item)
	sep(&b)
	writeFloat(&b, t.Quantity)
	sep(&b)
	writeFloat(&b, t.PricePerUnit)
	sep(&b)
	writeFloat(&b, t.TotalSpent)
	sep(&b)
	b.WriteString(t.PaymentMethod)
	sep(&b)
	b.WriteString(t.Location)
	sep(&b)
	if t.Date != nil {
		b.WriteString(t.Date.Format(schema.DateLayout))
	} else {
		b.WriteByte('\x00')
	}
	return xxh3.HashString(b.String())
}

func sep(b *strings.Builder) { b.WriteByte('\x1f') }

func writeFloat(b *strings.Builder, v *float64) {
	if v == nil {
		b.WriteByte('\x00')
		return
	}
	b.WriteString(strconv.FormatFloat(*v, 'g', -1, 64))
}

// countChanged compares two snapshots keyed by transaction_id and counts the
// records of before that were modified or removed in after.
func countChanged(before, after []*schema.Transaction) int {
	cur := make(map[string]uint64, len(after))
	for _, t := range after {
		cur[t.TransactionID] = fingerprint(t)
	}
	changed := 0
	for _, t := range before {
		fp, ok := cur[t.TransactionID]
		if !ok || fp != fingerprint(t) {
			changed++
		}
	}
	return changed
}
