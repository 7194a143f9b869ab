package cleaner

import (
	"testing"

	"cleanse/internal/schema"
)

/*
TestFingerprint verifies the hash distinguishes the states a stage can
produce: null versus zero, null versus empty string, and date presence. A
cloned record must hash identically.
*/
func TestFingerprint(t *testing.T) {
	base := &schema.Transaction{
		TransactionID: "txn_1",
		Item:          "tea",
		Quantity:      schema.Float(2),
		PricePerUnit:  schema.Float(1.5),
		TotalSpent:    schema.Float(3),
		PaymentMethod: "cash",
		Location:      "takeaway",
		Date:          schema.Day("2023-04-01"),
	}

	if fingerprint(base) != fingerprint(base.Clone()) {
		t.Fatalf("clone hashes differently")
	}

	variants := []func(*schema.Transaction){
		func(t *schema.Transaction) { t.Quantity = nil },
		func(t *schema.Transaction) { t.Quantity = schema.Float(0) },
		func(t *schema.Transaction) { t.Item = schema.Unknown },
		func(t *schema.Transaction) { t.Date = nil },
		func(t *schema.Transaction) { t.Date = schema.Day("2023-04-02") },
		func(t *schema.Transaction) { t.Location = "instore" },
	}
	seen := map[uint64]bool{fingerprint(base): true}
	for i, mutate := range variants {
		v := base.Clone()
		mutate(v)
		fp := fingerprint(v)
		if seen[fp] {
			t.Fatalf("variant %d collides with an earlier state", i)
		}
		seen[fp] = true
	}
}

/*
TestCountChanged verifies the stage diff: modified records and records
removed by the stage both count as changed; untouched records do not.
*/
func TestCountChanged(t *testing.T) {
	a := &schema.Transaction{TransactionID: "a", Item: "tea"}
	b := &schema.Transaction{TransactionID: "b", Item: schema.Unknown}
	c := &schema.Transaction{TransactionID: "c", Item: "coffee"}
	before := []*schema.Transaction{a, b, c}

	bAfter := b.Clone()
	bAfter.Item = "salad"
	after := []*schema.Transaction{a.Clone(), bAfter} // c dropped

	if got := countChanged(before, after); got != 2 {
		t.Fatalf("countChanged=%d; want 2 (one modified, one dropped)", got)
	}
	if got := countChanged(before, cloneAll(before)); got != 0 {
		t.Fatalf("countChanged=%d on identical snapshots; want 0", got)
	}
}
