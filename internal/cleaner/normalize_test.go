package cleaner

import (
	"context"
	"reflect"
	"testing"

	"cleanse/internal/schema"
)

/*
TestNormalizeRecord_Table verifies the per-field normalization rules:
  - placeholder anomalies ("", "unknown", "error"; any casing) become the
    unknown sentinel for categorical fields and null for numeric/date fields,
  - categorical values are lowercased with the field-specific substitutions
    (payment_method: space to underscore; location: dashes removed),
  - unparsable numeric or date text degrades to null, identical to an
    anomaly.
*/
func TestNormalizeRecord_Table(t *testing.T) {
	tests := []struct {
		name string
		raw  schema.RawRecord
		want schema.Transaction
	}{
		{
			name: "clean row passes through typed",
			raw: schema.RawRecord{
				schema.ColTransactionID: "TXN_100",
				schema.ColItem:          "Coffee",
				schema.ColQuantity:      "2",
				schema.ColPricePerUnit:  "2.0",
				schema.ColTotalSpent:    "4.0",
				schema.ColPaymentMethod: "Digital Wallet",
				schema.ColLocation:      "In-store",
				schema.ColDate:          "2023-06-11",
			},
			want: schema.Transaction{
				TransactionID: "txn_100",
				Item:          "coffee",
				Quantity:      schema.Float(2),
				PricePerUnit:  schema.Float(2.0),
				TotalSpent:    schema.Float(4.0),
				PaymentMethod: "digital_wallet",
				Location:      "instore",
				Date:          schema.Day("2023-06-11"),
			},
		},
		{
			name: "anomalies map to sentinel and null",
			raw: schema.RawRecord{
				schema.ColTransactionID: "TXN_101",
				schema.ColItem:          "ERROR",
				schema.ColQuantity:      "UNKNOWN",
				schema.ColPricePerUnit:  "",
				schema.ColTotalSpent:    "error",
				schema.ColPaymentMethod: "Unknown",
				schema.ColLocation:      "",
				schema.ColDate:          "ERROR",
			},
			want: schema.Transaction{
				TransactionID: "txn_101",
				Item:          schema.Unknown,
				PaymentMethod: schema.Unknown,
				Location:      schema.Unknown,
			},
		},
		{
			name: "unparsable text degrades to null",
			raw: schema.RawRecord{
				schema.ColTransactionID: "TXN_102",
				schema.ColItem:          "Tea",
				schema.ColQuantity:      "two",
				schema.ColPricePerUnit:  "1.5x",
				schema.ColTotalSpent:    "3,0",
				schema.ColPaymentMethod: "Cash",
				schema.ColLocation:      "Takeaway",
				schema.ColDate:          "11/06/2023",
			},
			want: schema.Transaction{
				TransactionID: "txn_102",
				Item:          "tea",
				PaymentMethod: "cash",
				Location:      "takeaway",
			},
		},
		{
			name: "missing cells behave like empty anomalies",
			raw: schema.RawRecord{
				schema.ColTransactionID: "TXN_103",
			},
			want: schema.Transaction{
				TransactionID: "txn_103",
				Item:          schema.Unknown,
				PaymentMethod: schema.Unknown,
				Location:      schema.Unknown,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := normalizeRecord(tc.raw)
			if !reflect.DeepEqual(*got, tc.want) {
				t.Fatalf("normalizeRecord()=%+v; want %+v", *got, tc.want)
			}
		})
	}
}

/*
TestNormalizerIdempotent verifies that re-applying normalization to an
already-normalized batch yields no further change.
*/
func TestNormalizerIdempotent(t *testing.T) {
	n := Normalizer{}
	raws := []schema.RawRecord{
		{
			schema.ColTransactionID: "TXN_1",
			schema.ColItem:          "Salad",
			schema.ColQuantity:      "1",
			schema.ColPricePerUnit:  "5.0",
			schema.ColTotalSpent:    "5.0",
			schema.ColPaymentMethod: "Credit Card",
			schema.ColLocation:      "In-store",
			schema.ColDate:          "2023-01-02",
		},
		{
			schema.ColTransactionID: "TXN_2",
			schema.ColItem:          "ERROR",
			schema.ColQuantity:      "UNKNOWN",
			schema.ColPaymentMethod: "",
			schema.ColLocation:      "Takeaway",
		},
	}

	once := n.Run(context.Background(), raws)
	again := n.Apply(context.Background(), cloneAll(once))

	if !reflect.DeepEqual(cloneAll(once), again) {
		t.Fatalf("normalization not idempotent:\nonce=%+v\nagain=%+v", once[0], again[0])
	}
}

/*
TestNormalizerParallelMatchesSequential verifies that fanning records across
workers produces exactly the sequential result; per-record transforms are
independent by design.
*/
func TestNormalizerParallelMatchesSequential(t *testing.T) {
	raws := make([]schema.RawRecord, 0, 64)
	for i := 0; i < 64; i++ {
		raws = append(raws, schema.RawRecord{
			schema.ColTransactionID: "txn_" + string(rune('a'+i%26)) + string(rune('a'+i/26)),
			schema.ColItem:          "Cookie",
			schema.ColQuantity:      "3",
			schema.ColPricePerUnit:  "1.0",
			schema.ColTotalSpent:    "3.0",
			schema.ColPaymentMethod: "Cash",
			schema.ColLocation:      "In-store",
			schema.ColDate:          "2023-03-04",
		})
	}

	seq := Normalizer{Workers: 1}.Run(context.Background(), raws)
	par := Normalizer{Workers: 8}.Run(context.Background(), raws)

	if !reflect.DeepEqual(seq, par) {
		t.Fatalf("parallel normalization diverged from sequential")
	}
}

/*
TestIsAnomaly pins the recognized placeholder set, case-insensitively and
with surrounding whitespace.
*/
func TestIsAnomaly(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", true},
		{"   ", true},
		{"unknown", true},
		{"UNKNOWN", true},
		{" Error ", true},
		{"n/a", false},
		{"0", false},
		{"none", false},
	}
	for _, tc := range tests {
		if got := IsAnomaly(tc.in); got != tc.want {
			t.Fatalf("IsAnomaly(%q)=%v; want %v", tc.in, got, tc.want)
		}
	}
}
