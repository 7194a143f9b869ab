// Package schema defines the record shapes that flow through the cleaning
// pipeline: the untyped raw input row and the typed cleaned transaction.
package schema

import (
	"strconv"
	"time"
)

// Column names of the source table. Every raw record carries all eight.
const (
	ColTransactionID = "transaction_id"
	ColItem          = "item"
	ColQuantity      = "quantity"
	ColPricePerUnit  = "price_per_unit"
	ColTotalSpent    = "total_spent"
	ColPaymentMethod = "payment_method"
	ColLocation      = "location"
	ColDate          = "transaction_date"
)

// Columns lists the source columns in canonical order. Storage sinks and the
// parsers align rows with this order.
var Columns = []string{
	ColTransactionID,
	ColItem,
	ColQuantity,
	ColPricePerUnit,
	ColTotalSpent,
	ColPaymentMethod,
	ColLocation,
	ColDate,
}

// Unknown is the sentinel for a categorical value that could not be resolved.
const Unknown = "unknown"

// DateLayout is the accepted calendar-date format for transaction_date.
const DateLayout = "2006-01-02"

// RawRecord is one untyped input row: column name -> text cell. Missing
// columns read as the empty string, which the normalizer treats as an anomaly.
type RawRecord map[string]string

// Transaction is a cleaned sales record. Pointer fields are nullable; a nil
// value means the cell is missing and may still be imputed by a later stage.
type Transaction struct {
	TransactionID string
	Item          string
	Quantity      *float64
	PricePerUnit  *float64
	TotalSpent    *float64
	PaymentMethod string
	Location      string
	Date          *time.Time
}

// Clone returns a deep copy. Stages mutate records in place, so the pipeline
// clones each stage's output before handing it to the next stage's snapshot.
func (t *Transaction) Clone() *Transaction {
	c := *t
	c.Quantity = cloneFloat(t.Quantity)
	c.PricePerUnit = cloneFloat(t.PricePerUnit)
	c.TotalSpent = cloneFloat(t.TotalSpent)
	if t.Date != nil {
		d := *t.Date
		c.Date = &d
	}
	return &c
}

// NumericComplete reports whether quantity, price_per_unit, and total_spent
// are all present.
func (t *Transaction) NumericComplete() bool {
	return t.Quantity != nil && t.PricePerUnit != nil && t.TotalSpent != nil
}

// Complete reports whether every field is present and no categorical field is
// the unknown sentinel. Strict completion keeps exactly these records.
func (t *Transaction) Complete() bool {
	if !t.NumericComplete() || t.Date == nil {
		return false
	}
	if t.Item == Unknown || t.PaymentMethod == Unknown || t.Location == Unknown {
		return false
	}
	return t.TransactionID != ""
}

// Row returns the record's values aligned with Columns. Nil pointers map to
// nil (SQL NULL); dates render in DateLayout.
func (t *Transaction) Row() []any {
	row := make([]any, len(Columns))
	row[0] = t.TransactionID
	row[1] = t.Item
	row[2] = floatOrNil(t.Quantity)
	row[3] = floatOrNil(t.PricePerUnit)
	row[4] = floatOrNil(t.TotalSpent)
	row[5] = t.PaymentMethod
	row[6] = t.Location
	if t.Date != nil {
		row[7] = t.Date.Format(DateLayout)
	}
	return row
}

// Float is a small literal helper for building nullable numeric fields.
func Float(v float64) *float64 { return &v }

// Day builds a nullable date from an ISO calendar string. It panics on a bad
// literal and is intended for fixtures and tests.
func Day(s string) *time.Time {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		panic("schema: bad date literal " + strconv.Quote(s))
	}
	return &d
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func floatOrNil(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
