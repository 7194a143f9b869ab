// Package catalog holds the fixed item<->price reference tables used for
// price imputation and item inference. A Catalog is immutable after
// construction and safe to share across parallel workers.
package catalog

import (
	"math"
	"sort"
)

// Catalog maps items to unit prices and, inversely, unambiguous prices back
// to items. Construct with New or Default; the zero value is unusable.
type Catalog struct {
	itemPrice map[string]float64
	priceItem map[int64]string
}

// New builds a Catalog from an item -> price table. The inverse table is
// derived here: a price shared by more than one item is omitted from it, so
// inference never guesses among ambiguous items.
func New(itemPrice map[string]float64) *Catalog {
	ip := make(map[string]float64, len(itemPrice))
	seen := make(map[int64]int, len(itemPrice))
	for item, price := range itemPrice {
		ip[item] = price
		seen[priceKey(price)]++
	}
	pi := make(map[int64]string, len(ip))
	for item, price := range ip {
		if k := priceKey(price); seen[k] == 1 {
			pi[k] = item
		}
	}
	return &Catalog{itemPrice: ip, priceItem: pi}
}

// Default returns the fixed menu catalog.
func Default() *Catalog {
	return New(map[string]float64{
		"cake":     3.0,
		"coffee":   2.0,
		"cookie":   1.0,
		"juice":    3.0,
		"salad":    5.0,
		"sandwich": 4.0,
		"smoothie": 4.0,
		"tea":      1.5,
	})
}

// priceKey converts a price to its fixed-point key at 2-decimal granularity.
// Every price lookup goes through this single comparison point; raw float
// equality is deliberately avoided because catalog prices are exact decimals.
func priceKey(p float64) int64 {
	return int64(math.Round(p * 100))
}

// PriceFor returns the unit price for item.
func (c *Catalog) PriceFor(item string) (float64, bool) {
	p, ok := c.itemPrice[item]
	return p, ok
}

// ItemFor returns the item sold at price when exactly one catalog item
// carries that price.
func (c *Catalog) ItemFor(price float64) (string, bool) {
	item, ok := c.priceItem[priceKey(price)]
	return item, ok
}

// Items returns the catalog's item names in sorted order.
func (c *Catalog) Items() []string {
	out := make([]string, 0, len(c.itemPrice))
	for item := range c.itemPrice {
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of items in the catalog.
func (c *Catalog) Len() int { return len(c.itemPrice) }
