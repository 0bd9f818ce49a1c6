// Package inventory models the ingredient stock reported by the café bot.
package inventory

import "github.com/small-frappuccino/cafefarm/pkg/cafe/parse"

// Inventory maps ingredient names to the quantity on hand.
// Entries never hold a quantity of zero or less.
type Inventory struct {
	items map[string]int
}

// New returns an empty inventory.
func New() *Inventory {
	return &Inventory{items: make(map[string]int)}
}

// FromMap builds an inventory from a name/quantity mapping, dropping
// non-positive quantities.
func FromMap(m map[string]int) *Inventory {
	inv := New()
	for name, qty := range m {
		if qty > 0 {
			inv.items[name] = qty
		}
	}
	return inv
}

// ReplaceFrom parses an inventory embed field and returns a fresh inventory.
func ReplaceFrom(text string) *Inventory {
	return FromMap(parse.Inventory(text))
}

// Quantity returns the stock for name, zero when absent.
func (inv *Inventory) Quantity(name string) int {
	if inv == nil {
		return 0
	}
	return inv.items[name]
}

// Len reports how many ingredients are in stock.
func (inv *Inventory) Len() int {
	if inv == nil {
		return 0
	}
	return len(inv.items)
}

// MinAvailable returns the smallest quantity across all entries, or 0 when
// the inventory is empty. It bounds how much can be donated in bulk.
func (inv *Inventory) MinAvailable() int {
	if inv.Len() == 0 {
		return 0
	}
	first := true
	lowest := 0
	for _, qty := range inv.items {
		if first || qty < lowest {
			lowest = qty
			first = false
		}
	}
	if lowest < 0 {
		return 0
	}
	return lowest
}

// Spare returns how much of every ingredient can be donated at once according
// to a raw report: the lowest reported quantity, zero entries included. It is
// 0 for an empty report.
func Spare(reported map[string]int) int {
	if len(reported) == 0 {
		return 0
	}
	lowest := -1
	for _, qty := range reported {
		if lowest < 0 || qty < lowest {
			lowest = qty
		}
	}
	return max(lowest, 0)
}

// SubtractUniform returns a copy with n removed from every entry, pruning
// entries that drop to zero or below.
func (inv *Inventory) SubtractUniform(n int) *Inventory {
	out := New()
	if inv == nil {
		return out
	}
	for name, qty := range inv.items {
		if left := qty - n; left > 0 {
			out.items[name] = left
		}
	}
	return out
}

// Snapshot returns a copy of the underlying mapping.
func (inv *Inventory) Snapshot() map[string]int {
	out := make(map[string]int, inv.Len())
	if inv == nil {
		return out
	}
	for name, qty := range inv.items {
		out[name] = qty
	}
	return out
}

