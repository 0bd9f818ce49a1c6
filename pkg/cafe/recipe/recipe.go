// Package recipe decides which ingredient option of an order to press.
package recipe

import (
	"sort"

	"github.com/small-frappuccino/cafefarm/pkg/cafe/parse"
)

// Option is one entry of the order's select menu.
type Option struct {
	Index int
	Label string // "<ingredient> x <quantity>"
	Value string // opaque value submitted with the selection
}

// Selection is the option chosen for the current order.
type Selection struct {
	Index      int
	Ingredient string
	Quantity   int
	Value      string
}

// NoSelection is returned when no option can be paid for.
var NoSelection = Selection{Index: -1}

// Found reports whether s is an actual choice rather than NoSelection.
func (s Selection) Found() bool {
	return s.Index >= 0
}

// Stock is the read side of the ingredient inventory.
type Stock interface {
	Quantity(name string) int
}

type candidate struct {
	opt        Option
	ingredient string
	required   int
	have       int
	affordable int
}

// Select picks the option to press for an order.
//
// Every option is rated by min(required, stock). Options whose ingredient is
// out of stock are dropped. The scarcest rating is the binding amount; when it
// is zero nothing can be made. Otherwise options are walked from the best
// rated down and the first one that reaches the binding amount and is fully
// covered by stock wins. Duplicate ingredient names are rated independently
// against the same stock entry.
func Select(options []Option, stock Stock) Selection {
	cands := make([]candidate, 0, len(options))
	for _, opt := range options {
		ingredient, required, ok := parse.RecipeLabel(opt.Label)
		if !ok {
			continue
		}
		have := stock.Quantity(ingredient)
		if have <= 0 {
			continue
		}
		cands = append(cands, candidate{
			opt:        opt,
			ingredient: ingredient,
			required:   required,
			have:       have,
			affordable: min(required, have),
		})
	}
	if len(cands) == 0 {
		return NoSelection
	}

	binding := cands[0].affordable
	for _, c := range cands[1:] {
		binding = min(binding, c.affordable)
	}
	if binding <= 0 {
		return NoSelection
	}

	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].affordable > cands[j].affordable
	})
	for _, c := range cands {
		if c.affordable >= binding && c.required <= c.have {
			return Selection{
				Index:      c.opt.Index,
				Ingredient: c.ingredient,
				Quantity:   c.affordable,
				Value:      c.opt.Value,
			}
		}
	}
	return NoSelection
}
