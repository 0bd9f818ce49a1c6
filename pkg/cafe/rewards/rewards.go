// Package rewards keeps the running totals earned during a farming session.
package rewards

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/small-frappuccino/cafefarm/pkg/cafe/parse"
)

// DefaultEvents is the catalog of event creatures watched for in reward text.
var DefaultEvents = []string{
	"Applin", "Falinks", "Bellibolt", "Gulpin", "Spheals",
	"Clamacaron", "Goomy", "Tangela", "Alopix", "Doublade",
}

// Counters holds session totals. Values only ever grow.
type Counters struct {
	Coins   int64 `json:"coins"`
	Shards  int64 `json:"shards"`
	Redeems int64 `json:"redeems"`
	Events  int64 `json:"events"`
}

// Add folds a delta into c. Negative components are ignored.
func (c *Counters) Add(d Counters) {
	c.Coins += max(d.Coins, 0)
	c.Shards += max(d.Shards, 0)
	c.Redeems += max(d.Redeems, 0)
	c.Events += max(d.Events, 0)
}

// IsZero reports whether no reward was recorded.
func (c Counters) IsZero() bool {
	return c == Counters{}
}

// Lines renders the counters for the end-of-cycle report.
func (c Counters) Lines() []string {
	return []string{
		fmt.Sprintf("Pokecoins: %s", humanize.Comma(c.Coins)),
		fmt.Sprintf("Shards: %s", humanize.Comma(c.Shards)),
		fmt.Sprintf("Redeems: %s", humanize.Comma(c.Redeems)),
		fmt.Sprintf("Events: %s", humanize.Comma(c.Events)),
	}
}

// Catalog is the list of event creature names to look for.
type Catalog []string

// Match returns the first catalog name contained in text.
func (cat Catalog) Match(text string) (string, bool) {
	for _, name := range cat {
		if name != "" && strings.Contains(text, name) {
			return name, true
		}
	}
	return "", false
}

// Parse extracts the rewards mentioned in a block of text. At most one event
// creature is counted per call. Text that does not match a pattern simply
// contributes nothing.
func Parse(text string, catalog Catalog) Counters {
	var d Counters
	text = parse.Normalize(text)

	if _, ok := catalog.Match(text); ok {
		d.Events++
	}

	if strings.Contains(text, parse.CurrencyShards) || strings.Contains(text, parse.CurrencyCoins) {
		if amount, currency, ok := parse.Amount(text); ok {
			switch currency {
			case parse.CurrencyShards:
				d.Shards += int64(amount)
			case parse.CurrencyCoins:
				d.Coins += int64(amount)
			}
		}
	}

	if amount, ok := parse.Redeem(text); ok {
		d.Redeems += int64(amount)
	}
	return d
}

// ParseLines applies Parse to every line of text and sums the results.
func ParseLines(text string, catalog Catalog) Counters {
	var total Counters
	for _, line := range strings.Split(text, "\n") {
		total.Add(Parse(line, catalog))
	}
	return total
}
