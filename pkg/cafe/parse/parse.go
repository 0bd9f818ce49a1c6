// Package parse holds the text patterns used to scrape the café bot's messages.
//
// The café bot has no documented output format; everything here was derived
// from observed messages. Each pattern exposes named capture groups and is
// covered by its own tests so a silent format change on the remote side shows
// up as a failing test rather than as counters that stop moving.
//
// Bump ProtocolVersion whenever a pattern or marker changes.
package parse

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ProtocolVersion identifies the revision of the scraping contract below.
const ProtocolVersion = 3

// Markers used by the classifier. Titles are matched after Normalize.
const (
	OrderGreetingTitle   = "Welcome to Poké2Café!"
	OrderCompletedText   = "You've completed the order"
	DonationReceiptTitle = "You donate your ingredients"
	InventoryTitle       = "Poké2Café Ingredients Inventory"
	ConfirmDonationText  = "Are you sure you want to donate"
	RedeemMarker         = "Redeem"
)

// Currency names as printed after the reward icon.
const (
	CurrencyCoins  = "Pokécoins"
	CurrencyShards = "Shards"
)

var (
	// `Applin`   `12`
	inventoryPattern = regexp.MustCompile("`(?P<ingredient>[^`]+)`\\s+`(?P<quantity>[^`]+)`")

	// Applin x3, Sweet Apple x 12
	recipeLabelPattern = regexp.MustCompile(`^\s*(?P<ingredient>.+?)\s*x\s*(?P<quantity>[\d,]+)\s*$`)

	// <:pokecoin:123456> 1,250 Pokécoins
	amountPattern = regexp.MustCompile(`<a?:\w+:\d+>\s*(?P<amount>[\d,]+)\s*(?P<currency>[\p{L}\p{N}_]+)`)

	// 2 Redeems
	redeemPattern = regexp.MustCompile(`(?P<amount>[\d,]+)\s+(?P<word>[\p{L}\p{N}_]+)`)

	// You've completed the order for Apple Pie.
	dishPattern = regexp.MustCompile(`You've completed the order for (?P<dish>.+)\.`)
)

var apostrophes = strings.NewReplacer("’", "'", "‘", "'")

// Normalize folds text into the form the patterns expect: NFC composed
// characters and straight apostrophes.
func Normalize(s string) string {
	return apostrophes.Replace(norm.NFC.String(s))
}

// Inventory extracts ingredient/quantity pairs from an inventory embed field.
// Pairs whose quantity does not parse are skipped. Zero quantities are kept
// since an empty ingredient blocks bulk donation.
func Inventory(text string) map[string]int {
	out := make(map[string]int)
	text = Normalize(text)
	ingIdx := inventoryPattern.SubexpIndex("ingredient")
	qtyIdx := inventoryPattern.SubexpIndex("quantity")
	for _, m := range inventoryPattern.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[ingIdx])
		qty, ok := Number(m[qtyIdx])
		if name == "" || !ok || qty < 0 {
			continue
		}
		out[name] = qty
	}
	return out
}

// RecipeLabel splits a select option label of the form "<ingredient> x <quantity>".
func RecipeLabel(label string) (ingredient string, quantity int, ok bool) {
	m := recipeLabelPattern.FindStringSubmatch(Normalize(label))
	if m == nil {
		return "", 0, false
	}
	ingredient = strings.TrimSpace(m[recipeLabelPattern.SubexpIndex("ingredient")])
	quantity, ok = Number(m[recipeLabelPattern.SubexpIndex("quantity")])
	if ingredient == "" || !ok {
		return "", 0, false
	}
	return ingredient, quantity, true
}

// Amount finds the first "<icon> amount Currency" group in text.
func Amount(text string) (amount int, currency string, ok bool) {
	m := amountPattern.FindStringSubmatch(Normalize(text))
	if m == nil {
		return 0, "", false
	}
	amount, ok = Number(m[amountPattern.SubexpIndex("amount")])
	if !ok {
		return 0, "", false
	}
	return amount, m[amountPattern.SubexpIndex("currency")], true
}

// Redeem returns the first "amount word" group when text mentions redeems.
func Redeem(text string) (int, bool) {
	text = Normalize(text)
	if !strings.Contains(text, RedeemMarker) {
		return 0, false
	}
	m := redeemPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	return Number(m[redeemPattern.SubexpIndex("amount")])
}

// DishName returns the dish named in an order-completed message.
func DishName(content string) (string, bool) {
	m := dishPattern.FindStringSubmatch(Normalize(content))
	if m == nil {
		return "", false
	}
	return m[dishPattern.SubexpIndex("dish")], true
}

// Number parses an integer that may carry thousands separators.
func Number(s string) (int, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
