// Package classify routes inbound café bot messages to a single event kind.
package classify

import (
	"strings"

	"github.com/small-frappuccino/cafefarm/pkg/cafe/message"
	"github.com/small-frappuccino/cafefarm/pkg/cafe/parse"
)

// Kind is the event a message represents.
type Kind int

const (
	Ignored Kind = iota
	OrderOffer
	OrderCompleted
	DonationReceipt
	InventoryReport
	DonationConfirm
)

func (k Kind) String() string {
	switch k {
	case OrderOffer:
		return "order_offer"
	case OrderCompleted:
		return "order_completed"
	case DonationReceipt:
		return "donation_receipt"
	case InventoryReport:
		return "inventory_report"
	case DonationConfirm:
		return "donation_confirm"
	default:
		return "ignored"
	}
}

// Filter restricts classification to the café bot in one channel.
type Filter struct {
	BotID     string
	ChannelID string
}

// Accepts reports whether m was sent by the café bot in the farmed channel.
func (f Filter) Accepts(m message.Message) bool {
	return m.AuthorID != "" && m.AuthorID == f.BotID && m.ChannelID == f.ChannelID
}

// Classify returns the kind of m. Checks run in priority order and the first
// hit wins; messages from anyone else, or in another channel, are Ignored.
func Classify(m message.Message, f Filter) Kind {
	if !f.Accepts(m) {
		return Ignored
	}
	title := parse.Normalize(m.EmbedTitle())
	content := parse.Normalize(m.Content)

	switch {
	case m.Embed != nil && title == parse.OrderGreetingTitle:
		return OrderOffer
	case strings.Contains(content, parse.OrderCompletedText):
		return OrderCompleted
	case m.Embed != nil && strings.Contains(title, parse.DonationReceiptTitle):
		return DonationReceipt
	case m.Embed != nil && strings.Contains(title, parse.InventoryTitle):
		return InventoryReport
	case strings.Contains(content, parse.ConfirmDonationText):
		return DonationConfirm
	}
	return Ignored
}
