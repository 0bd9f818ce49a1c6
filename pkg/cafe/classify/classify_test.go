package classify

import (
	"testing"

	"github.com/small-frappuccino/cafefarm/pkg/cafe/message"
)

var filter = Filter{BotID: "bot", ChannelID: "chan"}

func msg(content, title string) message.Message {
	m := message.Message{AuthorID: "bot", ChannelID: "chan", Content: content}
	if title != "" {
		m.Embed = &message.Embed{Title: title}
	}
	return m
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		m    message.Message
		want Kind
	}{
		{"order greeting", msg("", "Welcome to Poké2Café!"), OrderOffer},
		{"greeting must match exactly", msg("", "Welcome to Poké2Café! (closed)"), Ignored},
		{"order completed", msg("You've completed the order for Apple Pie.", ""), OrderCompleted},
		{"donation receipt", msg("", "You donate your ingredients to the café"), DonationReceipt},
		{"inventory", msg("", "Ash's Poké2Café Ingredients Inventory"), InventoryReport},
		{"confirm donation", msg("Are you sure you want to donate 15?", ""), DonationConfirm},
		{"unrelated", msg("hello", "Something else"), Ignored},
		{"greeting beats completion text", msg("You've completed the order for Tea.", "Welcome to Poké2Café!"), OrderOffer},
		{"completion beats inventory", msg("You've completed the order for Tea.", "Poké2Café Ingredients Inventory"), OrderCompleted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.m, filter); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestClassifyIgnoresOtherSenders(t *testing.T) {
	m := msg("", "Welcome to Poké2Café!")
	m.AuthorID = "someone"
	if got := Classify(m, filter); got != Ignored {
		t.Fatalf("expected Ignored for foreign sender, got %v", got)
	}

	m = msg("Are you sure you want to donate", "")
	m.ChannelID = "elsewhere"
	if got := Classify(m, filter); got != Ignored {
		t.Fatalf("expected Ignored for foreign channel, got %v", got)
	}
}

func TestKindString(t *testing.T) {
	if OrderOffer.String() != "order_offer" || Kind(99).String() != "ignored" {
		t.Fatalf("unexpected kind names")
	}
}
