package farm

import (
	"log/slog"
	"time"

	"github.com/small-frappuccino/cafefarm/pkg/cafe/classify"
	"github.com/small-frappuccino/cafefarm/pkg/cafe/inventory"
	"github.com/small-frappuccino/cafefarm/pkg/cafe/message"
	"github.com/small-frappuccino/cafefarm/pkg/cafe/parse"
	"github.com/small-frappuccino/cafefarm/pkg/cafe/recipe"
	"github.com/small-frappuccino/cafefarm/pkg/cafe/rewards"
	"github.com/small-frappuccino/cafefarm/pkg/discord/dispatch"
	"github.com/small-frappuccino/cafefarm/pkg/discord/interaction"
	"github.com/small-frappuccino/cafefarm/pkg/storage"
)

// Ledger kinds.
const (
	RecordOrder    = storage.KindOrder
	RecordDonation = storage.KindDonation
)

// StopMessage is logged when no more orders can be filled.
const StopMessage = "Finished all Recipes/Ran out of materials for the current order..."

// Handlers turns classified messages into outcomes. Handlers never touch
// the network or the state directly.
type Handlers struct {
	Commands dispatch.Commands
	// ApplicationID is sent with every interaction. The message author is
	// used when empty.
	ApplicationID string
	// Delay separates an order submission from the next order request.
	Delay   time.Duration
	Catalog rewards.Catalog

	DonationBatch    int
	DonationCooldown time.Duration
}

// Handle dispatches m to the handler for kind.
func (h Handlers) Handle(kind classify.Kind, st State, m message.Message) Outcome {
	switch kind {
	case classify.OrderOffer:
		return h.OrderOffer(st, m)
	case classify.OrderCompleted:
		return h.OrderCompleted(st, m)
	case classify.DonationReceipt:
		return h.DonationReceipt(st, m)
	case classify.InventoryReport:
		return h.InventoryReport(st, m)
	case classify.DonationConfirm:
		return h.DonationConfirm(st, m)
	}
	return Outcome{}
}

func (h Handlers) request(m message.Message, c message.Component, value string) interaction.Request {
	app := h.ApplicationID
	if app == "" {
		app = m.AuthorID
	}
	return interaction.Request{
		MessageID:     m.ID,
		ChannelID:     m.ChannelID,
		GuildID:       m.GuildID,
		ApplicationID: app,
		CustomID:      c.CustomID,
		Type:          c.Type,
		Value:         value,
	}
}

// OrderOffer picks an ingredient for the offered order and submits it, or
// stops the cycle with a report when nothing can be made.
func (h Handlers) OrderOffer(st State, m message.Message) Outcome {
	menu, ok := m.FirstComponent()
	if !ok || menu.Type != message.ComponentSelectMenu || len(menu.Options) <= 1 {
		return stop()
	}
	sel := recipe.Select(menu.Options, st.Inventory)
	if !sel.Found() {
		return stop()
	}
	return Outcome{Steps: []Step{
		Note(slog.LevelInfo, "Selected ingredient",
			"ingredient", sel.Ingredient, "quantity", sel.Quantity, "option", sel.Index),
		Click(h.request(m, menu, sel.Value)),
		Command(h.Commands.Use(sel.Ingredient)),
		Wait(h.Delay),
		Note(slog.LevelInfo, "Starting another round..."),
		Command(h.Commands.NextOrder()),
	}}
}

func stop() Outcome {
	return Outcome{Steps: []Step{Note(slog.LevelInfo, StopMessage), Report()}}
}

// OrderCompleted counts the rewards of a finished order.
func (h Handlers) OrderCompleted(_ State, m message.Message) Outcome {
	dish, _ := parse.DishName(m.Content)
	var got rewards.Counters
	if m.Embed != nil {
		got = rewards.Parse(m.Embed.Description, h.Catalog)
	}
	return Outcome{
		Rewards: got,
		Steps: []Step{Note(slog.LevelInfo, "Successfully completed order",
			"dish", dish, "coins", got.Coins, "shards", got.Shards, "redeems", got.Redeems, "events", got.Events)},
		Record: &storage.RewardRecord{Kind: RecordOrder, MessageID: m.ID, Dish: dish, Rewards: got},
	}
}

// DonationReceipt counts the rewards listed line by line in a donation
// receipt.
func (h Handlers) DonationReceipt(_ State, m message.Message) Outcome {
	var got rewards.Counters
	if m.Embed != nil {
		got = rewards.ParseLines(m.Embed.Description, h.Catalog)
	}
	return Outcome{
		Rewards: got,
		Steps: []Step{Note(slog.LevelInfo, "Donation rewards received",
			"coins", got.Coins, "shards", got.Shards, "redeems", got.Redeems, "events", got.Events)},
		Record: &storage.RewardRecord{Kind: RecordDonation, MessageID: m.ID, Rewards: got},
	}
}

// InventoryReport replaces the inventory, donates the amount every
// ingredient can spare, and asks for the next order.
func (h Handlers) InventoryReport(_ State, m message.Message) Outcome {
	text, ok := m.FirstField()
	if !ok && m.Embed != nil {
		text = m.Embed.Description
	}
	inv := inventory.ReplaceFrom(text)
	spare := inventory.Spare(parse.Inventory(text))
	if spare <= 0 {
		return Outcome{
			Inventory: inv,
			Steps: []Step{
				Note(slog.LevelWarn, "Ingredients are over. Proceeding to recipes...",
					"ingredients", inv.Len(), "min_stocked", inv.MinAvailable()),
				Command(h.Commands.NextOrder()),
			},
		}
	}

	steps := []Step{Note(slog.LevelInfo, "Donating spare ingredients", "amount", spare, "ingredients", inv.Len())}
	steps = append(steps, DonationPlan(spare, h.DonationBatch, h.DonationCooldown, h.Commands.Donate)...)
	steps = append(steps, Command(h.Commands.NextOrder()))
	return Outcome{Inventory: inv.SubtractUniform(spare), Steps: steps}
}

// DonationConfirm presses the confirmation button.
func (h Handlers) DonationConfirm(_ State, m message.Message) Outcome {
	button, ok := m.FirstComponent()
	if !ok {
		return Outcome{Steps: []Step{Note(slog.LevelWarn, "Donation prompt without a button", "message_id", m.ID)}}
	}
	return Outcome{Steps: []Step{Click(h.request(m, button, ""))}}
}
