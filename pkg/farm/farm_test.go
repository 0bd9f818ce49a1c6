package farm

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/small-frappuccino/cafefarm/pkg/cafe/classify"
	"github.com/small-frappuccino/cafefarm/pkg/cafe/message"
	"github.com/small-frappuccino/cafefarm/pkg/cafe/parse"
	"github.com/small-frappuccino/cafefarm/pkg/discord/interaction"
	"github.com/small-frappuccino/cafefarm/pkg/storage"
)

type fakeCommander struct{ sent chan string }

func (f *fakeCommander) Send(_ context.Context, command string) error {
	f.sent <- command
	return nil
}

type fakeClicker struct{ clicks chan interaction.Request }

func (f *fakeClicker) Click(_ context.Context, req interaction.Request) int {
	f.clicks <- req
	return http.StatusNoContent
}

type fakeLedger struct{ rows chan storage.RewardRecord }

func (f *fakeLedger) RecordReward(_ context.Context, r storage.RewardRecord) error {
	f.rows <- r
	return nil
}

type harness struct {
	farm    *Farm
	cmd     *fakeCommander
	click   *fakeClicker
	ledger  *fakeLedger
	pending chan func()
	cancel  context.CancelFunc
	result  chan State
}

func newHarness(t *testing.T, kickoff bool) *harness {
	t.Helper()
	h := &harness{
		cmd:     &fakeCommander{sent: make(chan string, 64)},
		click:   &fakeClicker{clicks: make(chan interaction.Request, 16)},
		ledger:  &fakeLedger{rows: make(chan storage.RewardRecord, 16)},
		pending: make(chan func(), 16),
		result:  make(chan State, 1),
	}
	h.farm = New(Options{
		Handlers:  testHandlers(),
		Filter:    classify.Filter{BotID: testBot, ChannelID: testChannel},
		Commander: h.cmd,
		Clicker:   h.click,
		Ledger:    h.ledger,
		RunID:     "run-1",
		Kickoff:   kickoff,
	})
	// Waits fire only when the test releases them.
	h.farm.after = func(_ time.Duration, fn func()) { h.pending <- fn }

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.result <- h.farm.Run(ctx) }()
	t.Cleanup(h.stop)
	return h
}

func (h *harness) stop() {
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

func (h *harness) finish(t *testing.T) State {
	t.Helper()
	h.stop()
	select {
	case st := <-h.result:
		return st
	case <-time.After(2 * time.Second):
		t.Fatalf("farm did not stop")
	}
	return State{}
}

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting")
	}
	var zero T
	return zero
}

func expectCommand(t *testing.T, h *harness, want string) {
	t.Helper()
	if got := recv(t, h.cmd.sent); got != want {
		t.Fatalf("command = %q, want %q", got, want)
	}
}

func TestRunKickoffSendsInventoryQuery(t *testing.T) {
	h := newHarness(t, true)
	expectCommand(t, h, testHandlers().Commands.Inventory())
}

func TestDonationBatchesAcrossCooldowns(t *testing.T) {
	h := newHarness(t, false)
	cmds := testHandlers().Commands

	h.farm.Submit(inventoryReport("`Applin` `20`\n`Berry` `26`"))
	expectCommand(t, h, cmds.Donate(15))
	recv(t, h.pending)()
	expectCommand(t, h, cmds.Donate(5))
	recv(t, h.pending)()
	expectCommand(t, h, cmds.NextOrder())

	st := h.finish(t)
	if st.Inventory.Len() != 1 || st.Inventory.Quantity("Berry") != 6 {
		t.Fatalf("unexpected inventory %v", st.Inventory.Snapshot())
	}
}

func TestConfirmationHandledDuringCooldown(t *testing.T) {
	h := newHarness(t, false)
	cmds := testHandlers().Commands

	h.farm.Submit(inventoryReport("`Applin` `30`"))
	expectCommand(t, h, cmds.Donate(15))
	release := recv(t, h.pending)

	h.farm.Submit(message.Message{
		ID: "confirm-1", ChannelID: testChannel, AuthorID: testBot,
		Content: "Are you sure you want to donate 15 of every ingredient?",
		Rows:    [][]message.Component{{{Type: message.ComponentButton, CustomID: "yes"}}},
	})
	if req := recv(t, h.click.clicks); req.CustomID != "yes" || req.MessageID != "confirm-1" {
		t.Fatalf("unexpected click %+v", req)
	}

	release()
	expectCommand(t, h, cmds.Donate(15))
	recv(t, h.pending)()
	expectCommand(t, h, cmds.NextOrder())
}

func TestForeignMessagesIgnored(t *testing.T) {
	h := newHarness(t, false)
	offer := orderOffer("Applin x1", "Berry x1")

	fromUser := offer
	fromUser.AuthorID = "someone-else"
	otherChannel := offer
	otherChannel.ChannelID = "999"
	h.farm.Submit(fromUser)
	h.farm.Submit(otherChannel)

	// Processed in order, so this command proves the two above were dropped.
	h.farm.Submit(inventoryReport("`Applin` `0`"))
	expectCommand(t, h, testHandlers().Commands.NextOrder())

	select {
	case req := <-h.click.clicks:
		t.Fatalf("unexpected click %+v", req)
	default:
	}
}

func TestOrderCycleAndRewardLedger(t *testing.T) {
	h := newHarness(t, false)
	cmds := testHandlers().Commands

	h.farm.Submit(inventoryReport("`Applin` `0`\n`Berry` `3`\n`Honey` `5`"))
	expectCommand(t, h, cmds.NextOrder())

	h.farm.Submit(orderOffer("Berry x2", "Honey x4"))
	if req := recv(t, h.click.clicks); req.Value != "val-Honey x4" {
		t.Fatalf("unexpected selection %+v", req)
	}
	expectCommand(t, h, cmds.Use("Honey"))
	recv(t, h.pending)()
	expectCommand(t, h, cmds.NextOrder())

	h.farm.Submit(message.Message{
		ID: "done-1", ChannelID: testChannel, AuthorID: testBot,
		Content: "You've completed the order for Honey Cake.",
		Embed:   &message.Embed{Description: "<:pokecoin:1> 500 Pokécoins"},
	})
	row := recv(t, h.ledger.rows)
	if row.RunID != "run-1" || row.Dish != "Honey Cake" || row.Rewards.Coins != 500 || row.RecordedAt.IsZero() {
		t.Fatalf("unexpected ledger row %+v", row)
	}

	h.farm.Submit(message.Message{
		ID: "don-1", ChannelID: testChannel, AuthorID: testBot,
		Embed: &message.Embed{Title: "You donate your ingredients", Description: "<:shard:2> 4 Shards\nGot a Tangela"},
	})
	recv(t, h.ledger.rows)

	snap := h.farm.Snapshot()
	if snap.RunID != "run-1" || snap.Handled != 4 || snap.Counters.Shards != 4 || snap.Inventory["Honey"] != 5 ||
		snap.Parser != parse.ProtocolVersion {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	st := h.finish(t)
	if st.Counters.Coins != 500 || st.Counters.Shards != 4 || st.Counters.Events != 1 {
		t.Fatalf("unexpected counters %+v", st.Counters)
	}
}

func TestSubmitAfterStop(t *testing.T) {
	h := newHarness(t, false)
	h.finish(t)
	if h.farm.Submit(inventoryReport("`Applin` `1`")) {
		t.Fatalf("submit accepted after the loop stopped")
	}
}
