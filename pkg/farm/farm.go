// Package farm runs the café decision loop. A single goroutine drains inbound
// messages and delayed continuations in order, so handlers never overlap and
// the session state needs no locking.
package farm

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/small-frappuccino/cafefarm/pkg/cafe/classify"
	"github.com/small-frappuccino/cafefarm/pkg/cafe/inventory"
	"github.com/small-frappuccino/cafefarm/pkg/cafe/message"
	"github.com/small-frappuccino/cafefarm/pkg/cafe/parse"
	"github.com/small-frappuccino/cafefarm/pkg/cafe/rewards"
	"github.com/small-frappuccino/cafefarm/pkg/discord/interaction"
	"github.com/small-frappuccino/cafefarm/pkg/discord/perf"
	"github.com/small-frappuccino/cafefarm/pkg/errors"
	"github.com/small-frappuccino/cafefarm/pkg/log"
	"github.com/small-frappuccino/cafefarm/pkg/storage"
)

// DefaultQueueSize bounds messages waiting for the loop.
const DefaultQueueSize = 64

// Commander posts text commands.
type Commander interface {
	Send(ctx context.Context, command string) error
}

// Clicker emulates component interactions and returns the HTTP status.
type Clicker interface {
	Click(ctx context.Context, req interaction.Request) int
}

// Ledger persists reward rows.
type Ledger interface {
	RecordReward(ctx context.Context, r storage.RewardRecord) error
}

// Options configures a Farm.
type Options struct {
	Handlers  Handlers
	Filter    classify.Filter
	Commander Commander
	Clicker   Clicker
	// Ledger is optional.
	Ledger Ledger
	RunID  string
	// Kickoff sends the inventory query when Run starts.
	Kickoff   bool
	QueueSize int
}

// Snapshot is a copy of the state published after every handled message.
type Snapshot struct {
	RunID     string           `json:"run_id"`
	Counters  rewards.Counters `json:"counters"`
	Inventory map[string]int   `json:"inventory"`
	Handled   int64            `json:"handled"`
	Parser    int              `json:"parser_version"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type item struct {
	msg   *message.Message
	steps []Step
}

// Farm owns the session state and the loop that mutates it.
type Farm struct {
	opts   Options
	state  State
	queue  chan item
	done   chan struct{}
	logger *slog.Logger

	handled  int64
	snapshot atomic.Pointer[Snapshot]

	// after schedules fn once d has elapsed.
	after func(d time.Duration, fn func())
	now   func() time.Time
}

// New builds a Farm. Call Run to start processing.
func New(opts Options) *Farm {
	size := opts.QueueSize
	if size <= 0 {
		size = DefaultQueueSize
	}
	logger := log.FarmLogger()
	if opts.RunID != "" {
		logger = logger.With("run_id", opts.RunID)
	}
	return &Farm{
		opts:   opts,
		state:  State{Inventory: inventory.New()},
		queue:  make(chan item, size),
		done:   make(chan struct{}),
		logger: logger,
		after:  func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
		now:    time.Now,
	}
}

// Submit queues m for the loop. It returns false once the loop has stopped.
func (f *Farm) Submit(m message.Message) bool {
	return f.enqueue(item{msg: &m})
}

func (f *Farm) enqueue(it item) bool {
	select {
	case <-f.done:
		return false
	default:
	}
	select {
	case f.queue <- it:
		return true
	case <-f.done:
		return false
	}
}

// Run processes queued work until ctx is cancelled and returns the final
// state. Pending continuations are dropped.
func (f *Farm) Run(ctx context.Context) State {
	defer close(f.done)

	f.logger.Info("Farm loop started", "channel_id", f.opts.Filter.ChannelID)
	if f.opts.Kickoff {
		f.execute(ctx, []Step{Command(f.opts.Handlers.Commands.Inventory())})
	}

	for {
		select {
		case <-ctx.Done():
			f.logger.Info("Farm loop stopped", "reason", context.Cause(ctx))
			return f.state
		case it := <-f.queue:
			if it.msg != nil {
				f.process(ctx, *it.msg)
			} else {
				f.execute(ctx, it.steps)
			}
		}
	}
}

func (f *Farm) process(ctx context.Context, m message.Message) {
	kind := classify.Classify(m, f.opts.Filter)
	if kind == classify.Ignored {
		f.logger.Debug("Ignoring message", "message_id", m.ID, "author_id", m.AuthorID, "channel_id", m.ChannelID)
		return
	}

	finish := perf.StartHandler(kind.String(), slog.String("message_id", m.ID))
	out := f.opts.Handlers.Handle(kind, f.state, m)
	finish()

	f.logger.Debug("Handled message", "kind", kind.String(), "message_id", m.ID, "steps", len(out.Steps))
	f.apply(out)
	f.handled++
	f.publish()
	f.record(ctx, out.Record)
	f.execute(ctx, out.Steps)
}

func (f *Farm) publish() {
	f.snapshot.Store(&Snapshot{
		RunID:     f.opts.RunID,
		Counters:  f.state.Counters,
		Inventory: f.state.Inventory.Snapshot(),
		Handled:   f.handled,
		Parser:    parse.ProtocolVersion,
		UpdatedAt: f.now(),
	})
}

// Snapshot returns the state as of the last handled message. It is safe to
// call from any goroutine.
func (f *Farm) Snapshot() Snapshot {
	if s := f.snapshot.Load(); s != nil {
		return *s
	}
	return Snapshot{RunID: f.opts.RunID, Inventory: map[string]int{}, Parser: parse.ProtocolVersion}
}

func (f *Farm) apply(out Outcome) {
	if out.Inventory != nil {
		f.state.Inventory = out.Inventory
	}
	if out.Rewards.IsZero() {
		return
	}
	f.state.Counters.Add(out.Rewards)
	f.logger.Debug("Rewards collected", "coins", out.Rewards.Coins, "shards", out.Rewards.Shards,
		"redeems", out.Rewards.Redeems, "events", out.Rewards.Events)
}

func (f *Farm) record(ctx context.Context, r *storage.RewardRecord) {
	if r == nil || f.opts.Ledger == nil {
		return
	}
	rec := *r
	rec.RunID = f.opts.RunID
	rec.RecordedAt = f.now()
	if err := f.opts.Ledger.RecordReward(ctx, rec); err != nil {
		errors.Handle(errors.New(errors.CategoryStorage, "farm", "record_reward", "failed to record reward", err).
			With("kind", rec.Kind).
			With("message_id", rec.MessageID))
	}
}

// execute runs steps in order. A Wait hands the remainder back to the queue
// once it elapses.
func (f *Farm) execute(ctx context.Context, steps []Step) {
	for i, s := range steps {
		if ctx.Err() != nil {
			return
		}
		switch s.Kind {
		case StepCommand:
			if f.opts.Commander == nil {
				continue
			}
			// Failures are logged by the dispatcher; the plan continues.
			_ = f.opts.Commander.Send(ctx, s.Command)
		case StepClick:
			if f.opts.Clicker == nil {
				continue
			}
			status := f.opts.Clicker.Click(ctx, s.Click)
			f.logger.Info("Button request result", "status", status, "ok", interaction.Succeeded(status),
				"custom_id", s.Click.CustomID, "message_id", s.Click.MessageID)
		case StepWait:
			rest := steps[i+1:]
			if len(rest) == 0 {
				return
			}
			f.after(s.Wait, func() { f.enqueue(item{steps: rest}) })
			return
		case StepLog:
			f.logger.Log(ctx, s.Level, s.Message, s.Attrs...)
		case StepReport:
			f.report(ctx)
		}
	}
}

func (f *Farm) report(ctx context.Context) {
	for _, line := range f.state.Counters.Lines() {
		f.logger.Log(ctx, slog.LevelInfo, line)
	}
}
