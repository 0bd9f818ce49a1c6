package farm

import (
	"log/slog"
	"time"

	"github.com/small-frappuccino/cafefarm/pkg/cafe/inventory"
	"github.com/small-frappuccino/cafefarm/pkg/cafe/rewards"
	"github.com/small-frappuccino/cafefarm/pkg/discord/dispatch"
	"github.com/small-frappuccino/cafefarm/pkg/discord/interaction"
	"github.com/small-frappuccino/cafefarm/pkg/storage"
)

// State is everything the farm remembers between messages. It is owned by
// the loop goroutine.
type State struct {
	Inventory *inventory.Inventory
	Counters  rewards.Counters
}

// StepKind identifies what a Step does.
type StepKind int

const (
	StepCommand StepKind = iota
	StepClick
	StepWait
	StepLog
	StepReport
)

func (k StepKind) String() string {
	switch k {
	case StepCommand:
		return "command"
	case StepClick:
		return "click"
	case StepWait:
		return "wait"
	case StepLog:
		return "log"
	case StepReport:
		return "report"
	default:
		return "unknown"
	}
}

// Step is one side effect planned by a handler.
type Step struct {
	Kind StepKind

	Command string
	Click   interaction.Request
	Wait    time.Duration

	Level   slog.Level
	Message string
	Attrs   []any
}

// Command posts a text command.
func Command(text string) Step { return Step{Kind: StepCommand, Command: text} }

// Click emulates a component interaction.
func Click(req interaction.Request) Step { return Step{Kind: StepClick, Click: req} }

// Wait pauses the rest of the plan. Other messages are handled meanwhile.
func Wait(d time.Duration) Step { return Step{Kind: StepWait, Wait: d} }

// Note logs msg at level when the step runs.
func Note(level slog.Level, msg string, attrs ...any) Step {
	return Step{Kind: StepLog, Level: level, Message: msg, Attrs: attrs}
}

// Report logs the session counters as they are when the step runs.
func Report() Step { return Step{Kind: StepReport} }

// Outcome is what a handler returns: a state delta and a plan.
type Outcome struct {
	// Inventory replaces the current inventory when non-nil.
	Inventory *inventory.Inventory
	// Rewards is added to the session counters.
	Rewards rewards.Counters
	Steps   []Step
	// Record is appended to the reward ledger. RunID and RecordedAt are
	// filled in by the farm.
	Record *storage.RewardRecord
}

// DonationPlan splits total into donate commands of at most batch, each
// followed by cooldown. batch is capped at dispatch.MaxDonation.
func DonationPlan(total, batch int, cooldown time.Duration, donate func(int) string) []Step {
	if total <= 0 || batch <= 0 {
		return nil
	}
	batch = min(batch, dispatch.MaxDonation)
	steps := make([]Step, 0, 3*((total+batch-1)/batch))
	for remaining := total; remaining > 0; {
		n := min(remaining, batch)
		steps = append(steps,
			Command(donate(n)),
			Note(slog.LevelWarn, "Sleeping after donation", "amount", n, "cooldown", cooldown),
			Wait(cooldown))
		remaining -= n
	}
	return steps
}
