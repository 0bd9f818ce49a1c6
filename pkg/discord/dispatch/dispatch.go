// Package dispatch sends text commands to the café bot's channel.
package dispatch

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/small-frappuccino/cafefarm/pkg/errors"
	"github.com/small-frappuccino/cafefarm/pkg/log"
)

// DefaultBotID is the café bot's user id.
const DefaultBotID = "716390085896962058"

// Prefix is the café bot's command group.
const Prefix = "ev"

// Commands formats café bot commands addressed by mention.
type Commands struct {
	BotID string
}

func (c Commands) build(args ...string) string {
	parts := append([]string{"<@" + c.BotID + ">", Prefix}, args...)
	return strings.Join(parts, " ")
}

// Inventory asks for the ingredient inventory.
func (c Commands) Inventory() string { return c.build("inv") }

// NextOrder advances the recipe cycle.
func (c Commands) NextOrder() string { return c.build() }

// Use reports the ingredient just submitted for the current order.
func (c Commands) Use(ingredient string) string { return c.build("use", ingredient) }

// MaxDonation is the most the café bot accepts in one donate command.
const MaxDonation = 15

// Donate donates n of every ingredient.
func (c Commands) Donate(n int) string { return c.build("donate", strconv.Itoa(n)) }

// Sender is the subset of *discordgo.Session used to post messages.
type Sender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Dispatcher posts commands into one channel.
type Dispatcher struct {
	sender    Sender
	channelID string
}

// New returns a Dispatcher for channelID.
func New(sender Sender, channelID string) *Dispatcher {
	return &Dispatcher{sender: sender, channelID: channelID}
}

// Send posts command to the channel.
func (d *Dispatcher) Send(ctx context.Context, command string) error {
	if d.sender == nil {
		return fmt.Errorf("dispatch: no sender configured")
	}
	log.DiscordLogger().Debug("Sending command", "channel_id", d.channelID, "command", command)
	if _, err := d.sender.ChannelMessageSend(d.channelID, command, discordgo.WithContext(ctx)); err != nil {
		if unknownChannel(err) {
			log.DiscordLogger().Error("Channel not found", "channel_id", d.channelID)
		}
		return errors.Handle(errors.Discord("dispatch", "send", err).
			With("channel_id", d.channelID).
			With("command", command))
	}
	return nil
}

func unknownChannel(err error) bool {
	var restErr *discordgo.RESTError
	return stderrors.As(err, &restErr) && restErr.Message != nil &&
		restErr.Message.Code == discordgo.ErrCodeUnknownChannel
}
