package app

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/bwmarrin/discordgo"
	"github.com/small-frappuccino/cafefarm/pkg/errutil"
)

// MessageFetcher is the subset of *discordgo.Session used by DumpEmbed.
type MessageFetcher interface {
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DumpEmbed fetches one message and writes its first embed as indented JSON.
// It is used to capture the café bot's raw output when a pattern breaks.
func DumpEmbed(f MessageFetcher, channelID, messageID string, w io.Writer) error {
	var msg *discordgo.Message
	if err := errutil.HandleDiscordError("fetch_debug_message", func() error {
		var err error
		msg, err = f.ChannelMessage(channelID, messageID)
		return err
	}); err != nil {
		return fmt.Errorf("fetch message %s: %w", messageID, err)
	}
	if len(msg.Embeds) == 0 || msg.Embeds[0] == nil {
		return fmt.Errorf("message %s has no embed", messageID)
	}
	raw, err := json.MarshalIndent(msg.Embeds[0], "", "  ")
	if err != nil {
		return fmt.Errorf("encode embed: %w", err)
	}
	_, err = fmt.Fprintln(w, string(raw))
	return err
}
