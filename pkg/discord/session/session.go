package session

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/small-frappuccino/cafefarm/pkg/errutil"
	"github.com/small-frappuccino/cafefarm/pkg/log"
)

// Error messages
const (
	ErrSessionCreationFailed   = "failed to create Discord session: %w"
	ErrSessionConnectionFailed = "failed to connect to Discord: %w"
)

// Intents are the gateway intents the farm needs to read the café channel.
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentMessageContent

var (
	newSession   = discordgo.New
	openSession  = func(s *discordgo.Session) error { return s.Open() }
	closeSession = func(s *discordgo.Session) error { return s.Close() }
)

// Authorization returns the header value for token, adding the Bot scheme
// when the token carries none.
func Authorization(token string) string {
	token = strings.TrimSpace(token)
	if strings.HasPrefix(token, "Bot ") || strings.HasPrefix(token, "Bearer ") {
		return token
	}
	return "Bot " + token
}

// NewDiscordSession creates and opens a gateway session.
func NewDiscordSession(token string) (*discordgo.Session, error) {
	if strings.TrimSpace(token) == "" {
		log.ErrorLoggerRaw().Error("Discord token is empty. Please set the token before starting the farm.")
		return nil, fmt.Errorf("discord token is empty")
	}

	log.DiscordLogger().Info("Creating Discord session")

	var s *discordgo.Session
	if err := errutil.HandleDiscordError("create_session", func() error {
		var sessionErr error
		s, sessionErr = newSession(Authorization(token))
		return sessionErr
	}); err != nil {
		return nil, fmt.Errorf(ErrSessionCreationFailed, err)
	}

	s.Identify.Intents = Intents

	log.DiscordLogger().Info("Connecting to Discord...")
	if err := errutil.HandleDiscordError("connect", func() error {
		return openSession(s)
	}); err != nil {
		if closeErr := closeSession(s); closeErr != nil {
			log.DiscordLogger().Warn("Failed to close session after connect error", "err", closeErr)
		}
		return nil, fmt.Errorf(ErrSessionConnectionFailed, err)
	}

	log.DiscordLogger().Info("Connected to Discord successfully")
	return s, nil
}
