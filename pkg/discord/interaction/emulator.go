// Package interaction submits component interactions (button presses and menu
// selections) on behalf of the logged-in account.
package interaction

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/small-frappuccino/cafefarm/pkg/cafe/message"
	"github.com/small-frappuccino/cafefarm/pkg/errors"
	"github.com/small-frappuccino/cafefarm/pkg/log"
)

// StatusFailed is returned by Click when the request never got a response.
const StatusFailed = -1

// DefaultBaseURL is the interaction API root.
var DefaultBaseURL = discordgo.EndpointDiscord + "api/v10/"

const sessionAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// SessionIDLength is the length of generated interaction session ids.
const SessionIDLength = 16

// NewSessionID returns a fresh random alphanumeric interaction session id.
func NewSessionID() string {
	var b strings.Builder
	b.Grow(SessionIDLength)
	for i := 0; i < SessionIDLength; i++ {
		b.WriteByte(sessionAlphabet[rand.Intn(len(sessionAlphabet))])
	}
	return b.String()
}

// Succeeded reports whether status is one Discord returns for an accepted
// interaction.
func Succeeded(status int) bool {
	switch status {
	case http.StatusOK, http.StatusAccepted, http.StatusNoContent:
		return true
	}
	return false
}

// Request describes one emulated click.
type Request struct {
	MessageID     string
	ChannelID     string
	GuildID       string
	ApplicationID string
	CustomID      string
	Type          message.ComponentType
	Value         string
	// SessionID is generated by Click when empty.
	SessionID string
}

// Emulator posts interaction callbacks over HTTP.
type Emulator struct {
	client        *http.Client
	authorization string
	userAgent     string
	baseURL       string
}

// New builds an Emulator that reuses the session's HTTP client and credentials.
func New(s *discordgo.Session) *Emulator {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	return &Emulator{
		client:        client,
		authorization: s.Token,
		userAgent:     s.UserAgent,
		baseURL:       DefaultBaseURL,
	}
}

// NewWithClient builds an Emulator against an arbitrary base URL. The
// authorization value is sent verbatim, e.g. "Bot <token>".
func NewWithClient(client *http.Client, authorization, baseURL string) *Emulator {
	if client == nil {
		client = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Emulator{client: client, authorization: authorization, baseURL: baseURL}
}

// Endpoint returns the callback URL for a message component.
func (e *Emulator) Endpoint(messageID, customID string) string {
	return e.baseURL + "interactions/" + url.PathEscape(messageID) + "/" + url.PathEscape(customID) + "/callback"
}

// Click submits req and returns the HTTP status, or StatusFailed when the
// request could not be made. Failures are logged, never retried.
func (e *Emulator) Click(ctx context.Context, req Request) int {
	if req.SessionID == "" {
		req.SessionID = NewSessionID()
	}
	status, err := e.post(ctx, req)
	if err != nil {
		errors.Handle(errors.New(errors.CategoryNetwork, "interaction", "click", "interaction request failed", err).
			With("message_id", req.MessageID).
			With("custom_id", req.CustomID))
		return StatusFailed
	}
	if !Succeeded(status) {
		log.DiscordLogger().Warn("Interaction rejected",
			"status", status, "message_id", req.MessageID, "custom_id", req.CustomID)
	}
	return status
}

func (e *Emulator) post(ctx context.Context, req Request) (int, error) {
	form := url.Values{}
	form.Set("custom_id", req.CustomID)
	form.Set("component_type", strconv.Itoa(int(req.Type)))
	form.Set("guild_id", req.GuildID)
	form.Set("application_id", req.ApplicationID)
	form.Set("channel_id", req.ChannelID)
	form.Set("message_id", req.MessageID)
	form.Set("session_id", req.SessionID)
	form.Set("value", req.Value)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.Endpoint(req.MessageID, req.CustomID), strings.NewReader(form.Encode()))
	if err != nil {
		return 0, fmt.Errorf("build interaction request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Authorization", e.authorization)
	if e.userAgent != "" {
		httpReq.Header.Set("User-Agent", e.userAgent)
	}

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}
