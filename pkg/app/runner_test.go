package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestFormatStartupMessage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		appName    string
		appVersion string
		want       string
	}{
		{
			name:    "no version",
			appName: "cafefarm",
			want:    "🚀 Starting cafefarm...",
		},
		{
			name:       "dev build omits version",
			appName:    "cafefarm",
			appVersion: "dev",
			want:       "🚀 Starting cafefarm...",
		},
		{
			name:       "tagged build",
			appName:    "cafefarm",
			appVersion: "v0.3.0",
			want:       "🚀 Starting cafefarm v0.3.0...",
		},
		{
			name:       "trims spaces",
			appName:    " cafefarm ",
			appVersion: " v0.3.0 ",
			want:       "🚀 Starting cafefarm v0.3.0...",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := formatStartupMessage(tc.appName, tc.appVersion)
			if got != tc.want {
				t.Fatalf("formatStartupMessage() mismatch\nwant: %q\ngot:  %q", tc.want, got)
			}
		})
	}
}

type fakeFetcher struct {
	msg     *discordgo.Message
	err     error
	channel string
	id      string
}

func (f *fakeFetcher) ChannelMessage(channelID, messageID string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.channel, f.id = channelID, messageID
	return f.msg, f.err
}

func TestDumpEmbed(t *testing.T) {
	f := &fakeFetcher{msg: &discordgo.Message{Embeds: []*discordgo.MessageEmbed{{
		Title:       "Poké2Café Ingredients Inventory",
		Description: "page 1",
	}}}}
	var buf bytes.Buffer
	if err := DumpEmbed(f, "chan", "12354", &buf); err != nil {
		t.Fatalf("dump: %v", err)
	}
	if f.channel != "chan" || f.id != "12354" {
		t.Fatalf("fetched %s/%s", f.channel, f.id)
	}
	var got discordgo.MessageEmbed
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not json: %v\n%s", err, buf.String())
	}
	if got.Title != "Poké2Café Ingredients Inventory" {
		t.Fatalf("unexpected title %q", got.Title)
	}
}

func TestDumpEmbedErrors(t *testing.T) {
	var buf bytes.Buffer
	if err := DumpEmbed(&fakeFetcher{err: errors.New("missing access")}, "c", "m", &buf); err == nil {
		t.Fatalf("expected fetch error")
	}
	err := DumpEmbed(&fakeFetcher{msg: &discordgo.Message{}}, "c", "m", &buf)
	if err == nil || !strings.Contains(err.Error(), "no embed") {
		t.Fatalf("expected no embed error, got %v", err)
	}
}
