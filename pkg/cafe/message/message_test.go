package message

import (
	"encoding/json"
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestFromDiscord(t *testing.T) {
	dm := &discordgo.Message{
		ID:        "m1",
		ChannelID: "c1",
		GuildID:   "g1",
		Content:   "hello",
		Author:    &discordgo.User{ID: "bot"},
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "Poké2Café Ingredients Inventory",
			Description: "desc",
			Fields:      []*discordgo.MessageEmbedField{{Name: "Ingredients", Value: "`Applin` `3`"}},
		}},
		Components: []discordgo.MessageComponent{
			&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				&discordgo.SelectMenu{
					CustomID: "order-menu",
					Options: []discordgo.SelectMenuOption{
						{Label: "Applin x3", Value: "applin"},
						{Label: "Berry x2", Value: "berry"},
					},
				},
			}},
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{CustomID: "confirm", Label: "Yes"},
			}},
		},
	}

	m := FromDiscord(dm)
	if m.ID != "m1" || m.ChannelID != "c1" || m.GuildID != "g1" || m.AuthorID != "bot" || m.Content != "hello" {
		t.Fatalf("unexpected identity fields %+v", m)
	}
	if m.EmbedTitle() != "Poké2Café Ingredients Inventory" {
		t.Fatalf("unexpected title %q", m.EmbedTitle())
	}
	if f, ok := m.FirstField(); !ok || f != "`Applin` `3`" {
		t.Fatalf("unexpected first field %q ok=%v", f, ok)
	}

	first, ok := m.FirstComponent()
	if !ok || first.Type != ComponentSelectMenu || first.CustomID != "order-menu" {
		t.Fatalf("unexpected first component %+v", first)
	}
	if len(first.Options) != 2 || first.Options[1].Index != 1 || first.Options[1].Value != "berry" {
		t.Fatalf("unexpected options %+v", first.Options)
	}
	if len(m.Rows) != 2 || m.Rows[1][0].Type != ComponentButton || m.Rows[1][0].CustomID != "confirm" {
		t.Fatalf("unexpected second row %+v", m.Rows)
	}
}

func TestFromDiscordGatewayPayload(t *testing.T) {
	raw := `{
		"id": "42",
		"channel_id": "7",
		"author": {"id": "716390085896962058"},
		"content": "Are you sure you want to donate 15 ingredients?",
		"components": [
			{"type": 1, "components": [
				{"type": 2, "style": 3, "label": "Confirm", "custom_id": "donate_yes"},
				{"type": 2, "style": 4, "label": "Cancel", "custom_id": "donate_no"}
			]}
		]
	}`
	var dm discordgo.Message
	if err := json.Unmarshal([]byte(raw), &dm); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	m := FromDiscord(&dm)
	first, ok := m.FirstComponent()
	if !ok || first.Type != ComponentButton || first.CustomID != "donate_yes" {
		t.Fatalf("unexpected first component %+v", first)
	}
	if m.Embed != nil {
		t.Fatalf("expected no embed")
	}
}

func TestFromDiscordNil(t *testing.T) {
	m := FromDiscord(nil)
	if _, ok := m.FirstComponent(); ok {
		t.Fatalf("expected no components")
	}
	if m.EmbedTitle() != "" {
		t.Fatalf("expected empty title")
	}
}
