// Package message is the slice of a Discord message the farm loop reads.
package message

import (
	"github.com/bwmarrin/discordgo"
	"github.com/small-frappuccino/cafefarm/pkg/cafe/recipe"
)

// ComponentType mirrors Discord's component type codes used when emulating
// an interaction.
type ComponentType int

const (
	ComponentButton     ComponentType = 2
	ComponentSelectMenu ComponentType = 3
)

// Message is an inbound message reduced to the fields the farm loop needs.
type Message struct {
	ID        string
	ChannelID string
	GuildID   string
	AuthorID  string
	Content   string
	Embed     *Embed
	Rows      [][]Component
}

// Embed is the first rich embed attached to a message.
type Embed struct {
	Title       string
	Description string
	Fields      []string
}

// Component is a button or select menu.
type Component struct {
	Type     ComponentType
	CustomID string
	Label    string
	Options  []recipe.Option
}

// EmbedTitle returns the first embed's title, or "" without an embed.
func (m Message) EmbedTitle() string {
	if m.Embed == nil {
		return ""
	}
	return m.Embed.Title
}

// FirstComponent returns the first component of the first row.
func (m Message) FirstComponent() (Component, bool) {
	if len(m.Rows) == 0 || len(m.Rows[0]) == 0 {
		return Component{}, false
	}
	return m.Rows[0][0], true
}

// FirstField returns the value of the first embed field.
func (m Message) FirstField() (string, bool) {
	if m.Embed == nil || len(m.Embed.Fields) == 0 {
		return "", false
	}
	return m.Embed.Fields[0], true
}

// FromDiscord converts a discordgo message.
func FromDiscord(dm *discordgo.Message) Message {
	if dm == nil {
		return Message{}
	}
	m := Message{
		ID:        dm.ID,
		ChannelID: dm.ChannelID,
		GuildID:   dm.GuildID,
		Content:   dm.Content,
	}
	if dm.Author != nil {
		m.AuthorID = dm.Author.ID
	}
	if len(dm.Embeds) > 0 && dm.Embeds[0] != nil {
		e := dm.Embeds[0]
		m.Embed = &Embed{Title: e.Title, Description: e.Description}
		for _, f := range e.Fields {
			if f != nil {
				m.Embed.Fields = append(m.Embed.Fields, f.Value)
			}
		}
	}
	for _, c := range dm.Components {
		var children []discordgo.MessageComponent
		switch row := c.(type) {
		case *discordgo.ActionsRow:
			children = row.Components
		case discordgo.ActionsRow:
			children = row.Components
		default:
			continue
		}
		var out []Component
		for _, child := range children {
			if comp, ok := convertComponent(child); ok {
				out = append(out, comp)
			}
		}
		m.Rows = append(m.Rows, out)
	}
	return m
}

func convertComponent(c discordgo.MessageComponent) (Component, bool) {
	switch v := c.(type) {
	case *discordgo.Button:
		return Component{Type: ComponentButton, CustomID: v.CustomID, Label: v.Label}, true
	case discordgo.Button:
		return Component{Type: ComponentButton, CustomID: v.CustomID, Label: v.Label}, true
	case *discordgo.SelectMenu:
		return selectMenu(*v), true
	case discordgo.SelectMenu:
		return selectMenu(v), true
	}
	return Component{}, false
}

func selectMenu(s discordgo.SelectMenu) Component {
	comp := Component{Type: ComponentSelectMenu, CustomID: s.CustomID, Label: s.Placeholder}
	for i, o := range s.Options {
		comp.Options = append(comp.Options, recipe.Option{Index: i, Label: o.Label, Value: o.Value})
	}
	return comp
}
