package platforms

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

const discordUsername = "pocketpoker"

// DiscordAdapter posts to an incoming webhook URL. The payload is built from
// discordgo's webhook types so field names track the Discord API.
type DiscordAdapter struct {
	client *HTTPClient
}

func NewDiscordAdapter(client *HTTPClient) *DiscordAdapter {
	return &DiscordAdapter{client: client}
}

func (a *DiscordAdapter) Name() string {
	return "discord"
}

func (a *DiscordAdapter) Send(ctx context.Context, endpoint, _ string, msg Message) error {
	return a.client.PostJSON(ctx, endpoint, nil, discordPayload(msg))
}

func discordPayload(msg Message) *discordgo.WebhookParams {
	fields := make([]*discordgo.MessageEmbedField, 0, len(msg.Fields))
	for _, f := range msg.Fields {
		fields = append(fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	embed := &discordgo.MessageEmbed{
		Type:        discordgo.EmbedTypeRich,
		Title:       msg.Title,
		Description: msg.Description,
		Color:       msg.Color,
		Timestamp:   msg.Timestamp,
		Fields:      fields,
	}
	if msg.Footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: msg.Footer}
	}
	return &discordgo.WebhookParams{
		Content:  msg.Content,
		Username: discordUsername,
		Embeds:   []*discordgo.MessageEmbed{embed},
	}
}
