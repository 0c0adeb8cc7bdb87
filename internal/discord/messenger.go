package discord

import (
	"bytes"

	"github.com/bwmarrin/discordgo"

	"github.com/RickyLoader/RileyBot-sub001/internal/pager"
)

// Messenger implements pager.Messenger over a live discordgo session.
type Messenger struct {
	session *discordgo.Session
}

func NewMessenger(session *discordgo.Session) *Messenger {
	return &Messenger{session: session}
}

func (m *Messenger) SendMessage(channelID string, body *pager.Body, controls []pager.Control) (string, error) {
	send := &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{toEmbed(body)},
		Components: toComponents(controls),
	}
	if body.Attachment != nil {
		send.Files = []*discordgo.File{{
			Name:   body.Attachment.Name,
			Reader: bytes.NewReader(body.Attachment.Data),
		}}
	}
	msg, err := m.session.ChannelMessageSendComplex(channelID, send)
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

func (m *Messenger) EditMessage(channelID, messageID string, body *pager.Body, controls []pager.Control) error {
	// Attachments from the original send survive an embed/component edit,
	// so the card is not re-uploaded on every page turn.
	embeds := []*discordgo.MessageEmbed{toEmbed(body)}
	components := toComponents(controls)
	_, err := m.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         messageID,
		Channel:    channelID,
		Embeds:     &embeds,
		Components: &components,
	})
	return err
}

func (m *Messenger) DeleteMessage(channelID, messageID string) error {
	return m.session.ChannelMessageDelete(channelID, messageID)
}

func toEmbed(body *pager.Body) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       body.Title,
		Description: body.Description,
		Color:       body.Color,
	}
	for _, f := range body.Fields {
		value := f.Value
		if value == "" {
			value = "—"
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  value,
			Inline: f.Inline,
		})
	}
	if body.Thumbnail != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: body.Thumbnail}
	}
	if body.Footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: body.Footer}
	}
	return embed
}

func toComponents(controls []pager.Control) []discordgo.MessageComponent {
	if len(controls) == 0 {
		return nil
	}
	var buttons []discordgo.MessageComponent
	for _, c := range controls {
		style := discordgo.PrimaryButton
		if c.Label == "" {
			style = discordgo.SecondaryButton
		}
		button := discordgo.Button{
			Label:    c.Label,
			Style:    style,
			CustomID: c.ID,
			Disabled: c.Disabled,
		}
		if c.Emoji != "" {
			button.Emoji = &discordgo.ComponentEmoji{Name: c.Emoji}
		}
		buttons = append(buttons, button)
	}
	return []discordgo.MessageComponent{discordgo.ActionsRow{Components: buttons}}
}
