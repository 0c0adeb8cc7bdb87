// Package discord wires the bot to the gateway: session lifecycle, message
// dispatch and button-click routing.
package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/RickyLoader/RileyBot-sub001/internal/command"
	"github.com/RickyLoader/RileyBot-sub001/internal/config"
	"github.com/RickyLoader/RileyBot-sub001/internal/lookup"
	"github.com/RickyLoader/RileyBot-sub001/internal/pager"
	"github.com/RickyLoader/RileyBot-sub001/internal/storage"
)

// Bot owns the Discord session and routes events into the command and pager
// layers.
type Bot struct {
	dg        *discordgo.Session
	cfg       *config.Config
	store     *storage.Storage
	registry  *command.Registry
	pagers    *pager.Registry
	inFlight  *lookup.InFlight
	messenger *Messenger
	log       zerolog.Logger
}

func NewBot(cfg *config.Config, store *storage.Storage, registry *command.Registry, pagers *pager.Registry, inFlight *lookup.InFlight, log zerolog.Logger) *Bot {
	return &Bot{
		cfg:      cfg,
		store:    store,
		registry: registry,
		pagers:   pagers,
		inFlight: inFlight,
		log:      log,
	}
}

// Run opens the gateway session and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	dg, err := discordgo.New("Bot " + b.cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	b.dg = dg
	b.messenger = NewMessenger(dg)

	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent

	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onMessageCreate)
	dg.AddHandler(b.onInteractionCreate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	<-ctx.Done()
	b.log.Info().Msg("shutdown signal received, closing session")
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.log.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("bot is running")
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.Author.ID == s.State.User.ID {
		return
	}
	if !strings.HasPrefix(m.Content, b.cfg.Prefix) {
		return
	}

	// Lookup queries are case-insensitive on every provider, so the whole
	// content is folded once here.
	content := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(m.Content, b.cfg.Prefix)))
	if content == "" {
		return
	}

	ctx := &command.Context{
		Content:   content,
		UserID:    m.Author.ID,
		Username:  m.Author.Username,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		Messenger: b.messenger,
		Pagers:    b.pagers,
		Storage:   b.store,
		InFlight:  b.inFlight,
		Config:    b.cfg,
		Log:       b.log,
	}
	for _, u := range m.Mentions {
		ctx.Mentions = append(ctx.Mentions, u.ID)
	}

	if err := b.registry.Dispatch(content, ctx); err != nil {
		b.log.Error().Err(err).Str("content", content).Str("user", m.Author.ID).Msg("command failed")
	}
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent || i.Message == nil {
		return
	}

	// Acknowledge first; the engine edits the message through the REST API.
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}); err != nil {
		b.log.Warn().Err(err).Msg("failed to acknowledge component interaction")
		return
	}

	customID := i.MessageComponentData().CustomID
	if !b.pagers.Dispatch(i.Message.ID, customID) {
		// Stale click: message deleted or superseded. Expected, not an error.
		b.log.Debug().Str("message", i.Message.ID).Str("control", customID).Msg("ignoring click on untracked message")
	}
}
