package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/RickyLoader/RileyBot-sub001/internal/cards"
	"github.com/RickyLoader/RileyBot-sub001/internal/command"
	"github.com/RickyLoader/RileyBot-sub001/internal/lookup"
	"github.com/RickyLoader/RileyBot-sub001/internal/pager"
	"github.com/RickyLoader/RileyBot-sub001/internal/stats"
	"github.com/RickyLoader/RileyBot-sub001/internal/stats/osrs"
)

// OSRS looks a player up on the Old School RuneScape hiscores and shows a
// sortable skill table plus a composited stat card.
type OSRS struct {
	client   *osrs.Client
	renderer *cards.Renderer
	live     *liveMessages
	pageSize int
}

func NewOSRS(client *osrs.Client, renderer *cards.Renderer, pageSize int) *OSRS {
	if pageSize < 1 {
		pageSize = 5
	}
	return &OSRS{client: client, renderer: renderer, live: newLiveMessages(), pageSize: pageSize}
}

func (o *OSRS) Trigger() string     { return "osrs" }
func (o *OSRS) Description() string { return "Old School RuneScape hiscores lookup" }
func (o *OSRS) HelpText() string {
	return "`osrs <name>`, `osrs save <name>`, `osrs me`, `osrs @user`"
}

func (o *OSRS) Matches(content string) bool { return matchesTrigger(o.Trigger(), content) }

func (o *OSRS) Execute(ctx *command.Context) error {
	query, handled, err := resolveQuery(ctx, o.Trigger(), "osrs", o.HelpText())
	if handled || err != nil {
		return err
	}

	key := o.Trigger() + ":" + lookup.NormalizeKey(query)
	startErr := ctx.InFlight.Start(context.Background(), key, func(runCtx context.Context) error {
		runCtx, cancel := context.WithTimeout(runCtx, ctx.Config.LookupTimeout)
		defer cancel()
		return o.resolve(runCtx, ctx, query)
	})

	var already *lookup.ErrAlreadyRunning
	if errors.As(startErr, &already) {
		return ctx.Reply(fmt.Sprintf("Still looking **%s** up, have some patience.", query))
	}
	return startErr
}

// resolve runs off the gateway event path; every outcome becomes exactly one
// chat message.
func (o *OSRS) resolve(runCtx context.Context, ctx *command.Context, query string) error {
	player, err := o.client.Lookup(runCtx, query)
	switch {
	case errors.Is(err, stats.ErrNotFound):
		return ctx.Reply(fmt.Sprintf("No OSRS player named **%s** was found.", query))
	case err != nil:
		ctx.Log.Warn().Err(err).Str("player", query).Msg("hiscores lookup failed")
		return ctx.Reply("The hiscores could not be reached, try again later.")
	}

	embed := pager.New(ctx.Messenger, ctx.Pagers, ctx.Log, ctx.ChannelID, player.Skills, &pager.Table[osrs.Skill]{
		Title:   fmt.Sprintf("%s — OSRS hiscores", player.Name),
		Columns: []string{"Skill", "Level", "XP"},
		Row: func(s osrs.Skill) []string {
			return []string{s.Name, fmt.Sprintf("%d", s.Level), fmt.Sprintf("%d", s.XP)}
		},
		Compare: func(a, b osrs.Skill) bool { return a.XP < b.XP },
		Size:    o.pageSize,
		Color:   EmbedColor,
		NoItems: "No hiscores entries for this player.",
	})

	if card, cardErr := o.renderCard(runCtx, player); cardErr != nil {
		ctx.Log.Warn().Err(cardErr).Str("player", player.Name).Msg("stat card render failed")
	} else {
		embed.WithAttachment(pager.Attachment{Name: "osrs-card.png", Data: card})
	}

	if err := embed.Show(); err != nil {
		return err
	}
	o.live.replace(ctx.ChannelID, embed)
	return nil
}

func (o *OSRS) renderCard(runCtx context.Context, player *osrs.Player) ([]byte, error) {
	rows := []cards.Row{
		{Label: "Total level", Value: fmt.Sprintf("%d", player.Overall.Level)},
		{Label: "Total XP", Value: fmt.Sprintf("%d", player.Overall.XP)},
		{Label: "Combat level", Value: fmt.Sprintf("%d", player.CombatLevel())},
		{Label: "Overall rank", Value: fmt.Sprintf("%d", player.Overall.Rank)},
	}
	return o.renderer.Render(runCtx, cards.Card{Title: player.Name, Rows: rows})
}
