package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/RickyLoader/RileyBot-sub001/internal/cards"
	"github.com/RickyLoader/RileyBot-sub001/internal/command"
	"github.com/RickyLoader/RileyBot-sub001/internal/lookup"
	"github.com/RickyLoader/RileyBot-sub001/internal/pager"
	"github.com/RickyLoader/RileyBot-sub001/internal/stats"
	"github.com/RickyLoader/RileyBot-sub001/internal/stats/cod"
	"github.com/RickyLoader/RileyBot-sub001/pkg/util"
)

var codPlatforms = map[string]bool{"battle": true, "psn": true, "xbl": true, "steam": true}

// COD shows a Modern Warfare combat record: a sortable weapon table with
// map/mode breakdown views and a composited combat-record card.
type COD struct {
	client   *cod.Client
	renderer *cards.Renderer
	live     *liveMessages
	pageSize int
}

func NewCOD(client *cod.Client, renderer *cards.Renderer, pageSize int) *COD {
	if pageSize < 1 {
		pageSize = 5
	}
	return &COD{client: client, renderer: renderer, live: newLiveMessages(), pageSize: pageSize}
}

func (c *COD) Trigger() string     { return "mw" }
func (c *COD) Description() string { return "Modern Warfare combat record lookup" }
func (c *COD) HelpText() string {
	return "`mw <name> <battle|psn|xbl|steam>`, `mw save <name>`, `mw me`, `mw @user`"
}

func (c *COD) Matches(content string) bool { return matchesTrigger(c.Trigger(), content) }

func (c *COD) Execute(ctx *command.Context) error {
	query, handled, err := resolveQuery(ctx, c.Trigger(), "mw", c.HelpText())
	if handled || err != nil {
		return err
	}

	name, platform := splitPlatform(query)
	if !codPlatforms[platform] {
		return ctx.Reply(c.HelpText())
	}

	key := c.Trigger() + ":" + lookup.NormalizeKey(platform+":"+name)
	startErr := ctx.InFlight.Start(context.Background(), key, func(runCtx context.Context) error {
		runCtx, cancel := context.WithTimeout(runCtx, ctx.Config.LookupTimeout)
		defer cancel()
		return c.resolve(runCtx, ctx, name, platform)
	})

	var already *lookup.ErrAlreadyRunning
	if errors.As(startErr, &already) {
		return ctx.Reply(fmt.Sprintf("Still looking **%s** up, have some patience.", name))
	}
	return startErr
}

// splitPlatform separates "name platform", defaulting the platform to
// battle.net when only a name is given.
func splitPlatform(query string) (name, platform string) {
	parts := strings.Fields(query)
	if len(parts) < 2 {
		return query, "battle"
	}
	last := strings.ToLower(parts[len(parts)-1])
	if codPlatforms[last] {
		return strings.Join(parts[:len(parts)-1], " "), last
	}
	return query, "battle"
}

func (c *COD) resolve(runCtx context.Context, ctx *command.Context, name, platform string) error {
	profile, err := c.client.Lookup(runCtx, name, platform)
	switch {
	case errors.Is(err, stats.ErrNotFound):
		return ctx.Reply(fmt.Sprintf("No Modern Warfare record for **%s** on %s.", name, platform))
	case err != nil:
		ctx.Log.Warn().Err(err).Str("player", name).Str("platform", platform).Msg("combat record lookup failed")
		return ctx.Reply("The combat record API could not be reached, try again later.")
	}

	embed := pager.New(ctx.Messenger, ctx.Pagers, ctx.Log, ctx.ChannelID, profile.Weapons, &pager.Table[cod.Weapon]{
		Title:   fmt.Sprintf("%s — Modern Warfare", profile.Name),
		Columns: []string{"Weapon", "Kills", "Accuracy"},
		Row: func(w cod.Weapon) []string {
			return []string{w.Name, fmt.Sprintf("%d", w.Kills), fmt.Sprintf("%.1f%%", w.Accuracy)}
		},
		Compare: func(a, b cod.Weapon) bool { return a.Kills < b.Kills },
		Size:    c.pageSize,
		Color:   EmbedColor,
		NoItems: "No weapon stats recorded.",
		CustomViews: []pager.View{
			{ID: "maps", Label: "Maps"},
			{ID: "modes", Label: "Modes"},
		},
		RenderCustom: func(viewID string, _ []cod.Weapon) (*pager.Body, error) {
			switch viewID {
			case "maps":
				return mapsBreakdown(profile), nil
			case "modes":
				return modesBreakdown(profile), nil
			default:
				return nil, &pager.RenderError{Strategy: "table", Reason: "unknown view " + viewID}
			}
		},
	})

	if card, cardErr := c.renderCard(runCtx, profile); cardErr != nil {
		ctx.Log.Warn().Err(cardErr).Str("player", profile.Name).Msg("combat card render failed")
	} else {
		embed.WithAttachment(pager.Attachment{Name: "combat-record.png", Data: card})
	}

	if err := embed.Show(); err != nil {
		return err
	}
	c.live.replace(ctx.ChannelID, embed)
	return nil
}

func mapsBreakdown(p *cod.Profile) *pager.Body {
	body := &pager.Body{Title: p.Name + " — Map breakdown", Color: EmbedColor}
	for _, m := range p.Maps {
		body.Fields = append(body.Fields, pager.Field{
			Name:   m.Name,
			Value:  fmt.Sprintf("%d matches, %.1f%% win rate", m.Matches, m.WinRate()),
			Inline: true,
		})
	}
	if len(body.Fields) == 0 {
		body.Description = "No map stats recorded."
	}
	return body
}

func modesBreakdown(p *cod.Profile) *pager.Body {
	body := &pager.Body{Title: p.Name + " — Mode breakdown", Color: EmbedColor}
	for _, m := range p.Modes {
		body.Fields = append(body.Fields, pager.Field{
			Name:   m.Name,
			Value:  fmt.Sprintf("Score %d, time played %s", m.Score, m.Time),
			Inline: true,
		})
	}
	if len(body.Fields) == 0 {
		body.Description = "No mode stats recorded."
	}
	return body
}

func (c *COD) renderCard(runCtx context.Context, p *cod.Profile) ([]byte, error) {
	rows := []cards.Row{
		{Label: "Level", Value: fmt.Sprintf("%d", p.Level)},
		{Label: "K/D", Value: fmt.Sprintf("%.2f", p.KD())},
		{Label: "Kills", Value: fmt.Sprintf("%d", p.Kills)},
		{Label: "Wins / Losses", Value: fmt.Sprintf("%d / %d", p.Wins, p.Losses)},
	}
	if last := util.FormatDateTpl(p.LastPlayed, "YYYY-MM-DD hh:mm"); last != "" {
		rows = append(rows, cards.Row{Label: "Last played", Value: last})
	}
	return c.renderer.Render(runCtx, cards.Card{Title: p.Name + " — Combat Record", Rows: rows})
}
