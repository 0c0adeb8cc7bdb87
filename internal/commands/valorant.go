package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/RickyLoader/RileyBot-sub001/internal/command"
	"github.com/RickyLoader/RileyBot-sub001/internal/lookup"
	"github.com/RickyLoader/RileyBot-sub001/internal/pager"
	"github.com/RickyLoader/RileyBot-sub001/internal/stats"
	"github.com/RickyLoader/RileyBot-sub001/internal/stats/valorant"
)

// Valorant shows a player's agent usage as a wraparound carousel, one agent
// per page.
type Valorant struct {
	client *valorant.Client
	live   *liveMessages
}

func NewValorant(client *valorant.Client) *Valorant {
	return &Valorant{client: client, live: newLiveMessages()}
}

func (v *Valorant) Trigger() string     { return "valorant" }
func (v *Valorant) Description() string { return "Valorant agent usage lookup" }
func (v *Valorant) HelpText() string {
	return "`valorant <name#tag>`, `valorant save <name#tag>`, `valorant me`, `valorant @user`"
}

func (v *Valorant) Matches(content string) bool { return matchesTrigger(v.Trigger(), content) }

func (v *Valorant) Execute(ctx *command.Context) error {
	query, handled, err := resolveQuery(ctx, v.Trigger(), "valorant", v.HelpText())
	if handled || err != nil {
		return err
	}

	key := v.Trigger() + ":" + lookup.NormalizeKey(query)
	startErr := ctx.InFlight.Start(context.Background(), key, func(runCtx context.Context) error {
		runCtx, cancel := context.WithTimeout(runCtx, ctx.Config.LookupTimeout)
		defer cancel()
		return v.resolve(runCtx, ctx, query)
	})

	var already *lookup.ErrAlreadyRunning
	if errors.As(startErr, &already) {
		return ctx.Reply(fmt.Sprintf("Still looking **%s** up, have some patience.", query))
	}
	return startErr
}

func (v *Valorant) resolve(runCtx context.Context, ctx *command.Context, query string) error {
	agents, err := v.client.Lookup(runCtx, query)
	switch {
	case errors.Is(err, stats.ErrNotFound):
		return ctx.Reply(fmt.Sprintf("No Valorant account **%s** was found (use `name#tag`).", query))
	case err != nil:
		ctx.Log.Warn().Err(err).Str("player", query).Msg("valorant lookup failed")
		return ctx.Reply("The Valorant API could not be reached, try again later.")
	}

	embed := pager.New(ctx.Messenger, ctx.Pagers, ctx.Log, ctx.ChannelID, agents, &pager.Cyclic[valorant.Agent]{
		Display: func(a valorant.Agent) (*pager.Body, error) {
			if a.Name == "" {
				return nil, &pager.RenderError{Strategy: "cyclic", Reason: "agent without a name"}
			}
			return &pager.Body{
				Title: fmt.Sprintf("%s — %s", query, a.Name),
				Description: fmt.Sprintf("**Role**: %s\n**Matches**: %d\n**Win rate**: %.1f%%\n**K/D**: %.2f",
					a.Role, a.Matches, a.WinRate(), a.KD),
				Color:     EmbedColor,
				Thumbnail: a.PortraitURL,
			}, nil
		},
		Compare: func(a, b valorant.Agent) bool { return a.Matches < b.Matches },
		NoItems: "No agent stats recorded for this account.",
	})

	if err := embed.Show(); err != nil {
		return err
	}
	v.live.replace(ctx.ChannelID, embed)
	return nil
}
