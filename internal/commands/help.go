package commands

import (
	"github.com/RickyLoader/RileyBot-sub001/internal/command"
	"github.com/RickyLoader/RileyBot-sub001/internal/pager"
)

// Help lists the registered commands as a pageable embed.
type Help struct {
	registry *command.Registry
	live     *liveMessages
	pageSize int
}

func NewHelp(registry *command.Registry, pageSize int) *Help {
	if pageSize < 1 {
		pageSize = 5
	}
	return &Help{registry: registry, live: newLiveMessages(), pageSize: pageSize}
}

func (h *Help) Trigger() string     { return "help" }
func (h *Help) Description() string { return "List all commands" }
func (h *Help) HelpText() string    { return "`help`" }

func (h *Help) Matches(content string) bool { return matchesTrigger(h.Trigger(), content) }

func (h *Help) Execute(ctx *command.Context) error {
	commands := h.registry.All()

	embed := pager.New(ctx.Messenger, ctx.Pagers, ctx.Log, ctx.ChannelID, commands, &pager.List[command.Command]{
		Title: "Commands",
		Field: func(cmd command.Command) (string, string) {
			return cmd.Trigger(), cmd.Description() + "\nUsage: " + cmd.HelpText()
		},
		Compare: func(a, b command.Command) bool { return a.Trigger() < b.Trigger() },
		Size:    h.pageSize,
		Color:   EmbedColor,
		NoItems: "No commands are registered.",
	})
	if err := embed.Show(); err != nil {
		return err
	}
	h.live.replace(ctx.ChannelID, embed)
	return nil
}
