package commands

import "github.com/RickyLoader/RileyBot-sub001/internal/command"

// Ping is the liveness check.
type Ping struct{}

func NewPing() *Ping { return &Ping{} }

func (p *Ping) Trigger() string     { return "ping" }
func (p *Ping) Description() string { return "Check that the bot is alive" }
func (p *Ping) HelpText() string    { return "`ping`" }

func (p *Ping) Matches(content string) bool { return matchesTrigger(p.Trigger(), content) }

func (p *Ping) Execute(ctx *command.Context) error {
	return ctx.Reply("Pong!")
}
