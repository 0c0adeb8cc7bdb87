package command

import (
	"strings"
	"time"

	"github.com/RickyLoader/RileyBot-sub001/internal/storage"
)

// Middleware wraps a command with cross-cutting behavior.
type Middleware func(Command) Command

// wrapped delegates everything except Execute to the inner command.
type wrapped struct {
	Command
	execute func(ctx *Context) error
}

func (w *wrapped) Execute(ctx *Context) error { return w.execute(ctx) }

// Apply wraps cmd with the given middlewares, outermost last.
func Apply(cmd Command, mws ...Middleware) Command {
	for _, mw := range mws {
		cmd = mw(cmd)
	}
	return cmd
}

// WithHistory records every successful dispatch to the guild's command
// history before running the command.
func WithHistory() Middleware {
	return func(cmd Command) Command {
		return &wrapped{Command: cmd, execute: func(ctx *Context) error {
			if ctx.GuildID != "" && ctx.Storage != nil {
				query := strings.TrimSpace(strings.TrimPrefix(ctx.Content, cmd.Trigger()))
				entry := storage.CommandHistoryRecord{
					ChannelID: ctx.ChannelID,
					UserID:    ctx.UserID,
					Username:  ctx.Username,
					Command:   cmd.Trigger(),
					Query:     query,
					Datetime:  time.Now(),
				}
				if err := ctx.Storage.AppendCommandToHistory(ctx.GuildID, entry); err != nil {
					ctx.Log.Warn().Err(err).Str("command", cmd.Trigger()).Msg("failed to record command history")
				}
			}
			return cmd.Execute(ctx)
		}}
	}
}
