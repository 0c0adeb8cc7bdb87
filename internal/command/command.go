// Package command defines the text-command contract and the dispatcher that
// routes inbound chat messages to the first matching command.
package command

import (
	"github.com/rs/zerolog"

	"github.com/RickyLoader/RileyBot-sub001/internal/config"
	"github.com/RickyLoader/RileyBot-sub001/internal/lookup"
	"github.com/RickyLoader/RileyBot-sub001/internal/pager"
	"github.com/RickyLoader/RileyBot-sub001/internal/storage"
)

// Command is one registered trigger. Commands are built once at startup and
// never mutated afterwards.
type Command interface {
	// Trigger is the unique match key, e.g. "osrs".
	Trigger() string
	Description() string
	HelpText() string

	// Matches decides whether this command claims the (already
	// prefix-stripped, lowercased) message content.
	Matches(content string) bool

	Execute(ctx *Context) error
}

// Context carries everything a command needs for one dispatch. The gateway
// is behind pager.Messenger so commands stay testable without a session.
type Context struct {
	// Content is the message text with the bot prefix stripped.
	Content string

	UserID    string
	Username  string
	ChannelID string
	GuildID   string
	// Mentions lists the user IDs mentioned in the message, in order.
	Mentions []string

	Messenger pager.Messenger
	Pagers    *pager.Registry
	Storage   *storage.Storage
	InFlight  *lookup.InFlight
	Config    *config.Config
	Log       zerolog.Logger
}

// Reply sends a plain one-embed response with no controls.
func (c *Context) Reply(text string) error {
	_, err := c.Messenger.SendMessage(c.ChannelID, &pager.Body{Description: text}, nil)
	return err
}
