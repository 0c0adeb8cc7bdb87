// Package commands holds the bot's command set: the stat lookups and the
// self-describing utility commands.
package commands

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/RickyLoader/RileyBot-sub001/internal/command"
)

// EmbedColor is the accent used across the bot's embeds.
const EmbedColor = 0x1e90ff

var mentionPattern = regexp.MustCompile(`^<@!?(\d+)>$`)

// matchesTrigger is the shared Matches implementation: the bare trigger or
// the trigger followed by arguments.
func matchesTrigger(trigger, content string) bool {
	return content == trigger || strings.HasPrefix(content, trigger+" ")
}

// argsAfter returns the argument text following the trigger.
func argsAfter(trigger, content string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(content, trigger), " "))
}

// resolveQuery applies the shared lookup argument grammar:
//
//	<trigger> <query>   look the query up
//	<trigger> save <v>  persist v as the caller's name for this game
//	<trigger> me        look up the caller's saved name
//	<trigger> @mention  look up the mentioned user's saved name
//
// Empty or over-length queries degrade to the command's help text. When the
// grammar already produced a reply (help, save confirmation, missing saved
// name) it returns handled=true and an empty query.
func resolveQuery(ctx *command.Context, trigger, namespace, helpText string) (query string, handled bool, err error) {
	args := argsAfter(trigger, ctx.Content)

	switch {
	case args == "":
		return "", true, ctx.Reply(helpText)

	case strings.HasPrefix(args, "save "):
		name := strings.TrimSpace(strings.TrimPrefix(args, "save "))
		if name == "" || len(name) > ctx.Config.MaxQueryLength {
			return "", true, ctx.Reply(helpText)
		}
		if err := ctx.Storage.SetSavedName(ctx.UserID, namespace, name); err != nil {
			return "", true, fmt.Errorf("save name: %w", err)
		}
		return "", true, ctx.Reply(fmt.Sprintf("Saved **%s** as your %s name.", name, namespace))

	case args == "me":
		saved, err := ctx.Storage.GetSavedName(ctx.UserID, namespace)
		if err != nil {
			return "", true, err
		}
		if saved == "" {
			return "", true, ctx.Reply(fmt.Sprintf("You have no saved %s name. Use `%s save <name>` first.", namespace, trigger))
		}
		return saved, false, nil

	case mentionPattern.MatchString(args):
		target := mentionPattern.FindStringSubmatch(args)[1]
		// The gateway's parsed mention list is authoritative when it is
		// present; the regex covers contexts without one.
		if len(ctx.Mentions) == 1 {
			target = ctx.Mentions[0]
		}
		saved, err := ctx.Storage.GetSavedName(target, namespace)
		if err != nil {
			return "", true, err
		}
		if saved == "" {
			return "", true, ctx.Reply(fmt.Sprintf("That user has no saved %s name.", namespace))
		}
		return saved, false, nil

	case len(args) > ctx.Config.MaxQueryLength:
		return "", true, ctx.Reply(helpText)

	default:
		return args, false, nil
	}
}

// deletable is what liveMessages needs from a paged embed.
type deletable interface {
	Delete()
}

// liveMessages enforces at most one live paged message per channel for a
// command: a new invocation deletes and unregisters the previous one.
type liveMessages struct {
	mu        sync.Mutex
	byChannel map[string]deletable
}

func newLiveMessages() *liveMessages {
	return &liveMessages{byChannel: make(map[string]deletable)}
}

// replace supersedes the channel's previous message with the new one,
// deleting the old message if present.
func (l *liveMessages) replace(channelID string, msg deletable) {
	l.mu.Lock()
	prev := l.byChannel[channelID]
	l.byChannel[channelID] = msg
	l.mu.Unlock()

	if prev != nil {
		prev.Delete()
	}
}
