package command

import (
	"errors"
	"fmt"
)

// ErrDuplicateTrigger is returned when a trigger is registered twice.
// Registration happens once at startup, so a duplicate is a programming
// mistake worth failing fast on rather than silently overriding.
var ErrDuplicateTrigger = errors.New("duplicate command trigger")

// Registry owns the registered commands in registration order.
type Registry struct {
	commands []Command
	triggers map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{triggers: make(map[string]struct{})}
}

// Register adds a command. Order matters: Dispatch scans in registration
// order and the first match wins.
func (r *Registry) Register(cmds ...Command) error {
	for _, cmd := range cmds {
		trigger := cmd.Trigger()
		if _, exists := r.triggers[trigger]; exists {
			return fmt.Errorf("%w: %q", ErrDuplicateTrigger, trigger)
		}
		r.triggers[trigger] = struct{}{}
		r.commands = append(r.commands, cmd)
	}
	return nil
}

// All returns the commands in registration order.
func (r *Registry) All() []Command {
	return r.commands
}

// Dispatch routes content to the first matching command. No match is a
// silent no-op: most channel traffic is not a command.
func (r *Registry) Dispatch(content string, ctx *Context) error {
	for _, cmd := range r.commands {
		if cmd.Matches(content) {
			return cmd.Execute(ctx)
		}
	}
	return nil
}
