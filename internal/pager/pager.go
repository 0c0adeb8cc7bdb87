// Package pager implements the interactive paged-embed engine: one live
// message whose content is a window over an item list, re-rendered in place
// as its buttons are clicked.
package pager

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Control IDs carried by the message buttons. Routing back to the owning
// embed is done by message ID, the control ID names the action. Rendered
// custom IDs additionally carry the embed's nonce after nonceSep, so a click
// left over from an earlier message with recycled controls never routes.
const (
	ControlBackward = "pager_backward"
	ControlForward  = "pager_forward"
	ControlSort     = "pager_sort"
	ControlItems    = "pager_items"
	viewPrefix      = "pager_view:"
	nonceSep        = "#"
)

// ViewControlID returns the control ID for a named breakdown view.
func ViewControlID(viewID string) string { return viewPrefix + viewID }

// Messenger is the minimal gateway surface the engine drives.
type Messenger interface {
	SendMessage(channelID string, body *Body, controls []Control) (string, error)
	EditMessage(channelID, messageID string, body *Body, controls []Control) error
	DeleteMessage(channelID, messageID string) error
}

// Embed owns the state of one live paged message. All state mutation happens
// under mu, so concurrent clicks on the same message are serialized.
type Embed[T any] struct {
	mu sync.Mutex

	messenger Messenger
	registry  *Registry
	log       zerolog.Logger

	channelID string
	messageID string
	nonce     string

	items    []T
	strategy Strategy[T]
	views    ViewRenderer[T]

	attachment *Attachment

	index         int
	sortAscending bool
	lastActionID  string
	currentView   string // "" means normal item paging
}

// New builds an embed around items and a strategy. The strategy's default
// (ascending) ordering is established here, before the first render.
func New[T any](m Messenger, reg *Registry, log zerolog.Logger, channelID string, items []T, strategy Strategy[T]) *Embed[T] {
	e := &Embed[T]{
		messenger:     m,
		registry:      reg,
		log:           log,
		channelID:     channelID,
		nonce:         uuid.NewString(),
		items:         items,
		strategy:      strategy,
		sortAscending: true,
	}
	if vr, ok := strategy.(ViewRenderer[T]); ok && len(vr.Views()) > 0 {
		e.views = vr
	}
	if strategy.CanSort() && len(items) > 1 {
		strategy.Sort(items, true)
	}
	return e
}

// WithAttachment attaches a file that rides along on every item-page render,
// e.g. a composited stat card. Must be called before Show.
func (e *Embed[T]) WithAttachment(a Attachment) *Embed[T] {
	e.attachment = &a
	return e
}

// Show sends the first render and registers the embed for click routing.
func (e *Embed[T]) Show() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	body, controls, err := e.render()
	if err != nil {
		return err
	}
	id, err := e.messenger.SendMessage(e.channelID, body, controls)
	if err != nil {
		return fmt.Errorf("pager: send message: %w", err)
	}
	e.messageID = id
	if e.registry != nil {
		// The id is passed through rather than read back via MessageID,
		// which would re-lock e.mu.
		e.registry.add(id, e)
	}
	return nil
}

// MessageID returns the bound message identity, "" before Show.
func (e *Embed[T]) MessageID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.messageID
}

// ChannelID returns the channel the message lives in.
func (e *Embed[T]) ChannelID() string { return e.channelID }

// Delete removes the live message and unregisters the embed.
func (e *Embed[T]) Delete() {
	e.mu.Lock()
	id := e.messageID
	e.mu.Unlock()
	if id == "" {
		return
	}
	if e.registry != nil {
		e.registry.remove(id)
	}
	if err := e.messenger.DeleteMessage(e.channelID, id); err != nil {
		e.log.Warn().Err(err).Str("message", id).Msg("failed to delete paged message")
	}
}

// HandleControl applies one click to the state machine and re-renders in
// place. Clicks that do not change state (for example forward on the final
// page) leave the message untouched.
func (e *Embed[T]) HandleControl(controlID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.applyControl(controlID) {
		return
	}

	body, controls, err := e.render()
	if err != nil {
		// The prior render stays on screen.
		e.log.Error().Err(err).Str("message", e.messageID).Str("control", controlID).Msg("render failed")
		return
	}
	if err := e.messenger.EditMessage(e.channelID, e.messageID, body, controls); err != nil {
		e.log.Warn().Err(err).Str("message", e.messageID).Msg("failed to edit paged message")
	}
}

// applyControl mutates state and reports whether anything changed. A nonce
// suffix, when present, must match this embed's nonce.
func (e *Embed[T]) applyControl(controlID string) bool {
	if base, nonce, ok := strings.Cut(controlID, nonceSep); ok {
		if nonce != e.nonce {
			return false
		}
		controlID = base
	}

	switch {
	case controlID == ControlForward:
		return e.pageForward()
	case controlID == ControlBackward:
		return e.pageBackward()
	case controlID == ControlSort:
		return e.toggleSort()
	case controlID == ControlItems:
		if e.currentView == "" {
			return false
		}
		e.currentView = ""
		e.lastActionID = ControlItems
		return true
	case len(controlID) > len(viewPrefix) && controlID[:len(viewPrefix)] == viewPrefix:
		viewID := controlID[len(viewPrefix):]
		if e.views == nil || !hasView(e.views.Views(), viewID) {
			return false
		}
		if e.currentView == viewID {
			// Pressing the active view's control again is idempotent.
			return false
		}
		e.currentView = viewID
		e.lastActionID = controlID
		return true
	default:
		return false
	}
}

func (e *Embed[T]) pageForward() bool {
	if e.currentView != "" || len(e.items) == 0 {
		return false
	}
	if e.isFinalPage() {
		if !e.strategy.Cyclic() {
			return false
		}
		e.index = 0
		return true
	}
	e.index += e.pageSize()
	return true
}

func (e *Embed[T]) pageBackward() bool {
	if e.currentView != "" || len(e.items) == 0 {
		return false
	}
	if e.isFirstPage() {
		if !e.strategy.Cyclic() {
			return false
		}
		e.index = len(e.items) - 1
		return true
	}
	e.index -= e.pageSize()
	return true
}

func (e *Embed[T]) toggleSort() bool {
	if !e.strategy.CanSort() || len(e.items) <= 1 || e.currentView != "" {
		return false
	}
	e.sortAscending = !e.sortAscending
	e.strategy.Sort(e.items, e.sortAscending)
	e.index = 0
	e.lastActionID = ControlSort
	return true
}

func (e *Embed[T]) pageSize() int {
	size := e.strategy.PageSize()
	if size < 1 {
		size = 1
	}
	return size
}

func (e *Embed[T]) isFirstPage() bool { return e.index == 0 }

func (e *Embed[T]) isFinalPage() bool {
	return (len(e.items)-1)-e.index < e.pageSize()
}

func (e *Embed[T]) totalPages() int {
	size := e.pageSize()
	pages := (len(e.items) + size - 1) / size
	if pages < 1 {
		pages = 1
	}
	return pages
}

func (e *Embed[T]) currentPage() int { return e.index/e.pageSize() + 1 }

// Index reports the current item offset. Exposed for tests.
func (e *Embed[T]) Index() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index
}

// SortAscending reports the current sort direction. Exposed for tests.
func (e *Embed[T]) SortAscending() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sortAscending
}

// CurrentView reports the active breakdown view, "" for item paging.
func (e *Embed[T]) CurrentView() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentView
}

// TotalPages reports the derived page count.
func (e *Embed[T]) TotalPages() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totalPages()
}

// render builds the current body and control row. It never touches the
// message itself, so a failing strategy cannot leave a half-edited render.
func (e *Embed[T]) render() (*Body, []Control, error) {
	if e.currentView != "" {
		body, err := e.views.RenderView(e.currentView, e.items)
		if err != nil {
			return nil, nil, err
		}
		return body, e.viewControls(), nil
	}

	if len(e.items) == 0 {
		return e.strategy.EmptyBody(), e.alwaysControls(), nil
	}

	size := e.pageSize()
	end := e.index + size
	if end > len(e.items) {
		end = len(e.items)
	}
	body, err := e.strategy.Render(Page[T]{
		Items:         e.items[e.index:end],
		Offset:        e.index,
		Total:         len(e.items),
		Number:        e.currentPage(),
		TotalPages:    e.totalPages(),
		SortAscending: e.sortAscending,
	})
	if err != nil {
		return nil, nil, err
	}
	if e.totalPages() > 1 {
		body.Footer = fmt.Sprintf("Page: %d/%d", e.currentPage(), e.totalPages())
	}
	if body.Attachment == nil {
		body.Attachment = e.attachment
	}
	return body, e.itemControls(), nil
}

// controlID returns the rendered custom ID: the base action plus this
// embed's nonce.
func (e *Embed[T]) controlID(base string) string {
	return base + nonceSep + e.nonce
}

// itemControls assembles the button row for normal item paging.
func (e *Embed[T]) itemControls() []Control {
	var controls []Control

	if e.totalPages() > 1 {
		cyclic := e.strategy.Cyclic()
		controls = append(controls,
			Control{ID: e.controlID(ControlBackward), Emoji: "⬅️", Disabled: !cyclic && e.isFirstPage()},
			Control{ID: e.controlID(ControlForward), Emoji: "➡️", Disabled: !cyclic && e.isFinalPage()},
		)
	}
	if e.strategy.CanSort() && len(e.items) > 1 {
		label := "Sort ↑"
		if e.sortAscending {
			label = "Sort ↓"
		}
		controls = append(controls, Control{ID: e.controlID(ControlSort), Label: label})
	}
	return append(controls, e.alwaysControls()...)
}

// viewControls assembles the button row while a breakdown view is active.
func (e *Embed[T]) viewControls() []Control {
	controls := []Control{{ID: e.controlID(ControlItems), Label: "Back"}}
	return append(controls, e.alwaysControls()...)
}

// alwaysControls returns the strategy's named-view buttons, which stay
// available in every state. The active view's button renders disabled.
func (e *Embed[T]) alwaysControls() []Control {
	if e.views == nil {
		return nil
	}
	var controls []Control
	for _, v := range e.views.Views() {
		controls = append(controls, Control{
			ID:       e.controlID(ViewControlID(v.ID)),
			Label:    v.Label,
			Disabled: v.ID == e.currentView,
		})
	}
	return controls
}
