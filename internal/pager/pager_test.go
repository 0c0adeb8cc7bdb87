package pager

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessenger struct {
	mu           sync.Mutex
	sends        int
	edits        int
	deleted      []string
	nextID       int
	lastBody     *Body
	lastControls []Control
}

func (f *fakeMessenger) SendMessage(channelID string, body *Body, controls []Control) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends++
	f.nextID++
	f.lastBody = body
	f.lastControls = controls
	return fmt.Sprintf("msg-%d", f.nextID), nil
}

func (f *fakeMessenger) EditMessage(channelID, messageID string, body *Body, controls []Control) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits++
	f.lastBody = body
	f.lastControls = controls
	return nil
}

func (f *fakeMessenger) DeleteMessage(channelID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return nil
}

// control finds a rendered control by its base action ID, ignoring the
// per-embed nonce suffix.
func (f *fakeMessenger) control(id string) (Control, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.lastControls {
		base, _, _ := strings.Cut(c.ID, nonceSep)
		if base == id {
			return c, true
		}
	}
	return Control{}, false
}

func tableStrategy(size int) *Table[string] {
	return &Table[string]{
		Title:   "Test",
		Columns: []string{"Name"},
		Row:     func(s string) []string { return []string{s} },
		Compare: func(a, b string) bool { return a < b },
		Size:    size,
	}
}

func newShown(t *testing.T, m *fakeMessenger, items []string, strat Strategy[string]) *Embed[string] {
	t.Helper()
	e := New[string](m, NewRegistry(), zerolog.Nop(), "chan", items, strat)
	require.NoError(t, e.Show())
	return e
}

func TestShowReturnsAndRegistersForRouting(t *testing.T) {
	reg := NewRegistry()
	m := &fakeMessenger{}
	e := New[string](m, reg, zerolog.Nop(), "chan", []string{"a", "b"}, tableStrategy(1))

	done := make(chan error, 1)
	go func() { done <- e.Show() }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Show did not return")
	}

	assert.True(t, reg.Tracked(e.MessageID()))
	assert.True(t, reg.Dispatch(e.MessageID(), ControlForward))
	assert.Equal(t, 1, e.Index())
}

func TestControlNonce(t *testing.T) {
	m := &fakeMessenger{}
	e := newShown(t, m, []string{"a", "b", "c"}, tableStrategy(1))

	// Rendered custom IDs carry the embed's nonce and route normally.
	forward, ok := m.control(ControlForward)
	require.True(t, ok)
	require.NotEqual(t, ControlForward, forward.ID)
	e.HandleControl(forward.ID)
	assert.Equal(t, 1, e.Index())

	// A click carrying a different embed's nonce is dropped.
	e.HandleControl(ControlForward + nonceSep + "someone-elses-nonce")
	assert.Equal(t, 1, e.Index())
}

func TestForwardBackwardScenario(t *testing.T) {
	// items = [a,b,c,d,e], pageSize = 2 -> 3 pages.
	m := &fakeMessenger{}
	e := newShown(t, m, []string{"a", "b", "c", "d", "e"}, tableStrategy(2))

	require.Equal(t, 3, e.TotalPages())
	require.Equal(t, 0, e.Index())

	e.HandleControl(ControlForward)
	assert.Equal(t, 2, e.Index())
	e.HandleControl(ControlForward)
	assert.Equal(t, 4, e.Index())

	// Final page (single-item remainder): forward is a no-op and does not
	// re-edit the message.
	edits := m.edits
	e.HandleControl(ControlForward)
	assert.Equal(t, 4, e.Index())
	assert.Equal(t, edits, m.edits)

	e.HandleControl(ControlBackward)
	assert.Equal(t, 2, e.Index())
	e.HandleControl(ControlBackward)
	assert.Equal(t, 0, e.Index())

	// First page: backward is a no-op.
	e.HandleControl(ControlBackward)
	assert.Equal(t, 0, e.Index())
}

func TestIndexStaysInBounds(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e", "f", "g"}
	m := &fakeMessenger{}
	e := newShown(t, m, items, tableStrategy(3))

	moves := []string{
		ControlForward, ControlForward, ControlForward, ControlForward,
		ControlBackward, ControlForward, ControlBackward, ControlBackward,
		ControlBackward, ControlBackward, ControlForward,
	}
	for _, mv := range moves {
		e.HandleControl(mv)
		idx := e.Index()
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, len(items))
		assert.Zero(t, idx%3, "index must stay page-aligned")
	}
}

func TestTotalPages(t *testing.T) {
	cases := []struct {
		items, size, want int
	}{
		{0, 5, 1},
		{1, 5, 1},
		{5, 5, 1},
		{6, 5, 2},
		{10, 5, 2},
		{11, 5, 3},
		{3, 1, 3},
	}
	for _, tc := range cases {
		items := make([]string, tc.items)
		for i := range items {
			items[i] = fmt.Sprintf("item-%02d", i)
		}
		m := &fakeMessenger{}
		e := newShown(t, m, items, tableStrategy(tc.size))
		assert.Equal(t, tc.want, e.TotalPages(), "items=%d size=%d", tc.items, tc.size)
	}
}

func TestCyclicWraparound(t *testing.T) {
	// items = [x,y,z]: forward from the last item wraps to the first,
	// backward from the first wraps to the last.
	strat := &Cyclic[string]{
		Display: func(s string) (*Body, error) { return &Body{Title: s}, nil },
	}
	m := &fakeMessenger{}
	e := newShown(t, m, []string{"x", "y", "z"}, strat)

	e.HandleControl(ControlForward)
	e.HandleControl(ControlForward)
	require.Equal(t, 2, e.Index())

	e.HandleControl(ControlForward)
	assert.Equal(t, 0, e.Index())

	e.HandleControl(ControlBackward)
	assert.Equal(t, 2, e.Index())
}

func TestCyclicControlsNeverDisabled(t *testing.T) {
	strat := &Cyclic[string]{
		Display: func(s string) (*Body, error) { return &Body{Title: s}, nil },
	}
	m := &fakeMessenger{}
	e := newShown(t, m, []string{"x", "y"}, strat)

	e.HandleControl(ControlForward)
	e.HandleControl(ControlForward) // wrapped back to the first item
	require.Equal(t, 0, e.Index())

	forward, ok := m.control(ControlForward)
	require.True(t, ok)
	assert.False(t, forward.Disabled)
	backward, ok := m.control(ControlBackward)
	require.True(t, ok)
	assert.False(t, backward.Disabled)
}

func TestSortToggleResetsPosition(t *testing.T) {
	m := &fakeMessenger{}
	e := newShown(t, m, []string{"c", "a", "b", "e", "d"}, tableStrategy(2))

	// Default ascending sort is applied at construction.
	require.Equal(t, []string{"a", "b", "c", "d", "e"}, e.items)
	require.True(t, e.SortAscending())

	e.HandleControl(ControlForward)
	require.Equal(t, 2, e.Index())

	e.HandleControl(ControlSort)
	assert.Equal(t, 0, e.Index())
	assert.False(t, e.SortAscending())
	assert.Equal(t, []string{"e", "d", "c", "b", "a"}, e.items)

	e.HandleControl(ControlSort)
	assert.True(t, e.SortAscending())
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, e.items)
}

func TestStaleEventIgnored(t *testing.T) {
	reg := NewRegistry()
	m := &fakeMessenger{}
	e := New[string](m, reg, zerolog.Nop(), "chan", []string{"a", "b", "c"}, tableStrategy(1))
	require.NoError(t, e.Show())

	// Unknown message: dropped, no crash, no state change.
	assert.False(t, reg.Dispatch("msg-unknown", ControlForward))
	assert.Equal(t, 0, e.Index())

	// Known message routes normally.
	assert.True(t, reg.Dispatch(e.MessageID(), ControlForward))
	assert.Equal(t, 1, e.Index())

	// After deletion clicks become stale again.
	e.Delete()
	assert.Contains(t, m.deleted, e.MessageID())
	assert.False(t, reg.Dispatch(e.MessageID(), ControlForward))
	assert.Equal(t, 1, e.Index())
}

func TestPagingControlsOmittedForSinglePage(t *testing.T) {
	m := &fakeMessenger{}
	newShown(t, m, []string{"a", "b"}, tableStrategy(5))

	_, hasForward := m.control(ControlForward)
	_, hasBackward := m.control(ControlBackward)
	assert.False(t, hasForward)
	assert.False(t, hasBackward)

	// Sort stays available: more than one item.
	_, hasSort := m.control(ControlSort)
	assert.True(t, hasSort)
}

func TestSortControlOmittedForSingleItem(t *testing.T) {
	m := &fakeMessenger{}
	newShown(t, m, []string{"only"}, tableStrategy(5))

	_, hasSort := m.control(ControlSort)
	assert.False(t, hasSort)
}

func TestBoundaryControlsRenderDisabled(t *testing.T) {
	m := &fakeMessenger{}
	e := newShown(t, m, []string{"a", "b", "c"}, tableStrategy(2))

	backward, ok := m.control(ControlBackward)
	require.True(t, ok)
	assert.True(t, backward.Disabled, "backward disabled on first page")
	forward, ok := m.control(ControlForward)
	require.True(t, ok)
	assert.False(t, forward.Disabled)

	e.HandleControl(ControlForward)

	backward, _ = m.control(ControlBackward)
	assert.False(t, backward.Disabled)
	forward, _ = m.control(ControlForward)
	assert.True(t, forward.Disabled, "forward disabled on final page")
}

func TestEmptyItems(t *testing.T) {
	strat := tableStrategy(5)
	strat.NoItems = "No stats found."
	m := &fakeMessenger{}
	e := newShown(t, m, nil, strat)

	assert.Equal(t, 0, e.Index())
	assert.Equal(t, 1, e.TotalPages())
	assert.Equal(t, "No stats found.", m.lastBody.Description)
	assert.Empty(t, m.lastControls)

	// Clicks on an empty embed change nothing.
	e.HandleControl(ControlForward)
	e.HandleControl(ControlSort)
	assert.Equal(t, 0, e.Index())
	assert.Equal(t, 0, m.edits)
}

func TestPageFooter(t *testing.T) {
	m := &fakeMessenger{}
	e := newShown(t, m, []string{"a", "b", "c", "d", "e"}, tableStrategy(2))

	assert.Equal(t, "Page: 1/3", m.lastBody.Footer)
	e.HandleControl(ControlForward)
	assert.Equal(t, "Page: 2/3", m.lastBody.Footer)
}

func TestEditsNeverSendNewMessages(t *testing.T) {
	m := &fakeMessenger{}
	e := newShown(t, m, []string{"a", "b", "c", "d"}, tableStrategy(1))

	for i := 0; i < 6; i++ {
		e.HandleControl(ControlForward)
	}
	e.HandleControl(ControlSort)

	assert.Equal(t, 1, m.sends, "paging must edit in place, never re-send")
	assert.Greater(t, m.edits, 0)
}

func breakdownStrategy() *Table[string] {
	strat := tableStrategy(2)
	strat.CustomViews = []View{{ID: "maps", Label: "Maps"}}
	strat.RenderCustom = func(viewID string, items []string) (*Body, error) {
		return &Body{Title: "breakdown:" + viewID}, nil
	}
	return strat
}

func TestBreakdownViewSwitching(t *testing.T) {
	m := &fakeMessenger{}
	e := newShown(t, m, []string{"a", "b", "c"}, breakdownStrategy())

	viewControl, ok := m.control(ViewControlID("maps"))
	require.True(t, ok, "view control present in item mode")
	require.False(t, viewControl.Disabled)

	e.HandleControl(ViewControlID("maps"))
	assert.Equal(t, "maps", e.CurrentView())
	assert.Equal(t, "breakdown:maps", m.lastBody.Title)

	// The active view's control renders disabled, and re-pressing it is
	// idempotent.
	viewControl, _ = m.control(ViewControlID("maps"))
	assert.True(t, viewControl.Disabled)
	edits := m.edits
	e.HandleControl(ViewControlID("maps"))
	assert.Equal(t, "maps", e.CurrentView())
	assert.Equal(t, edits, m.edits)

	// Paging is suspended while a view is active.
	e.HandleControl(ControlForward)
	assert.Equal(t, 0, e.Index())

	// Back returns to item paging.
	e.HandleControl(ControlItems)
	assert.Equal(t, "", e.CurrentView())
	assert.Equal(t, "Test", m.lastBody.Title)
}

func TestRenderFailureKeepsPreviousRender(t *testing.T) {
	calls := 0
	strat := &Table[string]{
		Title:   "Flaky",
		Columns: []string{"Name"},
		Row: func(s string) []string {
			calls++
			if calls > 2 { // fail after the first page rendered
				return nil
			}
			return []string{s}
		},
		Size: 2,
	}
	m := &fakeMessenger{}
	e := newShown(t, m, []string{"a", "b", "c"}, strat)
	require.Equal(t, "Flaky", m.lastBody.Title)

	edits := m.edits
	e.HandleControl(ControlForward)

	// State advanced but the message was not half-edited.
	assert.Equal(t, 2, e.Index())
	assert.Equal(t, edits, m.edits)
}

func TestConcurrentClicksSerialized(t *testing.T) {
	m := &fakeMessenger{}
	e := newShown(t, m, make([]string, 50), &Table[string]{
		Columns: []string{"Name"},
		Row:     func(s string) []string { return []string{s} },
		Size:    1,
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.HandleControl(ControlForward)
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, e.Index())
}
