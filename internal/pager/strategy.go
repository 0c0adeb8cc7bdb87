package pager

import (
	"fmt"
	"sort"
)

// Body is one rendered message, kept gateway-neutral so strategies and tests
// never touch discordgo directly.
type Body struct {
	Title       string
	Description string
	Fields      []Field
	Color       int
	Thumbnail   string
	Footer      string
	Attachment  *Attachment
}

// Field is one named embed field.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Attachment is an opaque file attached to the message.
type Attachment struct {
	Name string
	Data []byte
}

// Control is one interactive button on the message.
type Control struct {
	ID       string
	Label    string
	Emoji    string
	Disabled bool
}

// Page is the window a strategy renders: the visible slice plus the paging
// facts needed for presentation.
type Page[T any] struct {
	Items         []T
	Offset        int // index of Items[0] in the full list
	Total         int
	Number        int
	TotalPages    int
	SortAscending bool
}

// Strategy converts a page window into a displayable body and owns the item
// ordering. Exactly one strategy is attached per embed, at construction.
type Strategy[T any] interface {
	PageSize() int
	Cyclic() bool
	CanSort() bool
	Sort(items []T, ascending bool)
	Render(page Page[T]) (*Body, error)
	EmptyBody() *Body
}

// View is one named breakdown view reachable by its own button.
type View struct {
	ID    string
	Label string
}

// ViewRenderer is implemented by strategies that offer breakdown views,
// which suspend item paging until the Back control is pressed.
type ViewRenderer[T any] interface {
	Views() []View
	RenderView(viewID string, items []T) (*Body, error)
}

func hasView(views []View, id string) bool {
	for _, v := range views {
		if v.ID == id {
			return true
		}
	}
	return false
}

// RenderError reports a strategy that could not produce a body for the
// current state. The engine logs it and keeps the previous render.
type RenderError struct {
	Strategy string
	Reason   string
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render (%s): %s", e.Strategy, e.Reason)
}

// Table renders up to three named columns per item. The row at the page's
// leading offset is promoted to titled fields, the remaining rows are
// rendered as literal lines.
type Table[T any] struct {
	Title     string
	Columns   []string
	Row       func(item T) []string
	Compare   func(a, b T) bool // ascending order; nil disables sorting
	Size      int
	Color     int
	Thumbnail string
	NoItems   string

	// Optional breakdown views.
	CustomViews  []View
	RenderCustom func(viewID string, items []T) (*Body, error)
}

func (t *Table[T]) PageSize() int { return t.Size }
func (t *Table[T]) Cyclic() bool  { return false }
func (t *Table[T]) CanSort() bool { return t.Compare != nil }

func (t *Table[T]) Sort(items []T, ascending bool) {
	sort.SliceStable(items, func(i, j int) bool {
		if ascending {
			return t.Compare(items[i], items[j])
		}
		return t.Compare(items[j], items[i])
	})
}

func (t *Table[T]) Render(page Page[T]) (*Body, error) {
	if len(t.Columns) == 0 || len(t.Columns) > 3 {
		return nil, &RenderError{Strategy: "table", Reason: fmt.Sprintf("need 1-3 columns, have %d", len(t.Columns))}
	}

	// Validate every row before emitting anything, so a bad item can never
	// produce a partial table.
	rows := make([][]string, len(page.Items))
	for i, item := range page.Items {
		values := t.Row(item)
		if len(values) != len(t.Columns) {
			return nil, &RenderError{
				Strategy: "table",
				Reason:   fmt.Sprintf("row %d has %d values for %d columns", page.Offset+i, len(values), len(t.Columns)),
			}
		}
		rows[i] = values
	}

	body := &Body{Title: t.Title, Color: t.Color, Thumbnail: t.Thumbnail}
	for i, values := range rows {
		if i == 0 {
			// Highlighted row: titled fields.
			for c, col := range t.Columns {
				body.Fields = append(body.Fields, Field{Name: col, Value: values[c], Inline: true})
			}
			continue
		}
		line := values[0]
		for _, v := range values[1:] {
			line += " | " + v
		}
		body.Description += line + "\n"
	}
	return body, nil
}

func (t *Table[T]) EmptyBody() *Body {
	msg := t.NoItems
	if msg == "" {
		msg = "Nothing to show."
	}
	return &Body{Title: t.Title, Description: msg, Color: t.Color}
}

func (t *Table[T]) Views() []View { return t.CustomViews }

func (t *Table[T]) RenderView(viewID string, items []T) (*Body, error) {
	if t.RenderCustom == nil {
		return nil, &RenderError{Strategy: "table", Reason: "no view renderer for " + viewID}
	}
	return t.RenderCustom(viewID, items)
}

// List renders one named field per item.
type List[T any] struct {
	Title   string
	Field   func(item T) (name, value string)
	Compare func(a, b T) bool
	Size    int
	Color   int
	NoItems string
}

func (l *List[T]) PageSize() int { return l.Size }
func (l *List[T]) Cyclic() bool  { return false }
func (l *List[T]) CanSort() bool { return l.Compare != nil }

func (l *List[T]) Sort(items []T, ascending bool) {
	sort.SliceStable(items, func(i, j int) bool {
		if ascending {
			return l.Compare(items[i], items[j])
		}
		return l.Compare(items[j], items[i])
	})
}

func (l *List[T]) Render(page Page[T]) (*Body, error) {
	body := &Body{Title: l.Title, Color: l.Color}
	for _, item := range page.Items {
		name, value := l.Field(item)
		if name == "" {
			return nil, &RenderError{Strategy: "list", Reason: "empty field name"}
		}
		body.Fields = append(body.Fields, Field{Name: name, Value: value})
	}
	return body, nil
}

func (l *List[T]) EmptyBody() *Body {
	msg := l.NoItems
	if msg == "" {
		msg = "Nothing to show."
	}
	return &Body{Title: l.Title, Description: msg, Color: l.Color}
}

// Cyclic shows exactly one item per page and wraps around at both ends,
// for carousel-style messages.
type Cyclic[T any] struct {
	Display func(item T) (*Body, error)
	Compare func(a, b T) bool
	NoItems string
}

func (c *Cyclic[T]) PageSize() int { return 1 }
func (c *Cyclic[T]) Cyclic() bool  { return true }
func (c *Cyclic[T]) CanSort() bool { return c.Compare != nil }

func (c *Cyclic[T]) Sort(items []T, ascending bool) {
	sort.SliceStable(items, func(i, j int) bool {
		if ascending {
			return c.Compare(items[i], items[j])
		}
		return c.Compare(items[j], items[i])
	})
}

func (c *Cyclic[T]) Render(page Page[T]) (*Body, error) {
	if len(page.Items) == 0 {
		return nil, &RenderError{Strategy: "cyclic", Reason: "empty page"}
	}
	return c.Display(page.Items[0])
}

func (c *Cyclic[T]) EmptyBody() *Body {
	msg := c.NoItems
	if msg == "" {
		msg = "Nothing to show."
	}
	return &Body{Description: msg}
}
