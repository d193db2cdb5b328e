// Package demo is the application rendered by weft run: a counter, an
// asynchronous load, a keyed list that can be rotated, and an optional
// image.
package demo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-drift/weft/pkg/core"
	"github.com/go-drift/weft/pkg/elements"
	"github.com/go-drift/weft/pkg/graphics"
	"github.com/go-drift/weft/pkg/style"
)

// User ids of the demo's interactive elements.
const (
	IncrementID = "increment"
	LoadID      = "load"
	RotateID    = "rotate"
	StatusID    = "status"
	ListID      = "list"
)

// ItemID returns the user id of the list row for item.
func ItemID(item string) string { return "item:" + item }

// Props configure the demo.
type Props struct {
	Title string
	Items []string
	// Image is a resource path drawn below the list, if set.
	Image string
	// Delay is how long the simulated load takes.
	Delay time.Duration
}

// State is the demo's component state.
type State struct {
	Count  int
	Status string
	// Order is the current item order. Items added to Props are appended;
	// removed ones are dropped.
	Order []string
}

var (
	accent   = graphics.RGB(0x25, 0x63, 0xeb)
	muted    = graphics.RGB(0xe5, 0xe7, 0xeb)
	selected = graphics.RGB(0x16, 0xa3, 0x4a)
)

// Root returns the spec for the demo app.
func Root(p Props) core.Spec {
	return core.Comp(App).WithProps(p)
}

// App is the demo's top-level component.
var App = core.Stateful("Demo", func() State { return State{Status: "idle"} }, render)

func render(s State, props any, _ []core.Spec, _ core.ComponentID) (State, core.Spec, core.UpdateFn) {
	p, _ := props.(Props)
	s.Order = syncOrder(s.Order, p.Items)

	rows := make([]core.Spec, len(s.Order))
	for i, item := range s.Order {
		rows[i] = core.Comp(Item).WithKey(item).WithProps(item)
	}

	children := []core.Spec{
		core.El(elements.NewText(p.Title, elements.ID("title"), elements.Styled(func(st *style.Style) {
			st.FontSize = 20
			st.FontWeight = style.FontWeightBold
		}))),
		core.El(elements.NewContainer(gap(8)),
			core.El(button(IncrementID, "count: "+strconv.Itoa(s.Count))),
			core.El(button(LoadID, "load")),
			core.El(button(RotateID, "rotate")),
		),
		core.El(elements.NewText(s.Status, elements.ID(StatusID))),
		core.El(elements.Column(elements.ID(ListID), gap(4)), rows...),
	}
	if p.Image != "" {
		children = append(children, core.El(elements.NewImage(p.Image, elements.ID("image"),
			elements.Size(style.Px(64), style.Unit{}))))
	}

	spec := core.El(elements.Column(elements.Padding(16), gap(12), elements.Styled(func(st *style.Style) {
		st.Align = style.AlignStart
	})), children...)
	return s, spec, core.Update(func(s State, ev core.Event) (State, core.UpdateResult) {
		return update(s, p, ev)
	})
}

func update(s State, p Props, ev core.Event) (State, core.UpdateResult) {
	switch m := ev.Message.(type) {
	case core.PointerDown:
		switch ev.Source {
		case IncrementID:
			s.Count++
		case RotateID:
			if len(s.Order) > 1 {
				s.Order = append(append([]string(nil), s.Order[1:]...), s.Order[0])
			}
		case LoadID:
			if s.Status == "loading" {
				break
			}
			s.Status = "loading"
			return s, core.UpdateResult{Async: load(s.Count, p.Delay)}
		}
	case core.UserMessage:
		if m.Err != nil {
			s.Status = "error: " + m.Err.Error()
		} else {
			s.Status = fmt.Sprint(m.Value)
		}
	}
	return s, core.Stop()
}

func load(count int, delay time.Duration) core.AsyncFunc {
	return func(ctx context.Context) (any, error) {
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-t.C:
			return fmt.Sprintf("loaded at count %d", count), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Item is one list row. Tapping it toggles its selection; the selection
// follows the row's key when the list is rotated.
var Item = core.Stateful("Item", func() bool { return false },
	func(on bool, props any, _ []core.Spec, _ core.ComponentID) (bool, core.Spec, core.UpdateFn) {
		name, _ := props.(string)
		label, bg := name, muted
		if on {
			bg = selected
			label += " ✓"
		}
		row := elements.NewText(label, elements.ID(ItemID(name)), elements.Padding(4), elements.Background(bg))
		return on, core.El(row), core.Update(func(on bool, ev core.Event) (bool, core.UpdateResult) {
			if _, ok := ev.Message.(core.PointerDown); ok {
				return !on, core.Stop()
			}
			return on, core.Continue()
		})
	})

// syncOrder keeps order's arrangement of the entries still in items,
// followed by new entries in items order. Duplicates are dropped so keys
// stay unique.
func syncOrder(order, items []string) []string {
	want := make(map[string]bool, len(items))
	for _, it := range items {
		want[it] = true
	}
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, list := range [][]string{order, items} {
		for _, it := range list {
			if want[it] && !seen[it] {
				seen[it] = true
				out = append(out, it)
			}
		}
	}
	return out
}

func button(id, label string) *elements.Text {
	return elements.NewText(label, elements.ID(id), elements.Padding(6), elements.Background(accent),
		elements.Styled(func(st *style.Style) { st.Color = graphics.ColorWhite }))
}

func gap(v float32) elements.Option {
	return elements.Styled(func(st *style.Style) { st.Gap = v })
}
