// Package testbed provides components used by the testing package's own
// tests.
package testbed

import (
	"strconv"

	"github.com/go-drift/weft/pkg/core"
	"github.com/go-drift/weft/pkg/elements"
	"github.com/go-drift/weft/pkg/graphics"
	"github.com/go-drift/weft/pkg/style"
)

// Counter shows a count in a button with user id "increment" and
// increments it on every press. Props, if an int, set the initial count.
var Counter = core.Stateful("Counter", func() int { return -1 },
	func(n int, props any, _ []core.Spec, _ core.ComponentID) (int, core.Spec, core.UpdateFn) {
		if n < 0 {
			n, _ = props.(int)
			n = max(n, 0)
		}
		button := elements.NewContainer(
			elements.ID("increment"),
			elements.Size(style.Px(120), style.Px(40)),
			elements.Background(graphics.ColorBlue),
		)
		label := elements.NewText(strconv.Itoa(n), elements.ID("count"))
		return n, core.El(button, core.El(label)), core.Update(func(n int, ev core.Event) (int, core.UpdateResult) {
			if _, ok := ev.Message.(core.PointerDown); ok {
				n++
			}
			return n, core.Stop()
		})
	})

// List renders one keyed Counter per key inside a column.
func List(keys ...string) core.Spec {
	children := make([]core.Spec, len(keys))
	for i, k := range keys {
		children[i] = core.Comp(Counter).WithKey(k)
	}
	return core.El(elements.Column(elements.ID("list")), children...)
}
