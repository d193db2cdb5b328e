package testing

import (
	"fmt"

	"github.com/go-drift/weft/pkg/graphics"
)

// Tap presses the center of the first element matched by finder. It returns
// an error if nothing matched or no component handled the press. Pump to
// see the result.
func (t *Tester) Tap(finder Finder) error {
	result := t.Find(finder)
	if !result.Exists() {
		return fmt.Errorf("Tap: finder matched no elements: %s", finder.Description())
	}
	c := center(result.First().Data().Bounds())
	if !t.app.PointerDown(c.X, c.Y) {
		return fmt.Errorf("Tap: no component handled the press at %g,%g: %s", c.X, c.Y, finder.Description())
	}
	return nil
}

// TapAt presses the given position and reports whether a component
// handled it.
func (t *Tester) TapAt(pos graphics.Point) bool {
	return t.app.PointerDown(pos.X, pos.Y)
}

// MoveTo sends pointer motion to the given position and reports whether a
// component handled it.
func (t *Tester) MoveTo(pos graphics.Point) bool {
	return t.app.PointerMove(pos.X, pos.Y)
}

func center(r graphics.Rect) graphics.Point {
	return graphics.Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}
