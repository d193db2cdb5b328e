package engine

import (
	"github.com/go-drift/weft/pkg/core"
	"github.com/go-drift/weft/pkg/graphics"
	"github.com/go-drift/weft/pkg/style"
)

// HitTest returns the deepest element under p, or nil. Later siblings are
// drawn over earlier ones, so they are tested first. Subtrees with display
// none are never hit.
func HitTest(root core.Element, p graphics.Point) core.Element {
	if root == nil {
		return nil
	}
	d := root.Data()
	if d.Style.Display == style.DisplayNone || !d.Bounds().Contains(p) {
		return nil
	}
	for i := len(d.Children) - 1; i >= 0; i-- {
		if hit := HitTest(d.Children[i], p); hit != nil {
			return hit
		}
	}
	return root
}
