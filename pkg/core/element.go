package core

import (
	"github.com/go-drift/weft/pkg/graphics"
	"github.com/go-drift/weft/pkg/style"
)

// Element is a concrete UI primitive in the element tree.
//
// Implementations embed [ElementData], which supplies Data and a default
// AcceptsChildren, and add Name and Clone:
//
//	type Spacer struct{ core.ElementData }
//
//	func (s *Spacer) Name() string { return "Spacer" }
//	func (s *Spacer) Clone() core.Element {
//	    c := *s
//	    c.ResetInstance()
//	    return &c
//	}
type Element interface {
	// Name is the element's type name, used as its reconciliation tag.
	Name() string
	// Data returns the element's shared fields.
	Data() *ElementData
	// Clone returns a copy carrying the declared style and user id but no
	// children and no geometry.
	Clone() Element
	// AcceptsChildren reports whether the element may have child specs.
	AcceptsChildren() bool
}

// ElementData holds the fields every element shares.
type ElementData struct {
	Style style.Style
	// UserID is an optional user-assigned name used to address the element
	// in events. It is unrelated to ComponentID.
	UserID string

	// Children is owned by the element. The reconciler fills it.
	Children []Element

	// Geometry, written by the layout pass. X and Y are absolute.
	X       float32
	Y       float32
	Width   float32
	Height  float32
	Padding graphics.EdgeInsets

	// ComponentID is assigned by the reconciler.
	ComponentID ComponentID
}

// Data returns d.
func (d *ElementData) Data() *ElementData { return d }

// AcceptsChildren reports true. Leaf elements override it.
func (d *ElementData) AcceptsChildren() bool { return true }

// ResetInstance clears the per-render fields so a copy can serve as a fresh
// instance: children, geometry, and id.
func (d *ElementData) ResetInstance() {
	d.Children = nil
	d.X, d.Y, d.Width, d.Height = 0, 0, 0, 0
	d.Padding = graphics.EdgeInsets{}
	d.ComponentID = 0
}

// Bounds returns the element's border box.
func (d *ElementData) Bounds() graphics.Rect {
	return graphics.Rect{X: d.X, Y: d.Y, Width: d.Width, Height: d.Height}
}

// ContentBounds returns the border box minus padding and border.
func (d *ElementData) ContentBounds() graphics.Rect {
	return d.Bounds().Deflate(d.Padding).Deflate(d.Style.Border)
}

// WalkElements visits root and its descendants depth first in child order.
// Returning false from fn skips the element's children.
func WalkElements(root Element, fn func(el Element, depth int) bool) {
	if root == nil {
		return
	}
	type entry struct {
		el    Element
		depth int
	}
	stack := []entry{{root, 0}}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(e.el, e.depth) {
			continue
		}
		children := e.el.Data().Children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, entry{children[i], e.depth + 1})
		}
	}
}

// FindElement returns the first element in depth-first order for which
// match returns true.
func FindElement(root Element, match func(Element) bool) Element {
	var found Element
	WalkElements(root, func(el Element, _ int) bool {
		if found != nil {
			return false
		}
		if match(el) {
			found = el
			return false
		}
		return true
	})
	return found
}
