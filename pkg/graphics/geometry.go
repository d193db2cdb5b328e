// Package graphics provides the float32 geometry and color primitives shared
// by layout, elements, and renderers.
package graphics

import "github.com/chewxy/math32"

// epsilon is the tolerance for floating-point comparisons.
const epsilon = 0.0001

// Point is a position in logical pixels.
type Point struct {
	X float32
	Y float32
}

// Size represents width and height in logical pixels.
type Size struct {
	Width  float32
	Height float32
}

// IsZero reports whether both dimensions are zero.
func (s Size) IsZero() bool {
	return s.Width == 0 && s.Height == 0
}

// Rect is an axis-aligned rectangle given by its origin and size.
type Rect struct {
	X      float32
	Y      float32
	Width  float32
	Height float32
}

// RectFromLTRB constructs a Rect from its edges.
func RectFromLTRB(left, top, right, bottom float32) Rect {
	return Rect{X: left, Y: top, Width: right - left, Height: bottom - top}
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float32 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float32 { return r.Y + r.Height }

// Size returns the size of the rectangle.
func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// Contains reports whether p lies inside r. Edges are inclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// IsEmpty reports whether the rectangle has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Translate returns a new rect offset by (dx, dy).
func (r Rect) Translate(dx, dy float32) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, Width: r.Width, Height: r.Height}
}

// Intersect returns the overlap of two rectangles, or an empty rect.
func (r Rect) Intersect(other Rect) Rect {
	left := max(r.X, other.X)
	top := max(r.Y, other.Y)
	right := min(r.Right(), other.Right())
	bottom := min(r.Bottom(), other.Bottom())
	if left >= right || top >= bottom {
		return Rect{}
	}
	return RectFromLTRB(left, top, right, bottom)
}

// Deflate shrinks the rectangle by the given insets.
func (r Rect) Deflate(in EdgeInsets) Rect {
	return Rect{
		X:      r.X + in.Left,
		Y:      r.Y + in.Top,
		Width:  max(0, r.Width-in.Horizontal()),
		Height: max(0, r.Height-in.Vertical()),
	}
}

// EdgeInsets holds per-side distances.
type EdgeInsets struct {
	Top    float32
	Right  float32
	Bottom float32
	Left   float32
}

// EdgeInsetsAll returns insets with the same value on every side.
func EdgeInsetsAll(v float32) EdgeInsets {
	return EdgeInsets{Top: v, Right: v, Bottom: v, Left: v}
}

// EdgeInsetsSymmetric returns insets with separate vertical and horizontal values.
func EdgeInsetsSymmetric(vertical, horizontal float32) EdgeInsets {
	return EdgeInsets{Top: vertical, Right: horizontal, Bottom: vertical, Left: horizontal}
}

// Horizontal returns Left + Right.
func (e EdgeInsets) Horizontal() float32 { return e.Left + e.Right }

// Vertical returns Top + Bottom.
func (e EdgeInsets) Vertical() float32 { return e.Top + e.Bottom }

// Approx reports whether two values are within epsilon of each other.
func Approx(a, b float32) bool {
	return math32.Abs(a-b) <= epsilon
}
