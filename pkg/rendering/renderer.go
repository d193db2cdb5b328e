// Package rendering defines the drawing boundary and walks a positioned
// element tree onto it.
package rendering

import (
	"github.com/go-drift/weft/pkg/core"
	wefterrors "github.com/go-drift/weft/pkg/errors"
	"github.com/go-drift/weft/pkg/graphics"
	"github.com/go-drift/weft/pkg/resource"
	"github.com/go-drift/weft/pkg/style"
	"github.com/go-drift/weft/pkg/text"
)

// Renderer is a drawing backend.
type Renderer interface {
	// Resize is called before a frame whose surface size changed.
	Resize(size graphics.Size)
	DrawRect(rect graphics.Rect, color graphics.Color) error
	// DrawText draws each line of layout starting at origin, the top-left
	// corner of the first line box.
	DrawText(origin graphics.Point, layout *text.Layout, color graphics.Color) error
	DrawImage(rect graphics.Rect, path string) error
	// Submit flushes the frame.
	Submit() error
}

// DrawContext is handed to each [Drawable].
type DrawContext struct {
	Renderer  Renderer
	Text      *text.Measurer
	Resources *resource.Manager
}

// Drawable is implemented by elements that paint themselves. Elements draw
// before their children.
type Drawable interface {
	Draw(ctx *DrawContext) error
}

// Paint draws root and its descendants in tree order. Subtrees with
// display none are skipped. It does not call Submit.
func Paint(ctx *DrawContext, root core.Element) error {
	var err error
	core.WalkElements(root, func(el core.Element, _ int) bool {
		if err != nil {
			return false
		}
		d := el.Data()
		if d.Style.Display == style.DisplayNone {
			return false
		}
		if dr, ok := el.(Drawable); ok {
			if derr := dr.Draw(ctx); derr != nil {
				err = &wefterrors.WeftError{
					Op:          "rendering.Paint",
					Kind:        wefterrors.KindRender,
					ComponentID: uint64(d.ComponentID),
					Err:         derr,
				}
				return false
			}
		}
		return true
	})
	return err
}

// DrawBox paints the background and border of d. Transparent colors are
// skipped.
func DrawBox(r Renderer, d *core.ElementData) error {
	b := d.Bounds()
	if !d.Style.Background.IsTransparent() && !b.IsEmpty() {
		if err := r.DrawRect(b, d.Style.Background); err != nil {
			return err
		}
	}
	bc := d.Style.BorderColor
	in := d.Style.Border
	if bc.IsTransparent() || (in == graphics.EdgeInsets{}) {
		return nil
	}
	edges := []graphics.Rect{
		{X: b.X, Y: b.Y, Width: b.Width, Height: in.Top},
		{X: b.X, Y: b.Bottom() - in.Bottom, Width: b.Width, Height: in.Bottom},
		{X: b.X, Y: b.Y + in.Top, Width: in.Left, Height: b.Height - in.Vertical()},
		{X: b.Right() - in.Right, Y: b.Y + in.Top, Width: in.Right, Height: b.Height - in.Vertical()},
	}
	for _, e := range edges {
		if e.IsEmpty() {
			continue
		}
		if err := r.DrawRect(e, bc); err != nil {
			return err
		}
	}
	return nil
}
