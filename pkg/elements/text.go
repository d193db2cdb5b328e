package elements

import (
	"fmt"

	"github.com/go-drift/weft/pkg/core"
	"github.com/go-drift/weft/pkg/graphics"
	"github.com/go-drift/weft/pkg/layout"
	"github.com/go-drift/weft/pkg/rendering"
	"github.com/go-drift/weft/pkg/text"
)

// Text draws a run of text, wrapped to its width.
type Text struct {
	core.ElementData
	Content string
}

// NewText returns a text element.
func NewText(content string, opts ...Option) *Text {
	return &Text{ElementData: newData(opts), Content: content}
}

// Name implements core.Element.
func (t *Text) Name() string { return "Text" }

// AcceptsChildren reports false.
func (t *Text) AcceptsChildren() bool { return false }

// Clone implements core.Element.
func (t *Text) Clone() core.Element {
	cp := *t
	cp.ResetInstance()
	return &cp
}

func (t *Text) textStyle() text.Style {
	return text.Style{Size: t.Style.EffectiveFontSize(), Weight: t.Style.FontWeight}
}

// Measure implements layout.Measurable.
func (t *Text) Measure(ctx *layout.MeasureContext, known layout.KnownSize, avail layout.AvailableSize) (layout.Size, error) {
	if ctx.Text == nil {
		return layout.Size{}, fmt.Errorf("text %q: no text measurer", t.Content)
	}
	l, err := ctx.Text.Measure(t.ComponentID, t.Content, t.textStyle(), layout.WidthConstraint(known, avail))
	if err != nil {
		return layout.Size{}, err
	}
	sz := layout.Size{Width: l.Width, Height: l.Height}
	if known.HasWidth {
		sz.Width = known.Width
	}
	if known.HasHeight {
		sz.Height = known.Height
	}
	return sz, nil
}

// Draw lays the text out to its content box and draws it.
func (t *Text) Draw(ctx *rendering.DrawContext) error {
	if err := rendering.DrawBox(ctx.Renderer, &t.ElementData); err != nil {
		return err
	}
	if ctx.Text == nil {
		return fmt.Errorf("text %q: no text measurer", t.Content)
	}
	content := t.ContentBounds()
	l, err := ctx.Text.Measure(t.ComponentID, t.Content, t.textStyle(), content.Width)
	if err != nil {
		return err
	}
	return ctx.Renderer.DrawText(graphics.Point{X: content.X, Y: content.Y}, l, t.Style.Color)
}
