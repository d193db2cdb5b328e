package elements

import (
	"github.com/go-drift/weft/pkg/core"
	"github.com/go-drift/weft/pkg/rendering"
	"github.com/go-drift/weft/pkg/style"
)

// Container is a flex box that holds other elements.
type Container struct {
	core.ElementData
}

// NewContainer returns a container with default style.
func NewContainer(opts ...Option) *Container {
	return &Container{ElementData: newData(opts)}
}

// Column returns a container laid out top to bottom.
func Column(opts ...Option) *Container {
	c := NewContainer(opts...)
	c.Style.Direction = style.FlexDirectionColumn
	return c
}

// Name implements core.Element.
func (c *Container) Name() string { return "Container" }

// Clone implements core.Element.
func (c *Container) Clone() core.Element {
	cp := *c
	cp.ResetInstance()
	return &cp
}

// Draw paints the background and border.
func (c *Container) Draw(ctx *rendering.DrawContext) error {
	return rendering.DrawBox(ctx.Renderer, &c.ElementData)
}

// Empty is a childless element that occupies space but draws nothing.
type Empty struct {
	core.ElementData
}

// NewEmpty returns an empty element.
func NewEmpty(opts ...Option) *Empty {
	return &Empty{ElementData: newData(opts)}
}

// Name implements core.Element.
func (e *Empty) Name() string { return "Empty" }

// AcceptsChildren reports false.
func (e *Empty) AcceptsChildren() bool { return false }

// Clone implements core.Element.
func (e *Empty) Clone() core.Element {
	cp := *e
	cp.ResetInstance()
	return &cp
}
