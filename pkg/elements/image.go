package elements

import (
	"github.com/go-drift/weft/pkg/core"
	"github.com/go-drift/weft/pkg/graphics"
	"github.com/go-drift/weft/pkg/layout"
	"github.com/go-drift/weft/pkg/rendering"
)

// Image draws an image resource. Until the resource has loaded it measures
// as zero intrinsic size and draws nothing.
type Image struct {
	core.ElementData
	Path string
}

// NewImage returns an image element for the resource at path.
func NewImage(path string, opts ...Option) *Image {
	return &Image{ElementData: newData(opts), Path: path}
}

// Name implements core.Element.
func (i *Image) Name() string { return "Image" }

// AcceptsChildren reports false.
func (i *Image) AcceptsChildren() bool { return false }

// Clone implements core.Element.
func (i *Image) Clone() core.Element {
	cp := *i
	cp.ResetInstance()
	return &cp
}

// Measure implements layout.Measurable. It requests the resource, so the
// first layout starts the load.
func (i *Image) Measure(ctx *layout.MeasureContext, known layout.KnownSize, _ layout.AvailableSize) (layout.Size, error) {
	var intrinsic graphics.Size
	if ctx.Resources != nil {
		ctx.Resources.Request(i.Path)
		intrinsic, _ = ctx.Resources.Size(i.Path)
	}
	return layout.ImageSize(intrinsic, known), nil
}

// Draw places the image in its content box once loaded.
func (i *Image) Draw(ctx *rendering.DrawContext) error {
	if err := rendering.DrawBox(ctx.Renderer, &i.ElementData); err != nil {
		return err
	}
	if ctx.Resources == nil {
		return nil
	}
	if _, ok := ctx.Resources.Size(i.Path); !ok {
		return nil
	}
	return ctx.Renderer.DrawImage(i.ContentBounds(), i.Path)
}
