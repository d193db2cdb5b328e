package rendering

import (
	"bufio"
	"fmt"
	"io"

	"github.com/go-drift/weft/pkg/graphics"
	"github.com/go-drift/weft/pkg/text"
)

// TextRenderer writes one line per drawing operation and a frame header on
// Submit. It backs the CLI's headless output.
type TextRenderer struct {
	w     *bufio.Writer
	size  graphics.Size
	frame int
	ops   []Op
}

// NewTextRenderer returns a renderer writing to w.
func NewTextRenderer(w io.Writer) *TextRenderer {
	return &TextRenderer{w: bufio.NewWriter(w)}
}

// Resize records the surface size.
func (t *TextRenderer) Resize(size graphics.Size) { t.size = size }

// DrawRect buffers a rect line.
func (t *TextRenderer) DrawRect(rect graphics.Rect, color graphics.Color) error {
	t.ops = append(t.ops, Op{Kind: OpRect, Rect: rect, Color: color})
	return nil
}

// DrawText buffers one line per text line.
func (t *TextRenderer) DrawText(origin graphics.Point, layout *text.Layout, color graphics.Color) error {
	if layout == nil {
		return fmt.Errorf("rendering: nil text layout")
	}
	y := origin.Y
	for _, l := range layout.Lines {
		t.ops = append(t.ops, Op{Kind: OpText, Rect: graphics.Rect{X: origin.X, Y: y, Width: l.Width, Height: layout.LineHeight}, Color: color, Text: l.Text})
		y += layout.LineHeight
	}
	return nil
}

// DrawImage buffers an image line.
func (t *TextRenderer) DrawImage(rect graphics.Rect, path string) error {
	t.ops = append(t.ops, Op{Kind: OpImage, Rect: rect, Path: path})
	return nil
}

// Submit writes the buffered frame.
func (t *TextRenderer) Submit() error {
	t.frame++
	fmt.Fprintf(t.w, "frame %d (%gx%g) %d ops\n", t.frame, t.size.Width, t.size.Height, len(t.ops))
	for _, op := range t.ops {
		fmt.Fprintf(t.w, "  %s\n", op)
	}
	t.ops = t.ops[:0]
	return t.w.Flush()
}
