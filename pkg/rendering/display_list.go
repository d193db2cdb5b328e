package rendering

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-drift/weft/pkg/graphics"
	"github.com/go-drift/weft/pkg/text"
)

// OpKind identifies a recorded drawing operation.
type OpKind int

const (
	OpRect OpKind = iota
	OpText
	OpImage
)

// Op is one recorded drawing operation.
type Op struct {
	Kind  OpKind
	Rect  graphics.Rect
	Color graphics.Color
	// Text holds the lines of an OpText joined with newlines.
	Text   string
	Layout *text.Layout
	// Path is the resource path of an OpImage.
	Path string
}

// String formats the op on one line.
func (o Op) String() string {
	r := o.Rect
	switch o.Kind {
	case OpRect:
		return fmt.Sprintf("rect %g,%g %gx%g %v", r.X, r.Y, r.Width, r.Height, o.Color)
	case OpText:
		return fmt.Sprintf("text %g,%g %q %v", r.X, r.Y, o.Text, o.Color)
	case OpImage:
		return fmt.Sprintf("image %g,%g %gx%g %s", r.X, r.Y, r.Width, r.Height, o.Path)
	default:
		return fmt.Sprintf("Op(%d)", int(o.Kind))
	}
}

// DisplayList is an immutable list of drawing operations for one frame.
// It can be replayed onto any Renderer.
type DisplayList struct {
	ops  []Op
	size graphics.Size
}

// Ops returns the recorded operations.
func (d *DisplayList) Ops() []Op {
	return d.ops
}

// Size returns the surface size the frame was recorded at.
func (d *DisplayList) Size() graphics.Size {
	return d.size
}

// Replay draws the recorded operations onto r and submits.
func (d *DisplayList) Replay(r Renderer) error {
	r.Resize(d.size)
	for _, op := range d.ops {
		var err error
		switch op.Kind {
		case OpRect:
			err = r.DrawRect(op.Rect, op.Color)
		case OpText:
			err = r.DrawText(graphics.Point{X: op.Rect.X, Y: op.Rect.Y}, op.Layout, op.Color)
		case OpImage:
			err = r.DrawImage(op.Rect, op.Path)
		}
		if err != nil {
			return err
		}
	}
	return r.Submit()
}

// Recorder is a Renderer that records each submitted frame as a
// [DisplayList]. It is safe to read frames from other goroutines.
type Recorder struct {
	mu     sync.Mutex
	ops    []Op
	size   graphics.Size
	last   *DisplayList
	frames int
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) append(op Op) {
	r.mu.Lock()
	r.ops = append(r.ops, op)
	r.mu.Unlock()
}

// Resize records the surface size for the next frame.
func (r *Recorder) Resize(size graphics.Size) {
	r.mu.Lock()
	r.size = size
	r.mu.Unlock()
}

// DrawRect records a filled rectangle.
func (r *Recorder) DrawRect(rect graphics.Rect, color graphics.Color) error {
	r.append(Op{Kind: OpRect, Rect: rect, Color: color})
	return nil
}

// DrawText records a text run.
func (r *Recorder) DrawText(origin graphics.Point, layout *text.Layout, color graphics.Color) error {
	if layout == nil {
		return fmt.Errorf("rendering: nil text layout")
	}
	lines := make([]string, len(layout.Lines))
	for i, l := range layout.Lines {
		lines[i] = l.Text
	}
	r.append(Op{
		Kind:   OpText,
		Rect:   graphics.Rect{X: origin.X, Y: origin.Y, Width: layout.Width, Height: layout.Height},
		Color:  color,
		Text:   strings.Join(lines, "\n"),
		Layout: layout,
	})
	return nil
}

// DrawImage records an image placement.
func (r *Recorder) DrawImage(rect graphics.Rect, path string) error {
	r.append(Op{Kind: OpImage, Rect: rect, Path: path})
	return nil
}

// Submit closes the current frame.
func (r *Recorder) Submit() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ops := make([]Op, len(r.ops))
	copy(ops, r.ops)
	r.last = &DisplayList{ops: ops, size: r.size}
	r.ops = r.ops[:0]
	r.frames++
	return nil
}

// Discard drops operations recorded since the last Submit.
func (r *Recorder) Discard() {
	r.mu.Lock()
	r.ops = r.ops[:0]
	r.mu.Unlock()
}

// Last returns the most recently submitted frame, or nil.
func (r *Recorder) Last() *DisplayList {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Frames returns the number of submitted frames.
func (r *Recorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}
