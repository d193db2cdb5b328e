package engine

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-drift/weft/pkg/core"
	"github.com/go-drift/weft/pkg/elements"
	"github.com/go-drift/weft/pkg/graphics"
	"github.com/go-drift/weft/pkg/rendering"
	"github.com/go-drift/weft/pkg/resource"
	"github.com/go-drift/weft/pkg/text"
)

// Option configures an App.
type Option func(*App)

// WithSize sets the initial surface size. The default is 800x600.
func WithSize(size graphics.Size) Option {
	return func(a *App) { a.size = size }
}

// WithRenderer sets the drawing backend. The default is a
// [rendering.Recorder].
func WithRenderer(r rendering.Renderer) Option {
	return func(a *App) { a.renderer = r }
}

// WithMeasurer sets the text measurer. The default uses the shared Go fonts.
func WithMeasurer(m *text.Measurer) Option {
	return func(a *App) { a.measure.Text = m }
}

// WithResources sets the resource manager images load from. The app
// installs itself as the manager's notifier.
func WithResources(m *resource.Manager) Option {
	return func(a *App) { a.measure.Resources = m }
}

// WithLogger sets the logger for cycle and reconcile debug output.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithBackground sets the window container's background color.
func WithBackground(c graphics.Color) Option {
	return func(a *App) { a.window.Style.Background = c }
}

// WithWindow replaces the window container prototype. The root spec is
// rendered as its only child.
func WithWindow(c *elements.Container) Option {
	return func(a *App) {
		if c != nil {
			a.window = c
		}
	}
}

// WithStateRetention keeps state for components that left the tree instead
// of pruning it after each cycle. Off by default.
func WithStateRetention(keep bool) Option {
	return func(a *App) { a.prune = !keep }
}

// WithTreeDump writes the shadow tree and element tree to w after every
// committed cycle.
func WithTreeDump(w io.Writer) Option {
	return func(a *App) { a.dumps = append(a.dumps, treeDump{w: w}) }
}

// WithFrameTrace records per-phase timings for the last capacity frames.
// Frames slower than threshold count as dropped.
func WithFrameTrace(capacity int, threshold time.Duration) Option {
	return func(a *App) { a.frameTrace = NewFrameTraceBuffer(capacity, threshold) }
}

func defaultMeasurer() *text.Measurer {
	fm, err := text.DefaultFontManager()
	if err != nil {
		// Already reported; Text elements fail to measure without it.
		return nil
	}
	return text.NewMeasurer(fm)
}

type treeDump struct {
	w io.Writer
}

func (d treeDump) write(frame int, tree *core.ShadowTree, root core.Element) error {
	if _, err := fmt.Fprintf(d.w, "# frame %d shadow\n", frame); err != nil {
		return err
	}
	if err := core.PrintShadow(d.w, tree); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(d.w, "# frame %d elements\n", frame); err != nil {
		return err
	}
	return core.PrintElements(d.w, root)
}
