package testing

import (
	"errors"
	"testing"
	"time"

	"github.com/go-drift/weft/pkg/core"
	"github.com/go-drift/weft/pkg/engine"
	"github.com/go-drift/weft/pkg/graphics"
	"github.com/go-drift/weft/pkg/rendering"
)

const (
	// DefaultTestWidth is the default width of the test surface.
	DefaultTestWidth = 800
	// DefaultTestHeight is the default height of the test surface.
	DefaultTestHeight = 600
)

// ErrSettleTimeout is returned when PumpAndSettle exceeds its timeout.
var ErrSettleTimeout = errors.New("PumpAndSettle timed out: app did not settle")

// Tester runs a root spec through an [engine.App] that records every frame.
type Tester struct {
	app      *engine.App
	recorder *rendering.Recorder
}

// NewTester returns a tester for root and pumps the first frame. Extra
// options are applied after the tester's own, so a custom renderer option
// disables display list capture. Call Close when done, or use
// NewTesterWithT.
func NewTester(root core.Spec, opts ...engine.Option) (*Tester, error) {
	rec := rendering.NewRecorder()
	all := append([]engine.Option{
		engine.WithSize(graphics.Size{Width: DefaultTestWidth, Height: DefaultTestHeight}),
		engine.WithRenderer(rec),
	}, opts...)
	t := &Tester{app: engine.New(root, all...), recorder: rec}
	return t, t.Pump()
}

// NewTesterWithT is NewTester that fails t on a first-frame error and
// closes the app via t.Cleanup.
func NewTesterWithT(t *testing.T, root core.Spec, opts ...engine.Option) *Tester {
	t.Helper()
	tester, err := NewTester(root, opts...)
	t.Cleanup(func() { tester.Close() })
	if err != nil {
		t.Fatalf("first frame: %v", err)
	}
	return tester
}

// Close cancels async work started by components.
func (t *Tester) Close() error {
	return t.app.Close()
}

// App returns the underlying app.
func (t *Tester) App() *engine.App {
	return t.app
}

// Pump runs one render cycle.
func (t *Tester) Pump() error {
	return t.app.Render()
}

// PumpAndSettle pumps frames until the app is settled: nothing is queued,
// no redraw is pending, and no async work or resource load is outstanding.
// It returns ErrSettleTimeout if that does not happen within timeout.
func (t *Tester) PumpAndSettle(timeout time.Duration) error {
	const poll = time.Millisecond
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if t.app.NeedsFrame() {
			if err := t.Pump(); err != nil {
				return err
			}
			continue
		}
		if t.app.Settled() {
			return nil
		}
		time.Sleep(poll)
	}
	return ErrSettleTimeout
}

// SetRoot replaces the root spec and pumps a frame.
func (t *Tester) SetRoot(root core.Spec) error {
	t.app.SetRoot(root)
	return t.Pump()
}

// SetSize resizes the surface and pumps a frame.
func (t *Tester) SetSize(size graphics.Size) error {
	t.app.Resize(size)
	return t.Pump()
}

// ShadowTree returns the committed shadow tree.
func (t *Tester) ShadowTree() *core.ShadowTree {
	return t.app.Tree()
}

// Root returns the committed element tree.
func (t *Tester) Root() core.Element {
	return t.app.Root()
}

// State returns the committed state store.
func (t *Tester) State() *core.StateStore {
	return t.app.State()
}

// DisplayList returns the operations of the last committed frame, or nil.
func (t *Tester) DisplayList() *rendering.DisplayList {
	return t.recorder.Last()
}

// Find evaluates a finder against the committed element tree.
func (t *Tester) Find(finder Finder) FinderResult {
	root := t.app.Root()
	if root == nil {
		return FinderResult{finder: finder}
	}
	return FinderResult{elements: finder.Evaluate(root), finder: finder}
}

// ComponentID returns the id of the first shadow node with the given tag.
func (t *Tester) ComponentID(tag string) (core.ComponentID, bool) {
	tree := t.app.Tree()
	if tree == nil {
		return 0, false
	}
	for i := 1; i < tree.Len(); i++ {
		if n := tree.Node(i); n.Tag == tag {
			return n.ID, true
		}
	}
	return 0, false
}
