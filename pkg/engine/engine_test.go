package engine

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strconv"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/weft/pkg/core"
	"github.com/go-drift/weft/pkg/elements"
	wefterrors "github.com/go-drift/weft/pkg/errors"
	"github.com/go-drift/weft/pkg/graphics"
	"github.com/go-drift/weft/pkg/layout"
	"github.com/go-drift/weft/pkg/rendering"
	"github.com/go-drift/weft/pkg/resource"
	"github.com/go-drift/weft/pkg/style"
)

// quietHandler records reports instead of logging them.
type quietHandler struct {
	mu     sync.Mutex
	cycles []*wefterrors.CycleError
	panics []*wefterrors.PanicError
}

func (h *quietHandler) HandleError(*wefterrors.WeftError) {}

func (h *quietHandler) HandlePanic(p *wefterrors.PanicError) {
	h.mu.Lock()
	h.panics = append(h.panics, p)
	h.mu.Unlock()
}

func (h *quietHandler) HandleCycleError(c *wefterrors.CycleError) {
	h.mu.Lock()
	h.cycles = append(h.cycles, c)
	h.mu.Unlock()
}

func quiet(t *testing.T) *quietHandler {
	t.Helper()
	h := &quietHandler{}
	prev := wefterrors.SetHandler(h)
	t.Cleanup(func() { wefterrors.SetHandler(prev) })
	return h
}

type tapState struct {
	taps int
	last string
}

// tapper counts presses on a fixed-size button.
var tapper = core.Stateful("Tapper", func() tapState { return tapState{} },
	func(s tapState, _ any, _ []core.Spec, _ core.ComponentID) (tapState, core.Spec, core.UpdateFn) {
		button := elements.NewContainer(elements.ID("button"), elements.Size(style.Px(100), style.Px(50)))
		label := elements.NewText(strconv.Itoa(s.taps), elements.ID("label"))
		return s, core.El(button, core.El(label)), core.Update(func(s tapState, ev core.Event) (tapState, core.UpdateResult) {
			if _, ok := ev.Message.(core.PointerDown); ok {
				s.taps++
				s.last = ev.Source
			}
			return s, core.Stop()
		})
	})

func mustRender(t *testing.T, a *App) {
	t.Helper()
	if err := a.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}
}

func findTag(t *testing.T, tree *core.ShadowTree, tag string) core.ComponentID {
	t.Helper()
	for i := 1; i < tree.Len(); i++ {
		if n := tree.Node(i); n.Tag == tag {
			return n.ID
		}
	}
	t.Fatalf("no %s in tree", tag)
	return 0
}

func textOf(t *testing.T, a *App, userID string) string {
	t.Helper()
	el := core.FindElement(a.Root(), func(el core.Element) bool { return el.Data().UserID == userID })
	txt, ok := el.(*elements.Text)
	if !ok {
		t.Fatalf("element %q = %T, want *elements.Text", userID, el)
	}
	return txt.Content
}

func TestRenderAndTap(t *testing.T) {
	a := New(core.Comp(tapper), WithSize(graphics.Size{Width: 200, Height: 100}))
	if !a.NeedsFrame() {
		t.Fatal("new app should need a frame")
	}
	mustRender(t, a)
	if a.NeedsFrame() {
		t.Error("NeedsFrame after render with nothing pending")
	}
	if got := textOf(t, a, "label"); got != "0" {
		t.Fatalf("label = %q, want 0", got)
	}

	if !a.PointerDown(5, 5) {
		t.Fatal("PointerDown on the button was not handled")
	}
	if !a.NeedsFrame() {
		t.Error("update should request a redraw")
	}
	mustRender(t, a)
	if got := textOf(t, a, "label"); got != "1" {
		t.Errorf("label = %q, want 1", got)
	}
	s, err := core.StateAs[tapState](a.State(), findTag(t, a.Tree(), "Tapper"))
	if err != nil {
		t.Fatal(err)
	}
	if s.last != "label" {
		t.Errorf("event source = %q, want label", s.last)
	}

	if a.PointerDown(150, 80) {
		t.Error("press outside the button should not reach the tapper")
	}
	if a.Frames() != 2 {
		t.Errorf("Frames = %d, want 2", a.Frames())
	}
}

func TestPointerBeforeFirstFrame(t *testing.T) {
	a := New(core.Comp(tapper))
	if a.PointerDown(1, 1) {
		t.Error("pointer handled before any frame")
	}
}

func TestBubbling(t *testing.T) {
	var order []string
	handler := func(name string, result core.UpdateResult) core.UpdateFn {
		return func(state any, ev core.Event) (any, core.UpdateResult) {
			order = append(order, name)
			return state, result
		}
	}
	inner := &core.Component{Tag: "Inner", Factory: func(state any, _ any, _ []core.Spec, _ core.ComponentID) (any, core.Spec, core.UpdateFn) {
		return state, core.El(elements.NewEmpty(elements.ID("leaf"), elements.Size(style.Px(10), style.Px(10)))), handler("inner", core.Continue())
	}}
	middle := &core.Component{Tag: "Middle", Factory: func(state any, _ any, _ []core.Spec, _ core.ComponentID) (any, core.Spec, core.UpdateFn) {
		return state, core.Comp(inner), handler("middle", core.Stop())
	}}
	outer := &core.Component{Tag: "Outer", Factory: func(state any, _ any, _ []core.Spec, _ core.ComponentID) (any, core.Spec, core.UpdateFn) {
		return state, core.Comp(middle), handler("outer", core.Continue())
	}}

	a := New(core.Comp(outer))
	mustRender(t, a)
	a.PointerMove(2, 2)
	if diff := cmp.Diff([]string{"inner", "middle"}, order); diff != "" {
		t.Errorf("bubble order (-want +got):\n%s", diff)
	}
}

func TestSend(t *testing.T) {
	a := New(core.Comp(tapper))
	mustRender(t, a)
	id := findTag(t, a.Tree(), "Tapper")
	if err := a.Send(id, core.PointerDown{}); err != nil {
		t.Fatal(err)
	}
	mustRender(t, a)
	if got := textOf(t, a, "label"); got != "1" {
		t.Errorf("label = %q, want 1", got)
	}
	if err := a.Send(9999, "hello"); err == nil {
		t.Error("Send to unknown id should fail")
	}
}

func TestFailedCycleKeepsPreviousFrame(t *testing.T) {
	h := quiet(t)
	a := New(core.Comp(tapper))
	mustRender(t, a)
	tree, root, entries := a.Tree(), a.Root(), a.State().Len()

	dup := core.El(elements.NewContainer(),
		core.El(elements.NewEmpty()).WithKey("k"),
		core.El(elements.NewEmpty()).WithKey("k"))
	a.SetRoot(dup)
	err := a.Render()
	var cerr *wefterrors.CycleError
	if !errors.As(err, &cerr) || cerr.Phase != "reconcile" {
		t.Fatalf("Render error = %v, want reconcile CycleError", err)
	}
	var serr *wefterrors.SpecError
	if !errors.As(err, &serr) {
		t.Errorf("error %v does not wrap a SpecError", err)
	}
	if a.Tree() != tree || a.Root() != root {
		t.Error("failed cycle replaced the committed trees")
	}
	if got := a.State().Len(); got != entries {
		t.Errorf("state entries = %d, want %d", got, entries)
	}
	if len(h.cycles) != 1 {
		t.Errorf("reported cycle errors = %d, want 1", len(h.cycles))
	}

	// The next good cycle reuses the committed identities.
	a.SetRoot(core.Comp(tapper))
	mustRender(t, a)
	if got := a.Tree().IDs(); !cmp.Equal(got, tree.IDs()) {
		t.Errorf("ids after recovery = %v, want %v", got, tree.IDs())
	}
}

func TestPanicInRenderIsRecovered(t *testing.T) {
	h := quiet(t)
	boom := core.Func("Boom", func(any, []core.Spec, core.ComponentID) core.Spec {
		panic("render failed")
	})
	a := New(core.Comp(boom))
	err := a.Render()
	var cerr *wefterrors.CycleError
	if !errors.As(err, &cerr) {
		t.Fatalf("Render error = %v, want CycleError", err)
	}
	if cerr.Recovered != "render failed" || cerr.Phase != "reconcile" {
		t.Errorf("cycle error = %+v", cerr)
	}
	if a.Tree() != nil || a.State().Len() != 0 {
		t.Error("panicking first cycle committed something")
	}
	if len(h.cycles) != 1 {
		t.Errorf("reported = %d, want 1", len(h.cycles))
	}
}

// brokenLeaf fails to measure.
type brokenLeaf struct{ core.ElementData }

func (b *brokenLeaf) Name() string          { return "Broken" }
func (b *brokenLeaf) AcceptsChildren() bool { return false }
func (b *brokenLeaf) Clone() core.Element {
	c := *b
	c.ResetInstance()
	return &c
}

func (b *brokenLeaf) Measure(*layout.MeasureContext, layout.KnownSize, layout.AvailableSize) (layout.Size, error) {
	return layout.Size{}, errors.New("cannot measure")
}

func TestLayoutFailure(t *testing.T) {
	quiet(t)
	a := New(core.El(&brokenLeaf{ElementData: core.ElementData{Style: style.Default()}}))
	err := a.Render()
	var cerr *wefterrors.CycleError
	if !errors.As(err, &cerr) || cerr.Phase != "layout" {
		t.Fatalf("Render error = %v, want layout CycleError", err)
	}
	var werr *wefterrors.WeftError
	if !errors.As(err, &werr) || werr.Kind != wefterrors.KindMeasure {
		t.Errorf("error %v should wrap a measure WeftError", err)
	}
}

// failingRenderer records draws but refuses to submit.
type failingRenderer struct {
	*rendering.Recorder
}

func (f failingRenderer) Submit() error { return errors.New("device lost") }

func TestSubmitFailureDiscardsFrame(t *testing.T) {
	quiet(t)
	rec := rendering.NewRecorder()
	a := New(core.Comp(tapper), WithRenderer(failingRenderer{rec}))
	err := a.Render()
	var cerr *wefterrors.CycleError
	if !errors.As(err, &cerr) || cerr.Phase != "draw" {
		t.Fatalf("Render error = %v, want draw CycleError", err)
	}
	if a.Frames() != 0 || a.Tree() != nil {
		t.Error("failed submit committed the frame")
	}
	if err := rec.Submit(); err != nil {
		t.Fatal(err)
	}
	if n := len(rec.Last().Ops()); n != 0 {
		t.Errorf("ops left after discard = %d, want 0", n)
	}
}

func TestPruning(t *testing.T) {
	withTapper := core.El(elements.NewContainer(), core.Comp(tapper))
	without := core.El(elements.NewContainer(), core.El(elements.NewEmpty()))

	a := New(withTapper)
	mustRender(t, a)
	before := a.State().Len()
	a.SetRoot(without)
	mustRender(t, a)
	if got := a.State().Len(); got >= before {
		t.Errorf("state entries = %d after removal, want fewer than %d", got, before)
	}
	for _, id := range a.State().IDs() {
		if !a.Tree().Contains(id) {
			t.Errorf("state kept for %v which is not in the tree", id)
		}
	}

	kept := New(withTapper, WithStateRetention(true))
	mustRender(t, kept)
	before = kept.State().Len()
	kept.SetRoot(without)
	mustRender(t, kept)
	if got := kept.State().Len(); got < before {
		t.Errorf("retained state entries = %d, want at least %d", got, before)
	}
}

// newFetcher returns a component whose press starts a request that
// completes with "done" once release is closed.
func newFetcher(release <-chan struct{}) *core.Component {
	return core.Stateful("Fetcher", func() string { return "idle" },
		func(s string, _ any, _ []core.Spec, _ core.ComponentID) (string, core.Spec, core.UpdateFn) {
			status := elements.NewText(s, elements.ID("status"))
			return s, core.El(status), core.Update(func(s string, ev core.Event) (string, core.UpdateResult) {
				switch m := ev.Message.(type) {
				case core.PointerDown:
					return "loading", core.UpdateResult{Async: func(ctx context.Context) (any, error) {
						select {
						case <-release:
							return "done", nil
						case <-ctx.Done():
							return nil, ctx.Err()
						}
					}}
				case core.UserMessage:
					if m.Err != nil {
						return "error", core.Stop()
					}
					return m.Value.(string), core.Stop()
				}
				return s, core.Stop()
			})
		})
}

func TestAsyncResultDelivered(t *testing.T) {
	release := make(chan struct{})
	a := New(core.Comp(newFetcher(release)))
	defer a.Close()
	mustRender(t, a)
	if !a.PointerDown(1, 1) {
		t.Fatal("press not handled")
	}
	mustRender(t, a)
	if got := textOf(t, a, "status"); got != "loading" {
		t.Fatalf("status = %q, want loading", got)
	}

	close(release)
	a.asyncWG.Wait()
	if !a.NeedsFrame() {
		t.Fatal("async result should request a frame")
	}
	mustRender(t, a)
	if got := textOf(t, a, "status"); got != "done" {
		t.Errorf("status = %q, want done", got)
	}
}

func TestAsyncDroppedAfterRestart(t *testing.T) {
	a := New(core.Comp(newFetcher(make(chan struct{}))))
	defer a.Close()
	mustRender(t, a)
	a.PointerDown(1, 1)
	a.Restart()
	a.asyncWG.Wait()
	mustRender(t, a)
	if got := textOf(t, a, "status"); got != "idle" {
		t.Errorf("status = %q, want idle after restart", got)
	}
}

func TestAsyncAfterCloseDropped(t *testing.T) {
	a := New(core.Comp(newFetcher(make(chan struct{}))))
	mustRender(t, a)
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}
	if !a.PointerDown(1, 1) {
		t.Fatal("press not handled")
	}
	if n := a.asyncCount.Load(); n != 0 {
		t.Errorf("async after close = %d, want 0", n)
	}
	a.Restart()
	a.PointerDown(1, 1)
	if n := a.asyncCount.Load(); n != 0 {
		t.Errorf("async after close and restart = %d, want 0", n)
	}
}

func TestCloseRacesPointer(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	a := New(core.Comp(newFetcher(release)))
	mustRender(t, a)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range 50 {
			a.PointerDown(1, 1)
		}
	}()
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}
	wg.Wait()
	a.asyncWG.Wait()
	if n := a.asyncCount.Load(); n != 0 {
		t.Errorf("async still running = %d", n)
	}
}

func TestRestartResetsIdentity(t *testing.T) {
	a := New(core.Comp(tapper))
	mustRender(t, a)
	a.Send(findTag(t, a.Tree(), "Tapper"), core.PointerDown{})
	mustRender(t, a)
	first := a.Tree().IDs()

	a.Restart()
	if a.Tree() != nil || a.State().Len() != 0 {
		t.Fatal("Restart kept the tree or state")
	}
	mustRender(t, a)
	if diff := cmp.Diff(first, a.Tree().IDs()); diff != "" {
		t.Errorf("ids after restart (-want +got):\n%s", diff)
	}
	if first[0] != 1 {
		t.Errorf("first id = %v, want 1", first[0])
	}
	if got := textOf(t, a, "label"); got != "0" {
		t.Errorf("label = %q, want 0 after restart", got)
	}
}

func TestDispatch(t *testing.T) {
	a := New(core.Comp(tapper))
	mustRender(t, a)
	ran := 0
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.Dispatch(func() { ran++ })
		}()
	}
	wg.Wait()
	a.Dispatch(nil)
	if !a.NeedsFrame() {
		t.Fatal("queued callbacks should need a frame")
	}
	mustRender(t, a)
	if ran != 4 {
		t.Errorf("callbacks run = %d, want 4", ran)
	}
}

func TestDispatchPanicDoesNotAbortCycle(t *testing.T) {
	h := quiet(t)
	a := New(core.Comp(tapper))
	a.Dispatch(func() { panic("bad callback") })
	mustRender(t, a)
	if len(h.panics) != 1 {
		t.Errorf("reported panics = %d, want 1", len(h.panics))
	}
}

func TestResizeRelayouts(t *testing.T) {
	rec := rendering.NewRecorder()
	a := New(core.El(elements.NewEmpty()), WithRenderer(rec), WithSize(graphics.Size{Width: 10, Height: 10}))
	mustRender(t, a)
	a.Resize(graphics.Size{Width: 30, Height: 20})
	if !a.NeedsFrame() {
		t.Fatal("resize should request a frame")
	}
	mustRender(t, a)
	if got := a.Root().Data().Bounds(); got != (graphics.Rect{Width: 30, Height: 20}) {
		t.Errorf("window bounds = %v", got)
	}
	if got := rec.Last().Size(); got != (graphics.Size{Width: 30, Height: 20}) {
		t.Errorf("recorded size = %v", got)
	}
}

func TestResourceLoadTriggersRedraw(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 30, 10))); err != nil {
		t.Fatal(err)
	}
	res := resource.NewManager(fstest.MapFS{"logo.png": {Data: buf.Bytes()}}, nil)
	img := elements.NewImage("logo.png", elements.ID("logo"))
	window := elements.NewContainer(elements.Styled(func(s *style.Style) { s.Align = style.AlignStart }))
	a := New(core.El(img), WithResources(res), WithWindow(window))
	defer a.Close()

	mustRender(t, a)
	res.Wait()
	if !a.NeedsFrame() {
		t.Fatal("load should request a frame")
	}
	mustRender(t, a)
	el := core.FindElement(a.Root(), func(el core.Element) bool { return el.Data().UserID == "logo" })
	if got := el.Data().Bounds(); got != (graphics.Rect{Width: 30, Height: 10}) {
		t.Errorf("image bounds = %v, want 30x10", got)
	}
}

// panicWriter panics on every write.
type panicWriter struct{}

func (panicWriter) Write([]byte) (int, error) { panic("dump target gone") }

func TestDumpPanicAfterCommit(t *testing.T) {
	h := quiet(t)
	var dump bytes.Buffer
	a := New(core.Comp(tapper), WithTreeDump(panicWriter{}), WithTreeDump(&dump))

	if err := a.Render(); err != nil {
		t.Fatalf("Render = %v, want nil once the frame committed", err)
	}
	if a.Frames() != 1 {
		t.Errorf("frames = %d, want 1", a.Frames())
	}
	if a.Tree() == nil {
		t.Error("committed tree missing")
	}
	if len(h.cycles) != 0 {
		t.Errorf("cycle errors = %d, want 0", len(h.cycles))
	}
	if len(h.panics) != 1 || h.panics[0].Op != "engine.dump" {
		t.Errorf("panics = %v, want one from engine.dump", h.panics)
	}
	if !strings.Contains(dump.String(), "# frame 1 shadow") {
		t.Errorf("later dumps should still run, got %q", dump.String())
	}
	mustRender(t, a)
	if a.Frames() != 2 {
		t.Errorf("frames = %d, want 2", a.Frames())
	}
}

func TestTreeDumpAndTrace(t *testing.T) {
	quiet(t)
	var dump bytes.Buffer
	a := New(core.Comp(tapper), WithTreeDump(&dump), WithFrameTrace(8, time.Hour))
	mustRender(t, a)
	out := dump.String()
	for _, want := range []string{"# frame 1 shadow", "└─ root #0", "Tapper", "# frame 1 elements"} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}

	a.SetRoot(core.Spec{})
	a.Render()
	tl := a.FrameTimeline()
	if len(tl.Samples) != 2 || tl.FailedFrames != 1 || tl.DroppedFrames != 0 {
		t.Errorf("timeline = %+v", tl)
	}
	if tl.Samples[0].Counts.ShadowNodes == 0 || tl.Samples[0].Failed || !tl.Samples[1].Failed {
		t.Errorf("samples = %+v", tl.Samples)
	}
}

func TestFrameTraceBufferWraps(t *testing.T) {
	b := NewFrameTraceBuffer(3, time.Millisecond)
	for i := range 5 {
		b.Add(FrameSample{Timestamp: int64(i)}, time.Duration(i)*time.Millisecond)
	}
	tl := b.Snapshot()
	var got []int64
	for _, s := range tl.Samples {
		got = append(got, s.Timestamp)
	}
	if diff := cmp.Diff([]int64{2, 3, 4}, got); diff != "" {
		t.Errorf("samples (-want +got):\n%s", diff)
	}
	if tl.DroppedFrames != 3 {
		t.Errorf("dropped = %d, want 3", tl.DroppedFrames)
	}
	if n := len(tl.Last(2).Samples); n != 2 {
		t.Errorf("Last(2) = %d samples", n)
	}
}
