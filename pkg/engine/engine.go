// Package engine drives render cycles: it owns the shadow tree, the state
// store, and the id allocator, and runs reconcile, layout, and draw under a
// single frame lock.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-drift/weft/pkg/core"
	"github.com/go-drift/weft/pkg/elements"
	wefterrors "github.com/go-drift/weft/pkg/errors"
	"github.com/go-drift/weft/pkg/graphics"
	"github.com/go-drift/weft/pkg/layout"
	"github.com/go-drift/weft/pkg/rendering"
)

// App runs a root spec through repeated render cycles.
//
// Render, the event methods, and Restart serialize on the frame lock.
// Dispatch and RequestRedraw may be called from any goroutine.
type App struct {
	frameMu sync.Mutex

	root   core.Spec
	window *elements.Container
	size   graphics.Size
	// drawnSize is the size last passed to Renderer.Resize.
	drawnSize graphics.Size

	ids    core.IDAllocator
	store  *core.StateStore
	tree   *core.ShadowTree
	rootEl core.Element

	renderer rendering.Renderer
	measure  layout.MeasureContext
	logger   *slog.Logger
	prune    bool
	dumps    []treeDump

	dispatchMu    sync.Mutex
	dispatchQueue []func()
	pendingRedraw atomic.Bool

	// ctx is cancelled by Close and Restart; async work observes it.
	ctx        context.Context
	cancel     context.CancelFunc
	generation uint64
	// closed is set by Close under frameMu; no async work starts after it.
	closed     bool
	asyncWG    sync.WaitGroup
	asyncCount atomic.Int64

	frames     int
	frameTrace *FrameTraceBuffer
}

// New returns an app that renders root inside a window container filling
// the surface. Nothing is rendered until the first call to Render.
func New(root core.Spec, opts ...Option) *App {
	a := &App{
		root:   root,
		window: elements.NewContainer(elements.Background(graphics.ColorWhite)),
		size:   graphics.Size{Width: 800, Height: 600},
		store:  core.NewStateStore(),
		logger: slog.Default(),
		prune:  true,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.renderer == nil {
		a.renderer = rendering.NewRecorder()
	}
	if a.measure.Text == nil {
		a.measure.Text = defaultMeasurer()
	}
	if a.measure.Resources != nil {
		a.measure.Resources.SetNotifier(a.onResourceEvent)
	}
	a.ctx, a.cancel = context.WithCancel(context.Background())
	a.pendingRedraw.Store(true)
	return a
}

// Render runs one cycle: drain the dispatch queue, reconcile, lay out, draw,
// and submit. State writes, the new shadow tree, and the new element tree
// are committed only when every phase succeeds. A failure, including a
// recovered panic, is reported as *errors.CycleError and returned; the
// previous trees and state stay in place.
func (a *App) Render() error {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()
	return a.renderLocked()
}

func (a *App) renderLocked() (err error) {
	a.pendingRedraw.Store(false)
	var sample FrameSample
	frameStart := time.Now()
	sample.Timestamp = frameStart.UnixMilli()

	phaseStart := frameStart
	callbacks := a.drainDispatchQueue()
	for _, cb := range callbacks {
		runCallback(cb)
	}
	sample.Counts.Dispatched = len(callbacks)
	sample.Phases.DispatchMs = durationToMillis(time.Since(phaseStart))

	txn := a.store.Begin()
	phase := "reconcile"
	committed := false
	defer func() {
		if r := recover(); r != nil {
			if committed {
				// The frame is already on screen and its state kept.
				wefterrors.ReportPanic(wefterrors.NewPanicError("engine.App.Render", r))
			} else {
				err = a.fail(txn, &wefterrors.CycleError{
					Phase:      phase,
					Recovered:  r,
					StackTrace: wefterrors.CaptureStack(),
				})
			}
		}
		if err != nil {
			sample.Failed = true
		}
		a.traceFrame(sample, frameStart)
	}()

	phaseStart = time.Now()
	tree, root, err := core.Reconcile(a.root, a.window, a.tree, &core.Runtime{IDs: &a.ids, State: txn, Logger: a.logger})
	if err != nil {
		return a.fail(txn, &wefterrors.CycleError{Phase: phase, Err: err})
	}
	sample.Phases.ReconcileMs = durationToMillis(time.Since(phaseStart))
	sample.Counts.ShadowNodes = tree.Len() - 1

	phase = "layout"
	phaseStart = time.Now()
	pass := &layout.Pass{Measure: a.measure, Logger: a.logger}
	if err := pass.Run(root, a.size); err != nil {
		return a.fail(txn, &wefterrors.CycleError{Phase: phase, Err: err})
	}
	sample.Phases.LayoutMs = durationToMillis(time.Since(phaseStart))

	phase = "draw"
	phaseStart = time.Now()
	if a.drawnSize != a.size {
		a.renderer.Resize(a.size)
		a.drawnSize = a.size
	}
	dc := &rendering.DrawContext{Renderer: a.renderer, Text: a.measure.Text, Resources: a.measure.Resources}
	if err := rendering.Paint(dc, root); err != nil {
		return a.fail(txn, &wefterrors.CycleError{Phase: phase, Err: err})
	}
	if err := a.renderer.Submit(); err != nil {
		return a.fail(txn, &wefterrors.CycleError{Phase: phase, Err: &wefterrors.WeftError{
			Op:   "rendering.Submit",
			Kind: wefterrors.KindRender,
			Err:  err,
		}})
	}
	sample.Phases.PaintMs = durationToMillis(time.Since(phaseStart))

	txn.Commit()
	a.tree, a.rootEl = tree, root
	a.frames++
	committed = true
	if a.prune {
		removed := a.store.Retain(tree.Contains)
		sample.Counts.StatePruned = len(removed)
		if a.measure.Text != nil {
			a.measure.Text.Prune(tree.Contains)
		}
	}
	sample.Counts.StateEntries = a.store.Len()
	a.logger.Debug("frame",
		"frame", a.frames,
		"nodes", sample.Counts.ShadowNodes,
		"pruned", sample.Counts.StatePruned,
		"dispatched", sample.Counts.Dispatched)

	for _, d := range a.dumps {
		writeDump(d, a.frames, tree, root)
	}
	return nil
}

// writeDump reports a failing or panicking dump without touching the frame.
func writeDump(d treeDump, frame int, tree *core.ShadowTree, root core.Element) {
	defer wefterrors.Recover("engine.dump")
	if err := d.write(frame, tree, root); err != nil {
		wefterrors.Report(&wefterrors.WeftError{Op: "engine.dump", Kind: wefterrors.KindUnknown, Err: err})
	}
}

// runCallback runs a dispatched callback, reporting rather than propagating
// a panic so one bad callback does not abort the cycle.
func runCallback(cb func()) {
	defer wefterrors.Recover("engine.Dispatch")
	cb()
}

// discarder is implemented by renderers that buffer a frame until Submit.
type discarder interface {
	Discard()
}

// fail abandons the cycle: pending state writes and buffered draw calls are
// dropped and the error is reported.
func (a *App) fail(txn *core.StateTxn, cerr *wefterrors.CycleError) error {
	txn.Discard()
	if d, ok := a.renderer.(discarder); ok {
		d.Discard()
	}
	wefterrors.ReportCycleError(cerr)
	return cerr
}

// Dispatch schedules fn to run on the render goroutine at the start of the
// next cycle and requests a redraw. It is safe to call from any goroutine.
func (a *App) Dispatch(fn func()) {
	if fn == nil {
		return
	}
	a.dispatchMu.Lock()
	a.dispatchQueue = append(a.dispatchQueue, fn)
	a.dispatchMu.Unlock()
	a.RequestRedraw()
}

func (a *App) drainDispatchQueue() []func() {
	a.dispatchMu.Lock()
	callbacks := a.dispatchQueue
	a.dispatchQueue = nil
	a.dispatchMu.Unlock()
	return callbacks
}

// RequestRedraw marks the app as needing a cycle.
func (a *App) RequestRedraw() {
	a.pendingRedraw.Store(true)
}

// NeedsFrame reports whether Render has work to do: a redraw was requested
// or callbacks are queued. A new app always needs a frame.
func (a *App) NeedsFrame() bool {
	if a.pendingRedraw.Load() {
		return true
	}
	a.dispatchMu.Lock()
	queued := len(a.dispatchQueue) > 0
	a.dispatchMu.Unlock()
	return queued
}

// Settled reports whether the app has no pending frame, no outstanding
// async work, and no resource loads in flight.
func (a *App) Settled() bool {
	if a.NeedsFrame() || a.asyncCount.Load() > 0 {
		return false
	}
	return a.measure.Resources == nil || a.measure.Resources.Pending() == 0
}

// Resize sets the surface size used by the next cycle.
func (a *App) Resize(size graphics.Size) {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()
	if a.size == size {
		return
	}
	a.size = size
	a.RequestRedraw()
}

// Size returns the surface size.
func (a *App) Size() graphics.Size {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()
	return a.size
}

// SetRoot replaces the root spec. Identity is preserved wherever the new
// spec pairs with the current tree.
func (a *App) SetRoot(root core.Spec) {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()
	a.root = root
	a.RequestRedraw()
}

// Restart drops the trees and all state and resets id allocation, so the
// next cycle mounts everything fresh. Outstanding async work is cancelled
// and its results discarded.
func (a *App) Restart() {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()
	a.cancel()
	if !a.closed {
		a.ctx, a.cancel = context.WithCancel(context.Background())
	}
	a.generation++
	a.tree, a.rootEl = nil, nil
	a.store.Clear()
	a.ids.Reset()
	if a.measure.Text != nil {
		a.measure.Text.Prune(func(core.ComponentID) bool { return false })
	}
	a.drainDispatchQueue()
	a.RequestRedraw()
	a.logger.Debug("restart")
}

// Close cancels outstanding async work and waits for it to return. Async
// work requested by later cycles is dropped.
func (a *App) Close() error {
	a.frameMu.Lock()
	a.closed = true
	a.cancel()
	a.frameMu.Unlock()
	a.asyncWG.Wait()
	if a.measure.Resources != nil {
		a.measure.Resources.Wait()
	}
	return nil
}

// Tree returns the committed shadow tree, or nil before the first
// successful cycle.
func (a *App) Tree() *core.ShadowTree {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()
	return a.tree
}

// Root returns the committed element tree, or nil before the first
// successful cycle.
func (a *App) Root() core.Element {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()
	return a.rootEl
}

// State returns the committed state store.
func (a *App) State() *core.StateStore {
	return a.store
}

// Renderer returns the renderer frames are drawn to.
func (a *App) Renderer() rendering.Renderer {
	return a.renderer
}

// Frames returns the number of committed cycles.
func (a *App) Frames() int {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()
	return a.frames
}

// FrameTimeline returns recent frame samples, or an empty timeline when
// tracing is off.
func (a *App) FrameTimeline() FrameTimeline {
	if a.frameTrace == nil {
		return FrameTimeline{}
	}
	return a.frameTrace.Snapshot()
}

func (a *App) traceFrame(sample FrameSample, start time.Time) {
	if a.frameTrace == nil {
		return
	}
	d := time.Since(start)
	sample.FrameMs = durationToMillis(d)
	a.frameTrace.Add(sample, d)
}
