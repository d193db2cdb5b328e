package engine

import (
	"fmt"

	"github.com/go-drift/weft/pkg/core"
	wefterrors "github.com/go-drift/weft/pkg/errors"
	"github.com/go-drift/weft/pkg/graphics"
	"github.com/go-drift/weft/pkg/resource"
)

// PointerDown delivers a press at (x, y) to the component owning the
// deepest element under the point and bubbles it up through the enclosing
// components. It reports whether any update function ran.
func (a *App) PointerDown(x, y float32) bool {
	return a.pointer(x, y, core.PointerDown{X: x, Y: y})
}

// PointerMove is PointerDown for pointer motion.
func (a *App) PointerMove(x, y float32) bool {
	return a.pointer(x, y, core.PointerMove{X: x, Y: y})
}

func (a *App) pointer(x, y float32, msg any) bool {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()
	if a.tree == nil {
		return false
	}
	hit := HitTest(a.rootEl, graphics.Point{X: x, Y: y})
	if hit == nil {
		return false
	}
	d := hit.Data()
	return a.bubble(d.ComponentID, d.UserID, msg)
}

// Send delivers msg to the component with the given id and bubbles it like
// a pointer event. It fails if id is not in the committed tree.
func (a *App) Send(id core.ComponentID, msg any) error {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()
	if a.tree == nil || !a.tree.Contains(id) {
		return fmt.Errorf("engine: send to %v: no such component", id)
	}
	a.bubble(id, "", msg)
	return nil
}

// bubble walks from id to the root of the shadow tree, calling each update
// function until one stops propagation. a.frameMu must be held.
func (a *App) bubble(id core.ComponentID, source string, msg any) (handled bool) {
	i, ok := a.tree.Lookup(id)
	if !ok {
		return false
	}
	for _, n := range a.tree.Ancestors(i) {
		node := a.tree.Node(n)
		if node.Update == nil {
			continue
		}
		handled = true
		res, ok := a.update(node, core.Event{Target: node.ID, Source: source, Message: msg})
		if !ok || !res.Propagate {
			break
		}
	}
	return handled
}

// update runs one update function and stores its new state. A panic is
// reported and leaves ok false. a.frameMu must be held.
func (a *App) update(node *core.ShadowNode, ev core.Event) (res core.UpdateResult, ok bool) {
	defer wefterrors.RecoverWithCallback("engine.update", func(any) { ok = false })
	state, _ := a.store.Get(node.ID)
	next, res := node.Update(state, ev)
	a.store.Set(node.ID, next)
	a.RequestRedraw()
	if res.Async != nil {
		a.startAsync(node.ID, res.Async)
	}
	a.logger.Debug("update", "id", node.ID, "tag", node.Tag, "message", fmt.Sprintf("%T", ev.Message), "propagate", res.Propagate)
	return res, true
}

// startAsync runs fn on its own goroutine and delivers the result to id as
// a UserMessage through the dispatch queue. Results arriving after Restart,
// or for a component that has left the tree, are dropped. It must be called
// with a.frameMu held; after Close it does nothing.
func (a *App) startAsync(id core.ComponentID, fn core.AsyncFunc) {
	if a.closed {
		a.logger.Debug("async dropped after close", "id", id)
		return
	}
	ctx, gen := a.ctx, a.generation
	a.asyncWG.Add(1)
	a.asyncCount.Add(1)
	go func() {
		defer a.asyncWG.Done()
		defer a.asyncCount.Add(-1)
		var msg core.UserMessage
		func() {
			defer wefterrors.RecoverWithCallback("engine.async", func(r any) {
				msg.Err = &wefterrors.PanicError{Op: "engine.async", Value: r}
			})
			msg.Value, msg.Err = fn(ctx)
		}()
		if ctx.Err() != nil {
			return
		}
		a.Dispatch(func() { a.deliver(gen, id, msg) })
	}()
}

// deliver runs on the render goroutine with a.frameMu held.
func (a *App) deliver(gen uint64, id core.ComponentID, msg core.UserMessage) {
	if gen != a.generation || a.tree == nil {
		return
	}
	i, ok := a.tree.Lookup(id)
	if !ok {
		a.logger.Debug("async result dropped", "id", id)
		return
	}
	node := a.tree.Node(i)
	if node.Update == nil {
		return
	}
	a.update(node, core.Event{Target: id, Message: msg})
}

// onResourceEvent is installed as the resource manager's notifier. Load
// outcomes change intrinsic sizes, so they trigger a redraw.
func (a *App) onResourceEvent(ev resource.Event) {
	if ev.Kind == resource.EventAdded {
		return
	}
	a.Dispatch(func() {
		a.logger.Debug("resource", "path", ev.Path, "kind", ev.Kind, "err", ev.Err)
	})
}
