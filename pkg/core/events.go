package core

import "context"

// Event is delivered to a component's [UpdateFn].
type Event struct {
	// Target is the component receiving the event.
	Target ComponentID
	// Source is the user id of the element the event originated from, if any.
	Source string
	// Message is one of PointerDown, PointerMove, UserMessage, or a value
	// sent by application code.
	Message any
}

// PointerDown reports a press at absolute coordinates.
type PointerDown struct {
	X, Y float32
}

// PointerMove reports pointer motion at absolute coordinates.
type PointerMove struct {
	X, Y float32
}

// UserMessage carries the outcome of an [AsyncFunc] back to its component.
type UserMessage struct {
	Value any
	Err   error
}

// AsyncFunc runs off the render goroutine. Its result is delivered to the
// same component as a UserMessage on a later cycle.
type AsyncFunc func(ctx context.Context) (any, error)

// UpdateResult tells the dispatcher what to do after a handler ran.
type UpdateResult struct {
	// Propagate continues bubbling to the next ancestor component.
	Propagate bool
	// Async, when set, is started after the handler returns.
	Async AsyncFunc
}

// Continue returns a result that keeps bubbling.
func Continue() UpdateResult { return UpdateResult{Propagate: true} }

// Stop returns a result that ends bubbling.
func Stop() UpdateResult { return UpdateResult{} }

// UpdateFn handles an event for a component and returns its new state.
type UpdateFn func(state any, ev Event) (newState any, result UpdateResult)
