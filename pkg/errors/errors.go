// Package errors provides structured error handling for the weft framework.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindConsistency indicates a broken framework invariant, such as a
	// reconciler and state store that disagree about a component id.
	KindConsistency
	// KindSpec indicates an invalid specification tree supplied by user code.
	KindSpec
	// KindState indicates a component state access with the wrong type.
	KindState
	// KindLayout indicates a layout engine failure.
	KindLayout
	// KindMeasure indicates a failure inside a measurement callback.
	KindMeasure
	// KindRender indicates a drawing or submit failure.
	KindRender
	// KindResource indicates a resource load or decode failure.
	KindResource
	// KindPanic indicates a recovered panic.
	KindPanic
	// KindConfig indicates an invalid configuration.
	KindConfig
)

func (k ErrorKind) String() string {
	switch k {
	case KindConsistency:
		return "consistency"
	case KindSpec:
		return "spec"
	case KindState:
		return "state"
	case KindLayout:
		return "layout"
	case KindMeasure:
		return "measure"
	case KindRender:
		return "render"
	case KindResource:
		return "resource"
	case KindPanic:
		return "panic"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// WeftError represents a structured error in the weft framework.
type WeftError struct {
	// Op is the operation that failed (e.g., "layout.Pass.Run").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// ComponentID is the stable id of the node involved, if any.
	ComponentID uint64
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *WeftError) Error() string {
	if e.ComponentID != 0 {
		return fmt.Sprintf("%s [%s] id=%d: %v", e.Op, e.Kind, e.ComponentID, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *WeftError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "engine.App.Render").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value when it is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// SpecError reports an invalid specification node. Path is the slash
// separated child index path from the root of the specification tree.
type SpecError struct {
	Tag    string
	Path   string
	Reason string
}

func (e *SpecError) Error() string {
	return fmt.Sprintf("invalid specification at %s (%s): %s", e.Path, e.Tag, e.Reason)
}

// ConsistencyError is the panic value used when the reconciler detects a
// broken invariant. It is never returned as an ordinary error.
type ConsistencyError struct {
	Op     string
	ID     uint64
	Reason string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("%s: internal consistency violation for id %d: %s", e.Op, e.ID, e.Reason)
}

// StateTypeError reports a typed state access that found a different type.
type StateTypeError struct {
	ID   uint64
	Want string
	Got  string
}

func (e *StateTypeError) Error() string {
	return fmt.Sprintf("state for id %d has type %s, want %s", e.ID, e.Got, e.Want)
}

// CycleError represents a failed render cycle. Either Err or Recovered is set.
type CycleError struct {
	// Phase is the cycle phase that failed: "reconcile", "layout", "draw".
	Phase string
	// Err is the underlying error (nil for panics).
	Err error
	// Recovered is the panic value (nil for regular errors).
	Recovered any
	// StackTrace contains the call stack at the time of the failure.
	StackTrace string
	// Timestamp is when the failure occurred.
	Timestamp time.Time
}

func (e *CycleError) Error() string {
	if e.Recovered != nil {
		return fmt.Sprintf("render cycle failed during %s: panic: %v", e.Phase, e.Recovered)
	}
	if e.Err != nil {
		return fmt.Sprintf("render cycle failed during %s: %v", e.Phase, e.Err)
	}
	return fmt.Sprintf("render cycle failed during %s", e.Phase)
}

func (e *CycleError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	if err, ok := e.Recovered.(error); ok {
		return err
	}
	return nil
}

// ErrorHandler receives errors reported by the weft framework.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *WeftError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
	// HandleCycleError is called when a render cycle is abandoned.
	HandleCycleError(err *CycleError)
}
