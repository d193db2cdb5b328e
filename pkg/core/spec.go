package core

import wefterrors "github.com/go-drift/weft/pkg/errors"

// Factory renders a component. It receives the component's current state
// (UnsetState on first mount), its props, its child specs, and its id, and
// returns the new state, exactly one inner spec, and an optional update
// function for events.
type Factory func(state any, props any, children []Spec, id ComponentID) (newState any, inner Spec, update UpdateFn)

// Component is a named factory. The tag identifies the component type for
// reconciliation, so two components with the same tag are interchangeable.
type Component struct {
	Tag     string
	Factory Factory
}

// Spec is one node of the specification tree. Exactly one of Element and
// Component is set.
type Spec struct {
	Element   Element
	Component *Component

	// Key pairs the node with the old sibling of the same key regardless of
	// position. Empty means unkeyed.
	Key      string
	Props    any
	Children []Spec
}

// El returns a spec for an element prototype.
func El(e Element, children ...Spec) Spec {
	return Spec{Element: e, Children: children}
}

// Comp returns a spec for a component.
func Comp(c *Component, children ...Spec) Spec {
	return Spec{Component: c, Children: children}
}

// WithKey returns a copy of s with the given key.
func (s Spec) WithKey(key string) Spec {
	s.Key = key
	return s
}

// WithProps returns a copy of s with the given props.
func (s Spec) WithProps(props any) Spec {
	s.Props = props
	return s
}

// Tag returns the element name or component tag, and whether s is an element.
func (s Spec) Tag() (string, bool) {
	switch {
	case s.Element != nil:
		return s.Element.Name(), true
	case s.Component != nil:
		return s.Component.Tag, false
	default:
		return "", false
	}
}

func (s Spec) validate(path string) error {
	switch {
	case s.Element != nil && s.Component != nil:
		return &wefterrors.SpecError{Tag: s.Element.Name(), Path: path, Reason: "spec sets both Element and Component"}
	case s.Element == nil && s.Component == nil:
		return &wefterrors.SpecError{Tag: "?", Path: path, Reason: "empty spec"}
	case s.Component != nil && s.Component.Factory == nil:
		return &wefterrors.SpecError{Tag: s.Component.Tag, Path: path, Reason: "component has no factory"}
	case s.Element != nil && len(s.Children) > 0 && !s.Element.AcceptsChildren():
		return &wefterrors.SpecError{Tag: s.Element.Name(), Path: path, Reason: "element does not accept children"}
	}
	return nil
}

// Func returns a stateless component.
func Func(tag string, render func(props any, children []Spec, id ComponentID) Spec) *Component {
	return &Component{
		Tag: tag,
		Factory: func(state any, props any, children []Spec, id ComponentID) (any, Spec, UpdateFn) {
			return state, render(props, children, id), nil
		},
	}
}

// Stateful returns a component whose state has type S. init provides the
// state on first mount. A stored value of another type panics with
// *errors.StateTypeError.
func Stateful[S any](tag string, init func() S, render func(state S, props any, children []Spec, id ComponentID) (S, Spec, UpdateFn)) *Component {
	return &Component{
		Tag: tag,
		Factory: func(state any, props any, children []Spec, id ComponentID) (any, Spec, UpdateFn) {
			s := mustState(id, state, init)
			next, inner, update := render(s, props, children, id)
			return next, inner, update
		},
	}
}

// Update adapts a typed handler to an [UpdateFn]. Unset state is replaced
// with the zero value of S.
func Update[S any](fn func(state S, ev Event) (S, UpdateResult)) UpdateFn {
	return func(state any, ev Event) (any, UpdateResult) {
		s := mustState(ev.Target, state, func() S {
			var zero S
			return zero
		})
		return fn(s, ev)
	}
}

func mustState[S any](id ComponentID, state any, init func() S) S {
	if state == nil || IsUnset(state) {
		return init()
	}
	s, err := castState[S](id, state)
	if err != nil {
		panic(err)
	}
	return s
}
