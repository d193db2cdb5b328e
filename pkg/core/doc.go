// Package core provides the specification tree, the shadow component tree,
// and the reconciler that turns one into the other.
//
// User code describes the UI each render as a tree of [Spec] values. A spec
// is either a concrete [Element] (a container, a text run, an image) or a
// [Component], a function of (state, props, children, id) that returns one
// more level of specification. [Reconcile] walks the new spec tree together
// with the [ShadowTree] from the previous render, decides which nodes are the
// same logical instance, and produces a new shadow tree plus an element tree
// containing only elements.
//
// # Identity
//
// Every node gets a [ComponentID] from an [IDAllocator]. An id is reused only
// when the reconciler pairs the new node with an old one of the same tag:
//
//   - keyed children pair only with the old sibling carrying the same key
//   - unkeyed children pair with the unkeyed old sibling at the same index
//     when the tag matches, otherwise with the next unpaired unkeyed old
//     sibling of the same tag
//
// A tag mismatch remounts the whole subtree with fresh ids.
//
// # State
//
// Component state lives in a [StateStore] keyed by id. Allocation seeds the
// store with [UnsetState], so a component sees UnsetState on its first render
// and initializes itself. [Stateful] wraps that pattern with a typed state:
//
//	counter := core.Stateful("Counter",
//	    func() int { return 0 },
//	    func(n int, props any, children []core.Spec, id core.ComponentID) (int, core.Spec, core.UpdateFn) {
//	        return n + 1, core.El(elements.NewText(strconv.Itoa(n))), nil
//	    })
//
// The reconciler writes through a [StateTxn] so a failed render cycle leaves
// the store untouched.
package core
