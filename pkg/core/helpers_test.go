package core

import (
	"strconv"
	"testing"
)

type box struct{ ElementData }

func (b *box) Name() string { return "Box" }

func (b *box) Clone() Element {
	c := *b
	c.ResetInstance()
	return &c
}

type label struct {
	ElementData
	text string
}

func (l *label) Name() string          { return "Label" }
func (l *label) AcceptsChildren() bool { return false }

func (l *label) Clone() Element {
	c := *l
	c.ResetInstance()
	return &c
}

type pic struct{ ElementData }

func (p *pic) Name() string          { return "Pic" }
func (p *pic) AcceptsChildren() bool { return false }

func (p *pic) Clone() Element {
	c := *p
	c.ResetInstance()
	return &c
}

// counterNamed returns a component that increments its state on every render.
func counterNamed(tag string) *Component {
	return Stateful(tag, func() int { return 0 },
		func(n int, _ any, _ []Spec, _ ComponentID) (int, Spec, UpdateFn) {
			n++
			return n, El(&label{text: strconv.Itoa(n)}), nil
		})
}

var counter = counterNamed("Counter")

type harness struct {
	ids   IDAllocator
	store *StateStore
	tree  *ShadowTree
	root  Element
}

func newHarness() *harness {
	return &harness{store: NewStateStore()}
}

func (h *harness) try(spec Spec) error {
	txn := h.store.Begin()
	tree, root, err := Reconcile(spec, &box{}, h.tree, &Runtime{IDs: &h.ids, State: txn})
	if err != nil {
		txn.Discard()
		return err
	}
	txn.Commit()
	h.tree, h.root = tree, root
	return nil
}

func (h *harness) render(t *testing.T, spec Spec) Element {
	t.Helper()
	if err := h.try(spec); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	return h.root
}

// idOf returns the id of the first shadow node with the given tag and key.
func (h *harness) idOf(t *testing.T, tag, key string) ComponentID {
	t.Helper()
	for i := 1; i < h.tree.Len(); i++ {
		n := h.tree.Node(i)
		if n.Tag == tag && n.Key == key {
			return n.ID
		}
	}
	t.Fatalf("no shadow node with tag %q key %q", tag, key)
	return 0
}

// childIDs returns the ids of the shadow children of the user root element.
func (h *harness) childIDs() []ComponentID {
	win := h.tree.Node(h.tree.Root()).Children[0]
	top := h.tree.Node(win).Children[0]
	var ids []ComponentID
	for _, c := range h.tree.Node(top).Children {
		ids = append(ids, h.tree.Node(c).ID)
	}
	return ids
}

type nodeInfo struct {
	Depth int
	Tag   string
	ID    ComponentID
	Key   string
}

func shape(t *ShadowTree) []nodeInfo {
	var out []nodeInfo
	var walk func(i, depth int)
	walk = func(i, depth int) {
		n := t.Node(i)
		out = append(out, nodeInfo{Depth: depth, Tag: n.Tag, ID: n.ID, Key: n.Key})
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(t.Root(), 0)
	return out
}
