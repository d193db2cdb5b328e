package core

import wefterrors "github.com/go-drift/weft/pkg/errors"

// RootTag is the tag of the placeholder node at index 0 of every shadow tree.
const RootTag = "root"

// NoNode marks an absent arena index.
const NoNode = -1

// ShadowNode records one instantiated element or component.
type ShadowNode struct {
	ID        ComponentID
	Tag       string
	Key       string
	IsElement bool
	// Update is the component's event handler. Always nil for elements.
	Update UpdateFn

	Parent   int
	Children []int
	// ChildrenKeys maps the keys of direct keyed children to their ids.
	ChildrenKeys map[string]ComponentID
}

// ShadowTree is an arena of shadow nodes. Index 0 is a placeholder root with
// id 0 whose single child is the window root element.
type ShadowTree struct {
	nodes []ShadowNode
	index map[ComponentID]int
}

// NewShadowTree returns a tree holding only the placeholder root.
func NewShadowTree() *ShadowTree {
	t := &ShadowTree{index: make(map[ComponentID]int)}
	t.nodes = append(t.nodes, ShadowNode{Tag: RootTag, Parent: NoNode})
	t.index[0] = 0
	return t
}

// Root returns the index of the placeholder root.
func (t *ShadowTree) Root() int { return 0 }

// Len returns the number of nodes, including the placeholder root.
func (t *ShadowTree) Len() int { return len(t.nodes) }

// Node returns the node at index i. The pointer is valid until the next add.
func (t *ShadowTree) Node(i int) *ShadowNode { return &t.nodes[i] }

// Lookup returns the index of the node with the given id.
func (t *ShadowTree) Lookup(id ComponentID) (int, bool) {
	i, ok := t.index[id]
	return i, ok
}

// Contains reports whether a node with the given id exists.
func (t *ShadowTree) Contains(id ComponentID) bool {
	_, ok := t.index[id]
	return ok
}

// IDs returns the ids of every node except the placeholder root, in arena order.
func (t *ShadowTree) IDs() []ComponentID {
	ids := make([]ComponentID, 0, len(t.nodes)-1)
	for _, n := range t.nodes[1:] {
		ids = append(ids, n.ID)
	}
	return ids
}

// Ancestors returns i followed by its ancestors up to, but not including,
// the placeholder root.
func (t *ShadowTree) Ancestors(i int) []int {
	var out []int
	for i > 0 {
		out = append(out, i)
		i = t.nodes[i].Parent
	}
	return out
}

func (t *ShadowTree) add(parent int, n ShadowNode) int {
	n.Parent = parent
	i := len(t.nodes)
	t.nodes = append(t.nodes, n)
	t.nodes[parent].Children = append(t.nodes[parent].Children, i)
	if _, dup := t.index[n.ID]; dup {
		panic(&wefterrors.ConsistencyError{Op: "core.Reconcile", ID: uint64(n.ID), Reason: "id assigned twice in one pass"})
	}
	t.index[n.ID] = i
	return i
}

func (t *ShadowTree) registerKey(parent int, key string, id ComponentID) bool {
	p := &t.nodes[parent]
	if p.ChildrenKeys == nil {
		p.ChildrenKeys = make(map[string]ComponentID)
	}
	if _, dup := p.ChildrenKeys[key]; dup {
		return false
	}
	p.ChildrenKeys[key] = id
	return true
}
