package core

import (
	"fmt"
	"log/slog"
	"strconv"

	wefterrors "github.com/go-drift/weft/pkg/errors"
)

// Runtime is the mutable context a reconciliation pass runs against.
type Runtime struct {
	IDs   *IDAllocator
	State StateAccessor
	// Logger receives debug output. Nil disables it.
	Logger *slog.Logger
}

// allocate returns a fresh id and seeds its state with UnsetState.
func (rt *Runtime) allocate() ComponentID {
	id := rt.IDs.Allocate()
	rt.State.Set(id, UnsetState{})
	return id
}

type workItem struct {
	spec Spec
	// elemParent indexes pass.elems; NoNode for the window root.
	elemParent int
	// shadowParent indexes the new tree.
	shadowParent int
	// old is the paired node in the old tree, and oldParent the old
	// counterpart of shadowParent. Either may be NoNode.
	old       int
	oldParent int
	path      string
}

type pass struct {
	rt    *Runtime
	old   *ShadowTree
	tree  *ShadowTree
	elems []Element
	stack []workItem

	mounted, reused int
}

// Reconcile builds a new shadow tree and element tree from spec.
//
// root is the window element prototype; the returned element is a fresh
// instance of it whose single child is the expansion of spec. old is the
// shadow tree from the previous render, or nil on first render; it is only
// read. State reads and writes go through rt.State, which should be a
// [StateTxn] so a failed cycle can be discarded.
//
// Invalid specs return *errors.SpecError. Broken invariants, such as a reused
// component id without state, panic with *errors.ConsistencyError.
func Reconcile(spec Spec, root Element, old *ShadowTree, rt *Runtime) (*ShadowTree, Element, error) {
	if root == nil {
		return nil, nil, &wefterrors.SpecError{Tag: "?", Path: RootTag, Reason: "nil root element"}
	}
	p := &pass{rt: rt, old: old, tree: NewShadowTree()}

	rootSpec := El(root, spec)
	oldParent := NoNode
	if old != nil {
		oldParent = old.Root()
	}
	p.stack = append(p.stack, workItem{
		spec:         rootSpec,
		elemParent:   NoNode,
		shadowParent: p.tree.Root(),
		old:          p.pair(oldParent, []Spec{rootSpec})[0],
		oldParent:    oldParent,
		path:         root.Name(),
	})

	for len(p.stack) > 0 {
		item := p.stack[len(p.stack)-1]
		p.stack = p.stack[:len(p.stack)-1]

		if err := item.spec.validate(item.path); err != nil {
			return nil, nil, err
		}
		var err error
		if item.spec.Element != nil {
			err = p.visitElement(item)
		} else {
			err = p.visitComponent(item)
		}
		if err != nil {
			return nil, nil, err
		}
	}

	if rt.Logger != nil {
		rt.Logger.Debug("reconciled",
			"nodes", p.tree.Len()-1,
			"mounted", p.mounted,
			"reused", p.reused)
	}
	return p.tree, p.elems[0], nil
}

func (p *pass) visitElement(item workItem) error {
	el := item.spec.Element.Clone()
	tag := el.Name()

	matched := NoNode
	var id ComponentID
	if n := p.oldNode(item.old); n != nil && n.IsElement && n.Tag == tag {
		matched = item.old
		id = n.ID
		p.reused++
	} else {
		id = p.rt.allocate()
		p.mounted++
	}
	el.Data().ComponentID = id

	elemIdx := len(p.elems)
	p.elems = append(p.elems, el)
	if item.elemParent != NoNode {
		parent := p.elems[item.elemParent].Data()
		parent.Children = append(parent.Children, el)
	}

	shadowIdx := p.tree.add(item.shadowParent, ShadowNode{
		ID:        id,
		Tag:       tag,
		Key:       item.spec.Key,
		IsElement: true,
	})
	if err := p.registerKey(item, tag, id); err != nil {
		return err
	}

	children := item.spec.Children
	olds := p.pair(matched, children)
	for i := len(children) - 1; i >= 0; i-- {
		childTag, _ := children[i].Tag()
		p.stack = append(p.stack, workItem{
			spec:         children[i],
			elemParent:   elemIdx,
			shadowParent: shadowIdx,
			old:          olds[i],
			oldParent:    matched,
			path:         item.path + "/" + childTag + "[" + strconv.Itoa(i) + "]",
		})
	}
	return nil
}

func (p *pass) visitComponent(item workItem) error {
	c := item.spec.Component

	matched := NoNode
	var id ComponentID
	if n := p.oldNode(item.old); n != nil && !n.IsElement && n.Tag == c.Tag {
		if len(n.Children) == 0 {
			panic(&wefterrors.ConsistencyError{
				Op:     "core.Reconcile",
				ID:     uint64(n.ID),
				Reason: fmt.Sprintf("component %s has no child in the previous tree", n.Tag),
			})
		}
		matched = item.old
		id = n.ID
		p.reused++
	} else {
		id = p.rt.allocate()
		p.mounted++
	}

	state, ok := p.rt.State.Get(id)
	if !ok {
		panic(&wefterrors.ConsistencyError{
			Op:     "core.Reconcile",
			ID:     uint64(id),
			Reason: fmt.Sprintf("no state entry for component %s at %s", c.Tag, item.path),
		})
	}
	newState, inner, update := c.Factory(state, item.spec.Props, item.spec.Children, id)
	p.rt.State.Set(id, newState)

	shadowIdx := p.tree.add(item.shadowParent, ShadowNode{
		ID:     id,
		Tag:    c.Tag,
		Key:    item.spec.Key,
		Update: update,
	})
	if err := p.registerKey(item, c.Tag, id); err != nil {
		return err
	}

	innerTag, _ := inner.Tag()
	p.stack = append(p.stack, workItem{
		spec:         inner,
		elemParent:   item.elemParent,
		shadowParent: shadowIdx,
		old:          p.pair(matched, []Spec{inner})[0],
		oldParent:    matched,
		path:         item.path + "/" + innerTag,
	})
	return nil
}

func (p *pass) registerKey(item workItem, tag string, id ComponentID) error {
	if item.spec.Key == "" {
		return nil
	}
	if !p.tree.registerKey(item.shadowParent, item.spec.Key, id) {
		return &wefterrors.SpecError{
			Tag:    tag,
			Path:   item.path,
			Reason: fmt.Sprintf("duplicate sibling key %q", item.spec.Key),
		}
	}
	return nil
}

func (p *pass) oldNode(i int) *ShadowNode {
	if p.old == nil || i == NoNode {
		return nil
	}
	return p.old.Node(i)
}

// pair matches each child spec with a child of the old node at oldParent.
// Keyed specs match through the old parent's ChildrenKeys. Unkeyed specs
// prefer the unkeyed old child at the same index when the tag agrees, then
// the first unpaired unkeyed old child with the same tag. No old child is
// paired twice.
func (p *pass) pair(oldParent int, children []Spec) []int {
	out := make([]int, len(children))
	for i := range out {
		out[i] = NoNode
	}
	parent := p.oldNode(oldParent)
	if parent == nil || len(parent.Children) == 0 {
		return out
	}

	used := make(map[int]bool, len(parent.Children))
	fits := func(j int, tag string, isElement bool) bool {
		n := p.old.Node(j)
		return !used[j] && n.Key == "" && n.Tag == tag && n.IsElement == isElement
	}

	for i, child := range children {
		if child.Key != "" {
			if id, ok := parent.ChildrenKeys[child.Key]; ok {
				if j, ok := p.old.Lookup(id); ok && !used[j] {
					out[i] = j
					used[j] = true
				}
			}
			continue
		}

		tag, isElement := child.Tag()
		if i < len(parent.Children) && fits(parent.Children[i], tag, isElement) {
			out[i] = parent.Children[i]
			used[out[i]] = true
			continue
		}
		for _, j := range parent.Children {
			if fits(j, tag, isElement) {
				out[i] = j
				used[j] = true
				break
			}
		}
	}
	return out
}
