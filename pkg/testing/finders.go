package testing

import (
	"fmt"
	"strings"

	"github.com/go-drift/weft/pkg/core"
	"github.com/go-drift/weft/pkg/elements"
)

// Finder locates elements in the element tree.
type Finder interface {
	// Evaluate returns all matching elements under root in depth-first
	// pre-order.
	Evaluate(root core.Element) []core.Element
	// Description returns a human-readable description for error messages.
	Description() string
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	elements []core.Element
	finder   Finder
}

func (r FinderResult) description() string {
	if r.finder == nil {
		return "unknown"
	}
	return r.finder.Description()
}

// First returns the first match. Panics if no matches.
func (r FinderResult) First() core.Element {
	if len(r.elements) == 0 {
		panic(fmt.Sprintf("Finder found no elements: %s", r.description()))
	}
	return r.elements[0]
}

// FirstOrNil returns the first match, or nil if none.
func (r FinderResult) FirstOrNil() core.Element {
	if len(r.elements) == 0 {
		return nil
	}
	return r.elements[0]
}

// At returns the match at index. Panics if out of range.
func (r FinderResult) At(index int) core.Element {
	if index < 0 || index >= len(r.elements) {
		panic(fmt.Sprintf("Finder index %d out of range (found %d): %s", index, len(r.elements), r.description()))
	}
	return r.elements[index]
}

// All returns all matches in traversal order.
func (r FinderResult) All() []core.Element {
	return r.elements
}

// Count returns the number of matches.
func (r FinderResult) Count() int {
	return len(r.elements)
}

// Exists returns true if at least one match was found.
func (r FinderResult) Exists() bool {
	return len(r.elements) > 0
}

// ID returns the component id of the first match. Panics if no matches.
func (r FinderResult) ID() core.ComponentID {
	return r.First().Data().ComponentID
}

type predicateFinder struct {
	desc  string
	match func(core.Element) bool
}

func (f *predicateFinder) Evaluate(root core.Element) []core.Element {
	return collectMatches(root, f.match)
}

func (f *predicateFinder) Description() string {
	return f.desc
}

// ByUserID matches elements with the given user id.
func ByUserID(id string) Finder {
	return &predicateFinder{
		desc:  fmt.Sprintf("ByUserID(%q)", id),
		match: func(e core.Element) bool { return e.Data().UserID == id },
	}
}

// ByTag matches elements whose Name is tag.
func ByTag(tag string) Finder {
	return &predicateFinder{
		desc:  fmt.Sprintf("ByTag(%q)", tag),
		match: func(e core.Element) bool { return e.Name() == tag },
	}
}

// ByText matches Text elements whose content equals text.
func ByText(text string) Finder {
	return &predicateFinder{
		desc: fmt.Sprintf("ByText(%q)", text),
		match: func(e core.Element) bool {
			t, ok := e.(*elements.Text)
			return ok && t.Content == text
		},
	}
}

// ByTextContaining matches Text elements whose content contains substr.
func ByTextContaining(substr string) Finder {
	return &predicateFinder{
		desc: fmt.Sprintf("ByTextContaining(%q)", substr),
		match: func(e core.Element) bool {
			t, ok := e.(*elements.Text)
			return ok && strings.Contains(t.Content, substr)
		},
	}
}

// ByPredicate matches elements for which fn returns true.
func ByPredicate(fn func(core.Element) bool) Finder {
	return &predicateFinder{desc: "ByPredicate", match: fn}
}

type descendantFinder struct {
	of       Finder
	matching Finder
}

func (f *descendantFinder) Evaluate(root core.Element) []core.Element {
	var out []core.Element
	seen := make(map[core.Element]bool)
	for _, anc := range f.of.Evaluate(root) {
		for _, c := range anc.Data().Children {
			for _, m := range f.matching.Evaluate(c) {
				if !seen[m] {
					seen[m] = true
					out = append(out, m)
				}
			}
		}
	}
	return out
}

func (f *descendantFinder) Description() string {
	return fmt.Sprintf("Descendant(of: %s, matching: %s)", f.of.Description(), f.matching.Description())
}

// Descendant matches elements found by matching strictly below an element
// found by of.
func Descendant(of, matching Finder) Finder {
	return &descendantFinder{of: of, matching: matching}
}

func collectMatches(root core.Element, predicate func(core.Element) bool) []core.Element {
	var out []core.Element
	core.WalkElements(root, func(e core.Element, _ int) bool {
		if predicate(e) {
			out = append(out, e)
		}
		return true
	})
	return out
}
