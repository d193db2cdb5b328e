package core

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"slices"

	wefterrors "github.com/go-drift/weft/pkg/errors"
)

// ErrNoState is returned by [StateAs] when an id has no initialized state.
var ErrNoState = stderrors.New("core: no state")

// UnsetState is the placeholder stored for a freshly allocated id until its
// component writes real state.
type UnsetState struct{}

// IsUnset reports whether v is the allocation placeholder.
func IsUnset(v any) bool {
	_, ok := v.(UnsetState)
	return ok
}

// StateReader reads component state by id.
type StateReader interface {
	Get(id ComponentID) (any, bool)
}

// StateAccessor reads and writes component state by id.
type StateAccessor interface {
	StateReader
	Set(id ComponentID, v any)
}

// StateStore maps component ids to opaque per-component state.
type StateStore struct {
	entries map[ComponentID]any
}

// NewStateStore returns an empty store.
func NewStateStore() *StateStore {
	return &StateStore{entries: make(map[ComponentID]any)}
}

// Get returns the state for id.
func (s *StateStore) Get(id ComponentID) (any, bool) {
	v, ok := s.entries[id]
	return v, ok
}

// Set stores v under id.
func (s *StateStore) Set(id ComponentID, v any) {
	s.entries[id] = v
}

// Delete removes the state for id.
func (s *StateStore) Delete(id ComponentID) {
	delete(s.entries, id)
}

// Len returns the number of entries.
func (s *StateStore) Len() int {
	return len(s.entries)
}

// IDs returns all ids with state, in ascending order.
func (s *StateStore) IDs() []ComponentID {
	ids := make([]ComponentID, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Retain deletes every entry for which keep returns false and returns the
// deleted ids in ascending order.
func (s *StateStore) Retain(keep func(ComponentID) bool) []ComponentID {
	var removed []ComponentID
	for id := range s.entries {
		if !keep(id) {
			removed = append(removed, id)
		}
	}
	for _, id := range removed {
		delete(s.entries, id)
	}
	slices.Sort(removed)
	return removed
}

// Clear removes every entry.
func (s *StateStore) Clear() {
	clear(s.entries)
}

// Begin starts a transaction over the store.
func (s *StateStore) Begin() *StateTxn {
	return &StateTxn{base: s, writes: make(map[ComponentID]any)}
}

// StateTxn buffers writes over a [StateStore] until Commit.
// Reads see buffered writes first.
type StateTxn struct {
	base   *StateStore
	writes map[ComponentID]any
	done   bool
}

// Get returns the buffered value for id, falling back to the base store.
func (t *StateTxn) Get(id ComponentID) (any, bool) {
	if v, ok := t.writes[id]; ok {
		return v, true
	}
	return t.base.Get(id)
}

// Set buffers a write.
func (t *StateTxn) Set(id ComponentID, v any) {
	if t.done {
		panic("core: Set on finished StateTxn")
	}
	t.writes[id] = v
}

// Pending returns the number of buffered writes.
func (t *StateTxn) Pending() int {
	return len(t.writes)
}

// Commit applies the buffered writes to the base store.
func (t *StateTxn) Commit() {
	if t.done {
		return
	}
	for id, v := range t.writes {
		t.base.Set(id, v)
	}
	t.done = true
}

// Discard drops the buffered writes.
func (t *StateTxn) Discard() {
	clear(t.writes)
	t.done = true
}

// StateAs returns the state for id as T. It returns an error wrapping
// [ErrNoState] when the id is absent or still unset, and a
// *errors.StateTypeError when the stored value has another type.
func StateAs[T any](r StateReader, id ComponentID) (T, error) {
	var zero T
	v, ok := r.Get(id)
	if !ok || IsUnset(v) {
		return zero, fmt.Errorf("state for id %d: %w", id, ErrNoState)
	}
	return castState[T](id, v)
}

func castState[T any](id ComponentID, v any) (T, error) {
	t, ok := v.(T)
	if !ok {
		return t, &wefterrors.StateTypeError{
			ID:   uint64(id),
			Want: typeName[T](),
			Got:  fmt.Sprintf("%T", v),
		}
	}
	return t, nil
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
