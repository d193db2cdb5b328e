package core

import "strconv"

// ComponentID identifies one logical component or element instance for the
// lifetime of an application. Zero is reserved for the shadow tree root.
type ComponentID uint64

func (id ComponentID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// IDAllocator hands out monotonically increasing ids starting at 1.
// It is not safe for concurrent use; the render cycle owns it.
type IDAllocator struct {
	last ComponentID
}

// Allocate returns a fresh id.
func (a *IDAllocator) Allocate() ComponentID {
	a.last++
	return a.last
}

// Last returns the most recently allocated id, or zero.
func (a *IDAllocator) Last() ComponentID {
	return a.last
}

// Reset rewinds the allocator to zero. Only call it at an application
// restart, after the state store has been cleared.
func (a *IDAllocator) Reset() {
	a.last = 0
}
