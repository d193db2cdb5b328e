package text

import (
	"sync"

	"github.com/go-drift/weft/pkg/core"
)

type cacheKey struct {
	content  string
	style    Style
	maxWidth float32
}

// Measurer lays out text for elements and remembers the last layout per
// component id, so a text whose content and constraints did not change
// between renders is not measured again.
type Measurer struct {
	fonts *FontManager

	mu    sync.Mutex
	cache map[core.ComponentID]map[cacheKey]*Layout
	hits  int
}

// NewMeasurer returns a measurer over fonts.
func NewMeasurer(fonts *FontManager) *Measurer {
	return &Measurer{fonts: fonts, cache: make(map[core.ComponentID]map[cacheKey]*Layout)}
}

// Measure returns the layout of content for the element with the given id.
func (m *Measurer) Measure(id core.ComponentID, content string, st Style, maxWidth float32) (*Layout, error) {
	key := cacheKey{content: content, style: st, maxWidth: maxWidth}

	m.mu.Lock()
	if l, ok := m.cache[id][key]; ok {
		m.hits++
		m.mu.Unlock()
		return l, nil
	}
	m.mu.Unlock()

	l, err := m.fonts.Layout(content, st, maxWidth)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	entries := m.cache[id]
	// Only the current content is worth keeping.
	if entries == nil || anyStale(entries, content, st) {
		entries = make(map[cacheKey]*Layout)
		m.cache[id] = entries
	}
	entries[key] = l
	return l, nil
}

func anyStale(entries map[cacheKey]*Layout, content string, st Style) bool {
	for k := range entries {
		if k.content != content || k.style != st {
			return true
		}
	}
	return false
}

// Prune drops cached layouts for ids where keep returns false and returns
// how many ids were dropped.
func (m *Measurer) Prune(keep func(core.ComponentID) bool) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id := range m.cache {
		if !keep(id) {
			delete(m.cache, id)
			n++
		}
	}
	return n
}

// Cached returns the number of ids with cached layouts.
func (m *Measurer) Cached() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cache)
}

// Hits returns how many Measure calls were served from the cache.
func (m *Measurer) Hits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits
}
