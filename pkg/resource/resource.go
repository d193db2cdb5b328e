// Package resource loads image resources in the background and reports
// their intrinsic sizes to layout.
package resource

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	wefterrors "github.com/go-drift/weft/pkg/errors"
	"github.com/go-drift/weft/pkg/graphics"
)

// Status is the load state of a resource.
type Status int

const (
	StatusUnknown Status = iota
	StatusPending
	StatusLoaded
	StatusFailed
)

// String returns a human-readable representation of the status.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// EventKind identifies a resource lifecycle change.
type EventKind int

const (
	EventAdded EventKind = iota
	EventLoaded
	EventFailed
	EventUnloaded
)

func (k EventKind) String() string {
	switch k {
	case EventAdded:
		return "added"
	case EventLoaded:
		return "loaded"
	case EventFailed:
		return "failed"
	case EventUnloaded:
		return "unloaded"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is published to the [Notifier] when a resource changes state.
type Event struct {
	Kind EventKind
	Path string
	Err  error
}

// Notifier receives events. It is called from loader goroutines and must
// hand the event off rather than touch render state directly.
type Notifier func(Event)

// Resource describes one loaded or loading image.
type Resource struct {
	Path     string
	MIME     string
	Format   string
	Size     graphics.Size
	Status   Status
	Err      error
	LoadedAt time.Time
}

// Manager loads resources from a file system.
type Manager struct {
	fsys   fs.FS
	logger *slog.Logger

	mu        sync.RWMutex
	inflight  atomic.Int64
	resources map[string]*Resource
	notify    Notifier
	wg        sync.WaitGroup
}

// NewManager returns a manager reading from fsys. A nil logger uses slog.Default().
func NewManager(fsys fs.FS, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{fsys: fsys, logger: logger, resources: make(map[string]*Resource)}
}

// SetNotifier installs the event sink. Pass nil to drop events.
func (m *Manager) SetNotifier(n Notifier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notify = n
}

func (m *Manager) publish(ev Event) {
	m.mu.RLock()
	n := m.notify
	m.mu.RUnlock()
	if n != nil {
		n(ev)
	}
}

// Request returns the status of path, starting a background load the first
// time it is asked for.
func (m *Manager) Request(path string) Status {
	m.mu.Lock()
	if r, ok := m.resources[path]; ok {
		m.mu.Unlock()
		return r.Status
	}
	m.resources[path] = &Resource{Path: path, Status: StatusPending}
	m.wg.Add(1)
	m.inflight.Add(1)
	m.mu.Unlock()

	m.publish(Event{Kind: EventAdded, Path: path})
	go func() {
		defer m.wg.Done()
		defer m.inflight.Add(-1)
		defer wefterrors.Recover("resource.Manager.load")
		m.finish(path, m.load(path))
	}()
	return StatusPending
}

// Preload loads paths concurrently and waits for all of them. It returns the
// first load error; a failed load does not stop the others. Loads not yet
// started when ctx is cancelled fail with its error. Preloads count toward
// Pending and Wait like requested loads.
func (m *Manager) Preload(ctx context.Context, paths ...string) error {
	var g errgroup.Group
	g.SetLimit(4)
	for _, p := range paths {
		m.mu.Lock()
		if r, ok := m.resources[p]; ok && r.Status != StatusFailed {
			m.mu.Unlock()
			continue
		}
		m.resources[p] = &Resource{Path: p, Status: StatusPending}
		m.wg.Add(1)
		m.inflight.Add(1)
		m.mu.Unlock()

		m.publish(Event{Kind: EventAdded, Path: p})
		g.Go(func() error {
			defer m.wg.Done()
			defer m.inflight.Add(-1)
			if err := ctx.Err(); err != nil {
				m.finish(p, Resource{Path: p, Status: StatusFailed, Err: err})
				return err
			}
			r := m.load(p)
			m.finish(p, r)
			return r.Err
		})
	}
	return g.Wait()
}

// Wait blocks until every background load started by Request or Preload has
// finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// Pending returns the number of loads that have not yet published their
// outcome.
func (m *Manager) Pending() int {
	return int(m.inflight.Load())
}

// Get returns a copy of the resource for path.
func (m *Manager) Get(path string) (Resource, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.resources[path]
	if !ok {
		return Resource{}, false
	}
	return *r, true
}

// Size returns the intrinsic size of a loaded image.
func (m *Manager) Size(path string) (graphics.Size, bool) {
	r, ok := m.Get(path)
	if !ok || r.Status != StatusLoaded {
		return graphics.Size{}, false
	}
	return r.Size, true
}

// Unload forgets path.
func (m *Manager) Unload(path string) {
	m.mu.Lock()
	_, ok := m.resources[path]
	delete(m.resources, path)
	m.mu.Unlock()
	if ok {
		m.publish(Event{Kind: EventUnloaded, Path: path})
	}
}

func (m *Manager) finish(path string, r Resource) {
	m.mu.Lock()
	if _, ok := m.resources[path]; !ok {
		// Unloaded while loading.
		m.mu.Unlock()
		return
	}
	m.resources[path] = &r
	m.mu.Unlock()

	if r.Err != nil {
		m.logger.Warn("resource load failed", "path", path, "err", r.Err)
		wefterrors.Report(&wefterrors.WeftError{Op: "resource.Manager.load", Kind: wefterrors.KindResource, Err: r.Err})
		m.publish(Event{Kind: EventFailed, Path: path, Err: r.Err})
		return
	}
	m.logger.Debug("resource loaded", "path", path, "format", r.Format, "width", r.Size.Width, "height", r.Size.Height)
	m.publish(Event{Kind: EventLoaded, Path: path})
}

func (m *Manager) load(path string) Resource {
	r := Resource{Path: path, Status: StatusFailed}
	data, err := fs.ReadFile(m.fsys, path)
	if err != nil {
		r.Err = fmt.Errorf("resource: read %s: %w", path, err)
		return r
	}
	kind, err := filetype.Match(data)
	if err != nil {
		r.Err = fmt.Errorf("resource: sniff %s: %w", path, err)
		return r
	}
	if kind == filetype.Unknown || !filetype.IsImage(data) {
		r.Err = fmt.Errorf("resource: %s is not an image (%s)", path, kind.MIME.Value)
		return r
	}
	r.MIME = kind.MIME.Value

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		r.Err = fmt.Errorf("resource: decode %s: %w", path, err)
		return r
	}
	r.Format = format
	r.Size = graphics.Size{Width: float32(cfg.Width), Height: float32(cfg.Height)}
	r.Status = StatusLoaded
	r.LoadedAt = time.Now()
	return r
}
