package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-drift/weft/pkg/core"
)

// maxTreeDepth limits recursion when serializing malformed trees.
const maxTreeDepth = 500

// ShadowTreeNode is the JSON form of a shadow node.
type ShadowTreeNode struct {
	ID        uint64           `json:"id"`
	Tag       string           `json:"tag"`
	Key       string           `json:"key,omitempty"`
	IsElement bool             `json:"isElement"`
	HasUpdate bool             `json:"hasUpdate,omitempty"`
	Children  []ShadowTreeNode `json:"children,omitempty"`
}

// ElementTreeNode is the JSON form of a positioned element.
type ElementTreeNode struct {
	Name     string            `json:"name"`
	ID       uint64            `json:"id"`
	UserID   string            `json:"userId,omitempty"`
	X        float32           `json:"x"`
	Y        float32           `json:"y"`
	Width    float32           `json:"width"`
	Height   float32           `json:"height"`
	Children []ElementTreeNode `json:"children,omitempty"`
}

// Inspector serves the committed trees and frame timings of an App as
// JSON over HTTP.
//
//	GET /health        {"status":"ok"}
//	GET /shadow-tree   shadow tree
//	GET /element-tree  element tree with geometry
//	GET /state         {"entries": n, "ids": [...]}
//	GET /frames        frame timeline; ?limit=n keeps the last n samples
//	GET /runtime       current and recent runtime samples
type Inspector struct {
	app *App

	// SampleInterval is how often Start samples runtime figures. Zero
	// means one second.
	SampleInterval time.Duration

	runtime *RuntimeSampleBuffer

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	sampler  *runtimeSampler
}

// NewInspector returns an inspector for app.
func NewInspector(app *App) *Inspector {
	return &Inspector{app: app, runtime: NewRuntimeSampleBuffer(runtimeSampleMaxSamples)}
}

// Handler returns the inspector's routes.
func (in *Inspector) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", in.handleHealth)
	mux.HandleFunc("GET /shadow-tree", in.handleShadowTree)
	mux.HandleFunc("GET /element-tree", in.handleElementTree)
	mux.HandleFunc("GET /state", in.handleState)
	mux.HandleFunc("GET /frames", in.handleFrames)
	mux.HandleFunc("GET /runtime", in.handleRuntime)
	return mux
}

// Start listens on addr and serves in the background. It returns the bound
// address, which differs from addr when the port is zero.
func (in *Inspector) Start(addr string) (string, error) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.server != nil {
		return in.listener.Addr().String(), nil
	}

	// Bind first to fail fast on port conflicts.
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("inspector listen: %w", err)
	}
	server := &http.Server{Handler: in.Handler(), ReadHeaderTimeout: 5 * time.Second}
	in.server, in.listener = server, listener
	in.sampler = startRuntimeSampler(in.app, in.runtime, in.SampleInterval)

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			in.app.logger.Error("inspector stopped", "err", err)
			in.mu.Lock()
			sampler := in.sampler
			in.server, in.listener, in.sampler = nil, nil, nil
			in.mu.Unlock()
			if sampler != nil {
				sampler.Stop()
			}
		}
	}()
	in.app.logger.Info("inspector listening", "addr", listener.Addr().String())
	return listener.Addr().String(), nil
}

// Stop shuts the server down, waiting up to two seconds for open requests.
func (in *Inspector) Stop() error {
	in.mu.Lock()
	server, sampler := in.server, in.sampler
	in.server, in.listener, in.sampler = nil, nil, nil
	in.mu.Unlock()
	if sampler != nil {
		sampler.Stop()
	}
	if server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, v any) {
	// Encode to a buffer first so errors can still change the status.
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, fmt.Sprintf("json encode error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (in *Inspector) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (in *Inspector) handleShadowTree(w http.ResponseWriter, _ *http.Request) {
	in.app.frameMu.Lock()
	tree := in.app.tree
	var out ShadowTreeNode
	if tree != nil {
		out = serializeShadow(tree, tree.Root(), 0)
	}
	in.app.frameMu.Unlock()
	if tree == nil {
		http.Error(w, "no shadow tree", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, out)
}

func (in *Inspector) handleElementTree(w http.ResponseWriter, _ *http.Request) {
	in.app.frameMu.Lock()
	root := in.app.rootEl
	var out ElementTreeNode
	if root != nil {
		out = serializeElement(root, 0)
	}
	in.app.frameMu.Unlock()
	if root == nil {
		http.Error(w, "no element tree", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, out)
}

func (in *Inspector) handleState(w http.ResponseWriter, _ *http.Request) {
	in.app.frameMu.Lock()
	ids := in.app.store.IDs()
	in.app.frameMu.Unlock()
	resp := struct {
		Entries int      `json:"entries"`
		IDs     []uint64 `json:"ids"`
	}{Entries: len(ids), IDs: make([]uint64, len(ids))}
	for i, id := range ids {
		resp.IDs[i] = uint64(id)
	}
	writeJSON(w, resp)
}

func (in *Inspector) handleFrames(w http.ResponseWriter, r *http.Request) {
	if in.app.frameTrace == nil {
		http.Error(w, "frame tracing disabled", http.StatusServiceUnavailable)
		return
	}
	tl := in.app.frameTrace.Snapshot()
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			tl = tl.Last(n)
		}
	}
	writeJSON(w, tl)
}

func (in *Inspector) handleRuntime(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, struct {
		Current RuntimeSample   `json:"current"`
		Samples []RuntimeSample `json:"samples"`
	}{Current: in.app.RuntimeSample(), Samples: in.runtime.Snapshot()})
}

func serializeShadow(t *core.ShadowTree, i, depth int) ShadowTreeNode {
	n := t.Node(i)
	out := ShadowTreeNode{
		ID:        uint64(n.ID),
		Tag:       n.Tag,
		Key:       n.Key,
		IsElement: n.IsElement,
		HasUpdate: n.Update != nil,
	}
	if depth >= maxTreeDepth {
		return out
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, serializeShadow(t, c, depth+1))
	}
	return out
}

func serializeElement(el core.Element, depth int) ElementTreeNode {
	d := el.Data()
	out := ElementTreeNode{
		Name:   el.Name(),
		ID:     uint64(d.ComponentID),
		UserID: d.UserID,
		X:      d.X,
		Y:      d.Y,
		Width:  d.Width,
		Height: d.Height,
	}
	if depth >= maxTreeDepth {
		return out
	}
	for _, c := range d.Children {
		out.Children = append(out.Children, serializeElement(c, depth+1))
	}
	return out
}
