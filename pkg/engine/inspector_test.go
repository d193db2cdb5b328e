package engine

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-drift/weft/pkg/core"
)

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK && v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatal(err)
		}
	}
	return resp.StatusCode
}

func TestInspectorBeforeFirstFrame(t *testing.T) {
	a := New(core.Comp(tapper))
	srv := httptest.NewServer(NewInspector(a).Handler())
	defer srv.Close()

	if code := getJSON(t, srv.URL+"/health", nil); code != http.StatusOK {
		t.Errorf("/health = %d", code)
	}
	for _, path := range []string{"/shadow-tree", "/element-tree", "/frames"} {
		if code := getJSON(t, srv.URL+path, nil); code != http.StatusServiceUnavailable {
			t.Errorf("%s = %d, want 503", path, code)
		}
	}
}

func TestInspectorTrees(t *testing.T) {
	a := New(core.Comp(tapper), WithFrameTrace(4, time.Hour))
	mustRender(t, a)
	mustRender(t, a)
	srv := httptest.NewServer(NewInspector(a).Handler())
	defer srv.Close()

	var shadow ShadowTreeNode
	if code := getJSON(t, srv.URL+"/shadow-tree", &shadow); code != http.StatusOK {
		t.Fatalf("/shadow-tree = %d", code)
	}
	if shadow.Tag != core.RootTag || len(shadow.Children) != 1 {
		t.Fatalf("shadow root = %+v", shadow)
	}
	window := shadow.Children[0]
	if window.Tag != "Container" || !window.IsElement || window.Children[0].Tag != "Tapper" || !window.Children[0].HasUpdate {
		t.Errorf("window = %+v", window)
	}

	var elems ElementTreeNode
	if code := getJSON(t, srv.URL+"/element-tree", &elems); code != http.StatusOK {
		t.Fatalf("/element-tree = %d", code)
	}
	if elems.Name != "Container" || elems.Width != 800 || elems.Children[0].UserID != "button" {
		t.Errorf("element tree = %+v", elems)
	}

	var state struct {
		Entries int      `json:"entries"`
		IDs     []uint64 `json:"ids"`
	}
	getJSON(t, srv.URL+"/state", &state)
	if state.Entries != a.State().Len() || len(state.IDs) != state.Entries {
		t.Errorf("state = %+v", state)
	}

	var tl FrameTimeline
	getJSON(t, srv.URL+"/frames?limit=1", &tl)
	if len(tl.Samples) != 1 {
		t.Errorf("frames?limit=1 returned %d samples", len(tl.Samples))
	}
}

func TestInspectorStartStop(t *testing.T) {
	in := NewInspector(New(core.Comp(tapper)))
	addr, err := in.Start("127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	again, err := in.Start("127.0.0.1:0")
	if err != nil || again != addr {
		t.Errorf("second Start = %q, %v; want %q", again, err, addr)
	}
	if code := getJSON(t, "http://"+addr+"/health", nil); code != http.StatusOK {
		t.Errorf("/health = %d", code)
	}
	if err := in.Stop(); err != nil {
		t.Fatal(err)
	}
	if err := in.Stop(); err != nil {
		t.Errorf("second Stop: %v", err)
	}
}

func TestInspectorRuntime(t *testing.T) {
	a := New(core.Comp(tapper))
	in := NewInspector(a)
	in.SampleInterval = 10 * time.Millisecond
	addr, err := in.Start("127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer in.Stop()

	var resp struct {
		Current RuntimeSample   `json:"current"`
		Samples []RuntimeSample `json:"samples"`
	}
	if code := getJSON(t, "http://"+addr+"/runtime", &resp); code != http.StatusOK {
		t.Fatalf("/runtime = %d", code)
	}
	if resp.Current.Goroutines == 0 || resp.Current.HeapAlloc == 0 {
		t.Errorf("current sample = %+v", resp.Current)
	}
	if len(resp.Samples) == 0 {
		t.Error("no samples recorded at Start")
	}
}

func TestRuntimeSampleBufferWraps(t *testing.T) {
	b := NewRuntimeSampleBuffer(3)
	for i := range 5 {
		b.Add(RuntimeSample{Timestamp: int64(i)})
	}
	got := b.Snapshot()
	if len(got) != 3 || got[0].Timestamp != 2 || got[2].Timestamp != 4 {
		t.Errorf("Snapshot = %+v", got)
	}
	if NewRuntimeSampleBuffer(0).Snapshot() != nil {
		t.Error("empty buffer returned samples")
	}
}
