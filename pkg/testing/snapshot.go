package testing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/weft/pkg/core"
)

// TestingT is the subset of *testing.T used by MatchesFile, allowing
// test doubles to intercept failures.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Name() string
}

// Snapshot captures the committed trees and the last frame's draw
// operations as text lines.
type Snapshot struct {
	Shadow     []string `json:"shadow"`
	Elements   []string `json:"elements"`
	DisplayOps []string `json:"displayOps,omitempty"`
}

// CaptureSnapshot captures the tester's current frame. Before the first
// committed frame the snapshot is empty.
func (t *Tester) CaptureSnapshot() *Snapshot {
	snap := &Snapshot{}
	tree, root := t.app.Tree(), t.app.Root()
	if tree == nil || root == nil {
		return snap
	}
	var buf bytes.Buffer
	core.PrintShadow(&buf, tree)
	snap.Shadow = lines(buf.String())
	buf.Reset()
	core.PrintElements(&buf, root)
	snap.Elements = lines(buf.String())
	if dl := t.recorder.Last(); dl != nil {
		for _, op := range dl.Ops() {
			snap.DisplayOps = append(snap.DisplayOps, op.String())
		}
	}
	return snap
}

func lines(s string) []string {
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

// MatchesFile compares this snapshot against a golden file. On mismatch it
// reports a diff and instructions for updating. When WEFT_UPDATE_SNAPSHOTS=1
// is set, the file is written instead.
func (s *Snapshot) MatchesFile(t TestingT, path string) {
	t.Helper()

	if os.Getenv("WEFT_UPDATE_SNAPSHOTS") == "1" {
		if err := s.UpdateFile(path); err != nil {
			t.Fatalf("failed to update snapshot: %v", err)
		}
		return
	}

	expected, err := loadSnapshot(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("snapshot file missing: %s\n\nTo create: WEFT_UPDATE_SNAPSHOTS=1 go test -run %s", path, t.Name())
			return
		}
		t.Fatalf("failed to load snapshot: %v", err)
		return
	}

	if diff := s.Diff(expected); diff != "" {
		t.Errorf("snapshot mismatch: %s (-want +got):\n%s\nTo update: WEFT_UPDATE_SNAPSHOTS=1 go test -run %s", path, diff, t.Name())
	}
}

// UpdateFile writes this snapshot to path, creating directories as needed.
func (s *Snapshot) UpdateFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := marshalSnapshot(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Diff returns a diff from want to s, or "" when they are equal.
func (s *Snapshot) Diff(want *Snapshot) string {
	return cmp.Diff(want, s)
}

func loadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("invalid snapshot JSON: %w", err)
	}
	return &snap, nil
}

func marshalSnapshot(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
