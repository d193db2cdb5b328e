package text

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/weft/pkg/core"
	"github.com/go-drift/weft/pkg/style"
)

// fixedWidth measures every rune as 10 units wide.
func fixedWidth(s string) float32 {
	return float32(len([]rune(s)) * 10)
}

func TestWrapParagraph(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxWidth float32
		want     []string
	}{
		{"fits", "hello", 100, []string{"hello"}},
		{"word break", "hello world", 60, []string{"hello", "world"}},
		{"long word", "abcdefgh", 30, []string{"abc", "def", "gh"}},
		{"collapse spaces", "a   b", 20, []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapParagraph(tt.text, tt.maxWidth, fixedWidth)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("wrapParagraph (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLayoutLinesNewlines(t *testing.T) {
	got := layoutLines("ab\n\ncd", 0, fixedWidth)
	want := []Line{{"ab", 20}, {"", 0}, {"cd", 20}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("layoutLines (-want +got):\n%s", diff)
	}
}

func TestFontManagerLayout(t *testing.T) {
	fm, err := NewFontManager()
	if err != nil {
		t.Fatal(err)
	}
	st := Style{Size: 16}
	single, err := fm.Layout("hello world", st, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(single.Lines) != 1 || single.Width <= 0 {
		t.Fatalf("unwrapped layout = %+v", single)
	}
	if single.Height != single.LineHeight {
		t.Errorf("Height = %v, want one line of %v", single.Height, single.LineHeight)
	}

	wrapped, err := fm.Layout("hello world", st, single.Width-1)
	if err != nil {
		t.Fatal(err)
	}
	if len(wrapped.Lines) != 2 {
		t.Errorf("wrapped lines = %d, want 2", len(wrapped.Lines))
	}

	bold, err := fm.Layout("hello world", Style{Size: 16, Weight: style.FontWeightBold}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if bold.Width <= single.Width {
		t.Errorf("bold width %v should exceed regular width %v", bold.Width, single.Width)
	}
}

func TestMeasurerCacheAndPrune(t *testing.T) {
	fm, err := DefaultFontManager()
	if err != nil {
		t.Fatal(err)
	}
	m := NewMeasurer(fm)
	st := Style{Size: 12}

	a, err := m.Measure(1, "abc", st, 0)
	if err != nil {
		t.Fatal(err)
	}
	b, err := m.Measure(1, "abc", st, 0)
	if err != nil {
		t.Fatal(err)
	}
	if a != b || m.Hits() != 1 {
		t.Errorf("second measure should hit the cache, hits = %d", m.Hits())
	}
	if _, err := m.Measure(2, "xyz", st, 0); err != nil {
		t.Fatal(err)
	}
	if m.Cached() != 2 {
		t.Errorf("Cached = %d, want 2", m.Cached())
	}

	n := m.Prune(func(id core.ComponentID) bool { return id == 2 })
	if n != 1 || m.Cached() != 1 {
		t.Errorf("Prune removed %d, cached %d; want 1, 1", n, m.Cached())
	}
}
