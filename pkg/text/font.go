// Package text measures and wraps text runs using the Go fonts.
package text

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	wefterrors "github.com/go-drift/weft/pkg/errors"
	"github.com/go-drift/weft/pkg/style"
)

// Style selects a face.
type Style struct {
	Size   float32
	Weight style.FontWeight
}

func (s Style) size() float32 {
	if s.Size <= 0 {
		return style.DefaultFontSize
	}
	return s.Size
}

type faceKey struct {
	weight style.FontWeight
	size   float32
}

// FontManager parses the bundled fonts once and caches faces by weight and
// size. Faces are not safe for concurrent use, so access is serialized.
type FontManager struct {
	mu    sync.Mutex
	fonts map[style.FontWeight]*opentype.Font
	faces map[faceKey]font.Face
}

var (
	defaultFontManager     *FontManager
	defaultFontManagerErr  error
	defaultFontManagerOnce sync.Once
)

// NewFontManager parses the Go regular and bold faces.
func NewFontManager() (*FontManager, error) {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("text: parse regular font: %w", err)
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("text: parse bold font: %w", err)
	}
	return &FontManager{
		fonts: map[style.FontWeight]*opentype.Font{
			style.FontWeightNormal: regular,
			style.FontWeightBold:   bold,
		},
		faces: make(map[faceKey]font.Face),
	}, nil
}

// DefaultFontManager returns a shared font manager. Initialization failures
// are reported once and returned on every call.
func DefaultFontManager() (*FontManager, error) {
	defaultFontManagerOnce.Do(func() {
		defaultFontManager, defaultFontManagerErr = NewFontManager()
		if defaultFontManagerErr != nil {
			wefterrors.Report(&wefterrors.WeftError{
				Op:   "text.DefaultFontManager",
				Kind: wefterrors.KindMeasure,
				Err:  defaultFontManagerErr,
			})
		}
	})
	return defaultFontManager, defaultFontManagerErr
}

// faceLocked returns the face for st. m.mu must be held.
func (m *FontManager) faceLocked(st Style) (font.Face, error) {
	key := faceKey{weight: st.Weight, size: st.size()}
	if f, ok := m.faces[key]; ok {
		return f, nil
	}
	f, ok := m.fonts[st.Weight]
	if !ok {
		f = m.fonts[style.FontWeightNormal]
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(key.size),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("text: new face %v: %w", key, err)
	}
	m.faces[key] = face
	return face, nil
}

func toFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}

// Line is one laid-out line.
type Line struct {
	Text  string
	Width float32
}

// Layout is measured, wrapped text.
type Layout struct {
	Text       string
	Style      Style
	Width      float32
	Height     float32
	Ascent     float32
	Descent    float32
	LineHeight float32
	Lines      []Line
}

// Layout measures text and wraps it to maxWidth. A maxWidth of zero or less
// disables wrapping; explicit newlines always break.
func (m *FontManager) Layout(content string, st Style, maxWidth float32) (*Layout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	face, err := m.faceLocked(st)
	if err != nil {
		return nil, err
	}
	metrics := face.Metrics()
	ascent := toFloat(metrics.Ascent)
	descent := toFloat(metrics.Descent)
	lineHeight := toFloat(metrics.Height)
	if lineHeight == 0 {
		lineHeight = ascent + descent
	}

	measure := func(s string) float32 {
		return toFloat(font.MeasureString(face, s))
	}
	lines := layoutLines(content, maxWidth, measure)
	var width float32
	for _, l := range lines {
		width = max(width, l.Width)
	}
	return &Layout{
		Text:       content,
		Style:      st,
		Width:      width,
		Height:     lineHeight * float32(len(lines)),
		Ascent:     ascent,
		Descent:    descent,
		LineHeight: lineHeight,
		Lines:      lines,
	}, nil
}
