// Package style defines the layout and paint properties carried by elements.
//
// The zero value of [Style] is usable but does not shrink; start from
// [Default] to get CSS-like defaults.
package style

import (
	"fmt"

	"github.com/go-drift/weft/pkg/graphics"
)

// UnitKind discriminates the variants of [Unit].
type UnitKind int

const (
	// UnitAuto lets the layout engine decide.
	UnitAuto UnitKind = iota
	// UnitPx is an absolute length in logical pixels.
	UnitPx
	// UnitPercent is a fraction of the parent's content box, 0-100.
	UnitPercent
)

// Unit is a length that may be automatic, absolute, or relative.
type Unit struct {
	Kind  UnitKind
	Value float32
}

// Auto is the automatic length.
var Auto = Unit{}

// Px returns an absolute length.
func Px(v float32) Unit { return Unit{Kind: UnitPx, Value: v} }

// Percent returns a length relative to the parent, where 100 is the full size.
func Percent(v float32) Unit { return Unit{Kind: UnitPercent, Value: v} }

// IsAuto reports whether the unit is automatic.
func (u Unit) IsAuto() bool { return u.Kind == UnitAuto }

// Resolve converts the unit to pixels against the given parent length.
// It returns false for auto, and for percentages when parent is unknown (< 0).
func (u Unit) Resolve(parent float32) (float32, bool) {
	switch u.Kind {
	case UnitPx:
		return u.Value, true
	case UnitPercent:
		if parent < 0 {
			return 0, false
		}
		return parent * u.Value / 100, true
	default:
		return 0, false
	}
}

// String returns a CSS-like representation of the unit.
func (u Unit) String() string {
	switch u.Kind {
	case UnitPx:
		return fmt.Sprintf("%gpx", u.Value)
	case UnitPercent:
		return fmt.Sprintf("%g%%", u.Value)
	default:
		return "auto"
	}
}

// Display controls whether an element takes part in layout.
type Display int

const (
	DisplayFlex Display = iota
	DisplayNone
)

// String returns a human-readable representation of the display mode.
func (d Display) String() string {
	switch d {
	case DisplayFlex:
		return "flex"
	case DisplayNone:
		return "none"
	default:
		return fmt.Sprintf("Display(%d)", int(d))
	}
}

// FlexDirection is the main axis of a container.
type FlexDirection int

const (
	FlexDirectionRow FlexDirection = iota
	FlexDirectionColumn
)

// String returns a human-readable representation of the direction.
func (d FlexDirection) String() string {
	switch d {
	case FlexDirectionRow:
		return "row"
	case FlexDirectionColumn:
		return "column"
	default:
		return fmt.Sprintf("FlexDirection(%d)", int(d))
	}
}

// JustifyContent controls how children are positioned along the main axis.
type JustifyContent int

const (
	// JustifyStart packs children at the start.
	JustifyStart JustifyContent = iota
	// JustifyEnd packs children at the end.
	JustifyEnd
	// JustifyCenter centers children.
	JustifyCenter
	// JustifySpaceBetween puts equal space between children and none at the edges.
	JustifySpaceBetween
	// JustifySpaceAround puts half-sized spaces at the edges.
	JustifySpaceAround
	// JustifySpaceEvenly puts equal space everywhere, edges included.
	JustifySpaceEvenly
)

// String returns a human-readable representation of the justification.
func (j JustifyContent) String() string {
	switch j {
	case JustifyStart:
		return "start"
	case JustifyEnd:
		return "end"
	case JustifyCenter:
		return "center"
	case JustifySpaceBetween:
		return "space_between"
	case JustifySpaceAround:
		return "space_around"
	case JustifySpaceEvenly:
		return "space_evenly"
	default:
		return fmt.Sprintf("JustifyContent(%d)", int(j))
	}
}

// AlignItems controls how children are positioned along the cross axis.
// AlignStretch is the zero value.
type AlignItems int

const (
	AlignStretch AlignItems = iota
	AlignStart
	AlignEnd
	AlignCenter
)

// String returns a human-readable representation of the alignment.
func (a AlignItems) String() string {
	switch a {
	case AlignStretch:
		return "stretch"
	case AlignStart:
		return "start"
	case AlignEnd:
		return "end"
	case AlignCenter:
		return "center"
	default:
		return fmt.Sprintf("AlignItems(%d)", int(a))
	}
}

// FontWeight selects the face used for text.
type FontWeight int

const (
	FontWeightNormal FontWeight = iota
	FontWeightBold
)

// String returns a human-readable representation of the weight.
func (w FontWeight) String() string {
	if w == FontWeightBold {
		return "bold"
	}
	return "normal"
}

// DefaultFontSize is the font size used when a style leaves it unset.
const DefaultFontSize = 16

// Style holds layout and paint properties.
type Style struct {
	Display   Display
	Direction FlexDirection
	Justify   JustifyContent
	Align     AlignItems

	Width     Unit
	Height    Unit
	MinWidth  Unit
	MinHeight Unit
	MaxWidth  Unit
	MaxHeight Unit

	Padding graphics.EdgeInsets
	Margin  graphics.EdgeInsets
	Border  graphics.EdgeInsets
	Gap     float32

	Grow   float32
	Shrink float32

	Background  graphics.Color
	BorderColor graphics.Color
	Color       graphics.Color
	FontSize    float32
	FontWeight  FontWeight
}

// Default returns a style with flex defaults: row direction, stretch
// alignment, shrink 1, black text at [DefaultFontSize].
func Default() Style {
	return Style{
		Shrink:   1,
		Color:    graphics.ColorBlack,
		FontSize: DefaultFontSize,
	}
}

// EffectiveFontSize returns FontSize, or DefaultFontSize when unset.
func (s Style) EffectiveFontSize() float32 {
	if s.FontSize <= 0 {
		return DefaultFontSize
	}
	return s.FontSize
}
