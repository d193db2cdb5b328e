// Package layout mirrors an element tree into a Yoga flex tree, solves it,
// and writes the resulting geometry back onto the elements.
package layout

import (
	"fmt"
	"log/slog"

	"github.com/chewxy/math32"
	"github.com/kjk/flex"

	"github.com/go-drift/weft/pkg/core"
	wefterrors "github.com/go-drift/weft/pkg/errors"
	"github.com/go-drift/weft/pkg/graphics"
	"github.com/go-drift/weft/pkg/resource"
	"github.com/go-drift/weft/pkg/style"
	"github.com/go-drift/weft/pkg/text"
)

// Size is a measured content-box size.
type Size struct {
	Width  float32
	Height float32
}

// KnownSize holds the content-box dimensions the parent has already fixed.
type KnownSize struct {
	Width     float32
	Height    float32
	HasWidth  bool
	HasHeight bool
}

// SpaceKind discriminates [AvailableSpace].
type SpaceKind int

const (
	SpaceDefinite SpaceKind = iota
	SpaceMaxContent
)

// AvailableSpace is the room offered to a leaf along one axis.
type AvailableSpace struct {
	Kind  SpaceKind
	Value float32
}

// Definite returns a bounded space of v.
func Definite(v float32) AvailableSpace { return AvailableSpace{Kind: SpaceDefinite, Value: v} }

// MaxContent asks for the size the content takes without constraint.
var MaxContent = AvailableSpace{Kind: SpaceMaxContent}

// IsDefinite reports whether the space has a concrete value.
func (a AvailableSpace) IsDefinite() bool { return a.Kind == SpaceDefinite }

// AvailableSize is the space offered on both axes.
type AvailableSize struct {
	Width  AvailableSpace
	Height AvailableSpace
}

// MeasureContext carries the collaborators leaf measurement needs.
type MeasureContext struct {
	Text      *text.Measurer
	Resources *resource.Manager
}

// Measurable is implemented by leaf elements with intrinsic size. known
// holds content-box dimensions fixed by the parent; available is the
// content-box space offered. Results are rounded up to whole pixels.
type Measurable interface {
	core.Element
	Measure(ctx *MeasureContext, known KnownSize, available AvailableSize) (Size, error)
}

// Pass runs layout over an element tree.
type Pass struct {
	Measure MeasureContext
	// Logger receives debug output. Nil disables it.
	Logger *slog.Logger
}

// mirrored pairs an element with its flex node. Spacers inserted for
// space-evenly are not mirrored.
type mirrored struct {
	el   core.Element
	node *flex.Node
	kids []*mirrored
}

type mirror struct {
	cfg   *flex.Config
	ctx   *MeasureContext
	nodes int
	// err is the first measure failure; later measure calls short-circuit.
	err error
}

// Run lays out the tree rooted at root to fill viewport. Every element with
// display flex receives absolute X and Y, Width, Height, and Padding.
// Elements with display none, and their descendants, are left untouched.
func (p *Pass) Run(root core.Element, viewport graphics.Size) (err error) {
	if root.Data().Style.Display == style.DisplayNone {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = &wefterrors.WeftError{Op: "layout.Pass.Run", Kind: wefterrors.KindLayout, Err: fmt.Errorf("flex: %v", r)}
		}
	}()

	m := &mirror{cfg: flex.NewConfig(), ctx: &p.Measure}
	top := m.build(root)
	flex.CalculateLayout(top.node, viewport.Width, viewport.Height, flex.DirectionLTR)
	if m.err != nil {
		return m.err
	}

	writeBack(top, 0, 0)
	if p.Logger != nil {
		p.Logger.Debug("layout", "nodes", m.nodes, "width", viewport.Width, "height", viewport.Height)
	}
	return nil
}

func (m *mirror) build(el core.Element) *mirrored {
	d := el.Data()
	n := flex.NewNodeWithConfig(m.cfg)
	ToFlexStyle(n, d.Style)
	m.nodes++
	out := &mirrored{el: el, node: n}

	for _, c := range d.Children {
		cs := c.Data().Style
		if cs.Display == style.DisplayNone {
			continue
		}
		kid := m.build(c)
		if len(out.kids) > 0 && d.Style.Gap > 0 {
			addGap(kid.node, cs, d.Style.Direction, d.Style.Gap)
		}
		n.InsertChild(kid.node, len(out.kids))
		out.kids = append(out.kids, kid)
	}

	if len(out.kids) == 0 {
		if ms, ok := el.(Measurable); ok {
			n.SetMeasureFunc(m.measureFunc(ms))
		}
		return out
	}
	if d.Style.Justify == style.JustifySpaceEvenly {
		// Equal space at the edges too: bracket the children with empty
		// spacers and distribute between all of them.
		n.InsertChild(m.spacer(), 0)
		n.InsertChild(m.spacer(), len(out.kids)+1)
		n.StyleSetJustifyContent(flex.JustifySpaceBetween)
	}
	return out
}

func (m *mirror) spacer() *flex.Node {
	s := flex.NewNodeWithConfig(m.cfg)
	s.StyleSetFlexShrink(0)
	return s
}

// addGap widens the leading main-axis margin of a child that follows a
// sibling.
func addGap(n *flex.Node, s style.Style, dir style.FlexDirection, gap float32) {
	if dir == style.FlexDirectionColumn {
		n.StyleSetMargin(flex.EdgeTop, s.Margin.Top+gap)
		return
	}
	n.StyleSetMargin(flex.EdgeLeft, s.Margin.Left+gap)
}

func (m *mirror) measureFunc(el Measurable) func(*flex.Node, float32, flex.MeasureMode, float32, flex.MeasureMode) flex.Size {
	return func(_ *flex.Node, width float32, widthMode flex.MeasureMode, height float32, heightMode flex.MeasureMode) flex.Size {
		if m.err != nil {
			return flex.Size{}
		}
		var known KnownSize
		var avail AvailableSize
		known.Width, known.HasWidth, avail.Width = constraint(width, widthMode)
		known.Height, known.HasHeight, avail.Height = constraint(height, heightMode)

		sz, err := el.Measure(m.ctx, known, avail)
		if err != nil {
			m.err = &wefterrors.WeftError{
				Op:          "layout.Measure",
				Kind:        wefterrors.KindMeasure,
				ComponentID: uint64(el.Data().ComponentID),
				Err:         err,
			}
			return flex.Size{}
		}
		return flex.Size{Width: math32.Ceil(finite(sz.Width)), Height: math32.Ceil(finite(sz.Height))}
	}
}

// constraint maps one Yoga measure axis onto known and available space.
func constraint(v float32, mode flex.MeasureMode) (float32, bool, AvailableSpace) {
	switch mode {
	case flex.MeasureModeExactly:
		v = finite(v)
		return v, true, Definite(v)
	case flex.MeasureModeAtMost:
		return 0, false, Definite(finite(v))
	default:
		return 0, false, MaxContent
	}
}

// finite maps Yoga's undefined (NaN) and infinite results to zero.
func finite(v float32) float32 {
	if math32.IsNaN(v) || math32.IsInf(v, 0) {
		return 0
	}
	return v
}

func writeBack(m *mirrored, originX, originY float32) {
	n := m.node
	d := m.el.Data()
	d.X = originX + finite(n.LayoutGetLeft())
	d.Y = originY + finite(n.LayoutGetTop())
	d.Width = finite(n.LayoutGetWidth())
	d.Height = finite(n.LayoutGetHeight())
	d.Padding = graphics.EdgeInsets{
		Top:    finite(n.LayoutGetPadding(flex.EdgeTop)),
		Right:  finite(n.LayoutGetPadding(flex.EdgeRight)),
		Bottom: finite(n.LayoutGetPadding(flex.EdgeBottom)),
		Left:   finite(n.LayoutGetPadding(flex.EdgeLeft)),
	}
	for _, k := range m.kids {
		writeBack(k, d.X, d.Y)
	}
}

func setLength(u style.Unit, points, percent func(float32)) {
	switch u.Kind {
	case style.UnitPx:
		points(u.Value)
	case style.UnitPercent:
		percent(u.Value)
	}
}

func setEdges(e graphics.EdgeInsets, set func(flex.Edge, float32)) {
	set(flex.EdgeTop, e.Top)
	set(flex.EdgeRight, e.Right)
	set(flex.EdgeBottom, e.Bottom)
	set(flex.EdgeLeft, e.Left)
}

// ToFlexStyle copies an element style onto a flex node. Auto lengths leave
// the node's default in place. Gap and space-evenly have no node property
// and are applied while mirroring children.
func ToFlexStyle(n *flex.Node, s style.Style) {
	setLength(s.Width, n.StyleSetWidth, n.StyleSetWidthPercent)
	setLength(s.Height, n.StyleSetHeight, n.StyleSetHeightPercent)
	setLength(s.MinWidth, n.StyleSetMinWidth, n.StyleSetMinWidthPercent)
	setLength(s.MinHeight, n.StyleSetMinHeight, n.StyleSetMinHeightPercent)
	setLength(s.MaxWidth, n.StyleSetMaxWidth, n.StyleSetMaxWidthPercent)
	setLength(s.MaxHeight, n.StyleSetMaxHeight, n.StyleSetMaxHeightPercent)
	setEdges(s.Padding, n.StyleSetPadding)
	setEdges(s.Margin, n.StyleSetMargin)
	setEdges(s.Border, n.StyleSetBorder)
	n.StyleSetFlexGrow(s.Grow)
	n.StyleSetFlexShrink(s.Shrink)

	if s.Display == style.DisplayNone {
		n.StyleSetDisplay(flex.DisplayNone)
	}
	if s.Direction == style.FlexDirectionColumn {
		n.StyleSetFlexDirection(flex.FlexDirectionColumn)
	} else {
		n.StyleSetFlexDirection(flex.FlexDirectionRow)
	}
	switch s.Justify {
	case style.JustifyEnd:
		n.StyleSetJustifyContent(flex.JustifyFlexEnd)
	case style.JustifyCenter:
		n.StyleSetJustifyContent(flex.JustifyCenter)
	case style.JustifySpaceBetween:
		n.StyleSetJustifyContent(flex.JustifySpaceBetween)
	case style.JustifySpaceAround:
		n.StyleSetJustifyContent(flex.JustifySpaceAround)
	default:
		n.StyleSetJustifyContent(flex.JustifyFlexStart)
	}
	switch s.Align {
	case style.AlignStart:
		n.StyleSetAlignItems(flex.AlignFlexStart)
	case style.AlignEnd:
		n.StyleSetAlignItems(flex.AlignFlexEnd)
	case style.AlignCenter:
		n.StyleSetAlignItems(flex.AlignCenter)
	default:
		n.StyleSetAlignItems(flex.AlignStretch)
	}
}

// WidthConstraint returns the width text should wrap to: the known width,
// else definite available width, else zero for unconstrained.
func WidthConstraint(known KnownSize, avail AvailableSize) float32 {
	if known.HasWidth {
		return known.Width
	}
	if avail.Width.IsDefinite() {
		return avail.Width.Value
	}
	return 0
}

// ImageSize scales an intrinsic image size to the known dimensions,
// preserving the aspect ratio when only one is known.
func ImageSize(intrinsic graphics.Size, known KnownSize) Size {
	switch {
	case known.HasWidth && known.HasHeight:
		return Size{Width: known.Width, Height: known.Height}
	case known.HasWidth:
		if intrinsic.Width == 0 {
			return Size{Width: known.Width}
		}
		return Size{Width: known.Width, Height: known.Width / intrinsic.Width * intrinsic.Height}
	case known.HasHeight:
		if intrinsic.Height == 0 {
			return Size{Height: known.Height}
		}
		return Size{Width: known.Height / intrinsic.Height * intrinsic.Width, Height: known.Height}
	default:
		return Size{Width: intrinsic.Width, Height: intrinsic.Height}
	}
}
