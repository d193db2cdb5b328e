// Package elements provides the concrete element types: Container, Text,
// Image, and Empty.
package elements

import (
	"github.com/go-drift/weft/pkg/core"
	"github.com/go-drift/weft/pkg/graphics"
	"github.com/go-drift/weft/pkg/style"
)

// Option configures an element's shared data.
type Option func(*core.ElementData)

// ID sets the user id used to address the element in events.
func ID(id string) Option {
	return func(d *core.ElementData) { d.UserID = id }
}

// Styled applies fn to the element's style.
func Styled(fn func(*style.Style)) Option {
	return func(d *core.ElementData) { fn(&d.Style) }
}

// Background sets the background color.
func Background(c graphics.Color) Option {
	return func(d *core.ElementData) { d.Style.Background = c }
}

// Size sets width and height.
func Size(w, h style.Unit) Option {
	return func(d *core.ElementData) { d.Style.Width, d.Style.Height = w, h }
}

// Padding sets uniform padding.
func Padding(v float32) Option {
	return func(d *core.ElementData) { d.Style.Padding = graphics.EdgeInsetsAll(v) }
}

// Hidden sets display none.
func Hidden() Option {
	return func(d *core.ElementData) { d.Style.Display = style.DisplayNone }
}

func newData(opts []Option) core.ElementData {
	d := core.ElementData{Style: style.Default()}
	for _, o := range opts {
		o(&d)
	}
	return d
}
