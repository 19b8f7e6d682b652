// Package render turns computed border frames into paint calls on an
// overlay surface. Two backends exist: legacy (solid colors, square
// corners) and v2 (gradients, rounded corners, effects). Switching
// backends changes rendering fidelity only, never orchestration.
package render

import (
	"github.com/1broseidon/framelight/internal/colors"
	"github.com/1broseidon/framelight/internal/config"
	"github.com/1broseidon/framelight/internal/effects"
	"github.com/1broseidon/framelight/internal/wm"
)

// Frame is one fully computed paint request for a border.
type Frame struct {
	// Outer is the border's outer rectangle in screen coordinates,
	// already inflated by border width and offset.
	Outer wm.Rect
	// Thickness is the border stroke width in pixels.
	Thickness int
	// Radius is the resolved corner radius in pixels.
	Radius float64
	// Fill is the border color, already blended between the active and
	// inactive brushes for the current animation state.
	Fill colors.Brush
	// Opacity is the whole-border opacity in [0,1].
	Opacity float64
	// Angle rotates the fill around the border center, in degrees. Used
	// by the spiral animations.
	Angle float64
	// Effects is the effect layer for the current focus state. Ignored
	// by backends that do not support effects.
	Effects []effects.Params
}

// Equal reports whether two frames would paint identical pixels. Borders
// use it to skip redundant paints.
func (f Frame) Equal(o Frame) bool {
	if f.Outer != o.Outer || f.Thickness != o.Thickness ||
		f.Radius != o.Radius || f.Opacity != o.Opacity || f.Angle != o.Angle {
		return false
	}
	if !brushEqual(f.Fill, o.Fill) {
		return false
	}
	if len(f.Effects) != len(o.Effects) {
		return false
	}
	for i := range f.Effects {
		if f.Effects[i] != o.Effects[i] {
			return false
		}
	}
	return true
}

func brushEqual(a, b colors.Brush) bool {
	if a.Solid != b.Solid || a.Start != b.Start || a.End != b.End {
		return false
	}
	if len(a.Stops) != len(b.Stops) {
		return false
	}
	for i := range a.Stops {
		if a.Stops[i] != b.Stops[i] {
			return false
		}
	}
	return true
}

// Pixmap is a rectangular ARGB pixel buffer, row-major.
type Pixmap struct {
	W, H int
	Pix  []uint32
}

// NewPixmap allocates a zeroed (fully transparent) pixmap.
func NewPixmap(w, h int) *Pixmap {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return &Pixmap{W: w, H: h, Pix: make([]uint32, w*h)}
}

// Set writes one pixel; out-of-bounds writes are dropped.
func (p *Pixmap) Set(x, y int, argb uint32) {
	if x < 0 || y < 0 || x >= p.W || y >= p.H {
		return
	}
	p.Pix[y*p.W+x] = argb
}

// Bars are the four pixel buffers of a border frame: one per side. The
// surface lays them out as top/bottom full-width strips and left/right
// strips between them.
type Bars struct {
	Top, Bottom, Left, Right *Pixmap
}

// Surface is one overlay drawing surface glued to a tracked window. A
// surface belongs to exactly one border instance.
type Surface interface {
	// SetGeometry positions the surface's bars around the outer rect
	// with the given strip thickness.
	SetGeometry(outer wm.Rect, thickness int) error
	// SetVisible maps or unmaps the surface.
	SetVisible(visible bool) error
	// FillUniform paints every bar a single ARGB color.
	FillUniform(argb uint32) error
	// FillBars uploads per-pixel contents for each bar.
	FillBars(bars Bars) error
	// Raise restacks the surface just above its tracked window.
	Raise() error
	// Destroy releases the surface. The surface is unusable afterwards.
	Destroy() error
}

// Backend paints one frame onto a surface.
type Backend interface {
	Name() string
	// SupportsEffects reports whether the backend renders the effect
	// layer; the engine passes effect params regardless.
	SupportsEffects() bool
	Paint(s Surface, f Frame) error
}

// New returns the backend for a config choice.
func New(kind config.BackendKind) Backend {
	if kind == config.BackendLegacy {
		return &legacyBackend{}
	}
	return &v2Backend{}
}
