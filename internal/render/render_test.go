package render

import (
	"math"
	"testing"

	"github.com/1broseidon/framelight/internal/colors"
	"github.com/1broseidon/framelight/internal/config"
	"github.com/1broseidon/framelight/internal/effects"
	"github.com/1broseidon/framelight/internal/wm"
)

// fakeSurface records the paint calls a backend makes.
type fakeSurface struct {
	geometry  wm.Rect
	thickness int
	uniform   uint32
	filled    bool
	bars      Bars
	barsSet   bool
	raised    bool
	visible   bool
}

func (s *fakeSurface) SetGeometry(outer wm.Rect, thickness int) error {
	s.geometry = outer
	s.thickness = thickness
	return nil
}
func (s *fakeSurface) SetVisible(v bool) error { s.visible = v; return nil }
func (s *fakeSurface) FillUniform(argb uint32) error {
	s.uniform = argb
	s.filled = true
	return nil
}
func (s *fakeSurface) FillBars(bars Bars) error {
	s.bars = bars
	s.barsSet = true
	return nil
}
func (s *fakeSurface) Raise() error   { s.raised = true; return nil }
func (s *fakeSurface) Destroy() error { return nil }

func solidFrame() Frame {
	return Frame{
		Outer:     wm.Rect{X: 10, Y: 10, Width: 100, Height: 60},
		Thickness: 4,
		Fill:      colors.Brush{Solid: colors.RGBA{R: 1, A: 1}},
		Opacity:   1,
	}
}

func TestNew_SelectsBackend(t *testing.T) {
	if got := New(config.BackendLegacy).Name(); got != "legacy" {
		t.Fatalf("expected legacy backend, got %q", got)
	}
	if got := New(config.BackendV2).Name(); got != "v2" {
		t.Fatalf("expected v2 backend, got %q", got)
	}
	if New(config.BackendLegacy).SupportsEffects() {
		t.Fatalf("expected legacy backend to skip effects")
	}
	if !New(config.BackendV2).SupportsEffects() {
		t.Fatalf("expected v2 backend to render effects")
	}
}

func TestFrameEqual(t *testing.T) {
	a := solidFrame()
	b := solidFrame()
	if !a.Equal(b) {
		t.Fatalf("expected identical frames to compare equal")
	}

	b.Opacity = 0.5
	if a.Equal(b) {
		t.Fatalf("expected opacity change to compare unequal")
	}

	b = solidFrame()
	b.Outer.X++
	if a.Equal(b) {
		t.Fatalf("expected moved frame to compare unequal")
	}

	b = solidFrame()
	b.Effects = []effects.Params{{Kind: effects.Glow, StdDev: 4, Opacity: 0.4}}
	if a.Equal(b) {
		t.Fatalf("expected effect change to compare unequal")
	}
}

func TestLegacyPaint_UniformAverageFill(t *testing.T) {
	f := solidFrame()
	f.Fill = colors.Brush{Stops: []colors.Stop{
		{Position: 0, Color: colors.RGBA{R: 1, A: 1}},
		{Position: 1, Color: colors.RGBA{B: 1, A: 1}},
	}}
	f.Opacity = 0.5

	s := &fakeSurface{}
	if err := New(config.BackendLegacy).Paint(s, f); err != nil {
		t.Fatalf("paint: %v", err)
	}

	if s.geometry != f.Outer || s.thickness != f.Thickness {
		t.Fatalf("expected geometry %+v thickness %d, got %+v %d", f.Outer, f.Thickness, s.geometry, s.thickness)
	}
	want := f.Fill.Average().WithAlpha(0.5).ARGB()
	if !s.filled || s.uniform != want {
		t.Fatalf("expected uniform fill %#08x, got %#08x", want, s.uniform)
	}
	if !s.raised {
		t.Fatalf("expected surface raised after paint")
	}
}

func TestV2Paint_BarDimensions(t *testing.T) {
	f := solidFrame()
	s := &fakeSurface{}
	if err := New(config.BackendV2).Paint(s, f); err != nil {
		t.Fatalf("paint: %v", err)
	}

	// No effects means no padding: the drawn area is the border rect and
	// the strips are exactly the border thickness.
	if s.geometry != f.Outer {
		t.Fatalf("expected draw rect %+v, got %+v", f.Outer, s.geometry)
	}
	if s.thickness != 4 {
		t.Fatalf("expected strip thickness 4, got %d", s.thickness)
	}
	if !s.barsSet {
		t.Fatalf("expected bars uploaded")
	}
	if s.bars.Top.W != 100 || s.bars.Top.H != 4 {
		t.Fatalf("expected top bar 100x4, got %dx%d", s.bars.Top.W, s.bars.Top.H)
	}
	if s.bars.Left.W != 4 || s.bars.Left.H != 52 {
		t.Fatalf("expected left bar 4x52, got %dx%d", s.bars.Left.W, s.bars.Left.H)
	}
	if !s.raised {
		t.Fatalf("expected surface raised after paint")
	}
}

func TestV2Paint_StrokeIsOpaqueAtEdgeMidpoint(t *testing.T) {
	f := solidFrame()
	s := &fakeSurface{}
	if err := New(config.BackendV2).Paint(s, f); err != nil {
		t.Fatalf("paint: %v", err)
	}

	// Middle of the top edge, one pixel into the stroke.
	got := s.bars.Top.Pix[1*s.bars.Top.W+50]
	if got != 0xffff0000 {
		t.Fatalf("expected opaque red stroke pixel, got %#08x", got)
	}
}

func TestV2Paint_RoundedCornerIsTransparent(t *testing.T) {
	f := solidFrame()
	f.Radius = 12
	s := &fakeSurface{}
	if err := New(config.BackendV2).Paint(s, f); err != nil {
		t.Fatalf("paint: %v", err)
	}

	// The very corner pixel sits outside the rounded stroke.
	if got := s.bars.Top.Pix[0]; got != 0 {
		t.Fatalf("expected transparent corner pixel, got %#08x", got)
	}
}

func TestV2Paint_EffectsExtendTheDrawArea(t *testing.T) {
	f := solidFrame()
	f.Effects = []effects.Params{{Kind: effects.Glow, StdDev: 2, Opacity: 0.4}}
	s := &fakeSurface{}
	if err := New(config.BackendV2).Paint(s, f); err != nil {
		t.Fatalf("paint: %v", err)
	}

	// Padding is ceil(3 * stddev) = 6 on each side.
	want := f.Outer.Inflate(6)
	if s.geometry != want {
		t.Fatalf("expected padded draw rect %+v, got %+v", want, s.geometry)
	}
	if s.thickness != 4+2*6 {
		t.Fatalf("expected strip thickness 16, got %d", s.thickness)
	}
}

func TestEffectPad(t *testing.T) {
	if got := effectPad(nil); got != 0 {
		t.Fatalf("expected no padding without effects, got %d", got)
	}
	list := []effects.Params{
		{Kind: effects.Glow, StdDev: 2},
		{Kind: effects.Shadow, StdDev: 1, Translation: config.Vec2{X: 3, Y: -4}},
	}
	// Glow reaches 6, shadow reaches 3+4=7.
	if got := effectPad(list); got != 7 {
		t.Fatalf("expected padding 7, got %d", got)
	}
}

func TestSDRoundRect(t *testing.T) {
	// 10x10 square centered at the origin, no rounding.
	if sd := sdRoundRect(0, 0, 5, 5, 0); sd != -5 {
		t.Fatalf("expected center distance -5, got %v", sd)
	}
	if sd := sdRoundRect(5, 0, 5, 5, 0); sd != 0 {
		t.Fatalf("expected edge distance 0, got %v", sd)
	}
	if sd := sdRoundRect(7, 0, 5, 5, 0); sd != 2 {
		t.Fatalf("expected outside distance 2, got %v", sd)
	}
	// With rounding the corner pulls in by radius*(sqrt(2)-1).
	sd := sdRoundRect(5, 5, 5, 5, 2)
	want := 2*math.Sqrt2 - 2
	if math.Abs(sd-want) > 1e-9 {
		t.Fatalf("expected corner distance %v, got %v", want, sd)
	}
}

func TestRasterFillColor_GradientFollowsAxis(t *testing.T) {
	red := colors.RGBA{R: 1, A: 1}
	blue := colors.RGBA{B: 1, A: 1}
	f := Frame{
		Outer:     wm.Rect{X: 0, Y: 0, Width: 100, Height: 60},
		Thickness: 4,
		Opacity:   1,
		Fill: colors.Brush{
			Stops: []colors.Stop{{Position: 0, Color: red}, {Position: 1, Color: blue}},
			Start: [2]float64{0, 0.5},
			End:   [2]float64{1, 0.5},
		},
	}
	r := newRaster(f, f.Outer, 0)

	left := r.fillColor(0, 30)
	if left != red {
		t.Fatalf("expected first stop at the left edge, got %+v", left)
	}
	right := r.fillColor(100, 30)
	if right != blue {
		t.Fatalf("expected last stop at the right edge, got %+v", right)
	}
}

func TestPixmap_SetDropsOutOfBounds(t *testing.T) {
	p := NewPixmap(2, 2)
	p.Set(-1, 0, 1)
	p.Set(0, -1, 1)
	p.Set(2, 0, 1)
	p.Set(0, 2, 1)
	for i, v := range p.Pix {
		if v != 0 {
			t.Fatalf("expected untouched pixmap, got %#x at %d", v, i)
		}
	}
	p.Set(1, 1, 42)
	if p.Pix[3] != 42 {
		t.Fatalf("expected pixel write at (1,1)")
	}
}
