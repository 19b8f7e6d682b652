package render

import (
	"math"

	"github.com/1broseidon/framelight/internal/colors"
	"github.com/1broseidon/framelight/internal/effects"
	"github.com/1broseidon/framelight/internal/wm"
)

// v2Backend renders gradients, rounded corners, and the effect layer by
// rasterizing each border strip into a pixel buffer.
type v2Backend struct{}

func (b *v2Backend) Name() string          { return "v2" }
func (b *v2Backend) SupportsEffects() bool { return true }

func (b *v2Backend) Paint(s Surface, f Frame) error {
	pad := effectPad(f.Effects)

	// The drawn area extends past the border rect so glow and shadow
	// have room to fall off.
	draw := f.Outer.Inflate(pad)
	strip := f.Thickness + 2*pad
	if strip < 1 {
		strip = 1
	}
	if 2*strip > draw.Height {
		strip = draw.Height / 2
	}
	if strip < 1 {
		strip = 1
	}

	if err := s.SetGeometry(draw, strip); err != nil {
		return err
	}

	r := newRaster(f, draw, pad)
	bars := Bars{
		Top:    NewPixmap(draw.Width, strip),
		Bottom: NewPixmap(draw.Width, strip),
		Left:   NewPixmap(strip, draw.Height-2*strip),
		Right:  NewPixmap(strip, draw.Height-2*strip),
	}

	r.fill(bars.Top, 0, 0)
	r.fill(bars.Bottom, 0, draw.Height-strip)
	r.fill(bars.Left, 0, strip)
	r.fill(bars.Right, draw.Width-strip, strip)

	if err := s.FillBars(bars); err != nil {
		return err
	}
	return s.Raise()
}

// effectPad is how far past the border rect the effect layer may paint.
// Three standard deviations cover effectively all of a gaussian falloff.
func effectPad(list []effects.Params) int {
	pad := 0.0
	for _, e := range list {
		reach := 3*e.StdDev + math.Max(math.Abs(e.Translation.X), math.Abs(e.Translation.Y))
		if reach > pad {
			pad = reach
		}
	}
	return int(math.Ceil(pad))
}

// raster holds the per-frame constants for sampling border pixels.
type raster struct {
	frame  Frame
	halfW  float64 // half size of the border rect
	halfH  float64
	cx, cy float64 // border rect center in draw-local coords
	inset  float64 // stroke centerline inset from the border rect edge
	cosA   float64
	sinA   float64
}

func newRaster(f Frame, draw wm.Rect, pad int) *raster {
	w := float64(f.Outer.Width)
	h := float64(f.Outer.Height)
	rad := f.Angle * math.Pi / 180
	return &raster{
		frame: f,
		halfW: w / 2,
		halfH: h / 2,
		cx:    float64(pad) + w/2,
		cy:    float64(pad) + h/2,
		inset: float64(f.Thickness) / 2,
		cosA:  math.Cos(rad),
		sinA:  math.Sin(rad),
	}
}

// fill rasterizes one bar whose top-left corner sits at (ox, oy) in
// draw-local coordinates.
func (r *raster) fill(p *Pixmap, ox, oy int) {
	for y := 0; y < p.H; y++ {
		for x := 0; x < p.W; x++ {
			px := float64(ox+x) + 0.5
			py := float64(oy+y) + 0.5
			if c := r.sample(px, py); c.A > 0 {
				p.Set(x, y, c.ARGB())
			}
		}
	}
}

// sample computes one pixel: the stroke ring composited over the effect
// layer.
func (r *raster) sample(px, py float64) colors.RGBA {
	f := &r.frame

	// Signed distance from the stroke centerline ring.
	sd := sdRoundRect(px-r.cx, py-r.cy, r.halfW-r.inset, r.halfH-r.inset, f.Radius)

	// 1px antialiased stroke coverage.
	cov := clamp(r.inset+0.5-math.Abs(sd), 0, 1)

	var out colors.RGBA
	for _, e := range f.Effects {
		ex, ey := px, py
		if e.Kind == effects.Shadow {
			ex -= e.Translation.X
			ey -= e.Translation.Y
		}
		ed := sdRoundRect(ex-r.cx, ey-r.cy, r.halfW-r.inset, r.halfH-r.inset, f.Radius)
		d := math.Abs(ed) - r.inset
		if d < 0 {
			d = 0
		}
		if e.StdDev <= 0 {
			continue
		}
		w := math.Exp(-d * d / (2 * e.StdDev * e.StdDev))
		a := w * e.Opacity * f.Opacity
		if a <= 1.0/255 {
			continue
		}
		var c colors.RGBA
		if e.Kind == effects.Glow {
			c = r.fillColor(px, py)
		} // shadows stay black
		out = over(out, colors.RGBA{R: c.R, G: c.G, B: c.B, A: a})
	}

	if cov > 0 {
		c := r.fillColor(px, py)
		out = over(colors.RGBA{R: c.R, G: c.G, B: c.B, A: c.A * cov * f.Opacity}, out)
	}
	return out
}

// fillColor samples the frame's brush at a pixel, applying the spiral
// rotation by rotating the sample point around the border center.
func (r *raster) fillColor(px, py float64) colors.RGBA {
	f := &r.frame
	if !f.Fill.IsGradient() {
		return f.Fill.Solid
	}

	// Rotate into brush space.
	dx := px - r.cx
	dy := py - r.cy
	rx := dx*r.cosA + dy*r.sinA
	ry := -dx*r.sinA + dy*r.cosA

	// Normalize to [0,1] rect space and project onto the gradient axis.
	u := rx/(2*r.halfW) + 0.5
	v := ry/(2*r.halfH) + 0.5
	sx, sy := f.Fill.Start[0], f.Fill.Start[1]
	ex, ey := f.Fill.End[0], f.Fill.End[1]
	axx, axy := ex-sx, ey-sy
	lenSq := axx*axx + axy*axy
	if lenSq == 0 {
		return f.Fill.Stops[0].Color
	}
	t := ((u-sx)*axx + (v-sy)*axy) / lenSq
	return f.Fill.At(clamp(t, 0, 1))
}

// sdRoundRect is the signed distance from point (px, py) to the boundary
// of a rounded rectangle centered at the origin with the given half
// extents and corner radius. Negative inside.
func sdRoundRect(px, py, halfW, halfH, radius float64) float64 {
	if radius > halfW {
		radius = halfW
	}
	if radius > halfH {
		radius = halfH
	}
	qx := math.Abs(px) - (halfW - radius)
	qy := math.Abs(py) - (halfH - radius)
	mx := math.Max(qx, 0)
	my := math.Max(qy, 0)
	return math.Hypot(mx, my) + math.Min(math.Max(qx, qy), 0) - radius
}

// over composites src over dst with straight alpha.
func over(src, dst colors.RGBA) colors.RGBA {
	if src.A >= 1 || dst.A == 0 {
		return src
	}
	if src.A == 0 {
		return dst
	}
	outA := src.A + dst.A*(1-src.A)
	return colors.RGBA{
		R: (src.R*src.A + dst.R*dst.A*(1-src.A)) / outA,
		G: (src.G*src.A + dst.G*dst.A*(1-src.A)) / outA,
		B: (src.B*src.A + dst.B*dst.A*(1-src.A)) / outA,
		A: outA,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
