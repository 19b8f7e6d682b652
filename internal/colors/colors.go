// Package colors resolves configured color descriptions into paint-ready
// brushes: solid colors, linear gradients, and the accent fallback, with
// the active/inactive dimming the border engine needs.
package colors

import (
	"fmt"
	"math"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGBA is a premultipliable color with components in [0, 1].
type RGBA struct {
	R, G, B, A float64
}

// ARGB packs the color into 0xAARRGGBB for the X server.
func (c RGBA) ARGB() uint32 {
	clamp := func(v float64) uint32 {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		return uint32(math.Round(v * 255))
	}
	return clamp(c.A)<<24 | clamp(c.R)<<16 | clamp(c.G)<<8 | clamp(c.B)
}

// WithAlpha returns the color scaled to the given opacity.
func (c RGBA) WithAlpha(a float64) RGBA {
	return RGBA{R: c.R, G: c.G, B: c.B, A: c.A * a}
}

// Blend linearly interpolates toward other in Luv space, which avoids the
// muddy midpoints plain RGB interpolation produces.
func (c RGBA) Blend(other RGBA, t float64) RGBA {
	if t <= 0 {
		return c
	}
	if t >= 1 {
		return other
	}
	from := colorful.Color{R: c.R, G: c.G, B: c.B}
	to := colorful.Color{R: other.R, G: other.G, B: other.B}
	mixed := from.BlendLuv(to, t).Clamped()
	return RGBA{
		R: mixed.R,
		G: mixed.G,
		B: mixed.B,
		A: c.A + (other.A-c.A)*t,
	}
}

// Stop is one gradient stop at a normalized position.
type Stop struct {
	Position float64
	Color    RGBA
}

// Brush is a fully resolved fill: either a single solid color or a linear
// gradient with normalized start/end points.
type Brush struct {
	Solid RGBA
	Stops []Stop // nil for solid brushes
	Start [2]float64
	End   [2]float64
}

// IsGradient reports whether the brush is a gradient.
func (b Brush) IsGradient() bool {
	return len(b.Stops) > 0
}

// At samples the brush at normalized position t along the gradient axis.
// Solid brushes ignore t.
func (b Brush) At(t float64) RGBA {
	if !b.IsGradient() {
		return b.Solid
	}
	if t <= b.Stops[0].Position {
		return b.Stops[0].Color
	}
	last := b.Stops[len(b.Stops)-1]
	if t >= last.Position {
		return last.Color
	}
	for i := 1; i < len(b.Stops); i++ {
		if t <= b.Stops[i].Position {
			prev := b.Stops[i-1]
			next := b.Stops[i]
			span := next.Position - prev.Position
			if span <= 0 {
				return next.Color
			}
			return prev.Color.Blend(next.Color, (t-prev.Position)/span)
		}
	}
	return last.Color
}

// Average collapses the brush to a single color, used by the legacy
// backend which cannot draw gradients.
func (b Brush) Average() RGBA {
	if !b.IsGradient() {
		return b.Solid
	}
	var r, g, bl, a float64
	for _, s := range b.Stops {
		r += s.Color.R
		g += s.Color.G
		bl += s.Color.B
		a += s.Color.A
	}
	n := float64(len(b.Stops))
	return RGBA{R: r / n, G: g / n, B: bl / n, A: a / n}
}

// accentColor is the fallback for the "accent" keyword. X11 has no system
// accent color, so this matches the stock desktop highlight blue.
var accentColor = RGBA{R: 0x35 / 255.0, G: 0x84 / 255.0, B: 0xe4 / 255.0, A: 1}

// Accent returns the accent color. The inactive variant is desaturated
// toward gray so unfocused borders recede.
func Accent(active bool) RGBA {
	if active {
		return accentColor
	}
	avg := (accentColor.R + accentColor.G + accentColor.B) / 3
	return RGBA{
		R: avg/1.5 + accentColor.R/10,
		G: avg/1.5 + accentColor.G/10,
		B: avg/1.5 + accentColor.B/10,
		A: 1,
	}
}

// ParseSolid parses a solid color: "accent" or a hex string with 3, 4, 6,
// or 8 digits, with or without a leading '#'.
func ParseSolid(s string, active bool) (RGBA, error) {
	if strings.EqualFold(strings.TrimSpace(s), "accent") {
		return Accent(active), nil
	}
	return ParseHex(s)
}

// ParseHex parses #rgb, #rgba, #rrggbb, and #rrggbbaa.
func ParseHex(s string) (RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	for _, r := range h {
		if !isHexDigit(r) {
			return RGBA{}, fmt.Errorf("invalid hex color %q", s)
		}
	}

	digit := func(i int) float64 {
		v := hexVal(h[i])
		return float64(v<<4|v) / 255
	}
	pair := func(i int) float64 {
		return float64(hexVal(h[i])<<4|hexVal(h[i+1])) / 255
	}

	switch len(h) {
	case 3:
		return RGBA{R: digit(0), G: digit(1), B: digit(2), A: 1}, nil
	case 4:
		return RGBA{R: digit(0), G: digit(1), B: digit(2), A: digit(3)}, nil
	case 6:
		return RGBA{R: pair(0), G: pair(2), B: pair(4), A: 1}, nil
	case 8:
		return RGBA{R: pair(0), G: pair(2), B: pair(4), A: pair(6)}, nil
	default:
		return RGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
}

func isHexDigit(r rune) bool {
	return r >= '0' && r <= '9' || r >= 'a' && r <= 'f' || r >= 'A' && r <= 'F'
}

func hexVal(b byte) int {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0')
	case b >= 'a' && b <= 'f':
		return int(b-'a') + 10
	default:
		return int(b-'A') + 10
	}
}

// BlendBrush interpolates between two brushes. Gradients with matching
// stop counts blend stop by stop; any other pairing collapses to a solid
// blend of the brush averages.
func BlendBrush(from, to Brush, t float64) Brush {
	if t <= 0 {
		return from
	}
	if t >= 1 {
		return to
	}

	if from.IsGradient() && to.IsGradient() && len(from.Stops) == len(to.Stops) {
		stops := make([]Stop, len(from.Stops))
		for i := range from.Stops {
			stops[i] = Stop{
				Position: from.Stops[i].Position + (to.Stops[i].Position-from.Stops[i].Position)*t,
				Color:    from.Stops[i].Color.Blend(to.Stops[i].Color, t),
			}
		}
		return Brush{
			Stops: stops,
			Start: lerpPoint(from.Start, to.Start, t),
			End:   lerpPoint(from.End, to.End, t),
		}
	}

	return Brush{Solid: from.Average().Blend(to.Average(), t)}
}

func lerpPoint(a, b [2]float64, t float64) [2]float64 {
	return [2]float64{a[0] + (b[0]-a[0])*t, a[1] + (b[1]-a[1])*t}
}

// NewSolidBrush builds a solid brush from a config color string.
func NewSolidBrush(s string, active bool) (Brush, error) {
	c, err := ParseSolid(s, active)
	if err != nil {
		return Brush{}, err
	}
	return Brush{Solid: c}, nil
}

// NewGradientBrush builds a gradient brush from a list of color strings and
// a direction, which is either an angle like "45deg" or explicit start/end
// coordinates in [0,1] space. Stops are spread evenly.
func NewGradientBrush(colorStrs []string, angle string, coords *[2][2]float64, active bool) (Brush, error) {
	if len(colorStrs) < 2 {
		return Brush{}, fmt.Errorf("gradient needs at least 2 colors, got %d", len(colorStrs))
	}

	step := 1.0 / float64(len(colorStrs)-1)
	stops := make([]Stop, len(colorStrs))
	for i, cs := range colorStrs {
		c, err := ParseSolid(cs, active)
		if err != nil {
			return Brush{}, err
		}
		stops[i] = Stop{Position: float64(i) * step, Color: c}
	}

	var start, end [2]float64
	switch {
	case coords != nil:
		start, end = coords[0], coords[1]
	case angle != "":
		var err error
		start, end, err = anglePoints(angle)
		if err != nil {
			return Brush{}, err
		}
	default:
		// Default to a left-to-right gradient.
		start = [2]float64{0, 0.5}
		end = [2]float64{1, 0.5}
	}

	return Brush{Stops: stops, Start: start, End: end}, nil
}
