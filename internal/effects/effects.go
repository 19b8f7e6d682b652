// Package effects models the visual effect layer (glow, shadow) that can
// be composed onto a border independently of animations.
package effects

import "github.com/1broseidon/framelight/internal/config"

// Kind is the effect variant.
type Kind int

const (
	Glow Kind = iota
	Shadow
)

func (k Kind) String() string {
	if k == Glow {
		return "glow"
	}
	return "shadow"
}

// Params is one resolved effect ready to hand to a render backend.
type Params struct {
	Kind Kind
	// StdDev is the gaussian blur standard deviation in pixels.
	StdDev float64
	// Opacity of the effect layer in [0,1].
	Opacity float64
	// Translation shifts the effect relative to the border, used for
	// drop shadows.
	Translation config.Vec2
}

// FromSpecs converts validated config entries into render parameters.
func FromSpecs(specs []config.EffectSpec) []Params {
	if len(specs) == 0 {
		return nil
	}
	out := make([]Params, 0, len(specs))
	for _, s := range specs {
		p := Params{
			StdDev:      s.StandardDeviation,
			Opacity:     s.Opacity,
			Translation: s.Translation,
		}
		if s.Kind == config.EffectShadow {
			p.Kind = Shadow
		}
		if p.Opacity == 0 {
			// An entry without an explicit opacity still shows.
			p.Opacity = defaultOpacity(p.Kind)
		}
		out = append(out, p)
	}
	return out
}

func defaultOpacity(k Kind) float64 {
	if k == Glow {
		return 0.4
	}
	return 0.3
}
