package anim

import "github.com/1broseidon/framelight/internal/config"

// Easing maps normalized progress in [0,1] to eased progress in [0,1].
// Curves are pure and monotonic so repeated evaluation never jitters.
type Easing func(float64) float64

func linear(t float64) float64 { return t }

func easeInQuad(t float64) float64  { return t * t }
func easeOutQuad(t float64) float64 { return t * (2 - t) }
func easeInOutQuad(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return -1 + (4-2*t)*t
}

func easeInCubic(t float64) float64 { return t * t * t }
func easeOutCubic(t float64) float64 {
	u := t - 1
	return u*u*u + 1
}
func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := 2*t - 2
	return 1 + u*u*u/2
}

// EasingFor returns the curve for a config easing name. Unknown names fall
// back to linear; validation rejects them before this is reached.
func EasingFor(kind config.EasingKind) Easing {
	switch config.NormalizeEasing(kind) {
	case config.EaseInQuad:
		return easeInQuad
	case config.EaseOutQuad:
		return easeOutQuad
	case config.EaseInOutQuad:
		return easeInOutQuad
	case config.EaseInCubic:
		return easeInCubic
	case config.EaseOutCubic:
		return easeOutCubic
	case config.EaseInOutCubic:
		return easeInOutCubic
	default:
		return linear
	}
}
