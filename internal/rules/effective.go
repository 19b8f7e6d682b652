package rules

import (
	"time"

	"github.com/1broseidon/framelight/internal/colors"
	"github.com/1broseidon/framelight/internal/config"
)

// Effective is the fully resolved configuration for one window: global
// config with the matched rule's overrides layered on top. It is derived,
// never mutated; a config reload produces a fresh value.
type Effective struct {
	// Enabled is the window's eligibility for a border.
	Enabled bool

	Width  int
	Offset int
	Radius config.Radius

	ActiveColor   colors.Brush
	InactiveColor colors.Brush

	InitializeDelay time.Duration
	UnminimizeDelay time.Duration

	AnimationsEnabled bool
	FPS               int
	ActiveAnims       []config.AnimationSpec
	InactiveAnims     []config.AnimationSpec

	EffectsEnabled  bool
	ActiveEffects   []config.EffectSpec
	InactiveEffects []config.EffectSpec

	Backend config.BackendKind
}

// AnimationsOn reports whether the animation layer is enabled.
func (e *Effective) AnimationsOn() bool {
	return e.AnimationsEnabled
}

// Anims returns the animation list for the given focus state.
func (e *Effective) Anims(active bool) []config.AnimationSpec {
	if active {
		return e.ActiveAnims
	}
	return e.InactiveAnims
}

// Effects returns the effect list for the given focus state, or nil when
// the effect layer is disabled.
func (e *Effective) Effects(active bool) []config.EffectSpec {
	if !e.EffectsEnabled {
		return nil
	}
	if active {
		return e.ActiveEffects
	}
	return e.InactiveEffects
}
