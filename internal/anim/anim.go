// Package anim advances per-border visual parameters across timer ticks.
// Each border owns one State; the engine is stateless and pure, so a
// border's animation can never contaminate another's.
package anim

import (
	"time"

	"github.com/1broseidon/framelight/internal/config"
)

// Transition is the named animation phase a border is in.
type Transition int

const (
	// Idle: no animation running, parameters at their rest values.
	Idle Transition = iota
	// Entering: border appearing from fully hidden.
	Entering
	// ActiveToInactive: focus lost, visuals moving to the inactive set.
	ActiveToInactive
	// InactiveToActive: focus gained, visuals moving to the active set.
	InactiveToActive
	// Exiting: border disappearing ahead of hide/destroy.
	Exiting
)

var transitionNames = [...]string{"idle", "entering", "active-to-inactive", "inactive-to-active", "exiting"}

func (t Transition) String() string {
	if int(t) < len(transitionNames) {
		return transitionNames[t]
	}
	return "unknown"
}

// Trigger is an event that can start or redirect a transition.
type Trigger int

const (
	TriggerNone Trigger = iota
	// TriggerShow: window about to be created, shown, or restored.
	TriggerShow
	// TriggerHide: window about to be hidden or destroyed.
	TriggerHide
	// TriggerFocus: window became the active window.
	TriggerFocus
	// TriggerUnfocus: window stopped being the active window.
	TriggerUnfocus
	// TriggerConfig: effective config changed; re-read animation lists
	// but keep the current transition's progress.
	TriggerConfig
)

// Params are the interpolated visual parameters for one frame. Concurrent
// animation entries compose by parameter: opacities multiply, angles add.
type Params struct {
	// Opacity of the whole border in [0,1].
	Opacity float64
	// Blend is the inactive-to-active color blend factor in [0,1]:
	// 0 renders the inactive color, 1 the active color.
	Blend float64
	// Angle is the spiral sweep rotation in degrees.
	Angle float64
}

// State is one border's animation state. Mutated only through Apply and
// Tick, once per tick, and never shared across borders.
type State struct {
	Transition Transition
	Elapsed    time.Duration
	// Active is the focus state the current transition is heading toward.
	Active bool
	Params Params

	specs   []config.AnimationSpec
	enabled bool
}

// maxTickDelta caps the per-tick time step. When ticks are delayed the
// animation skips ahead by at most this much instead of accumulating a
// backlog of catch-up frames.
const maxTickDelta = 250 * time.Millisecond

// NewState returns the state for a border that has not yet been shown:
// fully hidden, idle, with the given focus state.
func NewState(active bool) State {
	return State{
		Transition: Idle,
		Active:     active,
		Params:     Params{Opacity: 0, Blend: blendFor(active), Angle: 0},
		enabled:    true,
	}
}

// Apply starts the transition a trigger asks for, selecting the animation
// entries configured for the target focus state. With animations disabled
// the state snaps straight to the transition's end parameters.
func Apply(s State, trigger Trigger, eff AnimSource) State {
	switch trigger {
	case TriggerShow:
		s.Transition = Entering
	case TriggerHide:
		s.Transition = Exiting
	case TriggerFocus:
		if s.Active && s.Transition == Idle {
			return s // already there
		}
		s.Active = true
		s.Transition = InactiveToActive
	case TriggerUnfocus:
		if !s.Active && s.Transition == Idle {
			return s
		}
		s.Active = false
		s.Transition = ActiveToInactive
	case TriggerConfig:
		// Keep transition and elapsed so reloads never reset progress;
		// only the entry list and enabled flag are re-read below.
	default:
		return s
	}

	if trigger != TriggerConfig {
		s.Elapsed = 0
	}
	s.enabled = eff.AnimationsOn()
	s.specs = eff.Anims(s.Active)

	if !s.enabled || len(s.specs) == 0 {
		return finish(s)
	}
	return s
}

// Tick advances the state by dt and recomputes the interpolated
// parameters. It returns the successor state; the input is unchanged.
func Tick(s State, dt time.Duration) State {
	if s.Transition == Idle {
		return s
	}
	if dt > maxTickDelta {
		dt = maxTickDelta
	}
	if dt < 0 {
		dt = 0
	}
	s.Elapsed += dt

	done := true
	opacity := 1.0
	blend := blendFor(s.Active)
	angle := 0.0

	for _, spec := range s.specs {
		duration := time.Duration(spec.Duration) * time.Millisecond
		p := progress(s.Elapsed, duration)
		eased := EasingFor(spec.Easing)(p)
		if p < 1 {
			done = false
		}

		switch spec.Kind {
		case config.AnimFade:
			switch s.Transition {
			case Entering:
				opacity *= eased
			case Exiting:
				opacity *= 1 - eased
			case InactiveToActive:
				blend = eased
			case ActiveToInactive:
				blend = 1 - eased
			}
		case config.AnimSpiral:
			angle += 360 * eased
		case config.AnimReverseSpiral:
			angle -= 360 * eased
		}
	}

	// A transition with no fade entry still moves its opacity/blend to
	// the end values so the border never sticks half-visible.
	if !hasKind(s.specs, config.AnimFade) {
		switch s.Transition {
		case Exiting:
			opacity = endOpacity(Exiting)
		case Entering:
			opacity = 1
		}
	}

	s.Params = Params{
		Opacity: clamp01(opacity),
		Blend:   clamp01(blend),
		Angle:   normalizeAngle(angle),
	}

	if done {
		return finish(s)
	}
	return s
}

// finish snaps the state to its transition's end parameters and returns to
// Idle. Every reachable transition has a defined end state, which keeps
// the machine total.
func finish(s State) State {
	s.Params = Params{
		Opacity: endOpacity(s.Transition),
		Blend:   blendFor(s.Active),
		Angle:   0,
	}
	s.Transition = Idle
	s.Elapsed = 0
	s.specs = nil
	return s
}

// Hidden reports whether the border is fully invisible.
func (s State) Hidden() bool {
	return s.Transition == Idle && s.Params.Opacity == 0
}

// AnimSource supplies animation configuration to Apply. The effective
// config satisfies it; tests use fakes.
type AnimSource interface {
	AnimationsOn() bool
	Anims(active bool) []config.AnimationSpec
}

func endOpacity(t Transition) float64 {
	if t == Exiting {
		return 0
	}
	return 1
}

func blendFor(active bool) float64 {
	if active {
		return 1
	}
	return 0
}

func progress(elapsed, duration time.Duration) float64 {
	if duration <= 0 {
		return 1
	}
	p := float64(elapsed) / float64(duration)
	return clamp01(p)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// normalizeAngle wraps an angle into [0, 360).
func normalizeAngle(a float64) float64 {
	for a >= 360 {
		a -= 360
	}
	for a < 0 {
		a += 360
	}
	return a
}

func hasKind(specs []config.AnimationSpec, kind config.AnimationKind) bool {
	for _, s := range specs {
		if s.Kind == kind {
			return true
		}
	}
	return false
}
