// Package border holds the per-window border instance: the state machine
// that turns window events and timer ticks into paint frames. An instance
// never talks to the X server itself; the engine owns surfaces and paints.
package border

import (
	"sync"
	"time"

	"github.com/1broseidon/framelight/internal/anim"
	"github.com/1broseidon/framelight/internal/colors"
	"github.com/1broseidon/framelight/internal/config"
	"github.com/1broseidon/framelight/internal/effects"
	"github.com/1broseidon/framelight/internal/render"
	"github.com/1broseidon/framelight/internal/rules"
	"github.com/1broseidon/framelight/internal/wm"
)

// Instance is the border state for one tracked window. All methods are
// serialized by the instance mutex; the engine may call them from the
// event goroutine and the tick goroutine.
type Instance struct {
	mu sync.Mutex

	handle wm.Handle
	eff    *rules.Effective
	snap   wm.Snapshot
	anim   anim.State

	// pending delays the show trigger: initialize_delay after creation,
	// unminimize_delay after a restore. Zero time means nothing pending.
	pendingUntil   time.Time
	pendingTrigger anim.Trigger

	lastFrame *render.Frame
	lastTick  time.Time
	vanished  bool
	closed    bool
}

// Update is the outcome of one tick for one border.
type Update struct {
	// Frame to paint, nil when the previous paint is still correct.
	Frame *render.Frame
	// Visible is whether the surface should be mapped at all.
	Visible bool
	// Teardown asks the engine to destroy this instance and its surface.
	Teardown bool
}

// New creates the border instance for a freshly tracked window. The border
// starts hidden; windows that are already visible begin their entry after
// the configured initialize delay.
func New(handle wm.Handle, eff *rules.Effective, snap wm.Snapshot, now time.Time) *Instance {
	inst := &Instance{
		handle: handle,
		eff:    eff,
		snap:   snap,
		anim:   anim.NewState(snap.Focused),
	}
	if snap.Visible && !snap.Minimized {
		inst.schedule(anim.TriggerShow, now.Add(eff.InitializeDelay))
	}
	return inst
}

// Handle returns the tracked window.
func (b *Instance) Handle() wm.Handle {
	return b.handle
}

// HandleEvent folds one window event into the instance. The querier is
// consulted for fresh geometry; a failed query means the window vanished
// and the next tick reports teardown.
func (b *Instance) HandleEvent(ev wm.Event, q wm.Querier) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}

	switch ev.Kind {
	case wm.EventDestroyed:
		b.vanished = true
		return

	case wm.EventMoved, wm.EventResized:
		b.refreshSnapshot(q)
		return

	case wm.EventShown:
		b.refreshSnapshot(q)
		b.schedule(anim.TriggerShow, ev.Time)

	case wm.EventRestored:
		b.refreshSnapshot(q)
		b.snap.Minimized = false
		b.schedule(anim.TriggerShow, ev.Time.Add(b.eff.UnminimizeDelay))

	case wm.EventMinimized:
		b.snap.Minimized = true
		b.cancelPending()
		b.anim = anim.Apply(b.anim, anim.TriggerHide, b.eff)

	case wm.EventHidden:
		b.snap.Visible = false
		b.cancelPending()
		b.anim = anim.Apply(b.anim, anim.TriggerHide, b.eff)

	case wm.EventFocusGained:
		b.snap.Focused = true
		b.anim = anim.Apply(b.anim, anim.TriggerFocus, b.eff)

	case wm.EventFocusLost:
		b.snap.Focused = false
		b.anim = anim.Apply(b.anim, anim.TriggerUnfocus, b.eff)
	}
}

// ApplyConfig swaps in a freshly resolved config. Animation progress is
// kept; only the entry lists and visual parameters change.
func (b *Instance) ApplyConfig(eff *rules.Effective) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.eff = eff
	b.anim = anim.Apply(b.anim, anim.TriggerConfig, eff)
	// Force a repaint even when animation params did not move.
	b.lastFrame = nil
}

// Tick advances the animation and computes the next paint. Frame is nil
// when nothing changed since the previous tick.
func (b *Instance) Tick(now time.Time) Update {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed || b.vanished {
		return Update{Teardown: true}
	}

	// Release a due pending trigger.
	if b.pendingTrigger != anim.TriggerNone && !now.Before(b.pendingUntil) {
		b.anim = anim.Apply(b.anim, b.pendingTrigger, b.eff)
		b.cancelPending()
	}

	var dt time.Duration
	if !b.lastTick.IsZero() {
		dt = now.Sub(b.lastTick)
	}
	b.lastTick = now

	b.anim = anim.Tick(b.anim, dt)

	if b.anim.Hidden() || b.snap.Geometry.Empty() {
		b.lastFrame = nil
		return Update{Visible: false}
	}

	frame := b.computeFrame()
	if b.lastFrame != nil && frame.Equal(*b.lastFrame) {
		return Update{Visible: true}
	}
	b.lastFrame = &frame
	return Update{Frame: &frame, Visible: true}
}

// Animating reports whether a transition is in flight, used by the engine
// to keep the tick loop running only while something moves.
func (b *Instance) Animating() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.anim.Transition != anim.Idle || b.pendingTrigger != anim.TriggerNone
}

// Visible reports whether the border currently shows anything.
func (b *Instance) Visible() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.closed && !b.vanished && !b.anim.Hidden()
}

// Close marks the instance dead. Subsequent events are ignored and the
// next tick reports teardown.
func (b *Instance) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}

func (b *Instance) schedule(trigger anim.Trigger, at time.Time) {
	b.pendingTrigger = trigger
	b.pendingUntil = at
}

func (b *Instance) cancelPending() {
	b.pendingTrigger = anim.TriggerNone
	b.pendingUntil = time.Time{}
}

func (b *Instance) refreshSnapshot(q wm.Querier) {
	snap, err := q.Snapshot(b.handle)
	if err != nil {
		b.vanished = true
		return
	}
	// Focus is tracked through events, not polled; keep our view of it.
	focused := b.snap.Focused
	b.snap = snap
	b.snap.Focused = focused
}

// computeFrame assembles the paint request from the current snapshot,
// effective config, and animation parameters.
func (b *Instance) computeFrame() render.Frame {
	p := b.anim.Params

	fill := colors.BlendBrush(b.eff.InactiveColor, b.eff.ActiveColor, p.Blend)

	// Effects follow the transition target so a focus change swaps the
	// effect set at the start of the blend.
	active := b.anim.Active

	return render.Frame{
		Outer:     b.snap.Geometry.Inflate(b.eff.Width + b.eff.Offset),
		Thickness: b.eff.Width,
		Radius:    b.resolveRadius(),
		Fill:      fill,
		Opacity:   p.Opacity,
		Angle:     p.Angle,
		Effects:   effects.FromSpecs(b.eff.Effects(active)),
	}
}

// resolveRadius maps the configured radius policy to pixels. Auto follows
// the window's own corner style.
func (b *Instance) resolveRadius() float64 {
	r := b.eff.Radius
	half := float64(b.eff.Width) / 2
	switch r.Mode {
	case config.RadiusCustom:
		if r.Value >= 0 {
			return r.Value
		}
		return b.autoRadius(half)
	case config.RadiusAuto:
		return b.autoRadius(half)
	case config.RadiusRound:
		return 8 + half
	case config.RadiusRoundSmall:
		return 4 + half
	default:
		return 0
	}
}

func (b *Instance) autoRadius(half float64) float64 {
	switch b.snap.Corner {
	case wm.CornerRound:
		return 8 + half
	case wm.CornerRoundSmall:
		return 4 + half
	default:
		return 0
	}
}
