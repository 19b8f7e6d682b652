// Package wm holds the window-model types shared between the X11 layer and
// the border engine: handles, geometry, snapshots, and the typed event
// stream the orchestrator consumes.
package wm

import "time"

// Handle is a stable identifier for a tracked native window. It is only
// ever used as a lookup key and as an argument to window queries.
type Handle uint32

// Rect is a screen-space rectangle in pixels.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Empty reports whether the rect has no visible area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// SameSize reports whether two rects have equal dimensions, ignoring
// position. Used to decide whether a move needs a repaint.
func (r Rect) SameSize(o Rect) bool {
	return r.Width == o.Width && r.Height == o.Height
}

// Inflate grows the rect outward by n pixels on every side. Negative n
// shrinks it.
func (r Rect) Inflate(n int) Rect {
	return Rect{
		X:      r.X - n,
		Y:      r.Y - n,
		Width:  r.Width + 2*n,
		Height: r.Height + 2*n,
	}
}

// CornerStyle is the corner shape a window reports for itself. The X server
// has no direct equivalent of a corner preference, so this is derived from
// window decorations.
type CornerStyle int

const (
	CornerDefault CornerStyle = iota
	CornerSquare
	CornerRound
	CornerRoundSmall
)

// Snapshot is a point-in-time read of a window's geometry and state.
type Snapshot struct {
	Geometry  Rect
	Corner    CornerStyle
	Visible   bool
	Focused   bool
	Minimized bool
}

// Identity is what the rule matcher sees of a window.
type Identity struct {
	Class   string
	Title   string
	Process string
}

// EventKind enumerates the window notifications the engine reacts to.
type EventKind int

const (
	EventCreated EventKind = iota
	EventDestroyed
	EventMoved
	EventResized
	EventFocusGained
	EventFocusLost
	EventMinimized
	EventRestored
	EventShown
	EventHidden
)

var eventKindNames = [...]string{
	"created", "destroyed", "moved", "resized", "focus-gained",
	"focus-lost", "minimized", "restored", "shown", "hidden",
}

func (k EventKind) String() string {
	if int(k) < len(eventKindNames) {
		return eventKindNames[k]
	}
	return "unknown"
}

// Event is one entry of the ordered window-event stream.
type Event struct {
	Handle Handle
	Kind   EventKind
	Time   time.Time
}

// Querier answers on-demand questions about a window. Queries can fail at
// any time because the window may vanish between event delivery and the
// query; callers treat that as an implicit destroy.
type Querier interface {
	// Snapshot reads the window's current geometry and state.
	Snapshot(Handle) (Snapshot, error)
	// Identity reads the window's class, title, and owning process name.
	Identity(Handle) (Identity, error)
	// ListWindows enumerates the current top-level windows, used for the
	// initial sweep and for periodic reconciliation.
	ListWindows() ([]Handle, error)
}
