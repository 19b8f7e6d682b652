package x11

import (
	"log/slog"
	"time"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xprop"

	"github.com/1broseidon/framelight/internal/wm"
)

// Watcher turns raw X events into the ordered wm.Event stream. It runs on
// its own connection so the blocking event read never contends with the
// query connection's request/reply traffic.
type Watcher struct {
	conn *Connection
	sink func(wm.Event)
	log  *slog.Logger

	atomClientList   xproto.Atom
	atomActiveWindow xproto.Atom
	atomWmState      xproto.Atom

	// tracked window state for diffing
	known  map[xproto.Window]*trackedWindow
	active xproto.Window

	stopped chan struct{}
}

type trackedWindow struct {
	geom      wm.Rect
	minimized bool
	mapped    bool
}

// NewWatcher opens a dedicated connection, subscribes to root window
// notifications, and primes the tracked-window set. Events are delivered
// to sink from the watcher goroutine, in arrival order.
func NewWatcher(sink func(wm.Event), log *slog.Logger) (*Watcher, error) {
	conn, err := NewConnection()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		conn:    conn,
		sink:    sink,
		log:     log,
		known:   make(map[xproto.Window]*trackedWindow),
		stopped: make(chan struct{}),
	}

	for _, a := range []struct {
		name string
		dst  *xproto.Atom
	}{
		{"_NET_CLIENT_LIST", &w.atomClientList},
		{"_NET_ACTIVE_WINDOW", &w.atomActiveWindow},
		{"_NET_WM_STATE", &w.atomWmState},
	} {
		atom, err := xprop.Atm(conn.XUtil, a.name)
		if err != nil {
			conn.Close()
			return nil, err
		}
		*a.dst = atom
	}

	err = xproto.ChangeWindowAttributesChecked(
		conn.XUtil.Conn(),
		conn.Root,
		xproto.CwEventMask,
		[]uint32{xproto.EventMaskSubstructureNotify | xproto.EventMaskPropertyChange},
	).Check()
	if err != nil {
		conn.Close()
		return nil, err
	}

	w.primeKnown()
	return w, nil
}

// Run reads events until Stop closes the connection. It is the only
// goroutine touching the watcher's state maps.
func (w *Watcher) Run() {
	defer close(w.stopped)
	for {
		ev, xerr := w.conn.XUtil.Conn().WaitForEvent()
		if ev == nil && xerr == nil {
			// Connection closed.
			return
		}
		if xerr != nil {
			w.log.Debug("x event error", "error", xerr.Error())
			continue
		}
		w.dispatch(ev)
	}
}

// Stop closes the watcher connection, which unblocks Run.
func (w *Watcher) Stop() {
	w.conn.Close()
	<-w.stopped
}

func (w *Watcher) dispatch(ev interface{}) {
	now := time.Now()
	switch e := ev.(type) {
	case xproto.PropertyNotifyEvent:
		switch e.Atom {
		case w.atomClientList:
			if e.Window == w.conn.Root {
				w.syncClientList(now)
			}
		case w.atomActiveWindow:
			if e.Window == w.conn.Root {
				w.syncActiveWindow(now)
			}
		case w.atomWmState:
			w.syncMinimized(e.Window, now)
		}

	case xproto.ConfigureNotifyEvent:
		w.syncGeometry(e.Window, now)

	case xproto.MapNotifyEvent:
		if t, ok := w.known[e.Window]; ok && !t.mapped {
			t.mapped = true
			w.emit(e.Window, wm.EventShown, now)
		}

	case xproto.UnmapNotifyEvent:
		if t, ok := w.known[e.Window]; ok && t.mapped {
			t.mapped = false
			w.emit(e.Window, wm.EventHidden, now)
		}

	case xproto.DestroyNotifyEvent:
		if _, ok := w.known[e.Window]; ok {
			delete(w.known, e.Window)
			w.emit(e.Window, wm.EventDestroyed, now)
		}
	}
}

// primeKnown records the windows present at startup without emitting
// events; the engine's initial sweep discovers them itself.
func (w *Watcher) primeKnown() {
	clients, err := ewmh.ClientListGet(w.conn.XUtil)
	if err != nil {
		return
	}
	for _, win := range clients {
		w.track(win)
	}
	if active, err := ewmh.ActiveWindowGet(w.conn.XUtil); err == nil {
		w.active = active
	}
}

func (w *Watcher) track(win xproto.Window) *trackedWindow {
	t := &trackedWindow{mapped: true}
	if snap, err := w.conn.Snapshot(wm.Handle(win)); err == nil {
		t.geom = snap.Geometry
		t.minimized = snap.Minimized
		t.mapped = snap.Visible
	}
	w.known[win] = t

	// Subscribe to the window's own notifications. StructureNotify matters
	// because the window manager reparents clients into frames: the
	// substructure mask on the root only sees the frames, while the client
	// receives a synthetic ConfigureNotify in root coordinates whenever its
	// frame moves.
	xproto.ChangeWindowAttributes(
		w.conn.XUtil.Conn(),
		win,
		xproto.CwEventMask,
		[]uint32{xproto.EventMaskPropertyChange | xproto.EventMaskStructureNotify},
	)
	return t
}

// syncClientList diffs the EWMH client list against the tracked set and
// emits create/destroy events for the difference.
func (w *Watcher) syncClientList(now time.Time) {
	clients, err := ewmh.ClientListGet(w.conn.XUtil)
	if err != nil {
		return
	}

	current := make(map[xproto.Window]bool, len(clients))
	for _, win := range clients {
		current[win] = true
		if _, ok := w.known[win]; ok {
			continue
		}
		if !w.conn.IsNormalWindow(win) {
			continue
		}
		w.track(win)
		w.emit(win, wm.EventCreated, now)
	}

	for win := range w.known {
		if !current[win] {
			delete(w.known, win)
			w.emit(win, wm.EventDestroyed, now)
		}
	}
}

func (w *Watcher) syncActiveWindow(now time.Time) {
	active, err := ewmh.ActiveWindowGet(w.conn.XUtil)
	if err != nil || active == w.active {
		return
	}
	prev := w.active
	w.active = active

	if _, ok := w.known[prev]; ok {
		w.emit(prev, wm.EventFocusLost, now)
	}
	if _, ok := w.known[active]; ok {
		w.emit(active, wm.EventFocusGained, now)
	}
}

func (w *Watcher) syncMinimized(win xproto.Window, now time.Time) {
	t, ok := w.known[win]
	if !ok {
		return
	}

	minimized := false
	if states, err := ewmh.WmStateGet(w.conn.XUtil, win); err == nil {
		for _, s := range states {
			if s == "_NET_WM_STATE_HIDDEN" {
				minimized = true
			}
		}
	}
	if minimized == t.minimized {
		return
	}
	t.minimized = minimized
	if minimized {
		w.emit(win, wm.EventMinimized, now)
	} else {
		w.emit(win, wm.EventRestored, now)
	}
}

// syncGeometry re-reads the window's geometry instead of trusting event
// coordinates, which are parent-relative for real ConfigureNotify events.
func (w *Watcher) syncGeometry(win xproto.Window, now time.Time) {
	t, ok := w.known[win]
	if !ok {
		return
	}
	snap, err := w.conn.Snapshot(wm.Handle(win))
	if err != nil {
		return
	}
	geom := snap.Geometry
	if geom == t.geom {
		return
	}
	moved := geom.SameSize(t.geom)
	t.geom = geom
	if moved {
		w.emit(win, wm.EventMoved, now)
	} else {
		w.emit(win, wm.EventResized, now)
	}
}

func (w *Watcher) emit(win xproto.Window, kind wm.EventKind, now time.Time) {
	w.sink(wm.Event{Handle: wm.Handle(win), Kind: kind, Time: now})
}
