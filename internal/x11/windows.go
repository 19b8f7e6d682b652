package x11

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xprop"

	"github.com/1broseidon/framelight/internal/wm"
)

// Snapshot reads a window's current geometry and state. Any X error is
// returned to the caller, which treats it as the window having vanished.
func (c *Connection) Snapshot(h wm.Handle) (wm.Snapshot, error) {
	win := xproto.Window(h)

	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(win)).Reply()
	if err != nil {
		return wm.Snapshot{}, fmt.Errorf("get geometry 0x%x: %w", win, err)
	}

	// Geometry is relative to the parent (the WM frame), so translate the
	// window origin into root coordinates.
	trans, err := xproto.TranslateCoordinates(c.XUtil.Conn(), win, c.Root, 0, 0).Reply()
	if err != nil {
		return wm.Snapshot{}, fmt.Errorf("translate coordinates 0x%x: %w", win, err)
	}

	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), win).Reply()
	if err != nil {
		return wm.Snapshot{}, fmt.Errorf("get attributes 0x%x: %w", win, err)
	}

	snap := wm.Snapshot{
		Geometry: wm.Rect{
			X:      int(trans.DstX),
			Y:      int(trans.DstY),
			Width:  int(geom.Width),
			Height: int(geom.Height),
		},
		Visible: attrs.MapState == xproto.MapStateViewable,
		Corner:  c.cornerStyle(win),
	}

	if states, err := ewmh.WmStateGet(c.XUtil, win); err == nil {
		for _, s := range states {
			if s == "_NET_WM_STATE_HIDDEN" {
				snap.Minimized = true
			}
		}
	}

	if active, err := ewmh.ActiveWindowGet(c.XUtil); err == nil {
		snap.Focused = active == win
	}

	return snap, nil
}

// Identity reads the window's class, title, and owning process name for
// rule matching.
func (c *Connection) Identity(h wm.Handle) (wm.Identity, error) {
	win := xproto.Window(h)
	var id wm.Identity

	if class, err := icccm.WmClassGet(c.XUtil, win); err == nil {
		id.Class = class.Class
	}

	title, err := ewmh.WmNameGet(c.XUtil, win)
	if err != nil || title == "" {
		title, _ = icccm.WmNameGet(c.XUtil, win)
	}
	id.Title = title

	if pid, err := ewmh.WmPidGet(c.XUtil, win); err == nil {
		id.Process = processName(int(pid))
	}

	if id.Class == "" && id.Title == "" {
		return id, fmt.Errorf("window 0x%x has no identity", win)
	}
	return id, nil
}

// ListWindows enumerates the managed top-level windows that qualify for a
// border, in EWMH client-list order.
func (c *Connection) ListWindows() ([]wm.Handle, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("get client list: %w", err)
	}

	handles := make([]wm.Handle, 0, len(clients))
	for _, win := range clients {
		if c.IsNormalWindow(win) {
			handles = append(handles, wm.Handle(win))
		}
	}
	return handles, nil
}

// IsNormalWindow reports whether a window is an ordinary application
// window. Docks, desktops, splash screens, menus, and notifications never
// get borders.
func (c *Connection) IsNormalWindow(win xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, win)
	if err != nil || len(types) == 0 {
		// Untyped windows are treated as normal.
		return true
	}

	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL", "_NET_WM_WINDOW_TYPE_DIALOG":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION",
			"_NET_WM_WINDOW_TYPE_TOOLTIP",
			"_NET_WM_WINDOW_TYPE_MENU",
			"_NET_WM_WINDOW_TYPE_DROPDOWN_MENU",
			"_NET_WM_WINDOW_TYPE_POPUP_MENU":
			return false
		}
	}
	return true
}

// ActiveWindow returns the currently focused window, or 0 when none is.
func (c *Connection) ActiveWindow() (wm.Handle, error) {
	win, err := ewmh.ActiveWindowGet(c.XUtil)
	if err != nil {
		return 0, err
	}
	return wm.Handle(win), nil
}

// cornerStyle guesses the window's corner shape. Client-side decorated
// windows advertise _GTK_FRAME_EXTENTS and usually draw rounded corners;
// everything else is treated as square.
func (c *Connection) cornerStyle(win xproto.Window) wm.CornerStyle {
	prop, err := xprop.GetProperty(c.XUtil, win, "_GTK_FRAME_EXTENTS")
	if err == nil && prop != nil && len(prop.Value) > 0 {
		return wm.CornerRound
	}
	return wm.CornerSquare
}

// processName resolves a PID to its short command name.
func processName(pid int) string {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/comm", pid))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
