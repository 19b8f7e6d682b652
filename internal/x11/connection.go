// Package x11 is the platform layer: it owns the X server connections,
// answers window queries, feeds the typed event stream, and backs border
// surfaces with override-redirect ARGB windows.
package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// Connection manages an X11 connection and the resources shared by the
// overlay surfaces created on it.
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	argbVisual   xproto.Visualid
	argbColormap xproto.Colormap
	argbDepth    byte
}

// NewConnection connects to the X server and locates a 32-bit ARGB visual
// for translucent overlay windows. Without one the overlays fall back to
// the root visual and lose per-pixel alpha.
func NewConnection() (*Connection, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}

	c := &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}
	c.findARGBVisual()
	return c, nil
}

// findARGBVisual scans the screen's allowed depths for a 32-bit visual and
// allocates a colormap for it. Failure is not fatal.
func (c *Connection) findARGBVisual() {
	screen := c.XUtil.Screen()
	for _, depth := range screen.AllowedDepths {
		if depth.Depth != 32 || len(depth.Visuals) == 0 {
			continue
		}
		visual := depth.Visuals[0].VisualId

		cmap, err := xproto.NewColormapId(c.XUtil.Conn())
		if err != nil {
			return
		}
		err = xproto.CreateColormapChecked(
			c.XUtil.Conn(),
			xproto.ColormapAllocNone,
			cmap,
			c.Root,
			visual,
		).Check()
		if err != nil {
			return
		}

		c.argbVisual = visual
		c.argbColormap = cmap
		c.argbDepth = 32
		return
	}
}

// HasARGB reports whether translucent overlays are available.
func (c *Connection) HasARGB() bool {
	return c.argbDepth == 32
}

// Sync flushes the request queue and waits for the server to process it.
func (c *Connection) Sync() {
	c.XUtil.Sync()
}

// Close disconnects from the X server.
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}

func (c *Connection) checkAlive() error {
	if c.XUtil == nil {
		return fmt.Errorf("x11: connection closed")
	}
	return nil
}
