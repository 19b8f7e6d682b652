package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/framelight/internal/render"
	"github.com/1broseidon/framelight/internal/wm"
)

// putImageMaxBytes keeps each PutImage under the core protocol request
// limit; wide bars are uploaded in row chunks.
const putImageMaxBytes = 60 * 1024

// BorderSurface is one border overlay: four thin override-redirect
// windows framing a tracked window. With an ARGB visual the bars carry
// per-pixel alpha; otherwise they degrade to opaque fills.
type BorderSurface struct {
	conn    *Connection
	tracked xproto.Window

	top, bottom, left, right xproto.Window
	gc                       xproto.Gcontext

	geom      wm.Rect
	thickness int
	mapped    bool
	destroyed bool
}

// NewSurface creates the four bar windows for one tracked window. The
// surface starts unmapped; the first paint maps it.
func (c *Connection) NewSurface(tracked wm.Handle) (render.Surface, error) {
	if err := c.checkAlive(); err != nil {
		return nil, err
	}

	s := &BorderSurface{conn: c, tracked: xproto.Window(tracked)}

	for _, dst := range []*xproto.Window{&s.top, &s.bottom, &s.left, &s.right} {
		win, err := c.createOverlayWindow()
		if err != nil {
			s.Destroy()
			return nil, err
		}
		*dst = win
	}

	gc, err := xproto.NewGcontextId(c.XUtil.Conn())
	if err != nil {
		s.Destroy()
		return nil, err
	}
	err = xproto.CreateGCChecked(
		c.XUtil.Conn(),
		gc,
		xproto.Drawable(s.top),
		xproto.GcGraphicsExposures,
		[]uint32{0},
	).Check()
	if err != nil {
		s.Destroy()
		return nil, err
	}
	s.gc = gc

	return s, nil
}

// createOverlayWindow creates one override-redirect window that bypasses
// the window manager. When an ARGB visual is available the window is
// 32-bit; creating at a non-default depth requires an explicit border
// pixel and colormap.
func (c *Connection) createOverlayWindow() (xproto.Window, error) {
	conn := c.XUtil.Conn()
	screen := c.XUtil.Screen()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, err
	}

	depth := screen.RootDepth
	visual := screen.RootVisual
	mask := uint32(xproto.CwBackPixel | xproto.CwOverrideRedirect)
	// Value list order follows the bit positions of the mask (low to high).
	values := []uint32{0, 1}

	if c.HasARGB() {
		depth = c.argbDepth
		visual = c.argbVisual
		mask = xproto.CwBackPixel | xproto.CwBorderPixel |
			xproto.CwOverrideRedirect | xproto.CwColormap
		values = []uint32{0, 0, 1, uint32(c.argbColormap)}
	}

	err = xproto.CreateWindowChecked(
		conn,
		depth,
		wid,
		c.Root,
		0, 0,
		1, 1,
		0,
		xproto.WindowClassInputOutput,
		visual,
		mask,
		values,
	).Check()
	if err != nil {
		return 0, err
	}

	return wid, nil
}

// SetGeometry lays the four bars out around the outer rect: full-width
// top and bottom strips with the left and right strips between them.
func (s *BorderSurface) SetGeometry(outer wm.Rect, thickness int) error {
	if s.destroyed {
		return fmt.Errorf("x11: surface destroyed")
	}
	if thickness < 1 {
		thickness = 1
	}
	s.geom = outer
	s.thickness = thickness

	x, y := outer.X, outer.Y
	w, h := outer.Width, outer.Height
	t := thickness

	s.configure(s.top, x, y, w, t)
	s.configure(s.bottom, x, y+h-t, w, t)
	s.configure(s.left, x, y+t, t, h-2*t)
	s.configure(s.right, x+w-t, y+t, t, h-2*t)
	return nil
}

func (s *BorderSurface) configure(win xproto.Window, x, y, w, h int) {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	xproto.ConfigureWindow(
		s.conn.XUtil.Conn(),
		win,
		xproto.ConfigWindowX|xproto.ConfigWindowY|
			xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{uint32(x), uint32(y), uint32(w), uint32(h)},
	)
}

// SetVisible maps or unmaps all four bars.
func (s *BorderSurface) SetVisible(visible bool) error {
	if s.destroyed {
		return fmt.Errorf("x11: surface destroyed")
	}
	if visible == s.mapped {
		return nil
	}
	conn := s.conn.XUtil.Conn()
	for _, win := range s.bars() {
		if visible {
			xproto.MapWindow(conn, win)
		} else {
			xproto.UnmapWindow(conn, win)
		}
	}
	s.mapped = visible
	return nil
}

// FillUniform paints every bar one color by setting the background pixel
// and clearing, the cheapest paint the server offers.
func (s *BorderSurface) FillUniform(argb uint32) error {
	if s.destroyed {
		return fmt.Errorf("x11: surface destroyed")
	}
	pixel := s.pixelFor(argb)
	conn := s.conn.XUtil.Conn()
	for _, win := range s.bars() {
		xproto.ChangeWindowAttributes(conn, win, xproto.CwBackPixel, []uint32{pixel})
		xproto.ClearArea(conn, false, win, 0, 0, 0, 0)
	}
	return nil
}

// FillBars uploads per-pixel contents for each bar.
func (s *BorderSurface) FillBars(bars render.Bars) error {
	if s.destroyed {
		return fmt.Errorf("x11: surface destroyed")
	}
	for _, part := range []struct {
		win xproto.Window
		pix *render.Pixmap
	}{
		{s.top, bars.Top},
		{s.bottom, bars.Bottom},
		{s.left, bars.Left},
		{s.right, bars.Right},
	} {
		if part.pix == nil {
			continue
		}
		if err := s.putPixmap(part.win, part.pix); err != nil {
			return err
		}
	}
	return nil
}

// putPixmap uploads a pixel buffer with PutImage, chunked by rows to stay
// under the request size limit.
func (s *BorderSurface) putPixmap(win xproto.Window, p *render.Pixmap) error {
	conn := s.conn.XUtil.Conn()
	depth := s.conn.XUtil.Screen().RootDepth
	if s.conn.HasARGB() {
		depth = s.conn.argbDepth
	}

	rowBytes := p.W * 4
	rowsPerChunk := putImageMaxBytes / rowBytes
	if rowsPerChunk < 1 {
		rowsPerChunk = 1
	}

	for y := 0; y < p.H; y += rowsPerChunk {
		rows := rowsPerChunk
		if y+rows > p.H {
			rows = p.H - y
		}
		data := encodePixels(p.Pix[y*p.W:(y+rows)*p.W], s.conn.HasARGB())
		err := xproto.PutImageChecked(
			conn,
			xproto.ImageFormatZPixmap,
			xproto.Drawable(win),
			s.gc,
			uint16(p.W),
			uint16(rows),
			0,
			int16(y),
			0,
			depth,
			data,
		).Check()
		if err != nil {
			return fmt.Errorf("put image: %w", err)
		}
	}
	return nil
}

// encodePixels converts ARGB pixels to little-endian BGRA bytes. ARGB
// visuals expect premultiplied alpha, so the color channels are scaled
// here; without alpha the channels pass through.
func encodePixels(pix []uint32, premultiply bool) []byte {
	out := make([]byte, len(pix)*4)
	for i, c := range pix {
		a := (c >> 24) & 0xff
		r := (c >> 16) & 0xff
		g := (c >> 8) & 0xff
		b := c & 0xff
		if premultiply {
			r = r * a / 255
			g = g * a / 255
			b = b * a / 255
		}
		out[i*4+0] = byte(b)
		out[i*4+1] = byte(g)
		out[i*4+2] = byte(r)
		out[i*4+3] = byte(a)
	}
	return out
}

// pixelFor maps an ARGB color to a background pixel value for the
// surface's visual. Root-depth surfaces drop the alpha channel.
func (s *BorderSurface) pixelFor(argb uint32) uint32 {
	if s.conn.HasARGB() {
		a := (argb >> 24) & 0xff
		r := ((argb >> 16) & 0xff) * a / 255
		g := ((argb >> 8) & 0xff) * a / 255
		b := (argb & 0xff) * a / 255
		return a<<24 | r<<16 | g<<8 | b
	}
	return argb & 0x00ffffff
}

// Raise restacks the bars just above the tracked window so the border
// hugs it in the stacking order instead of floating over everything.
func (s *BorderSurface) Raise() error {
	if s.destroyed {
		return fmt.Errorf("x11: surface destroyed")
	}
	if err := s.SetVisible(true); err != nil {
		return err
	}

	conn := s.conn.XUtil.Conn()
	for _, win := range s.bars() {
		err := xproto.ConfigureWindowChecked(
			conn,
			win,
			xproto.ConfigWindowSibling|xproto.ConfigWindowStackMode,
			[]uint32{uint32(s.tracked), xproto.StackModeAbove},
		).Check()
		if err != nil {
			// The tracked window is reparented into a frame and is not our
			// sibling; settle for top of the stack.
			xproto.ConfigureWindow(
				conn,
				win,
				xproto.ConfigWindowStackMode,
				[]uint32{xproto.StackModeAbove},
			)
		}
	}
	return nil
}

// Destroy releases the bar windows. Safe to call more than once.
func (s *BorderSurface) Destroy() error {
	if s.destroyed {
		return nil
	}
	s.destroyed = true

	conn := s.conn.XUtil.Conn()
	if s.gc != 0 {
		xproto.FreeGC(conn, s.gc)
		s.gc = 0
	}
	for _, win := range s.bars() {
		if win != 0 {
			xproto.DestroyWindow(conn, win)
		}
	}
	s.top, s.bottom, s.left, s.right = 0, 0, 0, 0
	return nil
}

func (s *BorderSurface) bars() [4]xproto.Window {
	return [4]xproto.Window{s.top, s.bottom, s.left, s.right}
}
