package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"

	"github.com/1broseidon/framelight/internal/wm"
)

// Monitor is one active display.
type Monitor struct {
	ID     int
	Name   string
	Bounds wm.Rect
}

// Monitors enumerates active displays via XRandR.
func (c *Connection) Monitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(c.XUtil.Conn(), info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		monitors = append(monitors, Monitor{
			ID:   i,
			Name: name,
			Bounds: wm.Rect{
				X: int(info.X), Y: int(info.Y),
				Width: int(info.Width), Height: int(info.Height),
			},
		})
	}
	return monitors, nil
}

// MonitorFor returns the monitor containing the rect's center, or nil
// when the rect is off every display.
func MonitorFor(monitors []Monitor, rect wm.Rect) *Monitor {
	cx := rect.X + rect.Width/2
	cy := rect.Y + rect.Height/2
	for i := range monitors {
		b := monitors[i].Bounds
		if cx >= b.X && cx < b.X+b.Width && cy >= b.Y && cy < b.Y+b.Height {
			return &monitors[i]
		}
	}
	return nil
}
