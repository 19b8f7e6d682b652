package x11

import (
	"testing"

	"github.com/1broseidon/framelight/internal/wm"
)

func TestMonitorFor_CenterContainment(t *testing.T) {
	monitors := []Monitor{
		{ID: 0, Name: "DP-1", Bounds: wm.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}},
		{ID: 1, Name: "DP-2", Bounds: wm.Rect{X: 1920, Y: 0, Width: 2560, Height: 1440}},
	}

	// Window straddling the seam belongs to whichever display holds its
	// center.
	m := MonitorFor(monitors, wm.Rect{X: 1800, Y: 100, Width: 400, Height: 300})
	if m == nil || m.ID != 1 {
		t.Fatalf("expected monitor 1, got %+v", m)
	}

	m = MonitorFor(monitors, wm.Rect{X: 100, Y: 100, Width: 400, Height: 300})
	if m == nil || m.ID != 0 {
		t.Fatalf("expected monitor 0, got %+v", m)
	}
}

func TestMonitorFor_OffscreenReturnsNil(t *testing.T) {
	monitors := []Monitor{
		{ID: 0, Bounds: wm.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}},
	}
	if m := MonitorFor(monitors, wm.Rect{X: -5000, Y: 0, Width: 100, Height: 100}); m != nil {
		t.Fatalf("expected nil for offscreen rect, got %+v", m)
	}
}
