package engine

import (
	"context"
	"time"

	"github.com/1broseidon/framelight/internal/wm"
)

// reconcileInterval is how often the drift pass runs. Event delivery is
// best-effort (the queue drops on overflow, the X connection can hiccup),
// so the engine periodically compares its border map against reality.
const reconcileInterval = 10 * time.Second

func (e *Engine) reconcileLoop(ctx context.Context) {
	ticker := time.NewTicker(reconcileInterval)
	defer ticker.Stop()

	e.log.Info("reconciler started", "interval", reconcileInterval)

	for {
		select {
		case <-ctx.Done():
			e.log.Info("reconciler stopped")
			return
		case <-ticker.C:
			e.reconcile()
		}
	}
}

// reconcile posts synthetic events for the difference between the tracked
// set and the windows that actually exist. Corrections flow through the
// ordinary event queue so they obey the same ordering as real events. A
// panic in the pass is contained here so one bad cycle cannot take the
// daemon down.
func (e *Engine) reconcile() {
	defer func() {
		if err := recover(); err != nil {
			e.log.Error("reconciler panic recovered", "error", err)
		}
	}()

	handles, err := e.conn.ListWindows()
	if err != nil {
		e.log.Warn("reconciler: failed to list windows", "error", err)
		return
	}

	actual := make(map[wm.Handle]bool, len(handles))
	for _, h := range handles {
		actual[h] = true
	}

	e.mu.Lock()
	tracked := make(map[wm.Handle]bool, len(e.borders))
	for h := range e.borders {
		tracked[h] = true
	}
	e.mu.Unlock()

	now := time.Now()
	fixed := 0

	for _, h := range handles {
		if !tracked[h] {
			e.PostEvent(wm.Event{Handle: h, Kind: wm.EventCreated, Time: now})
			fixed++
		}
	}
	for h := range tracked {
		if !actual[h] {
			e.PostEvent(wm.Event{Handle: h, Kind: wm.EventDestroyed, Time: now})
			fixed++
		}
	}

	if fixed > 0 {
		e.log.Info("reconciler corrected drift", "corrections", fixed)
	}
}
