// Package engine orchestrates the border lifecycle: it consumes the
// window event stream, owns the handle-to-border map, drives the shared
// animation clock, and hands paint work to the render queue.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/1broseidon/framelight/internal/border"
	"github.com/1broseidon/framelight/internal/config"
	"github.com/1broseidon/framelight/internal/ipc"
	"github.com/1broseidon/framelight/internal/render"
	"github.com/1broseidon/framelight/internal/rules"
	"github.com/1broseidon/framelight/internal/wm"
	"github.com/1broseidon/framelight/internal/x11"
)

// eventQueueSize bounds the event channel. Overflow drops events with a
// log line; the reconciler heals any resulting drift.
const eventQueueSize = 256

// snapshot is one immutable config generation. Reloads swap the whole
// pointer so in-flight resolutions never see a half-updated config.
type snapshot struct {
	cfg     *config.Config
	matcher *rules.Matcher
	backend render.Backend
}

// entry pairs a border instance with its overlay surface.
type entry struct {
	inst    *border.Instance
	surface render.Surface
	visible bool
}

// Platform is everything the engine needs from the windowing layer:
// window queries, overlay surface allocation, and monitor enumeration.
// The X11 connection satisfies it; tests substitute fakes.
type Platform interface {
	wm.Querier
	NewSurface(wm.Handle) (render.Surface, error)
	Monitors() ([]x11.Monitor, error)
}

// Engine is the daemon core. One engine runs per daemon process.
type Engine struct {
	log  *slog.Logger
	conn Platform

	snap atomic.Pointer[snapshot]

	mu      sync.Mutex
	borders map[wm.Handle]*entry

	events  chan wm.Event
	renderq *renderQueue

	exitOnce sync.Once
	exitCh   chan struct{}
}

// New builds the engine around a windowing platform and a loaded config.
func New(conn Platform, cfg *config.Config, log *slog.Logger) (*Engine, error) {
	matcher, err := rules.NewMatcher(cfg)
	if err != nil {
		return nil, fmt.Errorf("compile rules: %w", err)
	}

	e := &Engine{
		log:     log,
		conn:    conn,
		borders: make(map[wm.Handle]*entry),
		events:  make(chan wm.Event, eventQueueSize),
		exitCh:  make(chan struct{}),
	}
	e.snap.Store(&snapshot{
		cfg:     cfg,
		matcher: matcher,
		backend: render.New(cfg.RenderingBackend),
	})
	e.renderq = newRenderQueue(e.paint)
	return e, nil
}

// Run blocks until the context is cancelled or an exit is requested. It
// owns the event loop, the tick loop, and the reconciler.
func (e *Engine) Run(ctx context.Context) error {
	watcher, err := x11.NewWatcher(e.PostEvent, e.log)
	if err != nil {
		return fmt.Errorf("start window watcher: %w", err)
	}
	go watcher.Run()
	defer watcher.Stop()

	e.sweep(time.Now())

	var wg sync.WaitGroup
	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	wg.Add(2)
	go func() {
		defer wg.Done()
		e.eventLoop(loopCtx)
	}()
	go func() {
		defer wg.Done()
		e.reconcileLoop(loopCtx)
	}()

	e.tickLoop(loopCtx)

	cancel()
	wg.Wait()
	e.renderq.stop()
	e.teardownAll()
	return nil
}

// PostEvent enqueues one window event. Safe for any goroutine; a full
// queue drops the event rather than blocking the X event reader.
func (e *Engine) PostEvent(ev wm.Event) {
	select {
	case e.events <- ev:
	default:
		e.log.Warn("event queue full, dropping event",
			"window", fmt.Sprintf("0x%x", uint32(ev.Handle)), "kind", ev.Kind.String())
	}
}

// RequestExit asks Run to return. Idempotent.
func (e *Engine) RequestExit() {
	e.exitOnce.Do(func() { close(e.exitCh) })
}

// eventLoop is the single consumer of the event queue, which gives every
// border a consistent, ordered view of its window's history.
func (e *Engine) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-e.events:
			e.handleEvent(ev)
		}
	}
}

func (e *Engine) handleEvent(ev wm.Event) {
	switch ev.Kind {
	case wm.EventCreated:
		e.track(ev.Handle, ev.Time)

	case wm.EventDestroyed:
		e.mu.Lock()
		ent, ok := e.borders[ev.Handle]
		e.mu.Unlock()
		if ok {
			ent.inst.HandleEvent(ev, e.conn)
			e.teardown(ev.Handle)
		}

	default:
		e.mu.Lock()
		ent, ok := e.borders[ev.Handle]
		e.mu.Unlock()
		if !ok {
			// A window can be untracked because surface allocation failed
			// earlier; retry when it next demands attention instead of
			// waiting for the reconciler.
			switch ev.Kind {
			case wm.EventShown, wm.EventRestored, wm.EventFocusGained:
				e.track(ev.Handle, ev.Time)
			}
			return
		}
		ent.inst.HandleEvent(ev, e.conn)
	}
}

// track starts a border for a window, if the rules allow one. Queries can
// fail when the window vanished already; that is not an error.
func (e *Engine) track(h wm.Handle, now time.Time) {
	e.mu.Lock()
	_, exists := e.borders[h]
	e.mu.Unlock()
	if exists {
		return
	}

	snap := e.snap.Load()

	wsnap, err := e.conn.Snapshot(h)
	if err != nil {
		e.log.Debug("window vanished before tracking", "window", fmt.Sprintf("0x%x", uint32(h)))
		return
	}
	id, err := e.conn.Identity(h)
	if err != nil {
		e.log.Debug("window has no identity, skipping", "window", fmt.Sprintf("0x%x", uint32(h)))
		return
	}

	eff := snap.matcher.Resolve(id)
	if !eff.Enabled {
		e.log.Debug("border disabled by rule",
			"window", fmt.Sprintf("0x%x", uint32(h)), "class", id.Class)
		return
	}

	surface, err := e.conn.NewSurface(h)
	if err != nil {
		e.log.Warn("failed to create border surface", "error", err)
		return
	}

	inst := border.New(h, &eff, wsnap, now)

	e.mu.Lock()
	e.borders[h] = &entry{inst: inst, surface: surface}
	e.mu.Unlock()

	e.log.Debug("tracking window",
		"window", fmt.Sprintf("0x%x", uint32(h)), "class", id.Class, "title", id.Title)
}

// sweep creates borders for every window that already exists at startup.
func (e *Engine) sweep(now time.Time) {
	handles, err := e.conn.ListWindows()
	if err != nil {
		e.log.Warn("initial window sweep failed", "error", err)
		return
	}
	for _, h := range handles {
		e.track(h, now)
	}
	e.log.Info("initial sweep complete", "windows", len(handles))
}

// tickLoop drives every border's animation at the configured frame rate.
// The interval is re-read each iteration so a reload can change the rate.
func (e *Engine) tickLoop(ctx context.Context) {
	for {
		fps := e.snap.Load().cfg.Global.Animations.EffectiveFPS()
		interval := time.Second / time.Duration(fps)

		select {
		case <-ctx.Done():
			return
		case <-e.exitCh:
			return
		case <-time.After(interval):
			e.tickAll(time.Now())
		}
	}
}

// tickAll advances each border one step and queues the resulting paints.
func (e *Engine) tickAll(now time.Time) {
	e.mu.Lock()
	handles := make([]wm.Handle, 0, len(e.borders))
	for h := range e.borders {
		handles = append(handles, h)
	}
	e.mu.Unlock()

	for _, h := range handles {
		e.mu.Lock()
		ent, ok := e.borders[h]
		e.mu.Unlock()
		if !ok {
			continue
		}

		upd := ent.inst.Tick(now)
		if upd.Teardown {
			e.teardown(h)
			continue
		}

		if upd.Frame != nil || upd.Visible != ent.visible {
			ent.visible = upd.Visible
			e.renderq.submit(h, renderJob{frame: upd.Frame, visible: upd.Visible})
		}
	}
}

// paint executes one render job on the render queue worker. A missing
// entry means the border was torn down after the job was queued; the job
// is simply dropped, never painted on a released surface.
func (e *Engine) paint(h wm.Handle, job renderJob) {
	e.mu.Lock()
	ent, ok := e.borders[h]
	e.mu.Unlock()
	if !ok {
		return
	}

	if !job.visible {
		if err := ent.surface.SetVisible(false); err != nil {
			e.log.Debug("hide border failed", "error", err)
		}
		return
	}
	if job.frame == nil {
		return
	}

	backend := e.snap.Load().backend
	if err := backend.Paint(ent.surface, *job.frame); err != nil {
		e.log.Warn("border paint failed",
			"window", fmt.Sprintf("0x%x", uint32(h)), "error", err)
	}
}

// teardown removes a border: pending paints are cancelled before the
// surface is released so no job can touch a dead surface.
func (e *Engine) teardown(h wm.Handle) {
	e.mu.Lock()
	ent, ok := e.borders[h]
	if ok {
		delete(e.borders, h)
	}
	e.mu.Unlock()
	if !ok {
		return
	}

	ent.inst.Close()
	e.renderq.cancel(h)
	if err := ent.surface.Destroy(); err != nil {
		e.log.Debug("surface destroy failed", "error", err)
	}
	e.log.Debug("border torn down", "window", fmt.Sprintf("0x%x", uint32(h)))
}

func (e *Engine) teardownAll() {
	e.mu.Lock()
	handles := make([]wm.Handle, 0, len(e.borders))
	for h := range e.borders {
		handles = append(handles, h)
	}
	e.mu.Unlock()
	for _, h := range handles {
		e.teardown(h)
	}
}

// ReloadConfig loads and applies a new config. A config that fails to
// parse or validate leaves the running config untouched and returns the
// error. Borders keep their animation progress across the swap.
func (e *Engine) ReloadConfig() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	matcher, err := rules.NewMatcher(cfg)
	if err != nil {
		return err
	}

	e.snap.Store(&snapshot{
		cfg:     cfg,
		matcher: matcher,
		backend: render.New(cfg.RenderingBackend),
	})

	e.mu.Lock()
	handles := make([]wm.Handle, 0, len(e.borders))
	for h := range e.borders {
		handles = append(handles, h)
	}
	e.mu.Unlock()

	for _, h := range handles {
		e.mu.Lock()
		ent, ok := e.borders[h]
		e.mu.Unlock()
		if !ok {
			continue
		}

		id, err := e.conn.Identity(h)
		if err != nil {
			// Window is on its way out; the reconciler or the destroy
			// event will clean it up.
			continue
		}
		eff := matcher.Resolve(id)
		if !eff.Enabled {
			e.teardown(h)
			continue
		}
		ent.inst.ApplyConfig(&eff)
	}

	e.log.Info("config reloaded",
		"rules", len(cfg.WindowRules), "backend", cfg.RenderingBackend.String())
	return nil
}

// Status implements the IPC daemon interface.
func (e *Engine) Status() ipc.StatusData {
	e.mu.Lock()
	total := len(e.borders)
	visible := 0
	for _, ent := range e.borders {
		if ent.inst.Visible() {
			visible++
		}
	}
	e.mu.Unlock()

	path, _ := config.Path()
	snap := e.snap.Load()
	return ipc.StatusData{
		BorderCount:  total,
		VisibleCount: visible,
		Backend:      snap.backend.Name(),
		FPS:          snap.cfg.Global.Animations.EffectiveFPS(),
		ConfigPath:   path,
	}
}

// Monitors implements the IPC daemon interface.
func (e *Engine) Monitors() ([]ipc.MonitorInfo, error) {
	monitors, err := e.conn.Monitors()
	if err != nil {
		return nil, err
	}
	infos := make([]ipc.MonitorInfo, len(monitors))
	for i, m := range monitors {
		infos[i] = ipc.MonitorInfo{
			ID:     m.ID,
			Name:   m.Name,
			X:      m.Bounds.X,
			Y:      m.Bounds.Y,
			Width:  m.Bounds.Width,
			Height: m.Bounds.Height,
		}
	}
	return infos, nil
}
