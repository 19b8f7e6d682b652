package engine

import (
	"sync"

	"github.com/1broseidon/framelight/internal/render"
	"github.com/1broseidon/framelight/internal/wm"
)

// renderJob is one queued paint: either a frame to draw or a visibility
// change.
type renderJob struct {
	frame   *render.Frame
	visible bool
}

// renderQueue serializes paints on a single worker goroutine. At most one
// job is pending per border; a newer job replaces the stale one, so a
// border that changes faster than the server can paint only ever paints
// its latest state.
type renderQueue struct {
	mu       sync.Mutex
	cond     *sync.Cond
	pending  map[wm.Handle]renderJob
	order    []wm.Handle
	inFlight wm.Handle
	running  bool
	run      func(wm.Handle, renderJob)
	closed   bool
	done     chan struct{}
}

func newRenderQueue(run func(wm.Handle, renderJob)) *renderQueue {
	q := &renderQueue{
		pending: make(map[wm.Handle]renderJob),
		run:     run,
		done:    make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.mu)
	go q.worker()
	return q
}

// submit queues a job, replacing any pending job for the same border.
func (q *renderQueue) submit(h wm.Handle, job renderJob) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	if _, ok := q.pending[h]; !ok {
		q.order = append(q.order, h)
	}
	q.pending[h] = job
	q.cond.Broadcast()
}

// cancel drops any pending job for a border and waits for an already
// dequeued job on the same border to finish. Called before the border's
// surface is released, so a paint can never race surface teardown.
func (q *renderQueue) cancel(h wm.Handle) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.pending[h]; ok {
		delete(q.pending, h)
		for i, other := range q.order {
			if other == h {
				q.order = append(q.order[:i], q.order[i+1:]...)
				break
			}
		}
	}
	for q.running && q.inFlight == h && !q.closed {
		q.cond.Wait()
	}
}

// stop drains nothing: pending jobs are discarded and the worker exits.
func (q *renderQueue) stop() {
	q.mu.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()
	<-q.done
}

func (q *renderQueue) worker() {
	defer close(q.done)
	for {
		q.mu.Lock()
		for len(q.order) == 0 && !q.closed {
			q.cond.Wait()
		}
		if q.closed {
			q.mu.Unlock()
			return
		}
		h := q.order[0]
		q.order = q.order[1:]
		job := q.pending[h]
		delete(q.pending, h)
		q.inFlight = h
		q.running = true
		q.mu.Unlock()

		q.run(h, job)

		q.mu.Lock()
		q.running = false
		q.cond.Broadcast()
		q.mu.Unlock()
	}
}
