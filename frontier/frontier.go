// Package frontier implements the concurrent work queue the explorer pool
// drains: a priority queue of not-yet-explored Worlds, ordered to favour
// cheap (small pending set) and deep (large index) worlds first, so the
// search tends to finish shallow-but-wide branches before they fan out
// further (§4.F).
package frontier

import (
	"container/heap"
	"sync"
	"time"

	"github.com/ashgrove/linearcheck/world"
)

// Frontier is a thread-safe priority queue of World values. The zero value
// is not usable; construct with New.
type Frontier struct {
	mu     sync.Mutex
	items  worldHeap
	closed bool
	wake   chan struct{} // closed and replaced whenever Put/Close changes state
}

// New returns an empty Frontier.
func New() *Frontier {
	return &Frontier{wake: make(chan struct{})}
}

// Put adds w to the frontier, waking any blocked Poll call.
func (f *Frontier) Put(w world.World) {
	f.mu.Lock()
	heap.Push(&f.items, w)
	old := f.wake
	f.wake = make(chan struct{})
	f.mu.Unlock()
	close(old)
}

// Len reports the number of worlds currently queued.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

// Poll removes and returns the highest-priority world, blocking up to
// timeout for one to become available. ok is false if timeout elapsed (or
// the Frontier was closed) with nothing to return — a worker should treat
// this as a signal to check whether the overall search has finished (§4.I
// "worker loop: world ← Frontier.poll(~10ms)").
func (f *Frontier) Poll(timeout time.Duration) (world.World, bool) {
	deadline := time.Now().Add(timeout)

	for {
		f.mu.Lock()
		if len(f.items) > 0 {
			w := heap.Pop(&f.items).(world.World)
			f.mu.Unlock()
			return w, true
		}
		if f.closed {
			f.mu.Unlock()
			return world.World{}, false
		}
		wake := f.wake
		f.mu.Unlock()

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return world.World{}, false
		}

		timer := time.NewTimer(remaining)
		select {
		case <-wake:
			timer.Stop()
		case <-timer.C:
			return world.World{}, false
		}
	}
}

// Close wakes every blocked Poll call, causing them to return ok=false once
// the queue drains. Used to unblock workers during shutdown.
func (f *Frontier) Close() {
	f.mu.Lock()
	f.closed = true
	old := f.wake
	f.wake = make(chan struct{})
	f.mu.Unlock()
	close(old)
}

// worldHeap implements container/heap.Interface, the same way the
// teacher's timer heap (package eventloop) implements a priority queue over
// deadlines: here the ordering is smaller pending set first, tiebreaking on
// larger index first (§4.F).
type worldHeap []world.World

func (h worldHeap) Len() int { return len(h) }

func (h worldHeap) Less(i, j int) bool {
	if li, lj := h[i].Pending.Len(), h[j].Pending.Len(); li != lj {
		return li < lj
	}
	return h[i].Index > h[j].Index
}

func (h worldHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *worldHeap) Push(x any) {
	*h = append(*h, x.(world.World))
}

func (h *worldHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
