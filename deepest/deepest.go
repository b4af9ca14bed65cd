// Package deepest tracks the world(s) that reached the greatest history
// index seen so far during a search. When a history turns out not to be
// linearizable, these are the worlds the Analyzer uses to report the
// longest linearizable prefix and the operation that broke it (§4.H, §6).
package deepest

import (
	"sync"

	"github.com/ashgrove/linearcheck/world"
)

// Tracker holds every world sharing the maximum index observed so far.
// The zero value is ready to use.
type Tracker struct {
	mu    sync.Mutex
	index int
	found bool
	worlds []world.World
}

// Update folds w into the tracker per §4.H's rule: if w.Index exceeds the
// current maximum, it replaces the held list; if equal, it's appended;
// otherwise it's ignored. Guarded by a plain mutex rather than a CAS loop
// (the documented alternative) since appending under contention needs the
// list held steady anyway — a CAS retry loop would still have to re-lock
// to append, buying nothing.
func (t *Tracker) Update(w world.World) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case !t.found || w.Index > t.index:
		t.index = w.Index
		t.worlds = append(t.worlds[:0:0], w)
		t.found = true
	case w.Index == t.index:
		t.worlds = append(t.worlds, w)
	}
}

// Worlds returns a copy of the worlds currently sharing the maximum index,
// and that index. found is false if Update has never been called.
func (t *Tracker) Worlds() (worlds []world.World, index int, found bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]world.World, len(t.worlds))
	copy(out, t.worlds)
	return out, t.index, t.found
}
