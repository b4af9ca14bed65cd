// Package seen implements the bounded, lossy deduplication cache the
// explorer pool consults before reinjecting a world into the frontier
// (§4.G). Collisions cause re-exploration, never incorrectness: the cache
// only ever makes the search slower, never wrong.
package seen

import (
	"sync/atomic"

	"github.com/ashgrove/linearcheck/world"
)

// MaxBits is the largest slot-count exponent the cache supports — 2^24
// entries, per §5's resource bound.
const MaxBits = 24

// Cache is a fixed-size concurrent hash table mapping a 24-bit (or
// narrower) slice of a world's equivalence-key hash to the key itself.
// The zero value is not usable; construct with New.
type Cache struct {
	mask  uint64
	slots []atomic.Pointer[world.EquivalenceKey]
}

// New returns a Cache with 2^bits slots. bits is clamped to [0, MaxBits].
func New(bits uint) *Cache {
	if bits > MaxBits {
		bits = MaxBits
	}
	size := uint64(1) << bits
	return &Cache{
		mask:  size - 1,
		slots: make([]atomic.Pointer[world.EquivalenceKey], size),
	}
}

// Seen implements §4.G's seen!?(world): it computes w's equivalence key and
// 24-bit slot, and reports whether that slot already holds an equal key.
// If not (empty slot, or a different key occupying it — a collision), and
// w has at least one pending invocation, the slot is overwritten with w's
// key (last-writer-wins; concurrent writers racing here is acceptable,
// per §5 "Seen cache slot writes may race"). Worlds with an empty
// pending set are cheap to re-explore, so they never displace a stored
// key — the capacity is reserved for the expensive, branching worlds that
// actually benefit from dedup.
func (c *Cache) Seen(w world.World) bool {
	key := w.Key()
	slot := key.Hash() & c.mask

	if stored := c.slots[slot].Load(); stored != nil && stored.Equal(key) {
		return true
	}
	if w.Pending.Len() > 0 {
		c.slots[slot].Store(&key)
	}
	return false
}

// Len returns the number of slots in the table (its fixed capacity, not
// the number currently occupied).
func (c *Cache) Len() int {
	return len(c.slots)
}
