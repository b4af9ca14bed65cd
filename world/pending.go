package world

import (
	"fmt"
	"hash/fnv"

	"github.com/ashgrove/linearcheck/history"
)

// pendingEntry pairs an outstanding invocation with the index it occupies
// in the full history, so a later Invoke-fold that decides to commit it can
// look up its eventual completion (ok/fail/info) regardless of how far the
// exploring world's own cursor has advanced — see resolvedOp in
// transition.go.
type pendingEntry struct {
	op          history.Op
	invokeIndex int
}

// PendingSet holds the invocations whose completion has not yet been
// observed in a World (§3). It is a set keyed by process — each process
// appears at most once (invariant 1) — represented as an insertion-ordered
// small-vector (§9 "Pending set" design note): equality and hashing are
// set-equality/set-hash, but Ops() preserves a deterministic iteration
// order for permutation generation (§4.D).
type PendingSet struct {
	entries []pendingEntry
}

// Len returns the number of outstanding invocations.
func (p PendingSet) Len() int {
	return len(p.entries)
}

// Get returns the outstanding invocation for process, if any.
func (p PendingSet) Get(process history.Process) (history.Op, bool) {
	for _, e := range p.entries {
		if e.op.Process == process {
			return e.op, true
		}
	}
	return history.Op{}, false
}

// Contains reports whether process has an outstanding invocation.
func (p PendingSet) Contains(process history.Process) bool {
	_, ok := p.Get(process)
	return ok
}

// Add returns a new PendingSet with op added, recording invokeIndex as the
// position in history at which op occurred (so its eventual completion can
// be looked up later, however far the committing world's cursor has
// travelled). Add does not check for an existing invocation from the same
// process; callers must uphold invariant 1 (at most one outstanding
// invocation per process).
func (p PendingSet) Add(op history.Op, invokeIndex int) PendingSet {
	next := make([]pendingEntry, len(p.entries), len(p.entries)+1)
	copy(next, p.entries)
	next = append(next, pendingEntry{op: op, invokeIndex: invokeIndex})
	return PendingSet{entries: next}
}

// Remove returns a new PendingSet without process's outstanding invocation.
// It is a no-op if process has none.
func (p PendingSet) Remove(process history.Process) PendingSet {
	if !p.Contains(process) {
		return p
	}
	next := make([]pendingEntry, 0, len(p.entries)-1)
	for _, e := range p.entries {
		if e.op.Process != process {
			next = append(next, e)
		}
	}
	return PendingSet{entries: next}
}

// Ops returns the outstanding invocations, in insertion order.
func (p PendingSet) Ops() []history.Op {
	out := make([]history.Op, len(p.entries))
	for i, e := range p.entries {
		out[i] = e.op
	}
	return out
}

// entriesInOrder returns the outstanding invocations together with their
// history index, in insertion order. Unexported: only the Invoke
// transition (same package) needs the index.
func (p PendingSet) entriesInOrder() []pendingEntry {
	out := make([]pendingEntry, len(p.entries))
	copy(out, p.entries)
	return out
}

// Equal reports set-equality: same outstanding invocations, irrespective of
// insertion order.
func (p PendingSet) Equal(other PendingSet) bool {
	if len(p.entries) != len(other.entries) {
		return false
	}
	for _, e := range p.entries {
		if o, ok := other.Get(e.op.Process); !ok || o != e.op {
			return false
		}
	}
	return true
}

// Hash returns an order-independent hash of the set's contents, for use as
// part of a Seen cache key (§4.G). It need not be collision-free.
func (p PendingSet) Hash() uint64 {
	var h uint64
	for _, e := range p.entries {
		h ^= hashOp(e.op)
	}
	return h
}

func hashOp(op history.Op) uint64 {
	f := fnv.New64a()
	fmt.Fprintf(f, "%d|%v|%s|%v", op.Type, op.Process, op.Function, op.Value)
	return f.Sum64()
}
