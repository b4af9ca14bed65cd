// Package world implements the core state-space of the linearizability
// search: partial linearizations ("worlds"), the four event transitions
// that fold a history event into a world, the pruner that collapses
// non-branching runs, and the expand-then-prune step the explorer pool
// drives (§3, §4.C–E).
package world

import (
	"fmt"
	"hash/fnv"

	"github.com/ashgrove/linearcheck/history"
	"github.com/ashgrove/linearcheck/model"
)

// World is a partial linearization: a committed prefix (Fixed), the set of
// invocations still awaiting completion (Pending), the model state reached
// by applying Fixed, and a cursor (Index) into the history (§3).
//
// Worlds are immutable once constructed; every transition in this package
// returns a fresh World rather than mutating its receiver.
type World struct {
	Model   model.State
	Fixed   []history.Op
	Pending PendingSet
	Index   int
}

// Initial constructs the starting World for a search: no committed
// invocations, nothing pending, cursor at zero.
func Initial(m model.Model) World {
	return World{
		Model:   m.Init(),
		Fixed:   nil,
		Pending: PendingSet{},
		Index:   0,
	}
}

// Terminal reports whether w has consumed the entire history (§3 invariant
// 5: index == length(history) is a terminal accept state).
func (w World) Terminal(h history.History) bool {
	return w.Index >= h.Len()
}

// Dead reports whether w's model is inconsistent; such worlds must not be
// reinjected into the search (§3 invariant 4).
func (w World) Dead() bool {
	return model.IsDead(w.Model)
}

// advance returns a copy of w with Index incremented, used by transitions
// that don't otherwise alter Fixed/Pending/Model (Ok-absorbed-into-fixed,
// Info).
func (w World) advance() World {
	return World{
		Model:   w.Model,
		Fixed:   w.Fixed,
		Pending: w.Pending,
		Index:   w.Index + 1,
	}
}

// EquivalenceKey is the key used by the Seen cache (§4.G) to deduplicate
// worlds that represent the same point in the search: (model, pending,
// index), per §4.G's definition. The design note in §9 about stripping
// "history-cursor-only fields" refers to the committed path through Fixed,
// not the cursor itself — Fixed is intentionally omitted here since Model
// equality (via model.State.Equal) already captures linearizable
// equivalence of the committed prefix, so retaining Fixed would only
// widen the key and reduce the hit rate without changing correctness. But
// Index must be kept: two worlds sharing the same (model, pending) at
// different cursors are not the same search state, and collapsing them
// would let the Seen cache change the verdict, violating §8's "Seen cache
// soundness" property.
type EquivalenceKey struct {
	model   model.State
	pending PendingSet
	index   int
}

// Key computes w's EquivalenceKey.
func (w World) Key() EquivalenceKey {
	return EquivalenceKey{model: w.Model, pending: w.Pending, index: w.Index}
}

// Equal reports whether two EquivalenceKeys denote the same world
// equivalence class.
func (k EquivalenceKey) Equal(other EquivalenceKey) bool {
	return k.index == other.index && k.pending.Equal(other.pending) && equalModel(k.model, other.model)
}

func equalModel(a, b model.State) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

// Hash returns a hash of the EquivalenceKey suitable for slotting into the
// Seen cache's bounded table (§4.G computes hash(key) & 0xFFFFFF from this).
func (k EquivalenceKey) Hash() uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d|%s|", k.index, model.Describe(k.model))
	_, _ = h.Write(uint64Bytes(k.pending.Hash()))
	return h.Sum64()
}

func uint64Bytes(v uint64) []byte {
	b := make([]byte, 8)
	for i := range b {
		b[i] = byte(v >> (8 * i))
	}
	return b
}
