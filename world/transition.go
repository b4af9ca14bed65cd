package world

import (
	"errors"
	"fmt"

	"github.com/ashgrove/linearcheck/history"
	"github.com/ashgrove/linearcheck/model"
)

// ErrExhausted is wrapped into the error ExpandThenPrune/Invoke return when
// every candidate successor of an Invoke expansion is inconsistent (§7.2,
// §4.D "Special rule"). In the formulation implemented here the empty
// subset (commit nothing, just observe the invoke) is always a member of
// the candidate set and is never itself inconsistent, so this path is a
// defensive implementation of the documented contract rather than a
// reachable outcome for well-formed models.
var ErrExhausted = errors.New("world: every successor of invoke expansion is inconsistent")

// resolvedOp builds the model.Op used to linearize a pending invocation:
// its own invoke value as Input, and whatever value its eventual
// completion (ok/fail/info) carried as Output. Both are looked up directly
// from h at the entry's recorded invokeIndex, regardless of how far the
// committing world's own cursor has advanced — history is given in full
// up front, so an operation's return value is knowable the moment its
// invoke is folded, not only once the cursor reaches it (§6: a model may
// need both the call and return value of an operation, e.g. a register
// read is validated against what it returned, not what it was called
// with).
func resolvedOp(h history.History, e pendingEntry) model.Op {
	return ResolveOp(h, e.invokeIndex)
}

// ResolveOp builds the model.Op a Model would use to linearize the
// invocation at h[invokeIndex]: its own value as Input, and whatever value
// the next event for the same process carries as Output (nil if the
// invocation is still outstanding at the tail). Exported for the Analyzer,
// which needs to re-derive the same op a world's Invoke fold would have
// used in order to explain why a culprit operation could not be linearized
// (§4.J, §6 "inconsistent_transitions").
func ResolveOp(h history.History, invokeIndex int) model.Op {
	invoke := h[invokeIndex]
	var output any
	for i := invokeIndex + 1; i < len(h); i++ {
		if h[i].Process == invoke.Process {
			output = h[i].Value
			break
		}
	}
	return model.Op{Function: invoke.Function, Input: invoke.Value, Output: output}
}

// Invoke folds the Invoke event at w.Index into w, per §4.C–D. It adds the
// event to pending, then enumerates every (subset, permutation) of the
// resulting pending set — equivalently, every "arrangement" (ordered
// selection of zero or more distinct pending invocations) — applying each
// arrangement to the model in declared order. Arrangements whose model
// goes Dead are pruned immediately rather than discarded after the fact
// (§9), which also prunes every longer arrangement that would have
// extended them.
//
// The returned slice always contains at least the empty arrangement (no
// invocations committed, pending unchanged), so ErrExhausted is returned
// only if that invariant is somehow violated by a non-pure Model.
func Invoke(m model.Model, h history.History, w World) ([]World, error) {
	op := h[w.Index]
	pending := w.Pending.Add(op, w.Index)

	var successors []World
	var firstErr *model.Dead

	var walk func(remaining PendingSet, chosen []history.Op, state model.State)
	walk = func(remaining PendingSet, chosen []history.Op, state model.State) {
		fixed := w.Fixed
		if len(chosen) > 0 {
			fixed = append(append(make([]history.Op, 0, len(w.Fixed)+len(chosen)), w.Fixed...), chosen...)
		}
		successors = append(successors, World{
			Model:   state,
			Fixed:   fixed,
			Pending: remaining,
			Index:   w.Index + 1,
		})

		for _, candidate := range remaining.entriesInOrder() {
			next := model.Step(m, state, resolvedOp(h, candidate))
			if dead, ok := model.AsDead(next); ok {
				if firstErr == nil {
					firstErr = dead
				}
				continue
			}
			walk(remaining.Remove(candidate.op.Process), append(append([]history.Op{}, chosen...), candidate.op), next)
		}
	}
	walk(pending, nil, w.Model)

	if len(successors) == 0 {
		if firstErr != nil {
			return nil, fmt.Errorf("%w: %s", ErrExhausted, firstErr.Msg)
		}
		return nil, ErrExhausted
	}
	return successors, nil
}

// Ok folds an Ok event into w (§4.D). If op's process has an outstanding
// invocation in Pending, the completion cannot yet be explained by w and
// the world is dead (ok, false is returned): every surviving world must
// have already decided, via some earlier Invoke arrangement, whether this
// invocation happened — it cannot still be undecided once its own return
// has been observed (the real-time ordering constraint). Otherwise op must
// already have been absorbed into Fixed by that earlier arrangement, and w
// simply advances.
func Ok(w World, op history.Op) (World, bool) {
	if w.Pending.Contains(op.Process) {
		return World{}, false
	}
	return w.advance(), true
}

// Fail folds a Fail event into w (§4.D). If op's process has an
// outstanding invocation, this linearization has it not occur: it is
// removed from Pending and w advances. Otherwise it was already
// linearized (committed as though it happened) and the world is dead,
// since Fail guarantees the operation never took effect.
func Fail(w World, op history.Op) (World, bool) {
	if !w.Pending.Contains(op.Process) {
		return World{}, false
	}
	return World{
		Model:   w.Model,
		Fixed:   w.Fixed,
		Pending: w.Pending.Remove(op.Process),
		Index:   w.Index + 1,
	}, true
}

// Info folds an Info event into w (§4.D). Info operations model
// maybe-happened outcomes the search may neither commit nor refute at the
// Info event itself: folding one only advances the cursor. An Invoke
// arrangement remains free to commit such an invocation later (or at its
// own Invoke fold), exactly as for any other pending op — see
// TestScenarioInfoTolerated, which relies on this to keep the write
// eligible for commit even though its own completion is Info.
func Info(w World) World {
	return w.advance()
}

// stepNonInvoke folds a single non-Invoke event, dispatching to Ok/Fail/Info.
func stepNonInvoke(w World, op history.Op) (World, bool) {
	switch op.Type {
	case history.Ok:
		return Ok(w, op)
	case history.Fail:
		return Fail(w, op)
	case history.Info:
		return Info(w), true
	default:
		panic(fmt.Sprintf("world: stepNonInvoke: unexpected event type %v", op.Type))
	}
}
