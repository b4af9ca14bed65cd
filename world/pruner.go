package world

import (
	"github.com/ashgrove/linearcheck/history"
	"github.com/ashgrove/linearcheck/model"
)

// Prune deterministically advances w through non-branching events: as long
// as the next history event is Ok, Fail, or Info, it applies the
// corresponding transition in place. It stops when the next event is
// Invoke or the history is exhausted. Pruning exists to collapse long
// non-branching runs before paying for hashing and queueing (§4.E).
//
// ok is false if w went dead partway through the run (an unmatched Ok or
// an already-linearized Fail).
func Prune(h history.History, w World) (pruned World, ok bool) {
	for w.Index < h.Len() {
		next := h[w.Index]
		if next.Type == history.Invoke {
			break
		}
		w, ok = stepNonInvoke(w, next)
		if !ok {
			return World{}, false
		}
	}
	return w, true
}

// Expand returns w's raw successors before pruning: just w itself if w is
// terminal or its next event isn't Invoke, or every (subset, permutation)
// arrangement produced by folding the Invoke event otherwise (§4.D). Each
// returned world is itself a fully-reached, consistent point in the
// search — callers that track the deepest index reached (package deepest)
// must record these before pruning: Prune can kill a raw successor while
// consuming a *later* event, but the raw successor's own index was validly
// reached and is still a legitimate high-water mark (§4.J).
func Expand(m model.Model, h history.History, w World) ([]World, error) {
	if w.Terminal(h) {
		return []World{w}, nil
	}

	next := h[w.Index]
	if next.Type != history.Invoke {
		return []World{w}, nil
	}

	return Invoke(m, h, w)
}

// ExpandThenPrune implements §4.D′: for a world whose next event is
// Invoke, it generates every successor world (Invoke) and prunes each. For
// a world whose next event is not Invoke (or the history is exhausted),
// pruning alone determines the (at most one) surviving world.
func ExpandThenPrune(m model.Model, h history.History, w World) ([]World, error) {
	raw, err := Expand(m, h, w)
	if err != nil {
		return nil, err
	}

	out := make([]World, 0, len(raw))
	for _, s := range raw {
		pruned, ok := Prune(h, s)
		if !ok {
			continue
		}
		out = append(out, pruned)
	}
	return out, nil
}
