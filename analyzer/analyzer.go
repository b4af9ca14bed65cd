// Package analyzer drives a search end to end: it seeds the frontier with
// the initial world, runs the explorer pool to completion, and turns the
// Deepest tracker's result into a verdict a caller can act on (§4.J).
package analyzer

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/ashgrove/linearcheck/deepest"
	"github.com/ashgrove/linearcheck/explorer"
	"github.com/ashgrove/linearcheck/frontier"
	"github.com/ashgrove/linearcheck/history"
	"github.com/ashgrove/linearcheck/internal/obs"
	"github.com/ashgrove/linearcheck/model"
	"github.com/ashgrove/linearcheck/seen"
	"github.com/ashgrove/linearcheck/world"
)

// Options configures a run. The zero value is not meaningful; use
// DefaultOptions and override individual fields.
type Options struct {
	// Workers is the number of explorer goroutines. §6 defaults this to
	// CPU cores + 2.
	Workers int
	// SeenCacheBits sizes the Seen cache at 2^SeenCacheBits entries,
	// capped at seen.MaxBits (§5 "Seen cache ≤ 2²⁴ entries").
	SeenCacheBits uint
	// ReporterPeriod is how often a diagnostic progress line is logged.
	// Zero disables the reporter entirely; its absence must not affect
	// correctness (§9 "Reporter thread").
	ReporterPeriod time.Duration
}

// DefaultOptions returns the defaults named in §6: worker count of CPU
// cores + 2, a 16-bit (65536-entry) Seen cache, and a 5s reporter period.
func DefaultOptions() Options {
	return Options{
		Workers:        runtime.NumCPU() + 2,
		SeenCacheBits:  16,
		ReporterPeriod: 5 * time.Second,
	}
}

// Transition pairs a last-consistent world's model state with the message
// produced by stepping it with the culprit operation, for an invalid
// verdict's diagnostics (§6 "inconsistent_transitions").
type Transition struct {
	Model string
	Msg   string
}

// Report is the outcome of Analyze (§6 "Analysis report").
type Report struct {
	Valid bool

	// LinearizablePrefix is the longest prefix of the history admitting a
	// linearization: the full history when Valid, otherwise
	// history[:k] where k is the index of InconsistentOp.
	LinearizablePrefix history.History

	// Worlds holds every distinct world (by equivalence key) that
	// reached the end of history. Populated only when Valid.
	Worlds []world.World

	// InconsistentOp is history[k], the operation that could not be
	// reconciled by any explored world. Populated only when !Valid.
	InconsistentOp history.Op

	// LastConsistentWorlds holds every distinct world (by equivalence
	// key) that reached index k without going dead. Populated only when
	// !Valid.
	LastConsistentWorlds []world.World

	// InconsistentTransitions explains, for each last-consistent world,
	// why InconsistentOp could not be folded into it.
	InconsistentTransitions []Transition
}

// LinearizablePrefixAndWorlds runs a full search and returns just the
// prefix and the terminal worlds it admits (§4.J's first entry point).
func LinearizablePrefixAndWorlds(ctx context.Context, m model.Model, h history.History, opts Options) (history.History, []world.World, error) {
	rep, err := Analyze(ctx, m, h, opts)
	if err != nil {
		return nil, nil, err
	}
	if rep.Valid {
		return rep.LinearizablePrefix, rep.Worlds, nil
	}
	return rep.LinearizablePrefix, rep.LastConsistentWorlds, nil
}

// Analyze runs a full search against h under m and classifies the result
// (§4.J's second entry point). It blocks until the search finishes, is
// exhausted, or ctx is canceled.
func Analyze(ctx context.Context, m model.Model, h history.History, opts Options) (Report, error) {
	if h.Len() == 0 {
		return Report{
			Valid:              true,
			LinearizablePrefix: h,
			Worlds:             []world.World{world.Initial(m)},
		}, nil
	}

	f := frontier.New()
	sc := seen.New(opts.SeenCacheBits)
	d := &deepest.Tracker{}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU() + 2
	}

	pool := explorer.New(m, h, f, sc, d, workers)
	pool.Seed(world.Initial(m))

	reporterCtx, stopReporter := context.WithCancel(ctx)
	var wg sync.WaitGroup
	if opts.ReporterPeriod > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			report(reporterCtx, pool, f, sc, opts.ReporterPeriod)
		}()
	}

	err := pool.Run(ctx)
	stopReporter()
	wg.Wait()
	if err != nil {
		return Report{}, err
	}

	worlds, index, found := d.Worlds()
	if !found {
		return Report{}, fmt.Errorf("analyzer: search produced no worlds at all")
	}
	worlds = dedupe(worlds)

	if index >= h.Len() {
		return Report{
			Valid:              true,
			LinearizablePrefix: h,
			Worlds:             worlds,
		}, nil
	}

	culprit := h[index]
	transitions := make([]Transition, 0, len(worlds))
	for _, w := range worlds {
		transitions = append(transitions, Transition{
			Model: model.Describe(w.Model),
			Msg:   explain(m, h, w, culprit, index),
		})
	}

	return Report{
		Valid:                   false,
		LinearizablePrefix:      h[:index],
		InconsistentOp:          culprit,
		LastConsistentWorlds:    worlds,
		InconsistentTransitions: transitions,
	}, nil
}

// report logs a periodic diagnostic line until ctx is canceled. It never
// affects the search's outcome (§9 "Reporter thread is observational").
func report(ctx context.Context, pool *explorer.Pool, f *frontier.Frontier, sc *seen.Cache, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			obs.Log.Info().
				Float64("visited_per_sec", pool.Visited.Rate()).
				Float64("skipped_per_sec", pool.Skipped.Rate()).
				Int("frontier_len", f.Len()).
				Int("seen_len", sc.Len()).
				Msg("analyzer: progress")
		}
	}
}

// dedupe collapses worlds to one representative per equivalence key,
// preferring the first encountered (§4.J step 5), and sorts the result by
// the same key's hash for a stable report ordering across runs.
//
// EquivalenceKey embeds a PendingSet, which holds a slice — not a
// comparable type — so it cannot be a Go map key directly. Buckets are
// keyed on the key's Hash instead, with an Equal check inside each bucket
// to break hash collisions.
func dedupe(worlds []world.World) []world.World {
	buckets := make(map[uint64][]world.World, len(worlds))
	out := make([]world.World, 0, len(worlds))
	for _, w := range worlds {
		key := w.Key()
		h := key.Hash()

		duplicate := false
		for _, existing := range buckets[h] {
			if existing.Key().Equal(key) {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}

		buckets[h] = append(buckets[h], w)
		out = append(out, w)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Key().Hash() < out[j].Key().Hash()
	})
	return out
}

// explain reproduces the model.Step a last-consistent world w would have
// needed to fold culprit (at history index k) and describes why it
// couldn't: either the model rejected it outright, or w still had
// culprit's process outstanding when a real-time ordering constraint
// (culprit being an ok/fail) ruled out any further linearization.
func explain(m model.Model, h history.History, w world.World, culprit history.Op, k int) string {
	invokeIndex := -1
	for i := k; i >= 0; i-- {
		if h[i].Type == history.Invoke && h[i].Process == culprit.Process {
			invokeIndex = i
			break
		}
	}
	if invokeIndex == -1 {
		return fmt.Sprintf("no invocation found for process %v", culprit.Process)
	}

	op := world.ResolveOp(h, invokeIndex)
	next := model.Step(m, w.Model, op)
	if dead, ok := model.AsDead(next); ok {
		return dead.Msg
	}

	switch culprit.Type {
	case history.Ok:
		return fmt.Sprintf("process %v's %s was still pending when its own completion was observed: its linearization point must be chosen no later than its own ok", culprit.Process, culprit.Function)
	case history.Fail:
		return fmt.Sprintf("process %v's %s was already linearized, but a fail guarantees it never took effect", culprit.Process, culprit.Function)
	default:
		return fmt.Sprintf("no arrangement of the pending set admitted process %v's %s", culprit.Process, culprit.Function)
	}
}
