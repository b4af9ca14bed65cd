// Package explorer implements the parallel worker pool that drains the
// frontier, applying Expand-then-prune to each world and feeding survivors
// back in, until the history is accepted or the search is exhausted
// (§4.I). Its lifecycle — a cancelable context shared by all workers and a
// running flag that only ever goes from true to false — is adapted from
// the teacher's microbatch.Batcher, fanning worker goroutines out over
// golang.org/x/sync/errgroup instead of batching jobs.
package explorer

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ashgrove/linearcheck/deepest"
	"github.com/ashgrove/linearcheck/frontier"
	"github.com/ashgrove/linearcheck/history"
	"github.com/ashgrove/linearcheck/internal/obs"
	"github.com/ashgrove/linearcheck/model"
	"github.com/ashgrove/linearcheck/ratemeter"
	"github.com/ashgrove/linearcheck/seen"
	"github.com/ashgrove/linearcheck/world"
	"golang.org/x/sync/errgroup"
)

// pollInterval is how long an idle worker blocks on Frontier.Poll before
// re-checking whether the search has finished (§4.I step 1, "~10ms").
const pollInterval = 10 * time.Millisecond

// Pool is a set of worker goroutines cooperatively exploring one history
// against one model, sharing a Frontier, Seen cache, and Deepest tracker.
type Pool struct {
	Model    model.Model
	History  history.History
	Frontier *frontier.Frontier
	Seen     *seen.Cache
	Deepest  *deepest.Tracker
	Workers  int

	running      atomic.Bool
	extantWorlds atomic.Int64
	Visited      *ratemeter.Meter
	Skipped      *ratemeter.Meter
}

// New constructs a Pool with fresh visited/skipped rate meters. The caller
// must still Seed it with the initial world and call Run.
func New(m model.Model, h history.History, f *frontier.Frontier, sc *seen.Cache, d *deepest.Tracker, workers int) *Pool {
	p := &Pool{
		Model:    m,
		History:  h,
		Frontier: f,
		Seen:     sc,
		Deepest:  d,
		Workers:  workers,
		Visited:  ratemeter.New(time.Second, 64),
		Skipped:  ratemeter.New(time.Second, 64),
	}
	p.running.Store(true)
	return p
}

// Seed registers w as outstanding work and publishes it to the Frontier.
// Per §5's atomicity rule, extantWorlds is incremented before the world is
// published, never after — otherwise a worker could observe extantWorlds
// at zero and terminate the search before w is even visible to poll.
func (p *Pool) Seed(w world.World) {
	p.extantWorlds.Add(1)
	p.Frontier.Put(w)
}

// Run blocks until every worker has exited: either the history was
// accepted (some world reached the end), the search was exhausted
// (extantWorlds hit zero without acceptance), or ctx was canceled. It
// returns the first error any worker encountered (panics are recovered and
// converted to errors — §7.3).
func (p *Pool) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < p.Workers; i++ {
		id := i
		g.Go(func() error { return p.worker(ctx, id) })
	}
	err := g.Wait()
	p.running.Store(false)
	p.Frontier.Close()
	return err
}

// Accepted reports whether the search stopped because some world reached
// the end of history, as opposed to exhausting the frontier.
func (p *Pool) Accepted() bool {
	worlds, index, found := p.Deepest.Worlds()
	return found && index >= p.History.Len() && len(worlds) > 0
}

func (p *Pool) worker(ctx context.Context, id int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			obs.Log.Error().Int("worker", id).Interface("panic", r).Msg("explorer: worker recovered from panic")
			err = fmt.Errorf("explorer: worker %d panicked: %v", id, r)
		}
	}()

	for p.running.Load() && p.extantWorlds.Load() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		w, ok := p.Frontier.Poll(pollInterval)
		if !ok {
			continue
		}

		if err := p.step(w); err != nil {
			return err
		}
	}
	return nil
}

// step implements one iteration of §4.I's worker loop body for a single
// popped world.
//
// Deepest is updated twice: once on each raw Invoke-fold successor (before
// pruning), and again on each surviving pruned world. The first pass
// matters because Prune can kill a raw successor while consuming an event
// *after* its own index (e.g. an ok/fail that contradicts it) — that raw
// successor's own index was still validly reached and must not be lost
// from the longest-prefix accounting just because pruning never got past
// it (§4.J).
func (p *Pool) step(w world.World) error {
	raw, err := world.Expand(p.Model, p.History, w)
	if err != nil {
		return fmt.Errorf("explorer: %w", err)
	}

	for _, s := range raw {
		p.Deepest.Update(s)
	}

	for _, s := range raw {
		pruned, ok := world.Prune(p.History, s)
		if !ok {
			continue
		}

		p.Visited.Mark()
		p.Deepest.Update(pruned)

		if pruned.Terminal(p.History) {
			p.running.Store(false)
		}

		if p.Seen.Seen(pruned) {
			p.Skipped.Mark()
			continue
		}

		p.extantWorlds.Add(1)
		p.Frontier.Put(pruned)
	}

	p.extantWorlds.Add(-1)
	return nil
}
