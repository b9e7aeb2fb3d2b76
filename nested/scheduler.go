// Copyright ©2016 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nested

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Scheduler is C8, the master/worker parallel scheduler. It owns the
// stack, the evidence accumulator and the posterior reservoir, and
// drives nprocs-1 worker goroutines through the collect/promote/dispatch
// loop described in §4.8.
//
// The design mirrors optimize's minimizeGlobal: one distributor (here,
// the goroutine calling Run) hands work to a fixed worker pool over
// per-worker channels and collects results over a single shared results
// channel, with shutdown driven by closing the work channels rather
// than a sentinel value. Where minimizeGlobal synchronizes worker
// lifecycle with a bespoke WaitGroup and error channel, Run uses
// errgroup.Group for the worker goroutines. Every error a worker's Sample
// returns, whatever its kind, is sent back to the master with the result
// and handled as a CallbackFailure (absorb); no Sample error aborts the
// run. The errgroup only reports the context error a worker sees when
// ctx is canceled.
type Scheduler struct {
	cfg       *Config
	model     *ModelEvaluator
	newSampler func() ContourSampler

	stack     *Stack
	evidence  *Evidence
	reservoir *Reservoir
	feedback  *Feedback
	rng       *rand.Rand

	meanCalls  float64
	totalCalls int

	onCheckpoint func(promotions int) // called after every promotion; nil disables checkpointing
	deadWriter   io.Writer            // dead-point stream (SPEC_FULL.md supplemental feature 2); nil disables it
}

// NewScheduler constructs a Scheduler from validated state. st is either
// a fresh State (built by the caller from cfg via NewStack/NewEvidence/
// NewReservoir) or one produced by LoadCheckpoint.
func NewScheduler(cfg *Config, model *ModelEvaluator, newSampler func() ContourSampler, st *State, feedback *Feedback) *Scheduler {
	rng := newRNG(cfg.Seed)
	return &Scheduler{
		cfg:        cfg,
		model:      model,
		newSampler: newSampler,
		stack:      st.Stack,
		evidence:   st.Evidence,
		reservoir:  st.Reservoir,
		feedback:   feedback,
		rng:        rng,
		meanCalls:  st.MeanCalls,
		totalCalls: st.TotalCalls,
	}
}

// OnCheckpoint registers a callback invoked after every promotion with
// the running promotion count, so the caller can checkpoint every
// UpdateFiles promotions (§6) without the scheduler knowing about files.
func (s *Scheduler) OnCheckpoint(fn func(promotions int)) {
	s.onCheckpoint = fn
}

// SetDeadWriter enables dead-point stream recording: every promotion
// appends one row to w (SPEC_FULL.md supplemental feature 2). A nil w
// disables it, which is also the default.
func (s *Scheduler) SetDeadWriter(w io.Writer) {
	s.deadWriter = w
}

// newRNG returns a *rand.Rand seeded from seed, or from a
// non-reproducible process source when seed is zero (§6's seed
// argument), matching the Source-field-defaults-to-global idiom used
// throughout the teacher's distuv package.
func newRNG(seed int64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewSource(rand.Int63()))
	}
	return rand.New(rand.NewSource(seed))
}

// workerResult is what a worker goroutine reports back to the master:
// whatever Sample returned (baby may be nil when err is set; absorb
// replaces it with a -Inf placeholder) and which worker produced it, so
// the master can mark that worker idle again.
type workerResult struct {
	workerID int
	baby     *Point
	err      error
}

// generateSeed implements §4.5: it picks the seed body that will supply
// the new chain's starting coordinates, reserving daughter slot d as the
// mother m's outstanding daughter.
//
// §4.5 step 6 reads "overwrite the drawn point's l1 and daughter, return
// as seed" — taken literally this would let two stack slots (m and the
// drawn body, when they differ) both carry daughter == d, violating the
// invariant that every Gestating slot has exactly one mother. This
// implementation resolves the ambiguity (recorded in DESIGN.md) by
// applying that overwrite only to the returned seed copy: the seed
// carries L1 = LBound and Daughter = HasDaughter(d) so the worker and the
// eventual Collect step can find the target slot, while the drawn body's
// own entry in the stack is left untouched. Only m's slot is mutated in
// the stack, preserving the one-mother invariant regardless of whether
// the drawn body happens to equal m.
func (s *Scheduler) generateSeed(m int) (*Point, error) {
	mother := s.stack.Read(m)
	lBound := mother.L0

	var body *Point
	limit := 10 * s.stack.Cap()
	for try := 0; try < limit && body == nil; try++ {
		i := s.rng.Intn(s.stack.Cap())
		p := s.stack.Read(i)
		if p.Daughter.Kind == Blank {
			continue
		}
		// lBound == -Inf only happens when the mother itself is a
		// CallbackFailure placeholder (§7): its L1 <= lBound filter would
		// then reject every ordinarily-seeded point, since their L1 is
		// virtually never exactly -Inf, stalling the run on a single
		// likelihood error. Any live point trivially qualifies as "above"
		// a -Inf contour, so the filter is skipped in that case.
		if !math.IsInf(lBound, -1) && !(p.L0 > lBound && p.L1 <= lBound) {
			continue
		}
		body = &p
	}
	if body == nil {
		return nil, ErrNoSeed
	}

	d, ok := s.stack.ClaimBlank()
	if !ok {
		return nil, ErrStackFull
	}

	mother.Daughter = DaughterStatus{Kind: HasDaughter, Index: d}
	s.stack.Write(m, &mother)

	gestating := s.stack.Read(d)
	gestating.Daughter = DaughterStatus{Kind: Gestating}
	s.stack.Write(d, &gestating)

	seed := body.clone()
	seed.L1 = lBound
	seed.Daughter = DaughterStatus{Kind: HasDaughter, Index: d}
	seed.Repeats = s.cfg.BoostPosterior
	return seed, nil
}

// RunResult summarizes a completed (or stopped) run.
type RunResult struct {
	LogZ       float64
	SigmaLogZ  float64
	NDead      int
	TotalCalls int
	MeanCalls  float64
	Reservoir  *Reservoir
}

// Run drives the master loop to termination (or until ctx is canceled).
// The stack must already hold an initial live population (via
// Stack.GenerateInitial or a resumed checkpoint) before Run is called.
func (s *Scheduler) Run(ctx context.Context) (*RunResult, error) {
	nw := s.cfg.NumWorkers
	g, gctx := errgroup.WithContext(ctx)

	inboxes := make([]chan *Point, nw)
	results := make(chan workerResult, nw)
	idle := make([]bool, nw)
	// pending[i] is the daughter slot index of the seed currently
	// outstanding on worker i, tracked by the master rather than trusted
	// from the worker's reply so a failed Sample (baby == nil) still
	// resolves to the right slot.
	pending := make([]int, nw)

	for i := 0; i < nw; i++ {
		inboxes[i] = make(chan *Point)
		idx := i
		sampler := s.newSampler()
		g.Go(func() error {
			for seed := range inboxes[idx] {
				baby, err := sampler.Sample(gctx, seed, s.model)
				select {
				case results <- workerResult{workerID: idx, baby: baby, err: err}:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}

	busy := 0
	abort := func(err error) (*RunResult, error) {
		for i := range inboxes {
			close(inboxes[i])
		}
		g.Wait()
		return nil, err
	}

	// Initial dispatch: hand every worker a seed before entering the
	// collect/promote/dispatch loop (§4.8).
	for i := 0; i < nw; i++ {
		m, ok := s.stack.lowestWaitingOnly()
		if !ok {
			return abort(configErrorf("no waiting live point available for initial dispatch"))
		}
		seed, err := s.generateSeed(m)
		if err != nil {
			return abort(configErrorf("num_workers (%d) leaves no room for nlive (%d) live points", nw, s.cfg.NLive))
		}
		pending[i] = seed.Daughter.Index
		inboxes[i] <- seed
		busy++
	}

	for !s.evidence.Done {
		select {
		case <-ctx.Done():
			return abort(ctx.Err())
		default:
		}

		promoted := s.collectAndPromote(results, idle, pending, &busy)

		if s.evidence.Done {
			break
		}

		s.dispatch(inboxes, idle, pending, &busy)

		if !promoted {
			runtime.Gosched()
		}
	}

	// Shutdown: drain the one outstanding reply from every still-busy
	// worker before closing the work channels (§4.8's shutdown protocol).
	for busy > 0 {
		r := <-results
		s.absorb(r, pending[r.workerID])
		idle[r.workerID] = true
		busy--
	}
	for i := range inboxes {
		close(inboxes[i])
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &RunResult{
		LogZ:       s.evidence.LogZ,
		SigmaLogZ:  s.evidence.Sigma(),
		NDead:      s.evidence.NDead,
		TotalCalls: s.totalCalls,
		MeanCalls:  s.meanCalls,
		Reservoir:  s.reservoir,
	}, nil
}

// collectAndPromote is one Collect+Promote pass (§4.8): it drains every
// result currently waiting on the results channel without blocking (the
// master's non-blocking probe), writes each baby into its reserved slot,
// then repeatedly promotes the lowest live point while its daughter has
// already arrived. It reports whether any promotion happened, so the
// caller can decide whether to yield.
func (s *Scheduler) collectAndPromote(results <-chan workerResult, idle []bool, pending []int, busy *int) bool {
	draining := true
	for draining {
		select {
		case r := <-results:
			s.absorb(r, pending[r.workerID])
			idle[r.workerID] = true
			*busy--
		default:
			draining = false
		}
	}

	promoted := false
	for {
		m, ok := s.stack.LowestWaiting()
		if !ok {
			break
		}
		late := s.stack.Read(m)
		if late.Daughter.Kind != HasDaughter {
			break // lowest live point hasn't launched a daughter yet
		}
		babyIdx := late.Daughter.Index
		baby := s.stack.Read(babyIdx)
		if baby.Daughter.Kind != Waiting {
			break // daughter still Gestating
		}

		nlive := s.stack.NLive()
		logw := deadWeight(nlive)
		s.reservoir.Offer(PosteriorRow{
			LogWeight: late.L0 + logw,
			LogL:      late.L0,
			Physical:  append([]float64(nil), late.Physical...),
			Derived:   append([]float64(nil), late.Derived...),
		}, s.evidence.LogZ)

		s.stack.Blank(m)
		s.evidence.Update(late.L0, nlive)
		s.evidence.RefreshLiveMean(s.stack)

		if s.deadWriter != nil {
			fmt.Fprintf(s.deadWriter, "%.8e %.8e %d", late.L0, late.L1, s.evidence.NDead)
			for _, v := range late.Physical {
				fmt.Fprintf(s.deadWriter, " %.8e", v)
			}
			for _, v := range late.Derived {
				fmt.Fprintf(s.deadWriter, " %.8e", v)
			}
			fmt.Fprintln(s.deadWriter)
		}

		s.feedback.ReportProgress(nlive, s.evidence, s.meanCalls, s.totalCalls)
		if s.onCheckpoint != nil {
			s.onCheckpoint(s.evidence.NDead)
		}

		promoted = true
		if s.evidence.Done {
			break
		}
	}
	return promoted
}

// absorb writes a worker's baby into slot idx (the daughter index the
// master dispatched the seed to, not whatever the worker's reply claims)
// and folds its evaluation count into the running mean (§4.10's
// mean_calls), or synthesizes a -Inf placeholder if the worker reported a
// non-recoverable CallbackFailure (§7: such a point is discarded from
// promotion, never retried, but its slot must still be filled to unblock
// its mother).
func (s *Scheduler) absorb(r workerResult, idx int) {
	baby := r.baby
	if baby == nil || r.err != nil {
		// Reuse the reserved slot's own point so the placeholder keeps
		// the stack's nDims/nDerived shape.
		placeholder := s.stack.Read(idx)
		placeholder.blank()
		if r.baby != nil {
			placeholder.NLike = r.baby.NLike
		}
		baby = &placeholder
	}

	delta := baby.NLike
	s.totalCalls += delta
	if s.totalCalls == delta {
		s.meanCalls = float64(delta)
	} else {
		s.meanCalls += (float64(delta) - s.meanCalls) / float64(s.totalCalls)
	}

	baby.Daughter = DaughterStatus{Kind: Waiting}
	s.stack.Write(idx, baby)
}

// dispatch hands a fresh seed to every idle worker, stopping as soon as
// no eligible mother or seed body can be found (§4.8: "stop dispatching
// this iteration" rather than blocking or erroring).
func (s *Scheduler) dispatch(inboxes []chan *Point, idle []bool, pending []int, busy *int) {
	for i, isIdle := range idle {
		if !isIdle {
			continue
		}
		m, ok := s.stack.lowestWaitingOnly()
		if !ok {
			break
		}
		seed, err := s.generateSeed(m)
		if err != nil {
			s.feedback.ReportStall(s.evidence.NDead)
			break
		}
		pending[i] = seed.Daughter.Index
		inboxes[i] <- seed
		idle[i] = false
		*busy++
	}
}
