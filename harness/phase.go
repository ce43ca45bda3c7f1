package harness

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/weiihann/kvbench/keydist"
	"github.com/weiihann/kvbench/store"
	"github.com/weiihann/kvbench/workload"
	"golang.org/x/time/rate"
)

// PhasePlan is the amount of work in one phase.
type PhasePlan struct {
	TotalOps uint64
	Workers  int
}

// PhaseOptions tunes how a phase issues its operations.
type PhaseOptions struct {
	// Seed derives every worker's private random sources.
	Seed int64
	// TargetOpsPerSec throttles the phase as a whole. Zero disables it.
	TargetOpsPerSec float64
}

// Partition splits total across workers: each gets total/workers and the
// first total%workers get one more.
func Partition(total uint64, workers int) []uint64 {
	if workers < 1 {
		return nil
	}

	n := uint64(workers)
	base, rem := total/n, total%n

	out := make([]uint64, workers)
	for i := range out {
		out[i] = base
		if uint64(i) < rem {
			out[i]++
		}
	}

	return out
}

// workerSeed spreads a base seed over workers with a splitmix64 step so
// neighbouring workers get unrelated streams.
func workerSeed(base int64, stream uint64) int64 {
	z := uint64(base) + (stream+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb

	return int64(z ^ (z >> 31))
}

type phaseWorker struct {
	ops     uint64
	mixRand *rand.Rand
	keys    keydist.Sampler
	limiter *rate.Limiter
	stats   PhaseStats
}

func (w *phaseWorker) run(st store.Store, mix workload.Spec) {
	var stats PhaseStats

	for i := uint64(0); i < w.ops; i++ {
		if w.limiter != nil {
			// Background never cancels, so Wait only errors on a zero burst.
			_ = w.limiter.Wait(context.Background())
		}

		action := mix.Choose(w.mixRand.Float64())
		key := w.keys.Next()

		switch action {
		case workload.ActionRead:
			_, _ = st.Get(key)
			stats.Reads++
		case workload.ActionUpdate:
			st.Insert(key, store.NewValue(key))
			stats.Updates++
		case workload.ActionInsert:
			st.Insert(key, store.NewValue(key))
			stats.Inserts++
		default:
			// Scans are not implemented; they count as done work.
			stats.Scans++
		}
	}

	w.stats = stats
}

// RunPhase executes plan against st and returns the wall-clock time from
// just before the workers are spawned until the last one has finished.
// Every worker owns its samplers and limiter; the store is the only shared
// state. A panicking worker takes the process down with it.
func RunPhase(
	st store.Store,
	mix workload.Spec,
	dist keydist.Config,
	plan PhasePlan,
	opts PhaseOptions,
) (time.Duration, PhaseStats, error) {
	if plan.Workers < 1 {
		return 0, PhaseStats{}, fmt.Errorf("%w (got %d)", ErrInvalidThreads, plan.Workers)
	}

	counts := Partition(plan.TotalOps, plan.Workers)
	workers := make([]*phaseWorker, plan.Workers)

	for i := range workers {
		keys, err := keydist.New(dist, workerSeed(opts.Seed, uint64(2*i+1)))
		if err != nil {
			return 0, PhaseStats{}, fmt.Errorf("worker %d sampler: %w", i, err)
		}

		w := &phaseWorker{
			ops:     counts[i],
			mixRand: rand.New(rand.NewSource(workerSeed(opts.Seed, uint64(2*i)))),
			keys:    keys,
		}
		if opts.TargetOpsPerSec > 0 {
			w.limiter = rate.NewLimiter(
				rate.Limit(opts.TargetOpsPerSec/float64(plan.Workers)), 1,
			)
		}

		workers[i] = w
	}

	var wg sync.WaitGroup

	start := time.Now()

	for _, w := range workers {
		wg.Add(1)

		go func(w *phaseWorker) {
			defer wg.Done()
			w.run(st, mix)
		}(w)
	}

	wg.Wait()
	elapsed := time.Since(start)

	var total PhaseStats
	for _, w := range workers {
		total.add(w.stats)
	}

	return elapsed, total, nil
}
