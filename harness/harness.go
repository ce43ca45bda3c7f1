package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/weiihann/kvbench/keydist"
	"github.com/weiihann/kvbench/progress"
	"github.com/weiihann/kvbench/store"
	"github.com/weiihann/kvbench/workload"
)

// WarmupFraction is the share of OperationCount replayed, unmeasured,
// before the measured phase.
const WarmupFraction = 0.05

// DefaultSettleDelay is the pause between warmup and measurement.
const DefaultSettleDelay = 200 * time.Millisecond

// ErrInvalidThreads is returned when fewer than one worker is requested.
var ErrInvalidThreads = errors.New("threads must be >= 1")

// Config holds the parameters of a benchmark run.
type Config struct {
	Threads         int
	Workload        workload.Selector
	RecordCount     uint64
	OperationCount  uint64
	Distribution    keydist.Kind
	Skew            float64
	Store           string
	LoadThreads     int
	TargetOpsPerSec float64
	Seed            int64
	SettleDelay     time.Duration
	Progress        bool
}

// DefaultConfig returns the stock benchmark parameters.
func DefaultConfig() Config {
	return Config{
		Threads:        4,
		Workload:       workload.SelectAll,
		RecordCount:    60_000_000,
		OperationCount: 200_000_000,
		Distribution:   keydist.Zipfian,
		Skew:           keydist.DefaultSkew,
		Store:          store.KindSharded,
		LoadThreads:    1,
		SettleDelay:    DefaultSettleDelay,
		Progress:       true,
	}
}

// KeyConfig returns the key distribution shared by warmup and measurement.
func (c Config) KeyConfig() keydist.Config {
	return keydist.Config{
		Kind:       c.Distribution,
		Skew:       c.Skew,
		DomainSize: c.RecordCount,
	}
}

// WarmupOps returns the warmup operation count, rounded to nearest.
func (c Config) WarmupOps() uint64 {
	return uint64(math.Round(float64(c.OperationCount) * WarmupFraction))
}

// Validate reports configuration errors. It runs before any store exists.
func (c Config) Validate() error {
	if c.Threads < 1 {
		return fmt.Errorf("%w (got %d)", ErrInvalidThreads, c.Threads)
	}
	if c.LoadThreads < 0 {
		return fmt.Errorf("load threads must be >= 0 (got %d)", c.LoadThreads)
	}
	if workload.SpecsFor(c.Workload) == nil {
		return fmt.Errorf("unknown workload selector %q", c.Workload)
	}
	if err := c.KeyConfig().Validate(); err != nil {
		return fmt.Errorf("key distribution: %w", err)
	}
	if err := store.Check(c.Store); err != nil {
		return err
	}
	if c.TargetOpsPerSec < 0 || math.IsNaN(c.TargetOpsPerSec) {
		return fmt.Errorf("target must be >= 0 (got %v)", c.TargetOpsPerSec)
	}
	if c.SettleDelay < 0 {
		return fmt.Errorf("settle delay must be >= 0 (got %v)", c.SettleDelay)
	}

	return nil
}

// StoreFactory builds an empty store for one workload.
type StoreFactory func(kind string, hint store.Hint) (store.Store, error)

// Runner sequences load, warmup and measurement for each selected workload.
type Runner struct {
	Logger *slog.Logger
	// Out receives the per-workload progress lines.
	Out io.Writer
	// ProgressOut receives the load progress bar.
	ProgressOut io.Writer
	NewStore    StoreFactory
}

// NewRunner creates a Runner writing result lines to out and building
// stores with store.New.
func NewRunner(logger *slog.Logger, out io.Writer) *Runner {
	return &Runner{
		Logger:      logger,
		Out:         out,
		ProgressOut: os.Stderr,
		NewStore:    store.New,
	}
}

// RunAll runs every workload selected by cfg, one after another, and
// returns their results in registry order. The context is consulted only
// between workloads; a started phase always runs to completion.
func (r *Runner) RunAll(ctx context.Context, cfg Config) ([]Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	specs := workload.SpecsFor(cfg.Workload)
	results := make([]Result, 0, len(specs))

	for i, spec := range specs {
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("before %s: %w", spec.Name, err)
		}

		result, err := r.runWorkload(ctx, cfg, spec, seed+int64(i)*2)
		if err != nil {
			return results, fmt.Errorf("%s: %w", spec.Name, err)
		}

		results = append(results, result)
	}

	return results, nil
}

func (r *Runner) runWorkload(
	ctx context.Context,
	cfg Config,
	spec workload.Spec,
	seed int64,
) (Result, error) {
	logger := r.Logger.With(slog.String("workload", spec.Name))

	writeRunning(r.Out, cfg, spec)

	st, err := r.NewStore(cfg.Store, store.Hint{Records: int(cfg.RecordCount)})
	if err != nil {
		return Result{}, fmt.Errorf("create store: %w", err)
	}
	defer r.closeStore(ctx, logger, st)

	loadElapsed, err := r.load(ctx, logger, cfg, st)
	if err != nil {
		return Result{}, fmt.Errorf("load: %w", err)
	}

	dist := cfg.KeyConfig()
	opts := PhaseOptions{Seed: seed, TargetOpsPerSec: cfg.TargetOpsPerSec}

	warmupOps := cfg.WarmupOps()
	warmElapsed, _, err := RunPhase(st, spec, dist,
		PhasePlan{TotalOps: warmupOps, Workers: cfg.Threads}, opts)
	if err != nil {
		return Result{}, fmt.Errorf("warmup: %w", err)
	}

	logger.DebugContext(ctx, "warmup finished",
		slog.Uint64("ops", warmupOps),
		slog.Duration("elapsed", warmElapsed),
	)

	if cfg.SettleDelay > 0 {
		time.Sleep(cfg.SettleDelay)
	}

	opts.Seed = seed + 1
	elapsed, stats, err := RunPhase(st, spec, dist,
		PhasePlan{TotalOps: cfg.OperationCount, Workers: cfg.Threads}, opts)
	if err != nil {
		return Result{}, fmt.Errorf("measurement: %w", err)
	}

	result := Result{
		Workload:     spec.Name,
		Store:        cfg.Store,
		Threads:      cfg.Threads,
		RecordCount:  cfg.RecordCount,
		Distribution: cfg.Distribution.String(),
		LoadElapsed:  loadElapsed,
		WarmupOps:    warmupOps,
		Elapsed:      elapsed,
		TotalOps:     cfg.OperationCount,
		OpsPerSec:    throughput(cfg.OperationCount, elapsed),
		Stats:        stats,
	}
	if cfg.Distribution == keydist.Zipfian {
		result.Skew = cfg.Skew
	}

	logger.InfoContext(ctx, "measurement finished",
		slog.Duration("elapsed", elapsed),
		slog.Uint64("reads", stats.Reads),
		slog.Uint64("updates", stats.Updates),
		slog.Uint64("inserts", stats.Inserts),
		slog.Uint64("scans", stats.Scans),
	)

	writeCompleted(r.Out, result)

	return result, nil
}

func (r *Runner) load(
	ctx context.Context,
	logger *slog.Logger,
	cfg Config,
	st store.Store,
) (time.Duration, error) {
	logger.InfoContext(ctx, "loading records",
		slog.Uint64("records", cfg.RecordCount),
		slog.Int("load_threads", max(cfg.LoadThreads, 1)),
	)

	var onProgress func(int64)
	if cfg.Progress && r.ProgressOut != nil {
		bar := progress.New(r.ProgressOut, int64(cfg.RecordCount), "Loading "+cfg.Store)
		defer bar.Finish()
		onProgress = bar.Add
	}

	start := time.Now()
	if err := Load(st, cfg.RecordCount, cfg.LoadThreads, onProgress); err != nil {
		return 0, err
	}
	elapsed := time.Since(start)

	logger.InfoContext(ctx, "load finished", slog.Duration("elapsed", elapsed))

	return elapsed, nil
}

func (r *Runner) closeStore(ctx context.Context, logger *slog.Logger, st store.Store) {
	c, ok := st.(io.Closer)
	if !ok {
		return
	}

	if err := c.Close(); err != nil {
		logger.WarnContext(ctx, "failed to close store",
			slog.String("error", err.Error()),
		)
	}
}
