// Package main provides the CLI entry point for kvbench, a YCSB-style
// throughput benchmark for concurrent in-process key-value stores.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/weiihann/kvbench/config"
	"github.com/weiihann/kvbench/harness"
	"github.com/weiihann/kvbench/keydist"
	"github.com/weiihann/kvbench/report"
	"github.com/weiihann/kvbench/store"
	"github.com/weiihann/kvbench/workload"
)

func main() {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		// A second signal falls through to the default handler.
		stop()
	}()

	root := newRootCmd(logger, level)
	if err := root.ExecuteContext(ctx); err != nil {
		logger.Error("kvbench failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger, level *slog.LevelVar) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "kvbench",
		Short: "YCSB-style throughput benchmark for concurrent key-value stores",
		Long: `kvbench loads a key-value store, warms it up and measures how many
operations per second it sustains under the canonical YCSB workload mixes
with a fixed number of concurrent workers.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if verbose && level != nil {
				level.Set(slog.LevelDebug)
			}
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	root.AddCommand(newRunCmd(logger))
	root.AddCommand(newWorkloadsCmd())

	return root
}

type runFlags struct {
	threads        uint
	workload       string
	recordCount    uint64
	operationCount uint64
	zipfian        bool
	zipfS          float64
	store          string
	loadThreads    int
	target         float64
	seed           int64
	settle         time.Duration
	configPath     string
	outputJSON     bool
	progress       bool
}

func newRunCmd(logger *slog.Logger) *cobra.Command {
	def := harness.DefaultConfig()

	var rf runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the selected workloads and report throughput",
		Long: `Run loads recordcount keys into a fresh store, runs a warmup of 5% of
operationcount, then times operationcount operations split across the
worker threads. Each selected workload gets its own store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := buildConfig(cmd, rf)
			if err != nil {
				return err
			}

			return runBenchmark(cmd.Context(), logger, cmd.OutOrStdout(),
				cmd.ErrOrStderr(), cfg, rf.outputJSON)
		},
	}

	flags := cmd.Flags()
	flags.UintVar(&rf.threads, "threads", uint(def.Threads),
		"Worker threads for warmup and measurement (>= 1)")
	flags.StringVar(&rf.workload, "workload", string(def.Workload),
		"Workload to run: "+strings.Join(workload.Selectors(), "|"))
	flags.Uint64Var(&rf.recordCount, "recordcount", def.RecordCount,
		"Number of records to load (key domain size)")
	flags.Uint64Var(&rf.operationCount, "operationcount", def.OperationCount,
		"Number of operations in the measured phase")
	flags.BoolVar(&rf.zipfian, "zipfian", true,
		"Use a zipfian key distribution; false selects uniform")
	flags.Float64Var(&rf.zipfS, "zipf-s", def.Skew,
		"Zipfian exponent (must be > 1)")
	flags.StringVar(&rf.store, "store", def.Store,
		"Store backend: "+strings.Join(store.Known(), ", "))
	flags.IntVar(&rf.loadThreads, "load-threads", def.LoadThreads,
		"Goroutines used to load records")
	flags.Float64Var(&rf.target, "target", 0,
		"Target operations per second across all workers (0 = unthrottled)")
	flags.Int64Var(&rf.seed, "seed", 0,
		"Random seed (0 = use current time)")
	flags.DurationVar(&rf.settle, "settle", def.SettleDelay,
		"Pause between warmup and measurement")
	flags.StringVar(&rf.configPath, "config", "",
		"YAML or JSON file with run parameters; explicit flags win")
	flags.BoolVar(&rf.outputJSON, "json", false,
		"Output results as JSON instead of a table")
	flags.BoolVar(&rf.progress, "progress", true,
		"Show a progress bar while loading")

	return cmd
}

// buildConfig layers defaults, the optional config file and the flags. A
// flag overrides the file only when it was passed explicitly.
func buildConfig(cmd *cobra.Command, rf runFlags) (harness.Config, error) {
	cfg := harness.DefaultConfig()
	flags := cmd.Flags()

	fromFile := false
	if rf.configPath != "" {
		fc, err := config.LoadFile(rf.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		if err := fc.Validate(); err != nil {
			return cfg, fmt.Errorf("validate config: %w", err)
		}
		if err := fc.Apply(&cfg); err != nil {
			return cfg, fmt.Errorf("apply config: %w", err)
		}
		fromFile = true
	}

	use := func(name string) bool {
		return !fromFile || flags.Changed(name)
	}

	if use("threads") {
		cfg.Threads = int(rf.threads)
	}
	if use("workload") {
		sel, err := workload.ParseSelector(rf.workload)
		if err != nil {
			return cfg, err
		}
		cfg.Workload = sel
	}
	if use("recordcount") {
		cfg.RecordCount = rf.recordCount
	}
	if use("operationcount") {
		cfg.OperationCount = rf.operationCount
	}
	if use("zipfian") {
		cfg.Distribution = keydist.Uniform
		if rf.zipfian {
			cfg.Distribution = keydist.Zipfian
		}
	}
	if use("zipf-s") {
		cfg.Skew = rf.zipfS
	}
	if use("store") {
		cfg.Store = rf.store
	}
	if use("load-threads") {
		cfg.LoadThreads = rf.loadThreads
	}
	if use("target") {
		cfg.TargetOpsPerSec = rf.target
	}
	if use("seed") {
		cfg.Seed = rf.seed
	}
	if use("settle") {
		cfg.SettleDelay = rf.settle
	}
	cfg.Progress = rf.progress

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func runBenchmark(
	ctx context.Context,
	logger *slog.Logger,
	stdout, stderr io.Writer,
	cfg harness.Config,
	outputJSON bool,
) error {
	logger.InfoContext(ctx, "starting benchmark",
		slog.Int("threads", cfg.Threads),
		slog.String("workload", string(cfg.Workload)),
		slog.Uint64("record_count", cfg.RecordCount),
		slog.Uint64("operation_count", cfg.OperationCount),
		slog.String("distribution", cfg.Distribution.String()),
		slog.Float64("zipf_s", cfg.Skew),
		slog.String("store", cfg.Store),
	)

	runner := harness.NewRunner(logger, stdout)
	runner.ProgressOut = stderr
	if outputJSON {
		// Keep stdout clean for the JSON document.
		runner.Out = stderr
	}

	started := time.Now()

	results, err := runner.RunAll(ctx, cfg)
	if err != nil {
		return fmt.Errorf("run benchmark: %w", err)
	}

	if outputJSON {
		if err := report.GenerateJSON(stdout, report.NewRun(started, results)); err != nil {
			return fmt.Errorf("generate JSON report: %w", err)
		}
	} else {
		if err := report.Generate(stdout, results); err != nil {
			return fmt.Errorf("generate report: %w", err)
		}
	}

	logger.InfoContext(ctx, "benchmark complete",
		slog.Duration("wall_time", time.Since(started)),
	)

	return nil
}

func newWorkloadsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "workloads",
		Short: "List the built-in workload mixes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printWorkloads(cmd.OutOrStdout())
		},
	}
}

func printWorkloads(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "NAME\tREAD\tUPDATE\tINSERT\tSCAN")
	for _, s := range workload.All() {
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%.2f\n",
			s.Name, s.Read, s.Update, s.Insert, s.Scan)
	}

	return tw.Flush()
}
