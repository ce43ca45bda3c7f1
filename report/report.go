// Package report formats benchmark results into comparison tables.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/weiihann/kvbench/harness"
)

// Run is the JSON envelope for one invocation of the benchmark.
type Run struct {
	ID        string           `json:"id"`
	StartedAt time.Time        `json:"started_at"`
	Results   []harness.Result `json:"results"`
}

// NewRun wraps results with a fresh run id.
func NewRun(startedAt time.Time, results []harness.Result) Run {
	return Run{
		ID:        uuid.NewString(),
		StartedAt: startedAt.UTC(),
		Results:   results,
	}
}

// Generate writes a markdown comparison table for the given results.
func Generate(w io.Writer, results []harness.Result) error {
	if len(results) == 0 {
		return fmt.Errorf("no results to report")
	}

	best := findFastest(results)

	fmt.Fprintln(w, "## Benchmark Results")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "| Workload | Store | Threads | Records | Ops "+
		"| Distribution | Elapsed | Throughput | Relative |")
	fmt.Fprintln(w, "|----------|-------|---------|---------|-----"+
		"|--------------|---------|------------|----------|")

	for _, r := range results {
		relative := 0.0
		if best > 0 {
			relative = r.OpsPerSec / best
		}

		fmt.Fprintf(w, "| %s | %s | %d | %s | %s | %s | %s | %s | %.2fx |\n",
			r.Workload,
			r.Store,
			r.Threads,
			formatCount(r.RecordCount),
			formatCount(r.TotalOps),
			formatDistribution(r),
			formatDuration(r.Elapsed),
			formatRate(r.OpsPerSec),
			relative,
		)
	}

	fmt.Fprintln(w)

	fmt.Fprintln(w, "| Workload | Reads | Updates | Inserts | Scans (no-op) |")
	fmt.Fprintln(w, "|----------|-------|---------|---------|---------------|")

	for _, r := range results {
		fmt.Fprintf(w, "| %s | %d | %d | %d | %d |\n",
			r.Workload,
			r.Stats.Reads,
			r.Stats.Updates,
			r.Stats.Inserts,
			r.Stats.Scans,
		)
	}

	return nil
}

// GenerateJSON writes run as JSON to w.
func GenerateJSON(w io.Writer, run Run) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(run)
}

func findFastest(results []harness.Result) float64 {
	fastest := 0.0
	for _, r := range results {
		if r.OpsPerSec > fastest {
			fastest = r.OpsPerSec
		}
	}

	return fastest
}

func formatDistribution(r harness.Result) string {
	if r.Skew > 0 {
		return fmt.Sprintf("%s (s=%.2f)", r.Distribution, r.Skew)
	}

	return r.Distribution
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.2fms", float64(d)/float64(time.Millisecond))
	}

	return fmt.Sprintf("%.3fs", d.Seconds())
}

func formatRate(opsPerSec float64) string {
	switch {
	case opsPerSec <= 0:
		return "-"
	case opsPerSec >= 1e6:
		return fmt.Sprintf("%.2f Mops/s", opsPerSec/1e6)
	case opsPerSec >= 1e3:
		return fmt.Sprintf("%.2f Kops/s", opsPerSec/1e3)
	default:
		return fmt.Sprintf("%.0f ops/s", opsPerSec)
	}
}

func formatCount(n uint64) string {
	units := []string{"", "K", "M", "G"}
	size := float64(n)
	unit := 0

	for size >= 1000 && unit < len(units)-1 {
		size /= 1000
		unit++
	}

	if unit == 0 {
		return fmt.Sprintf("%d", n)
	}

	formatted := fmt.Sprintf("%.1f", size)
	formatted = strings.TrimRight(formatted, "0")
	formatted = strings.TrimRight(formatted, ".")

	return formatted + units[unit]
}
