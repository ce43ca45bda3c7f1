package harness

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/weiihann/kvbench/workload"
)

var (
	nameColor = color.New(color.FgCyan, color.Bold).SprintFunc()
	rateColor = color.New(color.FgGreen, color.Bold).SprintFunc()
)

func writeRunning(w io.Writer, cfg Config, spec workload.Spec) {
	if w == nil {
		return
	}

	fmt.Fprintf(w,
		"Running %s | threads=%d | records=%d | ops=%d | dist=%s | store=%s\n",
		nameColor(spec.Name),
		cfg.Threads,
		cfg.RecordCount,
		cfg.OperationCount,
		cfg.Distribution,
		cfg.Store,
	)
}

func writeCompleted(w io.Writer, r Result) {
	if w == nil {
		return
	}

	fmt.Fprintf(w, "Completed %s in %s | throughput = %s Mops/s\n\n",
		r.Workload,
		r.Elapsed.Round(time.Microsecond),
		rateColor(fmt.Sprintf("%.2f", r.MopsPerSec())),
	)
}
