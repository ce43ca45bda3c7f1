// Package harness runs workload mixes against a store: it loads the key
// set, warms the store up and times a measured phase per workload.
package harness

import "time"

// PhaseStats counts the operations a phase completed, by action.
type PhaseStats struct {
	Reads   uint64 `json:"reads"`
	Updates uint64 `json:"updates"`
	Inserts uint64 `json:"inserts"`
	Scans   uint64 `json:"scans"`
}

// Total returns the number of completed operations, scans included.
func (s PhaseStats) Total() uint64 {
	return s.Reads + s.Updates + s.Inserts + s.Scans
}

// Writes returns the number of operations that wrote to the store.
func (s PhaseStats) Writes() uint64 {
	return s.Updates + s.Inserts
}

func (s *PhaseStats) add(o PhaseStats) {
	s.Reads += o.Reads
	s.Updates += o.Updates
	s.Inserts += o.Inserts
	s.Scans += o.Scans
}

// Result is the throughput measured for one workload.
type Result struct {
	Workload     string        `json:"workload"`
	Store        string        `json:"store"`
	Threads      int           `json:"threads"`
	RecordCount  uint64        `json:"record_count"`
	Distribution string        `json:"distribution"`
	Skew         float64       `json:"skew,omitempty"`
	LoadElapsed  time.Duration `json:"load_elapsed_ns"`
	WarmupOps    uint64        `json:"warmup_ops"`
	Elapsed      time.Duration `json:"elapsed_ns"`
	TotalOps     uint64        `json:"total_ops"`
	OpsPerSec    float64       `json:"ops_per_sec"`
	Stats        PhaseStats    `json:"stats"`
}

// MopsPerSec returns the throughput in millions of operations per second.
func (r Result) MopsPerSec() float64 {
	return r.OpsPerSec / 1e6
}

func throughput(ops uint64, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}

	return float64(ops) / elapsed.Seconds()
}
