package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/weiihann/kvbench/harness"
)

func sampleResults() []harness.Result {
	return []harness.Result{
		{
			Workload:     "workloada",
			Store:        "sharded",
			Threads:      4,
			RecordCount:  60_000_000,
			Distribution: "zipfian",
			Skew:         1.03,
			Elapsed:      2 * time.Second,
			TotalOps:     200_000_000,
			OpsPerSec:    100_000_000,
			Stats:        harness.PhaseStats{Reads: 100_000_000, Updates: 100_000_000},
		},
		{
			Workload:     "workloade",
			Store:        "sharded",
			Threads:      4,
			RecordCount:  60_000_000,
			Distribution: "zipfian",
			Skew:         1.03,
			Elapsed:      4 * time.Second,
			TotalOps:     200_000_000,
			OpsPerSec:    50_000_000,
			Stats:        harness.PhaseStats{Reads: 110_000_000, Scans: 90_000_000},
		},
	}
}

func TestGenerate(t *testing.T) {
	var buf bytes.Buffer
	if err := Generate(&buf, sampleResults()); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	output := buf.String()

	for _, want := range []string{
		"workloada", "workloade", "sharded",
		"100.00 Mops/s", "50.00 Mops/s",
		"1.00x", "0.50x",
		"60M", "200M",
		"zipfian (s=1.03)",
		"2.000s", "4.000s",
		"90000000",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
}

func TestGenerateEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Generate(&buf, nil); err == nil {
		t.Error("expected error for empty results")
	}
}

func TestGenerateUniformHasNoSkew(t *testing.T) {
	results := []harness.Result{
		{Workload: "workloadc", Distribution: "uniform", OpsPerSec: 10},
	}

	var buf bytes.Buffer
	if err := Generate(&buf, results); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if strings.Contains(buf.String(), "s=") {
		t.Error("uniform row should not show a skew")
	}
}

func TestGenerateJSON(t *testing.T) {
	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	run := NewRun(started, sampleResults()[:1])

	var buf bytes.Buffer
	if err := GenerateJSON(&buf, run); err != nil {
		t.Fatalf("GenerateJSON failed: %v", err)
	}

	var parsed struct {
		ID        string           `json:"id"`
		StartedAt time.Time        `json:"started_at"`
		Results   []harness.Result `json:"results"`
	}
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if _, err := uuid.Parse(parsed.ID); err != nil {
		t.Errorf("id %q is not a uuid: %v", parsed.ID, err)
	}
	if !parsed.StartedAt.Equal(started) {
		t.Errorf("started_at = %v, want %v", parsed.StartedAt, started)
	}
	if len(parsed.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(parsed.Results))
	}
	if parsed.Results[0].Workload != "workloada" {
		t.Errorf("workload = %q, want workloada", parsed.Results[0].Workload)
	}
	if parsed.Results[0].TotalOps != 200_000_000 {
		t.Errorf("total_ops = %d", parsed.Results[0].TotalOps)
	}
	if !strings.Contains(buf.String(), `"ops_per_sec"`) {
		t.Error("expected ops_per_sec field")
	}
}

func TestNewRunIDsDiffer(t *testing.T) {
	a := NewRun(time.Now(), nil)
	b := NewRun(time.Now(), nil)

	if a.ID == b.ID {
		t.Error("run ids repeat")
	}
}

func TestFormatCount(t *testing.T) {
	tests := []struct {
		input uint64
		want  string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1K"},
		{1500, "1.5K"},
		{60_000_000, "60M"},
		{200_000_000, "200M"},
		{2_500_000_000, "2.5G"},
	}

	for _, tt := range tests {
		if got := formatCount(tt.input); got != tt.want {
			t.Errorf("formatCount(%d) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFormatRate(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{0, "-"},
		{500, "500 ops/s"},
		{1500, "1.50 Kops/s"},
		{12_345_678, "12.35 Mops/s"},
	}

	for _, tt := range tests {
		if got := formatRate(tt.input); got != tt.want {
			t.Errorf("formatRate(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		input time.Duration
		want  string
	}{
		{1500 * time.Microsecond, "1.50ms"},
		{999 * time.Millisecond, "999.00ms"},
		{1234 * time.Millisecond, "1.234s"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.input); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
