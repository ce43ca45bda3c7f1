package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/weiihann/kvbench/harness"
	"github.com/weiihann/kvbench/keydist"
	"github.com/weiihann/kvbench/report"
	"github.com/weiihann/kvbench/workload"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	root := newRootCmd(logger, nil)

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.Execute()

	return stdout.String(), stderr.String(), err
}

func TestRunZeroThreadsFailsFast(t *testing.T) {
	_, _, err := execute(t, "run", "--threads", "0", "--progress=false")
	if !errors.Is(err, harness.ErrInvalidThreads) {
		t.Fatalf("err = %v, want ErrInvalidThreads", err)
	}
}

func TestRunInvalidSkew(t *testing.T) {
	_, _, err := execute(t, "run", "--zipf-s", "1.0", "--progress=false")
	if !errors.Is(err, keydist.ErrInvalidSkew) {
		t.Fatalf("err = %v, want ErrInvalidSkew", err)
	}
}

func TestRunUnknownWorkload(t *testing.T) {
	_, _, err := execute(t, "run", "--workload", "g", "--progress=false")
	if err == nil || !strings.Contains(err.Error(), "unknown workload") {
		t.Fatalf("err = %v, want unknown workload", err)
	}
}

func TestRunJSON(t *testing.T) {
	stdout, stderr, err := execute(t, "run",
		"--workload", "c",
		"--recordcount", "100",
		"--operationcount", "1000",
		"--threads", "2",
		"--settle", "0s",
		"--seed", "7",
		"--progress=false",
		"--json",
	)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	var run report.Run
	if err := json.Unmarshal([]byte(stdout), &run); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, stdout)
	}

	if len(run.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(run.Results))
	}
	res := run.Results[0]
	if res.Workload != "workloadc" || res.TotalOps != 1000 || res.Threads != 2 {
		t.Errorf("unexpected result %+v", res)
	}
	if res.Stats.Reads != 1000 {
		t.Errorf("reads = %d, want 1000", res.Stats.Reads)
	}

	if !strings.Contains(stderr, "Completed") {
		t.Errorf("progress lines should go to stderr with --json:\n%s", stderr)
	}
}

func TestRunTable(t *testing.T) {
	stdout, _, err := execute(t, "run",
		"--workload", "a",
		"--recordcount", "100",
		"--operationcount", "10000",
		"--threads", "8",
		"--zipfian=false",
		"--settle", "0s",
		"--progress=false",
	)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, want := range []string{"Running", "workloada", "dist=uniform",
		"Completed", "## Benchmark Results"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
}

func TestBuildConfigFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	content := "threads: 8\nworkload: b\nrecordcount: 500\nstore: syncmap\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cmd := newRunCmd(logger)
	if err := cmd.ParseFlags([]string{"--config", path, "--threads", "2"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	var rf runFlags
	rf.configPath = path
	rf.threads = 2
	// Unchanged flags carry their defaults; the file must win for them.
	rf.workload = "all"
	rf.recordCount = 60_000_000
	rf.store = "sharded"
	rf.zipfian = true
	rf.zipfS = keydist.DefaultSkew

	cfg, err := buildConfig(cmd, rf)
	if err != nil {
		t.Fatalf("buildConfig: %v", err)
	}

	if cfg.Threads != 2 {
		t.Errorf("Threads = %d, want flag value 2", cfg.Threads)
	}
	if cfg.Workload != workload.SelectB {
		t.Errorf("Workload = %q, want file value b", cfg.Workload)
	}
	if cfg.RecordCount != 500 || cfg.Store != "syncmap" {
		t.Errorf("file values lost: records=%d store=%s", cfg.RecordCount, cfg.Store)
	}
}

func TestBuildConfigBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, []byte("threads: 0\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, err := execute(t, "run", "--config", path, "--progress=false")
	if err == nil || !strings.Contains(err.Error(), "validate config") {
		t.Fatalf("err = %v, want config validation error", err)
	}
}

func TestWorkloadsCommand(t *testing.T) {
	stdout, _, err := execute(t, "workloads")
	if err != nil {
		t.Fatalf("workloads: %v", err)
	}

	for _, s := range workload.All() {
		if !strings.Contains(stdout, s.Name) {
			t.Errorf("missing %s:\n%s", s.Name, stdout)
		}
	}
	if !strings.Contains(stdout, "0.45") {
		t.Errorf("missing workload e scan share:\n%s", stdout)
	}
}
