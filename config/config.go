// Package config loads benchmark parameters from a YAML or JSON file. Only
// the fields present in the file are applied, so a file can override a
// subset of the defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/weiihann/kvbench/harness"
	"github.com/weiihann/kvbench/keydist"
	"github.com/weiihann/kvbench/store"
	"github.com/weiihann/kvbench/workload"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors the run flags.
type FileConfig struct {
	Threads        *int     `yaml:"threads" json:"threads"`
	Workload       *string  `yaml:"workload" json:"workload"`
	RecordCount    *uint64  `yaml:"recordcount" json:"recordcount"`
	OperationCount *uint64  `yaml:"operationcount" json:"operationcount"`
	Zipfian        *bool    `yaml:"zipfian" json:"zipfian"`
	ZipfS          *float64 `yaml:"zipf_s" json:"zipf_s"`
	Store          *string  `yaml:"store" json:"store"`
	LoadThreads    *int     `yaml:"load_threads" json:"load_threads"`
	Target         *float64 `yaml:"target" json:"target"`
	Seed           *int64   `yaml:"seed" json:"seed"`
	Settle         *string  `yaml:"settle" json:"settle"`
}

// LoadFile reads a .yaml, .yml or .json config file.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg FileConfig

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}

	return &cfg, nil
}

// Validate checks the values present in the file.
func (f *FileConfig) Validate() error {
	if f.Threads != nil && *f.Threads < 1 {
		return fmt.Errorf("threads must be >= 1 (got %d)", *f.Threads)
	}
	if f.Workload != nil {
		if _, err := workload.ParseSelector(*f.Workload); err != nil {
			return err
		}
	}
	if f.RecordCount != nil && *f.RecordCount == 0 {
		return fmt.Errorf("recordcount must be > 0")
	}
	if f.ZipfS != nil && !(*f.ZipfS > 1) {
		return fmt.Errorf("zipf_s must be > 1 (got %v)", *f.ZipfS)
	}
	if f.Store != nil {
		if err := store.Check(*f.Store); err != nil {
			return err
		}
	}
	if f.LoadThreads != nil && *f.LoadThreads < 0 {
		return fmt.Errorf("load_threads must be >= 0 (got %d)", *f.LoadThreads)
	}
	if f.Target != nil && *f.Target < 0 {
		return fmt.Errorf("target must be >= 0 (got %v)", *f.Target)
	}
	if f.Settle != nil {
		d, err := time.ParseDuration(*f.Settle)
		if err != nil {
			return fmt.Errorf("invalid settle: %w", err)
		}
		if d < 0 {
			return fmt.Errorf("settle must be >= 0 (got %v)", d)
		}
	}

	return nil
}

// Apply overlays the values present in the file onto cfg.
func (f *FileConfig) Apply(cfg *harness.Config) error {
	if f.Threads != nil {
		cfg.Threads = *f.Threads
	}
	if f.Workload != nil {
		sel, err := workload.ParseSelector(*f.Workload)
		if err != nil {
			return err
		}
		cfg.Workload = sel
	}
	if f.RecordCount != nil {
		cfg.RecordCount = *f.RecordCount
	}
	if f.OperationCount != nil {
		cfg.OperationCount = *f.OperationCount
	}
	if f.Zipfian != nil {
		cfg.Distribution = keydist.Uniform
		if *f.Zipfian {
			cfg.Distribution = keydist.Zipfian
		}
	}
	if f.ZipfS != nil {
		cfg.Skew = *f.ZipfS
	}
	if f.Store != nil {
		cfg.Store = *f.Store
	}
	if f.LoadThreads != nil {
		cfg.LoadThreads = *f.LoadThreads
	}
	if f.Target != nil {
		cfg.TargetOpsPerSec = *f.Target
	}
	if f.Seed != nil {
		cfg.Seed = *f.Seed
	}
	if f.Settle != nil {
		d, err := time.ParseDuration(*f.Settle)
		if err != nil {
			return fmt.Errorf("invalid settle: %w", err)
		}
		cfg.SettleDelay = d
	}

	return nil
}
