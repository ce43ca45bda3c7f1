// Package workload defines the canonical YCSB-style workload mixes. Each mix
// is a probability partition over read, update, insert and scan operations.
package workload

import (
	"fmt"
	"math"
	"strings"
)

// Tolerance is the allowed deviation of a mix's probability sum from 1.0.
const Tolerance = 1e-9

// Action is the operation kind selected for a single step of a phase.
type Action uint8

const (
	ActionRead Action = iota
	ActionUpdate
	ActionInsert
	ActionScan
)

func (a Action) String() string {
	switch a {
	case ActionRead:
		return "read"
	case ActionUpdate:
		return "update"
	case ActionInsert:
		return "insert"
	case ActionScan:
		return "scan"
	default:
		return "unknown"
	}
}

// Spec is an immutable workload mix.
type Spec struct {
	Name   string  `json:"name" yaml:"name"`
	Read   float64 `json:"read" yaml:"read"`
	Update float64 `json:"update" yaml:"update"`
	Insert float64 `json:"insert" yaml:"insert"`
	Scan   float64 `json:"scan" yaml:"scan"`
}

// Validate checks that all probabilities are non-negative and sum to 1.
func (s Spec) Validate() error {
	for _, p := range []struct {
		name string
		v    float64
	}{
		{"read", s.Read},
		{"update", s.Update},
		{"insert", s.Insert},
		{"scan", s.Scan},
	} {
		if p.v < 0 || math.IsNaN(p.v) {
			return fmt.Errorf("%s: %s probability %v is negative", s.Name, p.name, p.v)
		}
	}

	sum := s.Read + s.Update + s.Insert + s.Scan
	if math.Abs(sum-1) > Tolerance {
		return fmt.Errorf("%s: probabilities sum to %v, want 1", s.Name, sum)
	}

	return nil
}

// Choose maps a uniform draw u in [0, 1) onto an action. Boundaries are
// half-open and cumulative in the order read, update, insert, scan.
func (s Spec) Choose(u float64) Action {
	bound := s.Read
	if u < bound {
		return ActionRead
	}

	bound += s.Update
	if u < bound {
		return ActionUpdate
	}

	bound += s.Insert
	if u < bound {
		return ActionInsert
	}

	return ActionScan
}

var (
	workloadA = Spec{Name: "workloada", Read: 0.50, Update: 0.50}
	workloadB = Spec{Name: "workloadb", Read: 0.95, Update: 0.05}
	workloadC = Spec{Name: "workloadc", Read: 1.00}
	workloadD = Spec{Name: "workloadd", Read: 0.75, Update: 0.20, Insert: 0.05}
	workloadE = Spec{Name: "workloade", Read: 0.55, Scan: 0.45}
	workloadF = Spec{Name: "workloadf", Read: 0.25, Update: 0.25, Insert: 0.25, Scan: 0.25}
)

// Selector picks one canonical workload or all of them.
type Selector string

const (
	SelectA   Selector = "a"
	SelectB   Selector = "b"
	SelectC   Selector = "c"
	SelectD   Selector = "d"
	SelectE   Selector = "e"
	SelectF   Selector = "f"
	SelectAll Selector = "all"
)

// Selectors returns the accepted selector names.
func Selectors() []string {
	return []string{"a", "b", "c", "d", "e", "f", "all"}
}

// ParseSelector validates a user-supplied workload name. Both the short form
// ("a") and the full name ("workloada") are accepted, case-insensitively.
func ParseSelector(s string) (Selector, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.TrimPrefix(name, "workload")

	for _, sel := range Selectors() {
		if name == sel {
			return Selector(sel), nil
		}
	}

	return "", fmt.Errorf(
		"unknown workload %q (want one of %s)",
		s, strings.Join(Selectors(), ", "),
	)
}

// All returns the six canonical workloads in registry order A through F.
func All() []Spec {
	return []Spec{workloadA, workloadB, workloadC, workloadD, workloadE, workloadF}
}

// SpecsFor returns the workloads named by sel, in registry order. The
// selector is expected to come from ParseSelector; anything else yields nil.
func SpecsFor(sel Selector) []Spec {
	switch sel {
	case SelectA:
		return []Spec{workloadA}
	case SelectB:
		return []Spec{workloadB}
	case SelectC:
		return []Spec{workloadC}
	case SelectD:
		return []Spec{workloadD}
	case SelectE:
		return []Spec{workloadE}
	case SelectF:
		return []Spec{workloadF}
	case SelectAll:
		return All()
	default:
		return nil
	}
}
