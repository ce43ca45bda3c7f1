// Package keydist produces the keys a benchmark worker touches. A sampler
// is owned by exactly one worker and carries its own random source, so
// workers never contend on shared RNG state.
package keydist

import (
	"errors"
	"fmt"
	"math/rand"
)

// DefaultSkew is the YCSB-style zipfian exponent.
const DefaultSkew = 1.03

var (
	// ErrInvalidSkew is returned when a zipfian skew is not greater than 1.
	ErrInvalidSkew = errors.New("zipfian skew must be greater than 1")
	// ErrEmptyDomain is returned when the key domain has no keys.
	ErrEmptyDomain = errors.New("key domain must not be empty")
)

// Kind selects the key popularity distribution.
type Kind int

const (
	Uniform Kind = iota
	Zipfian
)

func (k Kind) String() string {
	switch k {
	case Uniform:
		return "uniform"
	case Zipfian:
		return "zipfian"
	default:
		return "unknown"
	}
}

// Config describes a key distribution over [0, DomainSize).
type Config struct {
	Kind       Kind
	Skew       float64
	DomainSize uint64
}

// Validate reports configuration errors without building a sampler.
func (c Config) Validate() error {
	if c.DomainSize == 0 {
		return ErrEmptyDomain
	}

	switch c.Kind {
	case Uniform:
		return nil
	case Zipfian:
		if !(c.Skew > 1) {
			return fmt.Errorf("%w (got %v)", ErrInvalidSkew, c.Skew)
		}

		return nil
	default:
		return fmt.Errorf("unknown distribution kind %d", c.Kind)
	}
}

// Sampler yields an endless sequence of keys in [0, DomainSize).
type Sampler interface {
	// Next returns the next key.
	Next() uint64
	// Reset restarts the sequence from the sampler's seed.
	Reset()
}

// New builds a sampler for cfg driven by a private source seeded with seed.
func New(cfg Config, seed int64) (Sampler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(seed))

	switch cfg.Kind {
	case Zipfian:
		return newZipfSampler(rng, seed, cfg.Skew, cfg.DomainSize), nil
	default:
		return &uniformSampler{rng: rng, seed: seed, n: cfg.DomainSize}, nil
	}
}

type uniformSampler struct {
	rng  *rand.Rand
	seed int64
	n    uint64
}

func (s *uniformSampler) Next() uint64 {
	if s.n <= 1<<63-1 {
		return uint64(s.rng.Int63n(int64(s.n)))
	}

	return s.rng.Uint64() % s.n
}

func (s *uniformSampler) Reset() {
	s.rng.Seed(s.seed)
}

// zipfSampler draws a rank in [1, n] with P(rank) proportional to
// rank^-skew and folds it onto [0, n) by taking rank mod n. The last rank
// therefore lands on key 0.
type zipfSampler struct {
	rng  *rand.Rand
	seed int64
	zipf *rand.Zipf
	n    uint64
}

func newZipfSampler(rng *rand.Rand, seed int64, skew float64, n uint64) *zipfSampler {
	// rand.Zipf yields k in [0, imax] with P(k) proportional to (v+k)^-s,
	// so v = 1 and k+1 is the 1-based rank.
	return &zipfSampler{
		rng:  rng,
		seed: seed,
		zipf: rand.NewZipf(rng, skew, 1, n-1),
		n:    n,
	}
}

func (s *zipfSampler) Next() uint64 {
	return (s.zipf.Uint64() + 1) % s.n
}

func (s *zipfSampler) Reset() {
	s.rng.Seed(s.seed)
}
