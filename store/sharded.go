package store

import (
	"encoding/binary"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// DefaultShards is the shard count used by NewSharded when given zero.
const DefaultShards = 256

// Sharded is a map split into independently locked shards. Keys are routed
// by their xxhash so sequential keys spread across shards.
type Sharded struct {
	shards []shard
	mask   uint64
}

type shard struct {
	mu   sync.RWMutex
	data map[uint64][]byte
	// pad keeps neighbouring shard locks off the same cache line.
	_ [40]byte
}

// NewSharded creates a sharded map. The shard count is rounded up to a power
// of two; capacity is a hint for the total number of keys.
func NewSharded(shards int, capacity int) *Sharded {
	if shards <= 0 {
		shards = DefaultShards
	}

	n := 1
	for n < shards {
		n <<= 1
	}

	perShard := capacity / n
	s := &Sharded{
		shards: make([]shard, n),
		mask:   uint64(n - 1),
	}
	for i := range s.shards {
		s.shards[i].data = make(map[uint64][]byte, perShard)
	}

	return s
}

func (s *Sharded) shardFor(key uint64) *shard {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], key)

	return &s.shards[xxhash.Sum64(buf[:])&s.mask]
}

// Get returns the value stored under key.
func (s *Sharded) Get(key uint64) ([]byte, bool) {
	sh := s.shardFor(key)

	sh.mu.RLock()
	v, ok := sh.data[key]
	sh.mu.RUnlock()

	return v, ok
}

// Insert stores value under key, replacing any previous value.
func (s *Sharded) Insert(key uint64, value []byte) {
	sh := s.shardFor(key)

	sh.mu.Lock()
	sh.data[key] = value
	sh.mu.Unlock()
}

// Len returns the number of keys across all shards.
func (s *Sharded) Len() int {
	total := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.RLock()
		total += len(sh.data)
		sh.mu.RUnlock()
	}

	return total
}

// Keys returns every stored key in no particular order.
func (s *Sharded) Keys() []uint64 {
	keys := make([]uint64, 0, s.Len())
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.RLock()
		for k := range sh.data {
			keys = append(keys, k)
		}
		sh.mu.RUnlock()
	}

	return keys
}
