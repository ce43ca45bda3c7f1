package store

import (
	"sync"
	"sync/atomic"
)

// SyncMap adapts sync.Map, which favours read-mostly workloads with stable
// key sets.
type SyncMap struct {
	m    sync.Map
	size atomic.Int64
}

// NewSyncMap creates an empty SyncMap.
func NewSyncMap() *SyncMap {
	return &SyncMap{}
}

func (s *SyncMap) Get(key uint64) ([]byte, bool) {
	v, ok := s.m.Load(key)
	if !ok {
		return nil, false
	}

	return v.([]byte), true
}

func (s *SyncMap) Insert(key uint64, value []byte) {
	if _, loaded := s.m.Swap(key, value); !loaded {
		s.size.Add(1)
	}
}

func (s *SyncMap) Len() int {
	return int(s.size.Load())
}
