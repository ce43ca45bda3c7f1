package store

import (
	"encoding/binary"

	"github.com/VictoriaMetrics/fastcache"
)

// minCacheBytes is the smallest useful fastcache size; the cache reserves
// whole 64KB chunks per bucket.
const minCacheBytes = 32 << 20

// FastCache stores values in an off-heap fastcache. It is a cache: when the
// configured size is exceeded old entries are evicted, so it must be sized
// for the record count to behave as a plain map.
type FastCache struct {
	c *fastcache.Cache
}

// NewFastCache sizes the cache to hold records value blocks with headroom.
func NewFastCache(records int) *FastCache {
	maxBytes := records * (ValueSize + 8 + 4) * 2
	if maxBytes < minCacheBytes {
		maxBytes = minCacheBytes
	}

	return &FastCache{c: fastcache.New(maxBytes)}
}

func (f *FastCache) Get(key uint64) ([]byte, bool) {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], key)

	return f.c.HasGet(nil, k[:])
}

func (f *FastCache) Insert(key uint64, value []byte) {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], key)

	f.c.Set(k[:], value)
}

// Len reports the number of live entries.
func (f *FastCache) Len() int {
	var s fastcache.Stats
	f.c.UpdateStats(&s)

	return int(s.EntriesCount)
}

// Close releases the cache memory.
func (f *FastCache) Close() error {
	f.c.Reset()

	return nil
}
