// Package store defines the key-value capability the benchmark drives and
// ships the in-process backends it can be pointed at.
package store

// ValueSize is the size in bytes of every value block written by the
// benchmark.
const ValueSize = 1024

// Store is the capability a backend must provide. Both operations must be
// safe for concurrent use by any number of goroutines without external
// locking. A Get miss is a normal outcome.
type Store interface {
	Get(key uint64) ([]byte, bool)
	Insert(key uint64, value []byte)
}

// Sizer is implemented by backends that can report how many keys they hold.
type Sizer interface {
	Len() int
}

// NewValue builds a fresh value block for key. A few bytes are derived from
// the key so the block is not uniform and its pages get committed.
func NewValue(key uint64) []byte {
	v := make([]byte, ValueSize)
	v[0] = byte(key)
	v[ValueSize/2] = byte(key >> 8)
	v[ValueSize-1] = byte(key >> 16)

	return v
}
