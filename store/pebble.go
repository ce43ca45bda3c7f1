package store

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
)

// Pebble runs a pebble LSM on an in-memory filesystem. Writes skip fsync;
// nothing survives Close. Pebble errors have no place in the Store contract
// and abort the run.
type Pebble struct {
	db *pebble.DB
}

// NewPebble opens an empty in-memory pebble instance.
func NewPebble() (*Pebble, error) {
	db, err := pebble.Open("kvbench", &pebble.Options{
		FS: vfs.NewMem(),
	})
	if err != nil {
		return nil, fmt.Errorf("open pebble: %w", err)
	}

	return &Pebble{db: db}, nil
}

func (p *Pebble) Get(key uint64) ([]byte, bool) {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], key)

	v, closer, err := p.db.Get(k[:])
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false
	}
	if err != nil {
		panic(fmt.Sprintf("pebble get %d: %v", key, err))
	}

	out := make([]byte, len(v))
	copy(out, v)
	_ = closer.Close()

	return out, true
}

func (p *Pebble) Insert(key uint64, value []byte) {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], key)

	if err := p.db.Set(k[:], value, pebble.NoSync); err != nil {
		panic(fmt.Sprintf("pebble set %d: %v", key, err))
	}
}

// Len counts keys with a full scan. Intended for tests and reporting, not
// for the measured path.
func (p *Pebble) Len() int {
	iter, err := p.db.NewIter(nil)
	if err != nil {
		panic(fmt.Sprintf("pebble iter: %v", err))
	}
	defer iter.Close()

	n := 0
	for iter.First(); iter.Valid(); iter.Next() {
		n++
	}

	return n
}

func (p *Pebble) Close() error {
	return p.db.Close()
}
