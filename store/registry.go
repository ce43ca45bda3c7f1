package store

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownStore is returned for a backend name not in Known.
var ErrUnknownStore = errors.New("unknown store")

// Backend names.
const (
	KindSharded   = "sharded"
	KindSyncMap   = "syncmap"
	KindFastCache = "fastcache"
	KindPebble    = "pebble"
)

// Hint carries sizing information for backends that preallocate.
type Hint struct {
	Records int
}

// Known returns the supported backend names, default first.
func Known() []string {
	return []string{KindSharded, KindSyncMap, KindFastCache, KindPebble}
}

// Check reports whether kind names a supported backend.
func Check(kind string) error {
	for _, k := range Known() {
		if k == kind {
			return nil
		}
	}

	return fmt.Errorf("%w %q (want one of %s)",
		ErrUnknownStore, kind, strings.Join(Known(), ", "))
}

// New constructs an empty backend of the given kind.
func New(kind string, hint Hint) (Store, error) {
	switch kind {
	case KindSharded:
		return NewSharded(DefaultShards, hint.Records), nil
	case KindSyncMap:
		return NewSyncMap(), nil
	case KindFastCache:
		return NewFastCache(hint.Records), nil
	case KindPebble:
		p, err := NewPebble()
		if err != nil {
			return nil, err
		}

		return p, nil
	default:
		return nil, Check(kind)
	}
}
