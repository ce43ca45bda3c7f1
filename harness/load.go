package harness

import (
	"github.com/weiihann/kvbench/store"
	"golang.org/x/sync/errgroup"
)

// progressEvery is how many inserts a loader batches before reporting.
const progressEvery = 4096

// Load inserts a fresh value block for every key in [0, records). Keys are
// split into contiguous ranges, one per loader goroutine. onProgress, when
// non-nil, receives batched insert counts and must be safe for concurrent
// use.
func Load(st store.Store, records uint64, threads int, onProgress func(n int64)) error {
	if threads < 1 {
		threads = 1
	}
	if uint64(threads) > records && records > 0 {
		threads = int(records)
	}

	var (
		g    errgroup.Group
		next uint64
	)

	for _, n := range Partition(records, threads) {
		lo, hi := next, next+n
		next = hi

		g.Go(func() error {
			pending := int64(0)
			for k := lo; k < hi; k++ {
				st.Insert(k, store.NewValue(k))

				pending++
				if pending == progressEvery && onProgress != nil {
					onProgress(pending)
					pending = 0
				}
			}
			if pending > 0 && onProgress != nil {
				onProgress(pending)
			}

			return nil
		})
	}

	return g.Wait()
}
