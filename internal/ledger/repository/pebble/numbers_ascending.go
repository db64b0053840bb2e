package pebble

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/cockroachdb/pebble"
)

// NumbersAscending lazily yields every stored block number in ascending order.
// Each range over the sequence opens a fresh iterator.
func (r *Repository) NumbersAscending(ctx context.Context) iter.Seq2[uint64, error] {
	return func(yield func(uint64, error) bool) {
		start := time.Now()
		var err error
		defer func() {
			r.metrics.Observe("numbers_ascending", r.network, err, start)
		}()

		it, err := r.db.NewIter(&pebble.IterOptions{
			LowerBound: blockPrefix,
			UpperBound: blockPrefixEnd,
		})
		if err != nil {
			err = fmt.Errorf("create iterator: %w", err)
			yield(0, err)
			return
		}
		defer it.Close()

		for valid := it.First(); valid; valid = it.Next() {
			if err = ctx.Err(); err != nil {
				yield(0, err)
				return
			}
			var number uint64
			if number, err = decodeBlockKey(it.Key()); err != nil {
				yield(0, err)
				return
			}
			if !yield(number, nil) {
				return
			}
		}
		if err = it.Error(); err != nil {
			err = fmt.Errorf("iterate block numbers: %w", err)
			yield(0, err)
		}
	}
}
