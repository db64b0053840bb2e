package pebble

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/goodnatureofminers/blockgraph7000-backend/internal/ledger/model"
)

// RangeAscending lazily yields stored blocks with from <= number < to in ascending order.
func (r *Repository) RangeAscending(ctx context.Context, from, to uint64) iter.Seq2[model.Block, error] {
	return func(yield func(model.Block, error) bool) {
		if from >= to {
			return
		}

		start := time.Now()
		var err error
		defer func() {
			r.metrics.Observe("range_ascending", r.network, err, start)
		}()

		it, err := r.db.NewIter(&pebble.IterOptions{
			LowerBound: blockKey(from),
			UpperBound: blockKey(to),
		})
		if err != nil {
			err = fmt.Errorf("create iterator: %w", err)
			yield(model.Block{}, err)
			return
		}
		defer it.Close()

		for valid := it.First(); valid; valid = it.Next() {
			if err = ctx.Err(); err != nil {
				yield(model.Block{}, err)
				return
			}
			var block model.Block
			if block, err = decodeBlock(it.Value()); err != nil {
				yield(model.Block{}, err)
				return
			}
			if !yield(block, nil) {
				return
			}
		}
		if err = it.Error(); err != nil {
			err = fmt.Errorf("iterate blocks [%d, %d): %w", from, to, err)
			yield(model.Block{}, err)
		}
	}
}
