package pebble

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
)

// HighestNumber returns the largest stored block number, or 0 when the store is empty.
func (r *Repository) HighestNumber(ctx context.Context) (number uint64, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("highest_number", r.network, err, start)
	}()

	if err = ctx.Err(); err != nil {
		return 0, err
	}

	iter, err := r.db.NewIter(&pebble.IterOptions{
		LowerBound: blockPrefix,
		UpperBound: blockPrefixEnd,
	})
	if err != nil {
		return 0, fmt.Errorf("create iterator: %w", err)
	}
	defer func() {
		if closeErr := iter.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close iterator: %w", closeErr)
		}
	}()

	if !iter.Last() {
		return 0, iter.Error()
	}
	return decodeBlockKey(iter.Key())
}
