package pebble

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/goodnatureofminers/blockgraph7000-backend/internal/ledger/model"
)

// Block returns the stored block with the given number.
func (r *Repository) Block(ctx context.Context, number uint64) (block model.Block, found bool, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("block", r.network, err, start)
	}()

	if err = ctx.Err(); err != nil {
		return model.Block{}, false, err
	}

	value, closer, err := r.db.Get(blockKey(number))
	if errors.Is(err, pebble.ErrNotFound) {
		err = nil
		return model.Block{}, false, nil
	}
	if err != nil {
		return model.Block{}, false, fmt.Errorf("get block %d: %w", number, err)
	}
	defer func() {
		if closeErr := closer.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("release block %d: %w", number, closeErr)
		}
	}()

	block, err = decodeBlock(value)
	if err != nil {
		return model.Block{}, false, err
	}
	return block, true, nil
}
