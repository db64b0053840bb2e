package pebble

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/goodnatureofminers/blockgraph7000-backend/internal/ledger/model"
)

// Upsert inserts the block unless its number is already stored. The write is
// synced before returning. duplicate reports that the store was left unchanged.
func (r *Repository) Upsert(ctx context.Context, block model.Block) (duplicate bool, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("upsert", r.network, err, start)
	}()

	if err = ctx.Err(); err != nil {
		return false, err
	}

	key := blockKey(block.Number)
	value, err := encodeBlock(block)
	if err != nil {
		return false, err
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	_, closer, err := r.db.Get(key)
	switch {
	case err == nil:
		err = closer.Close()
		return true, err
	case !errors.Is(err, pebble.ErrNotFound):
		return false, fmt.Errorf("lookup block %d: %w", block.Number, err)
	}

	if err = r.db.Set(key, value, pebble.Sync); err != nil {
		return false, fmt.Errorf("write block %d: %w", block.Number, err)
	}
	return false, nil
}
