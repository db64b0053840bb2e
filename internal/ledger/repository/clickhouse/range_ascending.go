package clickhouse

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/goodnatureofminers/blockgraph7000-backend/internal/ledger/model"
)

// RangeAscending streams blocks with from <= number < to in ascending order.
// The first inserted row wins when a number was written twice.
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

		const query = `
SELECT ` + blockColumns + `
FROM ledger_blocks
WHERE network = ? AND number >= ? AND number < ?
ORDER BY number, inserted_at
LIMIT 1 BY number`

		rows, err := r.conn.Query(ctx, query, string(r.network), from, to)
		if err != nil {
			err = fmt.Errorf("query blocks [%d, %d): %w", from, to, err)
			yield(model.Block{}, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			var block model.Block
			if block, err = scanBlock(rows); err != nil {
				yield(model.Block{}, err)
				return
			}
			if !yield(block, nil) {
				return
			}
		}
		if err = rows.Err(); err != nil {
			err = fmt.Errorf("iterate blocks [%d, %d): %w", from, to, err)
			yield(model.Block{}, err)
		}
	}
}
