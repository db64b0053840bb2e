package clickhouse

import (
	"context"
	"fmt"
	"iter"
	"time"
)

// NumbersAscending streams distinct stored block numbers in ascending order.
func (r *Repository) NumbersAscending(ctx context.Context) iter.Seq2[uint64, error] {
	return func(yield func(uint64, error) bool) {
		start := time.Now()
		var err error
		defer func() {
			r.metrics.Observe("numbers_ascending", r.network, err, start)
		}()

		const query = `
SELECT DISTINCT number
FROM ledger_blocks
WHERE network = ?
ORDER BY number`

		rows, err := r.conn.Query(ctx, query, string(r.network))
		if err != nil {
			err = fmt.Errorf("query block numbers: %w", err)
			yield(0, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			var number uint64
			if err = rows.Scan(&number); err != nil {
				err = fmt.Errorf("scan block number: %w", err)
				yield(0, err)
				return
			}
			if !yield(number, nil) {
				return
			}
		}
		if err = rows.Err(); err != nil {
			err = fmt.Errorf("iterate block numbers: %w", err)
			yield(0, err)
		}
	}
}
