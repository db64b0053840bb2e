package clickhouse

import (
	"context"
	"fmt"
	"time"
)

// HighestNumber returns the maximum block number stored for the network, 0 when none.
func (r *Repository) HighestNumber(ctx context.Context) (number uint64, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("highest_number", r.network, err, start)
	}()

	const query = `
SELECT coalesce(max(number), toUInt64(0)) AS max_number
FROM ledger_blocks
WHERE network = ?`

	rows, err := r.conn.Query(ctx, query, string(r.network))
	if err != nil {
		return 0, fmt.Errorf("query highest block number: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	if !rows.Next() {
		return 0, fmt.Errorf("highest block number not found")
	}
	if err = rows.Scan(&number); err != nil {
		return 0, fmt.Errorf("scan highest block number: %w", err)
	}
	if err = rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate highest block number: %w", err)
	}
	return number, nil
}
