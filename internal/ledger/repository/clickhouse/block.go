package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/blockgraph7000-backend/internal/ledger/model"
)

// Block returns the stored block with the given number.
func (r *Repository) Block(ctx context.Context, number uint64) (block model.Block, found bool, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("block", r.network, err, start)
	}()

	const query = `
SELECT ` + blockColumns + `
FROM ledger_blocks
WHERE network = ? AND number = ?
ORDER BY inserted_at
LIMIT 1`

	rows, err := r.conn.Query(ctx, query, string(r.network), number)
	if err != nil {
		return model.Block{}, false, fmt.Errorf("query block %d: %w", number, err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return model.Block{}, false, fmt.Errorf("iterate block %d: %w", number, err)
		}
		return model.Block{}, false, nil
	}
	if block, err = scanBlock(rows); err != nil {
		return model.Block{}, false, err
	}
	return block, true, nil
}
