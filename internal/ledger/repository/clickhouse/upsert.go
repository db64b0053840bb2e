package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/blockgraph7000-backend/internal/ledger/model"
	"github.com/shopspring/decimal"
)

const insertBlockQuery = `
INSERT INTO ledger_blocks (
	network,
	number,
	timestamp,
	placeholder,
	tx_from,
	tx_to,
	tx_value,
	tx_data
) VALUES`

// Upsert inserts the block unless its number is already stored for the network.
func (r *Repository) Upsert(ctx context.Context, block model.Block) (duplicate bool, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("upsert", r.network, err, start)
	}()

	exists, err := r.blockExists(ctx, block.Number)
	if err != nil {
		return false, err
	}
	if exists {
		return true, nil
	}

	batch, err := r.conn.PrepareBatch(ctx, insertBlockQuery)
	if err != nil {
		return false, fmt.Errorf("prepare block batch: %w", err)
	}

	from, to, values, data := splitTransactions(block.Transactions)
	if err = batch.Append(
		string(r.network),
		block.Number,
		block.Timestamp,
		block.Placeholder,
		from,
		to,
		values,
		data,
	); err != nil {
		_ = batch.Abort()
		return false, fmt.Errorf("append block %d: %w", block.Number, err)
	}

	if err = batch.Send(); err != nil {
		return false, fmt.Errorf("insert block %d: %w", block.Number, err)
	}
	return false, nil
}

func (r *Repository) blockExists(ctx context.Context, number uint64) (exists bool, err error) {
	const query = `
SELECT count() AS cnt
FROM ledger_blocks
WHERE network = ? AND number = ?`

	rows, err := r.conn.Query(ctx, query, string(r.network), number)
	if err != nil {
		return false, fmt.Errorf("query block %d existence: %w", number, err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	var count uint64
	if !rows.Next() {
		return false, fmt.Errorf("block %d existence not returned", number)
	}
	if err = rows.Scan(&count); err != nil {
		return false, fmt.Errorf("scan block %d existence: %w", number, err)
	}
	if err = rows.Err(); err != nil {
		return false, fmt.Errorf("iterate block %d existence: %w", number, err)
	}
	return count > 0, nil
}

func splitTransactions(txs []model.Transaction) (from []string, to []*string, values []decimal.Decimal, data []string) {
	from = make([]string, 0, len(txs))
	to = make([]*string, 0, len(txs))
	values = make([]decimal.Decimal, 0, len(txs))
	data = make([]string, 0, len(txs))
	for _, tx := range txs {
		from = append(from, string(tx.From))
		if tx.To != nil {
			recipient := string(*tx.To)
			to = append(to, &recipient)
		} else {
			to = append(to, nil)
		}
		values = append(values, tx.Value)
		data = append(data, string(tx.Data))
	}
	return from, to, values, data
}
