package clickhouse

import (
	"fmt"
	"time"

	"github.com/goodnatureofminers/blockgraph7000-backend/internal/ledger/model"
	"github.com/shopspring/decimal"
)

const blockColumns = `number, timestamp, placeholder, tx_from, tx_to, tx_value, tx_data`

func scanBlock(rows Rows) (model.Block, error) {
	var (
		number      uint64
		timestamp   time.Time
		placeholder bool
		from        []string
		to          []*string
		values      []decimal.Decimal
		data        []string
	)
	if err := rows.Scan(&number, &timestamp, &placeholder, &from, &to, &values, &data); err != nil {
		return model.Block{}, fmt.Errorf("scan block: %w", err)
	}
	if len(to) != len(from) || len(values) != len(from) || len(data) != len(from) {
		return model.Block{}, fmt.Errorf("block %d has misaligned transaction columns", number)
	}

	block := model.Block{
		Number:       number,
		Timestamp:    timestamp.UTC(),
		Placeholder:  placeholder,
		Transactions: make([]model.Transaction, 0, len(from)),
	}
	for i := range from {
		tx := model.Transaction{
			From:  model.Address(from[i]),
			Value: values[i],
		}
		if to[i] != nil {
			recipient := model.Address(*to[i])
			tx.To = &recipient
		}
		if data[i] != "" {
			tx.Data = []byte(data[i])
		}
		block.Transactions = append(block.Transactions, tx)
	}
	return block, nil
}
