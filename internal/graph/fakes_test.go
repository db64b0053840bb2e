package graph

import (
	"context"
	"iter"
	"slices"
	"time"

	"github.com/goodnatureofminers/blockgraph7000-backend/internal/ledger/model"
	"github.com/shopspring/decimal"
)

// sliceRange serves blocks kept in ascending order.
type sliceRange []model.Block

func (r sliceRange) RangeAscending(ctx context.Context, from, to uint64) iter.Seq2[model.Block, error] {
	return func(yield func(model.Block, error) bool) {
		for _, b := range r {
			if b.Number < from || b.Number >= to {
				continue
			}
			if err := ctx.Err(); err != nil {
				yield(model.Block{}, err)
				return
			}
			if !yield(b, nil) {
				return
			}
		}
	}
}

func newRange(blocks ...model.Block) sliceRange {
	out := slices.Clone(blocks)
	slices.SortFunc(out, func(a, b model.Block) int {
		switch {
		case a.Number < b.Number:
			return -1
		case a.Number > b.Number:
			return 1
		}
		return 0
	})
	return out
}

type nopMetrics struct{}

func (nopMetrics) Observe(string, error, int, time.Time) {}
func (nopMetrics) ObserveSize(int, int)                  {}

func addr(s string) *model.Address {
	a := model.Address(s)
	return &a
}

func transfer(from, to string, value string) model.Transaction {
	return model.Transaction{
		From:  model.Address(from),
		To:    addr(to),
		Value: decimal.RequireFromString(value),
	}
}

func block(number uint64, txs ...model.Transaction) model.Block {
	return model.Block{
		Number:       number,
		Timestamp:    time.Unix(1_438_269_988+int64(number)*15, 0).UTC(),
		Transactions: txs,
	}
}
