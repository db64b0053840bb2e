package graph

import (
	"context"
	"iter"
	"time"

	"github.com/goodnatureofminers/blockgraph7000-backend/internal/ledger/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	BlockRange interface {
		RangeAscending(ctx context.Context, from, to uint64) iter.Seq2[model.Block, error]
	}
	Metrics interface {
		Observe(operation string, err error, blocks int, started time.Time)
		ObserveSize(vertices, edges int)
	}
)
