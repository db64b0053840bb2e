package reconciler

import (
	"context"
	"iter"
	"time"

	"github.com/goodnatureofminers/blockgraph7000-backend/internal/ledger/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	LedgerReader interface {
		FetchBlock(ctx context.Context, number uint64) (*model.Block, error)
		ChainHeight(ctx context.Context) (uint64, error)
		Ping(ctx context.Context) error
	}
	BlockStore interface {
		Upsert(ctx context.Context, block model.Block) (bool, error)
		HighestNumber(ctx context.Context) (uint64, error)
		NumbersAscending(ctx context.Context) iter.Seq2[uint64, error]
	}
	Metrics interface {
		ObservePass(err error, started time.Time)
		ObserveBlock(phase, outcome string)
		ObserveHeights(stored, chain uint64)
	}
	Follower interface {
		Step(ctx context.Context) (bool, error)
	}
)
