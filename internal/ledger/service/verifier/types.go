package verifier

import (
	"context"
	"time"

	"github.com/goodnatureofminers/blockgraph7000-backend/internal/ledger/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	LedgerReader interface {
		FetchBlock(ctx context.Context, number uint64) (*model.Block, error)
	}
	BlockStore interface {
		Block(ctx context.Context, number uint64) (model.Block, bool, error)
	}
	Metrics interface {
		ObserveBlock(result string)
		ObserveRun(err error, started time.Time)
	}
)
