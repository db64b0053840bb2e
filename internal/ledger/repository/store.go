// Package repository selects the block store backend.
package repository

import (
	"context"
	"fmt"
	"iter"

	"github.com/goodnatureofminers/blockgraph7000-backend/internal/ledger/model"
	"github.com/goodnatureofminers/blockgraph7000-backend/internal/ledger/repository/clickhouse"
	"github.com/goodnatureofminers/blockgraph7000-backend/internal/ledger/repository/pebble"
	"github.com/goodnatureofminers/blockgraph7000-backend/internal/metrics"
)

const (
	BackendPebble     = "pebble"
	BackendClickhouse = "clickhouse"
)

// Store is the full block store surface shared by every backend.
type Store interface {
	Upsert(ctx context.Context, block model.Block) (bool, error)
	HighestNumber(ctx context.Context) (uint64, error)
	NumbersAscending(ctx context.Context) iter.Seq2[uint64, error]
	RangeAscending(ctx context.Context, from, to uint64) iter.Seq2[model.Block, error]
	Block(ctx context.Context, number uint64) (model.Block, bool, error)
	Close() error
}

var (
	_ Store = (*pebble.Repository)(nil)
	_ Store = (*clickhouse.Repository)(nil)
)

// Config selects and locates a backend.
type Config struct {
	Backend       string
	DataDir       string
	ClickhouseDSN string
	Network       model.Network
}

// Open returns the configured block store.
func Open(cfg Config) (Store, error) {
	storeMetrics := metrics.NewBlockStore(cfg.Backend)
	switch cfg.Backend {
	case BackendPebble:
		repo, err := pebble.NewRepository(cfg.DataDir, cfg.Network, storeMetrics)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case BackendClickhouse:
		repo, err := clickhouse.NewRepository(cfg.ClickhouseDSN, cfg.Network, storeMetrics)
		if err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown block store backend %q", cfg.Backend)
	}
}
