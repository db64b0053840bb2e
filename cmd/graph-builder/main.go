package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goodnatureofminers/blockgraph7000-backend/internal/graph"
	"github.com/goodnatureofminers/blockgraph7000-backend/internal/graph/service/streamer"
	"github.com/goodnatureofminers/blockgraph7000-backend/internal/graph/snapshot"
	"github.com/goodnatureofminers/blockgraph7000-backend/internal/ledger/model"
	"github.com/goodnatureofminers/blockgraph7000-backend/internal/ledger/repository"
	"github.com/goodnatureofminers/blockgraph7000-backend/internal/metrics"
	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"
)

type config struct {
	Network         model.Network `long:"network" env:"GRAPH_BUILDER_NETWORK" description:"network name" default:"mainnet"`
	Store           string        `long:"store" env:"GRAPH_BUILDER_STORE" description:"block store backend, pebble graphs are built by crawler --graph" choice:"pebble" choice:"clickhouse" default:"clickhouse"`
	ClickhouseDSN   string        `long:"clickhouse-dsn" env:"GRAPH_BUILDER_CLICKHOUSE_DSN" description:"ClickHouse DSN"`
	SnapshotBackend string        `long:"snapshot-backend" env:"GRAPH_BUILDER_SNAPSHOT_BACKEND" description:"snapshot store backend" choice:"file" choice:"badger" default:"file"`
	SnapshotDir     string        `long:"snapshot-dir" env:"GRAPH_BUILDER_SNAPSHOT_DIR" description:"snapshot directory" default:"data/snapshots"`
	Start           uint64        `long:"start" env:"GRAPH_BUILDER_START" description:"first block of the graph" default:"1"`
	Step            uint64        `long:"step" env:"GRAPH_BUILDER_STEP" description:"blocks added per extension" default:"1000"`
	PollInterval    time.Duration `long:"poll-interval" env:"GRAPH_BUILDER_POLL_INTERVAL" description:"wait while the store is behind the next window" default:"30s"`
	MetricsAddr     string        `long:"metrics-addr" env:"GRAPH_BUILDER_METRICS_ADDR" description:"address for metrics server" default:":2113"`
}

func main() {
	cfg := config{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("failed to parse flags", zap.Error(err))
	}

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("graph builder failed", zap.Error(err))
	}
}

// errSharedStore rejects block stores that cannot be read while a crawler
// writes them.
var errSharedStore = errors.New("pebble block store admits one process per data dir; run crawler --graph to stream graphs from it")

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	if cfg.Store == repository.BackendPebble {
		return errSharedStore
	}
	metrics.StartServer(ctx, cfg.MetricsAddr, logger)
	logger = logger.With(zap.String("network", string(cfg.Network)))

	store, err := repository.Open(repository.Config{
		Backend:       cfg.Store,
		ClickhouseDSN: cfg.ClickhouseDSN,
		Network:       cfg.Network,
	})
	if err != nil {
		return fmt.Errorf("init block store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("close block store", zap.Error(err))
		}
	}()

	snapshots, err := snapshot.Open(cfg.SnapshotBackend, cfg.SnapshotDir, metrics.NewSnapshotStore(cfg.SnapshotBackend), logger.Named("snapshots"))
	if err != nil {
		return fmt.Errorf("init snapshot store: %w", err)
	}
	defer func() {
		if err := snapshots.Close(); err != nil {
			logger.Error("close snapshot store", zap.Error(err))
		}
	}()

	builder, err := graph.NewBuilder(store, metrics.NewGraphBuilder(cfg.Network), logger.Named("builder"))
	if err != nil {
		return err
	}

	svc, err := streamer.NewService(builder, snapshots, store, streamer.Config{
		Start:        cfg.Start,
		Step:         cfg.Step,
		PollInterval: cfg.PollInterval,
	}, logger)
	if err != nil {
		return err
	}
	return svc.Run(ctx)
}
