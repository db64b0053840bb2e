package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/goodnatureofminers/blockgraph7000-backend/internal/graph"
	"github.com/goodnatureofminers/blockgraph7000-backend/internal/graph/service/streamer"
	"github.com/goodnatureofminers/blockgraph7000-backend/internal/graph/snapshot"
	"github.com/goodnatureofminers/blockgraph7000-backend/internal/ledger/ethereum"
	"github.com/goodnatureofminers/blockgraph7000-backend/internal/ledger/model"
	"github.com/goodnatureofminers/blockgraph7000-backend/internal/ledger/repository"
	"github.com/goodnatureofminers/blockgraph7000-backend/internal/ledger/service/reconciler"
	"github.com/goodnatureofminers/blockgraph7000-backend/internal/metrics"
	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"
)

type config struct {
	Network       model.Network `long:"network" env:"CRAWLER_NETWORK" description:"network name" default:"mainnet"`
	RPCURL        string        `long:"rpc-url" env:"CRAWLER_RPC_URL" description:"node JSON-RPC URL (http or ws)" default:"http://127.0.0.1:8545"`
	RPCDelay      time.Duration `long:"rpc-delay" env:"CRAWLER_RPC_DELAY" description:"minimum delay between RPC calls" default:"100us"`
	RPCTimeout    time.Duration `long:"rpc-timeout" env:"CRAWLER_RPC_TIMEOUT" description:"HTTP timeout for RPC requests" default:"30s"`
	Store         string        `long:"store" env:"CRAWLER_STORE" description:"block store backend" choice:"pebble" choice:"clickhouse" default:"pebble"`
	DataDir       string        `long:"data-dir" env:"CRAWLER_DATA_DIR" description:"pebble data directory" default:"data/blocks"`
	ClickhouseDSN string        `long:"clickhouse-dsn" env:"CRAWLER_CLICKHOUSE_DSN" description:"ClickHouse DSN"`
	PollInterval  time.Duration `long:"poll-interval" env:"CRAWLER_POLL_INTERVAL" description:"wait between passes once caught up" default:"15s"`
	ProgressEvery uint64        `long:"progress-every" env:"CRAWLER_PROGRESS_EVERY" description:"log progress every N blocks" default:"1000"`
	Once          bool          `long:"once" env:"CRAWLER_ONCE" description:"run a single pass and exit"`
	MetricsAddr   string        `long:"metrics-addr" env:"CRAWLER_METRICS_ADDR" description:"address for metrics server" default:":2112"`

	Graph           bool   `long:"graph" env:"CRAWLER_GRAPH" description:"extend the transaction graph after every pass"`
	SnapshotBackend string `long:"snapshot-backend" env:"CRAWLER_SNAPSHOT_BACKEND" description:"snapshot store backend" choice:"file" choice:"badger" default:"file"`
	SnapshotDir     string `long:"snapshot-dir" env:"CRAWLER_SNAPSHOT_DIR" description:"snapshot directory" default:"data/snapshots"`
	GraphStart      uint64 `long:"graph-start" env:"CRAWLER_GRAPH_START" description:"first block of the graph" default:"1"`
	GraphStep       uint64 `long:"graph-step" env:"CRAWLER_GRAPH_STEP" description:"blocks added per extension" default:"1000"`
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
		logger.Fatal("crawler failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	metrics.StartServer(ctx, cfg.MetricsAddr, logger)

	store, err := repository.Open(repository.Config{
		Backend:       cfg.Store,
		DataDir:       cfg.DataDir,
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

	client, err := dialNode(ctx, cfg.RPCURL, cfg.RPCTimeout)
	if err != nil {
		return fmt.Errorf("init rpc client: %w", err)
	}
	defer client.Close()

	reader := ethereum.NewReader(
		ethereum.NewRPCClient(client, metrics.NewRPCClient(cfg.Network)),
		cfg.RPCDelay,
		logger.Named("reader"),
	)

	var blockSignal <-chan struct{}
	if !cfg.Once && isWebsocket(cfg.RPCURL) {
		blockSignal, err = ethereum.SubscribeNewHeads(ctx, client, logger.Named("heads"))
		if err != nil {
			logger.Warn("new heads unavailable, polling only", zap.Error(err))
			blockSignal = nil
		}
	}

	svc, err := reconciler.NewService(
		reader,
		store,
		metrics.NewReconciler(cfg.Network),
		cfg.Network,
		reconciler.Config{PollInterval: cfg.PollInterval, ProgressEvery: cfg.ProgressEvery},
		logger,
		blockSignal,
	)
	if err != nil {
		return err
	}

	if cfg.Graph {
		closeGraph, err := followWithGraph(svc, store, cfg, logger)
		if err != nil {
			return err
		}
		defer closeGraph()
	}

	if cfg.Once {
		report, err := svc.RunOnce(ctx)
		if err != nil {
			return err
		}
		if report.Errors != nil {
			return fmt.Errorf("pass finished with %d block errors: %w", report.Failed(), report.Errors)
		}
		return nil
	}
	return svc.Run(ctx)
}

// followWithGraph streams the transaction graph from the crawler's own store
// handle. Pebble admits one process per data dir, so the graph cannot be fed
// by a second process.
func followWithGraph(svc *reconciler.Service, store repository.Store, cfg config, logger *zap.Logger) (func(), error) {
	snapshots, err := snapshot.Open(cfg.SnapshotBackend, cfg.SnapshotDir, metrics.NewSnapshotStore(cfg.SnapshotBackend), logger.Named("snapshots"))
	if err != nil {
		return nil, fmt.Errorf("init snapshot store: %w", err)
	}
	closeSnapshots := func() {
		if err := snapshots.Close(); err != nil {
			logger.Error("close snapshot store", zap.Error(err))
		}
	}

	builder, err := graph.NewBuilder(store, metrics.NewGraphBuilder(cfg.Network), logger.Named("builder"))
	if err != nil {
		closeSnapshots()
		return nil, err
	}
	graphs, err := streamer.NewService(builder, snapshots, store, streamer.Config{
		Start: cfg.GraphStart,
		Step:  cfg.GraphStep,
	}, logger.Named("graph"))
	if err != nil {
		closeSnapshots()
		return nil, err
	}
	svc.Follow(graphs)
	return closeSnapshots, nil
}

func dialNode(ctx context.Context, rawURL string, timeout time.Duration) (*rpc.Client, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse rpc url: %w", err)
	}
	if parsed.Host == "" {
		return nil, errors.New("rpc url missing host")
	}
	switch parsed.Scheme {
	case "http", "https":
		return rpc.DialOptions(ctx, rawURL, rpc.WithHTTPClient(&http.Client{Timeout: timeout}))
	case "ws", "wss":
		return rpc.DialOptions(ctx, rawURL)
	default:
		return nil, fmt.Errorf("rpc url scheme %q not supported", parsed.Scheme)
	}
}

func isWebsocket(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	return err == nil && (parsed.Scheme == "ws" || parsed.Scheme == "wss")
}
