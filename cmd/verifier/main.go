package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/goodnatureofminers/blockgraph7000-backend/internal/ledger/ethereum"
	"github.com/goodnatureofminers/blockgraph7000-backend/internal/ledger/model"
	"github.com/goodnatureofminers/blockgraph7000-backend/internal/ledger/repository"
	"github.com/goodnatureofminers/blockgraph7000-backend/internal/ledger/service/verifier"
	"github.com/goodnatureofminers/blockgraph7000-backend/internal/metrics"
	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"
)

type config struct {
	Network       model.Network `long:"network" env:"VERIFIER_NETWORK" description:"network name" default:"mainnet"`
	RPCURL        string        `long:"rpc-url" env:"VERIFIER_RPC_URL" description:"node JSON-RPC URL" default:"http://127.0.0.1:8545"`
	RPCDelay      time.Duration `long:"rpc-delay" env:"VERIFIER_RPC_DELAY" description:"minimum delay between RPC calls" default:"100us"`
	RPCTimeout    time.Duration `long:"rpc-timeout" env:"VERIFIER_RPC_TIMEOUT" description:"HTTP timeout for RPC requests" default:"30s"`
	Store         string        `long:"store" env:"VERIFIER_STORE" description:"block store backend" choice:"pebble" choice:"clickhouse" default:"pebble"`
	DataDir       string        `long:"data-dir" env:"VERIFIER_DATA_DIR" description:"pebble data directory" default:"data/blocks"`
	ClickhouseDSN string        `long:"clickhouse-dsn" env:"VERIFIER_CLICKHOUSE_DSN" description:"ClickHouse DSN"`
	From          uint64        `long:"from" env:"VERIFIER_FROM" description:"lowest block number to sample" default:"1"`
	To            uint64        `long:"to" env:"VERIFIER_TO" description:"highest block number to sample, 0 for the highest stored"`
	Sample        int           `long:"sample" env:"VERIFIER_SAMPLE" description:"number of blocks to check" default:"100"`
	Workers       int           `long:"workers" env:"VERIFIER_WORKERS" description:"concurrent checks" default:"4"`
	MetricsAddr   string        `long:"metrics-addr" env:"VERIFIER_METRICS_ADDR" description:"address for metrics server" default:":2114"`
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

	clean, err := run(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("verifier failed", zap.Error(err))
	}
	if !clean {
		_ = logger.Sync()
		os.Exit(2)
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) (bool, error) {
	metrics.StartServer(ctx, cfg.MetricsAddr, logger)
	logger = logger.With(zap.String("network", string(cfg.Network)))

	store, err := repository.Open(repository.Config{
		Backend:       cfg.Store,
		DataDir:       cfg.DataDir,
		ClickhouseDSN: cfg.ClickhouseDSN,
		Network:       cfg.Network,
	})
	if err != nil {
		if cfg.Store == repository.BackendPebble {
			return false, fmt.Errorf("init block store (pebble is locked while a crawler runs on %s): %w", cfg.DataDir, err)
		}
		return false, fmt.Errorf("init block store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("close block store", zap.Error(err))
		}
	}()

	client, err := rpc.DialOptions(ctx, cfg.RPCURL, rpc.WithHTTPClient(&http.Client{Timeout: cfg.RPCTimeout}))
	if err != nil {
		return false, fmt.Errorf("init rpc client: %w", err)
	}
	defer client.Close()

	reader := ethereum.NewReader(
		ethereum.NewRPCClient(client, metrics.NewRPCClient(cfg.Network)),
		cfg.RPCDelay,
		logger.Named("reader"),
	)
	if err := reader.Ping(ctx); err != nil {
		return false, err
	}

	hi := cfg.To
	if hi == 0 {
		if hi, err = store.HighestNumber(ctx); err != nil {
			return false, fmt.Errorf("get highest stored number: %w", err)
		}
	}
	if hi < cfg.From {
		logger.Info("nothing stored in range", zap.Uint64("from", cfg.From), zap.Uint64("to", hi))
		return true, nil
	}

	v, err := verifier.NewVerifier(reader, store, metrics.NewVerifier(cfg.Network), cfg.Workers, logger.Named("verifier"))
	if err != nil {
		return false, err
	}
	report, err := v.Verify(ctx, cfg.From, hi, cfg.Sample)
	if err != nil {
		return false, err
	}
	for _, m := range report.Mismatches {
		logger.Warn("mismatch", zap.Uint64("number", m.Number), zap.String("reason", m.Reason))
	}
	if len(report.Missing) > 0 {
		logger.Warn("missing blocks", zap.Uint64s("numbers", report.Missing))
	}
	return report.Clean(), nil
}
