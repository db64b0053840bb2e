package reconciler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/blockgraph7000-backend/internal/clock"
	"github.com/goodnatureofminers/blockgraph7000-backend/internal/ledger/model"
	"go.uber.org/zap"
)

// Config tunes the reconcile loop.
type Config struct {
	PollInterval  time.Duration
	ProgressEvery uint64
}

// Service repeats reconciliation passes until the context ends.
type Service struct {
	logger        *zap.Logger
	reader        LedgerReader
	reconciler    *Reconciler
	sleep         func(context.Context, time.Duration) error
	sleepDuration time.Duration
	pollInterval  time.Duration
	blockSignal   <-chan struct{}
	followers     []Follower
}

// NewService builds a Service. blockSignal may be nil; when set, a value on it
// cuts the poll wait short.
func NewService(
	reader LedgerReader,
	store BlockStore,
	metrics Metrics,
	network model.Network,
	cfg Config,
	logger *zap.Logger,
	blockSignal <-chan struct{},
) (*Service, error) {
	logger = logger.With(zap.String("network", string(network)))

	rec, err := NewReconciler(reader, store, metrics, cfg.ProgressEvery, logger.Named("reconciler"))
	if err != nil {
		return nil, err
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}

	return &Service{
		logger:        logger,
		reader:        reader,
		reconciler:    rec,
		sleep:         clock.SleepWithContext,
		sleepDuration: sleepDuration,
		pollInterval:  cfg.PollInterval,
		blockSignal:   blockSignal,
	}, nil
}

// Follow registers f to catch up with the store after every pass. Followers
// run in the same goroutine as the passes, so they share the store without
// extra locking.
func (s *Service) Follow(f Follower) {
	s.followers = append(s.followers, f)
}

// Run probes the node, then reconciles until the context is canceled or the
// store is found corrupted.
func (s *Service) Run(ctx context.Context) error {
	if err := s.reader.Ping(ctx); err != nil {
		return err
	}
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := s.run(ctx); err != nil {
			if errors.Is(err, ErrStoreCorrupted) {
				return err
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn("run iteration failed, backing off", zap.Error(err), zap.Duration("sleep", s.sleepDuration))
			if sleepErr := s.sleep(ctx, s.sleepDuration); sleepErr != nil {
				return sleepErr
			}
		}
	}
}

// RunOnce probes the node, performs a single pass and lets the followers
// catch up.
func (s *Service) RunOnce(ctx context.Context) (Report, error) {
	if err := s.reader.Ping(ctx); err != nil {
		return Report{}, err
	}
	report, err := s.pass(ctx)
	if err != nil {
		return report, err
	}
	return report, s.catchUp(ctx)
}

func (s *Service) run(ctx context.Context) error {
	if _, err := s.pass(ctx); err != nil {
		return err
	}
	if err := s.catchUp(ctx); err != nil {
		return err
	}
	return s.wait(ctx, s.pollInterval)
}

// catchUp steps every follower until it reports no progress.
func (s *Service) catchUp(ctx context.Context) error {
	for _, f := range s.followers {
		for {
			advanced, err := f.Step(ctx)
			if err != nil {
				return fmt.Errorf("follower step: %w", err)
			}
			if !advanced {
				break
			}
		}
	}
	return nil
}

func (s *Service) pass(ctx context.Context) (Report, error) {
	report, err := s.reconciler.Pass(ctx)
	if err != nil {
		return report, fmt.Errorf("reconcile pass: %w", err)
	}
	if report.Errors != nil {
		s.logger.Warn("pass finished with block errors", reportField(report), zap.Error(report.Errors))
	} else if report.Backfilled+report.Streamed > 0 {
		s.logger.Info("pass finished", reportField(report))
	} else {
		s.logger.Debug("store is caught up", reportField(report))
	}
	return report, nil
}

func (s *Service) wait(ctx context.Context, d time.Duration) error {
	if s.blockSignal == nil {
		return s.sleep(ctx, d)
	}
	return clock.WaitOrSignal(ctx, d, s.blockSignal)
}
