// Package streamer keeps a transaction graph moving forward with the block
// store: it resumes from the newest snapshot, extends the graph one step at a
// time and snapshots every step.
package streamer

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/goodnatureofminers/blockgraph7000-backend/internal/clock"
	"github.com/goodnatureofminers/blockgraph7000-backend/internal/graph"
	"github.com/goodnatureofminers/blockgraph7000-backend/internal/graph/snapshot"
	"github.com/goodnatureofminers/blockgraph7000-backend/pkg/safe"
	"go.uber.org/zap"
)

const (
	sleepDuration       = 5 * time.Second
	defaultPollInterval = 30 * time.Second
	defaultStep         = 1000
)

// Config positions the graph and paces the loop.
type Config struct {
	Start        uint64
	Step         uint64
	PollInterval time.Duration
}

// Service extends one graph state in fixed steps.
type Service struct {
	logger        *zap.Logger
	builder       Builder
	snapshots     SnapshotStore
	heights       BlockHeights
	start         uint64
	step          uint64
	pollInterval  time.Duration
	sleep         func(context.Context, time.Duration) error
	sleepDuration time.Duration

	state *graph.State
}

// NewService wires a Service.
func NewService(builder Builder, snapshots SnapshotStore, heights BlockHeights, cfg Config, logger *zap.Logger) (*Service, error) {
	if builder == nil {
		return nil, errors.New("graph builder is required")
	}
	if snapshots == nil {
		return nil, errors.New("snapshot store is required")
	}
	if heights == nil {
		return nil, errors.New("block heights source is required")
	}
	if cfg.Step == 0 {
		cfg.Step = defaultStep
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	return &Service{
		logger:        logger,
		builder:       builder,
		snapshots:     snapshots,
		heights:       heights,
		start:         cfg.Start,
		step:          cfg.Step,
		pollInterval:  cfg.PollInterval,
		sleep:         clock.SleepWithContext,
		sleepDuration: sleepDuration,
	}, nil
}

// State returns the current graph, nil before the first step.
func (s *Service) State() *graph.State {
	return s.state
}

// Run steps until the context is canceled. It waits for the poll interval
// whenever the store does not yet hold the next window.
func (s *Service) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		advanced, err := s.Step(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn("run iteration failed, backing off", zap.Error(err), zap.Duration("sleep", s.sleepDuration))
			if sleepErr := s.sleep(ctx, s.sleepDuration); sleepErr != nil {
				return sleepErr
			}
			continue
		}
		if !advanced {
			if sleepErr := s.sleep(ctx, s.pollInterval); sleepErr != nil {
				return sleepErr
			}
		}
	}
}

// Step advances the graph by one window when the store covers it.
func (s *Service) Step(ctx context.Context) (bool, error) {
	if s.state == nil {
		resumed, err := s.resume(ctx)
		if err != nil {
			return false, err
		}
		if resumed {
			return true, nil
		}
	}

	from := s.start
	if s.state != nil {
		from = s.state.EndBlock
	}
	end, err := safe.Add(from, s.step)
	if err != nil {
		return false, fmt.Errorf("next window: %w", err)
	}

	highest, err := s.heights.HighestNumber(ctx)
	if err != nil {
		return false, fmt.Errorf("get highest stored number: %w", err)
	}
	if highest+1 < end {
		s.logger.Debug("waiting for blocks", zap.Uint64("highest", highest), zap.Uint64("next_end", end))
		return false, nil
	}

	if s.state == nil {
		state, err := s.builder.Build(ctx, s.start, end)
		if err != nil {
			return false, fmt.Errorf("build graph [%d, %d): %w", s.start, end, err)
		}
		s.state = state
	} else if err := s.builder.Extend(ctx, s.state, end); err != nil {
		return false, fmt.Errorf("extend graph to %d: %w", end, err)
	}

	if err := s.save(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) save(ctx context.Context) error {
	saved, err := s.snapshots.Save(ctx, s.state)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	fields := []zap.Field{
		zap.Uint64("start", s.state.StartBlock),
		zap.Uint64("end", s.state.EndBlock),
		zap.Int("vertices", s.state.VertexCount()),
		zap.Int("edges", len(s.state.Edges)),
	}
	if !saved {
		s.logger.Debug("graph is empty, snapshot skipped", fields...)
		return nil
	}
	s.logger.Info("graph snapshot saved", fields...)
	return nil
}

// resume loads the newest snapshot that starts at the configured block.
// Unreadable snapshots are skipped in favor of older ones.
func (s *Service) resume(ctx context.Context) (bool, error) {
	ranges, err := s.snapshots.Ranges(ctx)
	if err != nil {
		return false, fmt.Errorf("list snapshots: %w", err)
	}

	candidates := slices.DeleteFunc(ranges, func(r snapshot.Range) bool {
		return r.Start != s.start
	})
	for i := len(candidates) - 1; i >= 0; i-- {
		r := candidates[i]
		state, err := s.snapshots.Load(ctx, r.Start, r.End)
		switch {
		case err == nil:
			s.state = state
			s.logger.Info("resumed graph from snapshot",
				zap.Stringer("range", r),
				zap.Int("vertices", state.VertexCount()),
				zap.Int("edges", len(state.Edges)),
			)
			return true, nil
		case errors.Is(err, snapshot.ErrSnapshotNotFound), errors.Is(err, snapshot.ErrSnapshotCorrupted):
			s.logger.Warn("skipping unusable snapshot", zap.Stringer("range", r), zap.Error(err))
		default:
			return false, fmt.Errorf("load snapshot %s: %w", r, err)
		}
	}
	return false, nil
}
