// Package reconciler keeps the block store complete: it backfills gaps below the
// stored maximum and then streams forward to the chain height.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync/atomic"
	"time"

	"github.com/goodnatureofminers/blockgraph7000-backend/internal/ledger/model"
	"go.uber.org/zap"
)

// ErrStoreCorrupted reports that the stored number sequence broke its ordering invariant.
var ErrStoreCorrupted = errors.New("block store corrupted")

// Reconciler runs single-writer reconciliation passes.
type Reconciler struct {
	reader        LedgerReader
	store         BlockStore
	metrics       Metrics
	logger        *zap.Logger
	progressEvery uint64
	state         atomic.Int32
}

// NewReconciler wires a Reconciler. progressEvery of 0 selects the default.
func NewReconciler(reader LedgerReader, store BlockStore, metrics Metrics, progressEvery uint64, logger *zap.Logger) (*Reconciler, error) {
	if reader == nil {
		return nil, errors.New("ledger reader is required")
	}
	if store == nil {
		return nil, errors.New("block store is required")
	}
	if metrics == nil {
		return nil, errors.New("reconciler metrics is required")
	}
	if progressEvery == 0 {
		progressEvery = defaultProgressEvery
	}
	return &Reconciler{
		reader:        reader,
		store:         store,
		metrics:       metrics,
		logger:        logger,
		progressEvery: progressEvery,
	}, nil
}

// State returns the current pass state.
func (r *Reconciler) State() State {
	return State(r.state.Load())
}

func (r *Reconciler) setState(s State) {
	r.state.Store(int32(s))
	r.logger.Debug("reconciler state", zap.Stringer("state", s))
}

// Pass backfills every missing number below the stored maximum, then stores
// every number above it up to the chain height observed at pass start.
// Per-block failures are collected in the report. Only context cancellation,
// store read failures and ErrStoreCorrupted abort the pass.
func (r *Reconciler) Pass(ctx context.Context) (report Report, err error) {
	started := time.Now()
	defer func() {
		r.metrics.ObservePass(err, started)
		if err != nil {
			r.setState(StateIdle)
		}
	}()

	r.setState(StateIdle)

	chainHeight, err := r.reader.ChainHeight(ctx)
	if err != nil {
		return report, fmt.Errorf("get chain height: %w", err)
	}
	highest, err := r.store.HighestNumber(ctx)
	if err != nil {
		return report, fmt.Errorf("get highest stored number: %w", err)
	}
	report.ChainHeight = chainHeight
	report.HighestBefore = highest
	r.metrics.ObserveHeights(highest, chainHeight)

	maxStored := highest
	if maxStored == 0 {
		maxStored = 1
	}

	r.setState(StateBackfillingGaps)
	if err = r.backfill(ctx, maxStored, &report); err != nil {
		return report, err
	}

	r.setState(StateStreamingForward)
	if err = r.stream(ctx, highest+1, chainHeight, &report); err != nil {
		return report, err
	}

	r.setState(StateCaughtUp)
	return report, nil
}

// backfill merges the candidates 1..maxStored-1 against the ascending stored
// numbers and fetches every candidate the store lacks.
func (r *Reconciler) backfill(ctx context.Context, maxStored uint64, report *Report) error {
	if maxStored <= 1 {
		return nil
	}

	next, stop := iter.Pull2(r.store.NumbersAscending(ctx))
	defer stop()

	cursor := storedCursor{next: next, maxStored: maxStored}
	if err := cursor.advance(); err != nil {
		return err
	}

	for n := uint64(1); n < maxStored; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for cursor.valid && cursor.current < n {
			if err := cursor.advance(); err != nil {
				return err
			}
		}
		if cursor.valid && cursor.current == n {
			if err := cursor.advance(); err != nil {
				return err
			}
			continue
		}

		if err := r.fill(ctx, n, phaseBackfill, report); err != nil {
			return err
		}
		if n%r.progressEvery == 0 {
			r.logger.Info("backfill progress",
				zap.Uint64("number", n),
				zap.Uint64("max_stored", maxStored),
				zap.Int("backfilled", report.Backfilled),
			)
		}
	}
	return nil
}

func (r *Reconciler) stream(ctx context.Context, from, chainHeight uint64, report *Report) error {
	for n := from; n <= chainHeight; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.fill(ctx, n, phaseStream, report); err != nil {
			return err
		}
		if n%r.progressEvery == 0 {
			r.logger.Info("stream progress",
				zap.Uint64("number", n),
				zap.Uint64("chain_height", chainHeight),
			)
		}
	}
	return nil
}

// fill fetches one block and stores it, substituting a placeholder when the
// node has nothing for the number. It returns only context errors.
func (r *Reconciler) fill(ctx context.Context, number uint64, phase string, report *Report) error {
	block, err := r.reader.FetchBlock(ctx, number)
	if err != nil {
		return err
	}

	outcome := outcomeInserted
	if block == nil {
		placeholder := model.NewPlaceholderBlock(number)
		block = &placeholder
		outcome = outcomePlaceholder
	}

	duplicate, err := r.store.Upsert(ctx, *block)
	switch {
	case err != nil:
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		r.logger.Warn("store block failed", zap.Uint64("number", number), zap.Error(err))
		report.addError(fmt.Errorf("store block %d: %w", number, err))
		outcome = outcomeError
	case duplicate:
		report.Duplicates++
		outcome = outcomeDuplicate
	default:
		if outcome == outcomePlaceholder {
			report.Placeholders++
		}
		if phase == phaseBackfill {
			report.Backfilled++
		} else {
			report.Streamed++
		}
	}
	r.metrics.ObserveBlock(phase, outcome)
	return nil
}

// storedCursor walks the stored numbers below maxStored and enforces that they
// are strictly ascending and never pass the maximum read at pass start.
type storedCursor struct {
	next      func() (uint64, error, bool)
	maxStored uint64
	current   uint64
	valid     bool
	seen      bool
}

func (c *storedCursor) advance() error {
	if c.seen && !c.valid {
		return nil
	}
	n, err, ok := c.next()
	if !ok {
		c.valid = false
		c.seen = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("read stored numbers: %w", err)
	}
	if c.seen && n <= c.current {
		return fmt.Errorf("%w: stored number %d follows %d", ErrStoreCorrupted, n, c.current)
	}
	if n > c.maxStored {
		return fmt.Errorf("%w: stored number %d above maximum %d", ErrStoreCorrupted, n, c.maxStored)
	}
	c.seen = true
	c.current = n
	c.valid = n < c.maxStored
	return nil
}
