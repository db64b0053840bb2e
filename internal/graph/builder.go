package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	operationBuild  = "build"
	operationExtend = "extend"
)

// Builder folds stored blocks into graph states.
type Builder struct {
	blocks  BlockRange
	metrics Metrics
	logger  *zap.Logger
}

// NewBuilder wires a Builder over a block range source.
func NewBuilder(blocks BlockRange, metrics Metrics, logger *zap.Logger) (*Builder, error) {
	if blocks == nil {
		return nil, errors.New("block range source is required")
	}
	if metrics == nil {
		return nil, errors.New("graph builder metrics is required")
	}
	return &Builder{blocks: blocks, metrics: metrics, logger: logger}, nil
}

// Build returns the graph of every stored block in [start, end).
func (b *Builder) Build(ctx context.Context, start, end uint64) (_ *State, err error) {
	started := time.Now()
	scanned := 0
	defer func() {
		b.metrics.Observe(operationBuild, err, scanned, started)
	}()

	if start > end {
		return nil, fmt.Errorf("invalid range [%d, %d)", start, end)
	}

	state := NewState(start)
	if scanned, err = b.apply(ctx, state, start, end); err != nil {
		return nil, err
	}
	state.EndBlock = end

	b.metrics.ObserveSize(state.VertexCount(), len(state.Edges))
	b.logger.Debug("graph built",
		zap.Uint64("start", start),
		zap.Uint64("end", end),
		zap.Int("blocks", scanned),
		zap.Int("vertices", state.VertexCount()),
		zap.Int("edges", len(state.Edges)),
	)
	return state, nil
}

// Extend folds [state.EndBlock, newEnd) into state. On error state is left as
// it was before the call.
func (b *Builder) Extend(ctx context.Context, state *State, newEnd uint64) (err error) {
	started := time.Now()
	scanned := 0
	defer func() {
		b.metrics.Observe(operationExtend, err, scanned, started)
	}()

	if state == nil {
		return errors.New("graph state is nil")
	}
	if newEnd < state.EndBlock {
		return fmt.Errorf("extend to %d: before current end %d", newEnd, state.EndBlock)
	}
	if newEnd == state.EndBlock {
		return nil
	}
	if state.index == nil {
		if err = state.Reindex(); err != nil {
			return fmt.Errorf("reindex state: %w", err)
		}
	}

	from := state.EndBlock
	if scanned, err = b.apply(ctx, state, from, newEnd); err != nil {
		return err
	}
	state.EndBlock = newEnd

	b.metrics.ObserveSize(state.VertexCount(), len(state.Edges))
	b.logger.Debug("graph extended",
		zap.Uint64("from", from),
		zap.Uint64("to", newEnd),
		zap.Int("blocks", scanned),
		zap.Int("vertices", state.VertexCount()),
		zap.Int("edges", len(state.Edges)),
	)
	return nil
}

func (b *Builder) apply(ctx context.Context, state *State, from, to uint64) (int, error) {
	m := state.mark()
	scanned := 0
	for block, err := range b.blocks.RangeAscending(ctx, from, to) {
		if err != nil {
			state.rollback(m)
			return scanned, fmt.Errorf("scan blocks [%d, %d): %w", from, to, err)
		}
		if err := state.addBlock(block); err != nil {
			state.rollback(m)
			return scanned, fmt.Errorf("add block %d: %w", block.Number, err)
		}
		scanned++
	}
	return scanned, nil
}
