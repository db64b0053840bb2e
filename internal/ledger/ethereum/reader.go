// Package ethereum reads blocks from an account-based ledger node over JSON-RPC.
package ethereum

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/goodnatureofminers/blockgraph7000-backend/internal/ledger/model"
	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

const (
	methodGetBlockByNumber = "eth_getBlockByNumber"
	methodBlockNumber      = "eth_blockNumber"
)

// ErrRemoteUnreachable reports that the node did not answer the startup probe.
var ErrRemoteUnreachable = errors.New("remote node unreachable")

// Reader fetches blocks and the chain height from a node.
type Reader struct {
	client  Caller
	limiter Limiter
	logger  *zap.Logger
}

// NewReader builds a Reader that spaces calls at least delay apart.
func NewReader(client Caller, delay time.Duration, logger *zap.Logger) *Reader {
	limiter := ratelimit.NewUnlimited()
	if delay > 0 {
		limiter = ratelimit.New(1, ratelimit.Per(delay), ratelimit.WithoutSlack)
	}
	return &Reader{
		client:  client,
		limiter: limiter,
		logger:  logger,
	}
}

// FetchBlock returns the block with the given number, or nil when the node
// has nothing usable for it. Only context errors are returned.
func (r *Reader) FetchBlock(ctx context.Context, number uint64) (*model.Block, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.limiter.Take()

	var raw json.RawMessage
	if err := r.client.CallContext(ctx, &raw, methodGetBlockByNumber, hexutil.EncodeUint64(number), true); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		r.logger.Warn("fetch block failed", zap.Uint64("number", number), zap.Error(err))
		return nil, nil
	}

	block, err := decodeBlock(raw, number)
	if err != nil {
		r.logger.Warn("discard malformed block", zap.Uint64("number", number), zap.Error(err))
		return nil, nil
	}
	return &block, nil
}

// ChainHeight returns the node's current block number.
func (r *Reader) ChainHeight(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.limiter.Take()

	var height hexutil.Uint64
	if err := r.client.CallContext(ctx, &height, methodBlockNumber); err != nil {
		return 0, fmt.Errorf("%s: %w", methodBlockNumber, err)
	}
	return uint64(height), nil
}

// Ping checks that the node answers at all.
func (r *Reader) Ping(ctx context.Context) error {
	if _, err := r.ChainHeight(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrRemoteUnreachable, err)
	}
	return nil
}
