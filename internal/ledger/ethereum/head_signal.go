package ethereum

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

// SubscribeNewHeads signals on the returned channel whenever the node announces
// a new head. Endpoints without notification support return an error.
func SubscribeNewHeads(ctx context.Context, client *rpc.Client, logger *zap.Logger) (<-chan struct{}, error) {
	heads := make(chan json.RawMessage, 16)
	sub, err := client.EthSubscribe(ctx, heads, "newHeads")
	if err != nil {
		return nil, fmt.Errorf("subscribe new heads: %w", err)
	}

	notify := make(chan struct{}, 1)
	go func() {
		defer sub.Unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case err := <-sub.Err():
				if err != nil {
					logger.Warn("new heads subscription dropped", zap.Error(err))
				}
				return
			case <-heads:
				select {
				case notify <- struct{}{}:
				default:
				}
			}
		}
	}()

	return notify, nil
}
