package ethereum

import (
	"context"
	"time"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Caller issues a single JSON-RPC call. *rpc.Client satisfies it.
	Caller interface {
		CallContext(ctx context.Context, result any, method string, args ...any) error
	}
	RPCMetrics interface {
		Observe(operation string, err error, started time.Time)
	}
	// Limiter blocks until the next call is admitted. ratelimit.Limiter satisfies it.
	Limiter interface {
		Take() time.Time
	}
)
