package ethereum

import (
	"context"
	"time"
)

// RPCClient wraps a JSON-RPC caller with metrics instrumentation.
type RPCClient struct {
	client     Caller
	rpcMetrics RPCMetrics
}

// NewRPCClient constructs an instrumented RPC client.
func NewRPCClient(client Caller, rpcMetrics RPCMetrics) *RPCClient {
	return &RPCClient{
		client:     client,
		rpcMetrics: rpcMetrics,
	}
}

// CallContext performs the call and records it under the method name.
func (r *RPCClient) CallContext(ctx context.Context, result any, method string, args ...any) (err error) {
	started := time.Now()
	defer func() {
		r.rpcMetrics.Observe(method, err, started)
	}()
	return r.client.CallContext(ctx, result, method, args...)
}
