package reconciler

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Report summarizes one reconciliation pass.
type Report struct {
	ChainHeight   uint64
	HighestBefore uint64
	Backfilled    int
	Streamed      int
	Placeholders  int
	Duplicates    int
	// Errors accumulates per-block failures that did not abort the pass.
	Errors error
}

func (r *Report) addError(err error) {
	r.Errors = multierr.Append(r.Errors, err)
}

// Failed returns the number of per-block failures.
func (r Report) Failed() int {
	return len(multierr.Errors(r.Errors))
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (r Report) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddUint64("chain_height", r.ChainHeight)
	enc.AddUint64("highest_before", r.HighestBefore)
	enc.AddInt("backfilled", r.Backfilled)
	enc.AddInt("streamed", r.Streamed)
	enc.AddInt("placeholders", r.Placeholders)
	enc.AddInt("duplicates", r.Duplicates)
	enc.AddInt("failed", r.Failed())
	return nil
}

var _ zapcore.ObjectMarshaler = Report{}

func reportField(r Report) zap.Field {
	return zap.Object("report", r)
}
