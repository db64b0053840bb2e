// Package clock holds context-aware waits shared by the service loops.
package clock

import (
	"context"
	"time"
)

// SleepWithContext waits for d unless ctx ends first.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	return WaitOrSignal(ctx, d, nil)
}

// WaitOrSignal waits for d, a value on signal or the end of ctx. A nil signal
// never fires.
func WaitOrSignal(ctx context.Context, d time.Duration, signal <-chan struct{}) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-signal:
		return nil
	case <-timer.C:
		return nil
	}
}
