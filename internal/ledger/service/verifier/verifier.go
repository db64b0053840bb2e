// Package verifier spot-checks stored blocks against the node.
package verifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/goodnatureofminers/blockgraph7000-backend/internal/ledger/model"
	"github.com/goodnatureofminers/blockgraph7000-backend/pkg/workerpool"
	"go.uber.org/zap"
)

const defaultWorkers = 4

// Verifier refetches a random sample of stored blocks and compares them with
// what the store holds. It never writes.
type Verifier struct {
	reader  LedgerReader
	store   BlockStore
	metrics Metrics
	logger  *zap.Logger
	workers int
	rnd     *rand.Rand
}

// NewVerifier wires a Verifier. workers of 0 selects the default.
func NewVerifier(reader LedgerReader, store BlockStore, metrics Metrics, workers int, logger *zap.Logger) (*Verifier, error) {
	if reader == nil {
		return nil, errors.New("ledger reader is required")
	}
	if store == nil {
		return nil, errors.New("block store is required")
	}
	if metrics == nil {
		return nil, errors.New("verifier metrics is required")
	}
	if workers <= 0 {
		workers = defaultWorkers
	}
	seed := uint64(time.Now().UnixNano())
	return &Verifier{
		reader:  reader,
		store:   store,
		metrics: metrics,
		logger:  logger,
		workers: workers,
		rnd:     rand.New(rand.NewPCG(seed, seed>>1)),
	}, nil
}

// Verify checks up to sample distinct numbers drawn from [lo, hi].
func (v *Verifier) Verify(ctx context.Context, lo, hi uint64, sample int) (report Report, err error) {
	started := time.Now()
	defer func() {
		v.metrics.ObserveRun(err, started)
	}()

	if lo > hi || hi-lo == math.MaxUint64 {
		return report, fmt.Errorf("invalid range [%d, %d]", lo, hi)
	}
	numbers := v.sample(lo, hi, sample)

	var mu sync.Mutex
	err = workerpool.Process(ctx, v.workers, numbers, func(ctx context.Context, number uint64) error {
		result, reason, err := v.check(ctx, number)
		if err != nil {
			return err
		}
		v.metrics.ObserveBlock(result)
		if result == resultMismatch {
			v.logger.Warn("stored block differs from node", zap.Uint64("number", number), zap.String("reason", reason))
		}
		mu.Lock()
		report.add(number, result, reason)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return report, err
	}

	report.sort()
	v.logger.Info("verification finished",
		zap.Uint64("lo", lo),
		zap.Uint64("hi", hi),
		zap.Object("report", report),
	)
	return report, nil
}

// sample draws n distinct numbers from [lo, hi] with Floyd's algorithm and
// returns them ascending.
func (v *Verifier) sample(lo, hi uint64, n int) []uint64 {
	span := hi - lo + 1
	if n <= 0 {
		return nil
	}
	if uint64(n) >= span {
		out := make([]uint64, 0, span)
		for x := lo; x <= hi; x++ {
			out = append(out, x)
			if x == hi {
				break
			}
		}
		return out
	}

	picked := make(map[uint64]struct{}, n)
	for j := span - uint64(n); j < span; j++ {
		t := v.rnd.Uint64N(j + 1)
		if _, ok := picked[t]; ok {
			t = j
		}
		picked[t] = struct{}{}
	}
	out := make([]uint64, 0, n)
	for offset := range picked {
		out = append(out, lo+offset)
	}
	slices.Sort(out)
	return out
}

func (v *Verifier) check(ctx context.Context, number uint64) (result, reason string, err error) {
	stored, found, err := v.store.Block(ctx, number)
	if err != nil {
		return "", "", fmt.Errorf("read stored block %d: %w", number, err)
	}
	if !found {
		return resultMissing, "", nil
	}
	if stored.Placeholder {
		return resultPlaceholder, "", nil
	}

	remote, err := v.reader.FetchBlock(ctx, number)
	if err != nil {
		return "", "", err
	}
	if remote == nil {
		return resultUnavailable, "", nil
	}
	if reason := compare(stored, *remote); reason != "" {
		return resultMismatch, reason, nil
	}
	return resultMatch, "", nil
}

func compare(stored, remote model.Block) string {
	if !stored.Timestamp.Equal(remote.Timestamp) {
		return fmt.Sprintf("timestamp %s, node has %s", stored.Timestamp, remote.Timestamp)
	}
	if len(stored.Transactions) != len(remote.Transactions) {
		return fmt.Sprintf("%d transactions, node has %d", len(stored.Transactions), len(remote.Transactions))
	}
	for i, tx := range stored.Transactions {
		want := remote.Transactions[i]
		switch {
		case tx.From != want.From:
			return fmt.Sprintf("tx %d from %s, node has %s", i, tx.From, want.From)
		case !sameRecipient(tx.To, want.To):
			return fmt.Sprintf("tx %d recipient differs", i)
		case !tx.Value.Equal(want.Value):
			return fmt.Sprintf("tx %d value %s, node has %s", i, tx.Value, want.Value)
		case !bytes.Equal(tx.Data, want.Data):
			return fmt.Sprintf("tx %d input data differs", i)
		}
	}
	return ""
}

func sameRecipient(a, b *model.Address) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
