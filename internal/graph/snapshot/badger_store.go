package snapshot

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goodnatureofminers/blockgraph7000-backend/internal/graph"
	"go.uber.org/zap"
)

const (
	snapshotPrefix byte = 's'
	keyTopology    byte = 't'
	keyState       byte = 'a'
	snapshotKeyLen      = 1 + 8 + 8 + 1
)

// BadgerStore keeps both artifacts of a snapshot as two records written in
// one transaction.
type BadgerStore struct {
	db      *badger.DB
	metrics Metrics
	logger  *zap.Logger
}

// NewBadgerStore opens (or creates) a Badger database at dir.
func NewBadgerStore(dir string, metrics Metrics, logger *zap.Logger) (*BadgerStore, error) {
	if dir == "" {
		return nil, errors.New("snapshot dir is required")
	}
	return openBadger(badger.DefaultOptions(dir).WithLogger(nil), metrics, logger)
}

func openBadger(opts badger.Options, metrics Metrics, logger *zap.Logger) (*BadgerStore, error) {
	if metrics == nil {
		return nil, errors.New("snapshot store metrics is required")
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db, metrics: metrics, logger: logger}, nil
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close badger: %w", err)
	}
	return nil
}

func snapshotKey(r Range, artifact byte) []byte {
	key := make([]byte, snapshotKeyLen)
	key[0] = snapshotPrefix
	binary.BigEndian.PutUint64(key[1:9], r.Start)
	binary.BigEndian.PutUint64(key[9:17], r.End)
	key[17] = artifact
	return key
}

// Save writes both artifacts of state. An empty graph is not written.
func (s *BadgerStore) Save(ctx context.Context, state *graph.State) (saved bool, err error) {
	if state == nil || state.Empty() {
		return false, nil
	}
	start := time.Now()
	defer func() {
		s.metrics.Observe(operationSave, err, start)
	}()
	if err = ctx.Err(); err != nil {
		return false, err
	}

	r := Range{Start: state.StartBlock, End: state.EndBlock}
	topology, aux, err := encode(state)
	if err != nil {
		return false, err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(snapshotKey(r, keyTopology), topology); err != nil {
			return fmt.Errorf("set topology: %w", err)
		}
		if err := txn.Set(snapshotKey(r, keyState), aux); err != nil {
			return fmt.Errorf("set state: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("save snapshot %s: %w", r, err)
	}

	s.metrics.ObserveArtifact(artifactTopology, len(topology))
	s.metrics.ObserveArtifact(artifactState, len(aux))
	s.logger.Debug("snapshot saved", zap.Stringer("range", r))
	return true, nil
}

// Load reads the snapshot of [start, end).
func (s *BadgerStore) Load(ctx context.Context, start, end uint64) (_ *graph.State, err error) {
	started := time.Now()
	defer func() {
		s.metrics.Observe(operationLoad, err, started)
	}()
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	r := Range{Start: start, End: end}
	var topology, aux []byte
	err = s.db.View(func(txn *badger.Txn) error {
		var err error
		if topology, err = valueCopy(txn, snapshotKey(r, keyTopology)); err != nil {
			return err
		}
		aux, err = valueCopy(txn, snapshotKey(r, keyState))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, r)
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", r, err)
	}
	return decode(r, topology, aux)
}

func valueCopy(txn *badger.Txn, key []byte) ([]byte, error) {
	item, err := txn.Get(key)
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

// Ranges lists every saved snapshot in ascending (start, end) order.
func (s *BadgerStore) Ranges(ctx context.Context) (_ []Range, err error) {
	started := time.Now()
	defer func() {
		s.metrics.Observe(operationRanges, err, started)
	}()

	var ranges []Range
	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte{snapshotPrefix}
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			key := it.Item().Key()
			if len(key) != snapshotKeyLen || key[17] != keyTopology {
				continue
			}
			ranges = append(ranges, Range{
				Start: binary.BigEndian.Uint64(key[1:9]),
				End:   binary.BigEndian.Uint64(key[9:17]),
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return ranges, nil
}
