package snapshot

import (
	"context"
	"fmt"

	"github.com/goodnatureofminers/blockgraph7000-backend/internal/graph"
	"go.uber.org/zap"
)

const (
	BackendFile   = "file"
	BackendBadger = "badger"
)

// Store is the surface shared by every snapshot backend.
type Store interface {
	Save(ctx context.Context, state *graph.State) (bool, error)
	Load(ctx context.Context, start, end uint64) (*graph.State, error)
	Ranges(ctx context.Context) ([]Range, error)
	Close() error
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*BadgerStore)(nil)
)

// Open returns the snapshot store for backend rooted at dir.
func Open(backend, dir string, metrics Metrics, logger *zap.Logger) (Store, error) {
	switch backend {
	case BackendFile:
		s, err := NewFileStore(dir, metrics, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendBadger:
		s, err := NewBadgerStore(dir, metrics, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", backend)
	}
}
