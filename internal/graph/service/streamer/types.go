package streamer

import (
	"context"

	"github.com/goodnatureofminers/blockgraph7000-backend/internal/graph"
	"github.com/goodnatureofminers/blockgraph7000-backend/internal/graph/snapshot"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Builder interface {
		Build(ctx context.Context, start, end uint64) (*graph.State, error)
		Extend(ctx context.Context, state *graph.State, newEnd uint64) error
	}
	SnapshotStore interface {
		Save(ctx context.Context, state *graph.State) (bool, error)
		Load(ctx context.Context, start, end uint64) (*graph.State, error)
		Ranges(ctx context.Context) ([]snapshot.Range, error)
	}
	BlockHeights interface {
		HighestNumber(ctx context.Context) (uint64, error)
	}
)
