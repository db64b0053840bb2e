package transport

import (
	"context"

	"github.com/goodnatureofminers/blockgraph7000-backend/internal/graph"
	"github.com/goodnatureofminers/blockgraph7000-backend/internal/graph/snapshot"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type SnapshotReader interface {
	Load(ctx context.Context, start, end uint64) (*graph.State, error)
	Ranges(ctx context.Context) ([]snapshot.Range, error)
}
