// Package pebble stores decoded blocks in an embedded Pebble database keyed by block number.
package pebble

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/goodnatureofminers/blockgraph7000-backend/internal/ledger/model"
)

// Repository is a single-writer block store. Keys are big-endian block numbers,
// so iteration order is ascending numeric order.
type Repository struct {
	db      *pebble.DB
	network model.Network
	metrics Metrics
	// writeMu serializes the read-then-write in Upsert.
	writeMu sync.Mutex
}

// NewRepository opens (or creates) the store at dir.
func NewRepository(dir string, network model.Network, metrics Metrics) (*Repository, error) {
	if dir == "" {
		return nil, errors.New("pebble data dir is required")
	}
	return open(dir, &pebble.Options{}, network, metrics)
}

func open(dir string, opts *pebble.Options, network model.Network, metrics Metrics) (*Repository, error) {
	if metrics == nil {
		return nil, errors.New("block store metrics is required")
	}
	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, fmt.Errorf("open pebble at %s: %w", dir, err)
	}
	return &Repository{db: db, network: network, metrics: metrics}, nil
}

// Close flushes and closes the database.
func (r *Repository) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("close pebble: %w", err)
	}
	return nil
}
