// Package graph builds the transaction graph of a block range: one vertex per
// address, one edge per value transfer.
package graph

import (
	"fmt"
	"time"

	"github.com/goodnatureofminers/blockgraph7000-backend/internal/ledger/model"
	"github.com/goodnatureofminers/blockgraph7000-backend/pkg/safe"
	"github.com/shopspring/decimal"
)

// Edge is one transfer between two vertices of the arena.
type Edge struct {
	From   uint32
	To     uint32
	Weight decimal.Decimal
}

// State is the graph over [StartBlock, EndBlock). Vertex i is Addresses[i]
// with balance Weights[i]. Contracts holds vertex indices in discovery order.
type State struct {
	StartBlock uint64
	EndBlock   uint64
	StartTime  time.Time
	EndTime    time.Time

	Addresses []model.Address
	Weights   []decimal.Decimal
	Edges     []Edge
	Contracts []uint32

	index      map[model.Address]uint32
	isContract map[uint32]struct{}
}

// NewState returns an empty graph positioned at start.
func NewState(start uint64) *State {
	return &State{
		StartBlock: start,
		EndBlock:   start,
		index:      make(map[model.Address]uint32),
		isContract: make(map[uint32]struct{}),
	}
}

// Empty reports whether the graph has no vertices.
func (s *State) Empty() bool {
	return len(s.Addresses) == 0
}

// VertexCount returns the number of distinct addresses.
func (s *State) VertexCount() int {
	return len(s.Addresses)
}

// Vertex returns the arena index of addr.
func (s *State) Vertex(addr model.Address) (uint32, bool) {
	idx, ok := s.index[addr]
	return idx, ok
}

// Weight returns the balance change of addr over the range, zero if unseen.
func (s *State) Weight(addr model.Address) decimal.Decimal {
	idx, ok := s.index[addr]
	if !ok {
		return decimal.Zero
	}
	return s.Weights[idx]
}

// WeightSum adds every vertex weight. It is zero for any consistent state.
func (s *State) WeightSum() decimal.Decimal {
	sum := decimal.Zero
	for _, w := range s.Weights {
		sum = sum.Add(w)
	}
	return sum
}

// IsContract reports whether addr received a transaction carrying data.
func (s *State) IsContract(addr model.Address) bool {
	idx, ok := s.index[addr]
	if !ok {
		return false
	}
	_, ok = s.isContract[idx]
	return ok
}

// Reindex rebuilds the address lookup from the exported arena and checks that
// the arena is internally consistent. Restored states must be reindexed
// before they are extended.
func (s *State) Reindex() error {
	if s.StartBlock > s.EndBlock {
		return fmt.Errorf("start block %d after end block %d", s.StartBlock, s.EndBlock)
	}
	if len(s.Weights) != len(s.Addresses) {
		return fmt.Errorf("%d weights for %d vertices", len(s.Weights), len(s.Addresses))
	}

	index := make(map[model.Address]uint32, len(s.Addresses))
	for i, addr := range s.Addresses {
		if _, dup := index[addr]; dup {
			return fmt.Errorf("duplicate vertex %q", addr)
		}
		idx, err := safe.Uint32(i)
		if err != nil {
			return fmt.Errorf("vertex index: %w", err)
		}
		index[addr] = idx
	}

	vertices := uint64(len(s.Addresses))
	for i, e := range s.Edges {
		if uint64(e.From) >= vertices || uint64(e.To) >= vertices {
			return fmt.Errorf("edge %d references vertex outside %d", i, vertices)
		}
	}

	isContract := make(map[uint32]struct{}, len(s.Contracts))
	for _, idx := range s.Contracts {
		if uint64(idx) >= vertices {
			return fmt.Errorf("contract references vertex %d outside %d", idx, vertices)
		}
		isContract[idx] = struct{}{}
	}

	s.index = index
	s.isContract = isContract
	return nil
}

func (s *State) vertex(addr model.Address) (uint32, error) {
	if idx, ok := s.index[addr]; ok {
		return idx, nil
	}
	idx, err := safe.Uint32(len(s.Addresses))
	if err != nil {
		return 0, fmt.Errorf("vertex index: %w", err)
	}
	s.Addresses = append(s.Addresses, addr)
	s.Weights = append(s.Weights, decimal.Zero)
	s.index[addr] = idx
	return idx, nil
}

func (s *State) markContract(idx uint32) {
	if _, ok := s.isContract[idx]; ok {
		return
	}
	s.isContract[idx] = struct{}{}
	s.Contracts = append(s.Contracts, idx)
}

// addBlock folds one block's transfers into the graph.
func (s *State) addBlock(block model.Block) error {
	if !block.Placeholder {
		if s.StartTime.IsZero() {
			s.StartTime = block.Timestamp
		}
		s.EndTime = block.Timestamp
	}

	for _, tx := range block.Transactions {
		if tx.To == nil || tx.IsSelfTransfer() {
			continue
		}
		to, err := s.vertex(*tx.To)
		if err != nil {
			return err
		}
		if tx.CarriesData() {
			s.markContract(to)
		}
		from, err := s.vertex(tx.From)
		if err != nil {
			return err
		}

		s.Edges = append(s.Edges, Edge{From: from, To: to, Weight: tx.Value})
		s.Weights[to] = s.Weights[to].Add(tx.Value)
		s.Weights[from] = s.Weights[from].Sub(tx.Value)
	}
	return nil
}

type mark struct {
	vertices  int
	edges     int
	contracts int
	startTime time.Time
	endTime   time.Time
}

func (s *State) mark() mark {
	return mark{
		vertices:  len(s.Addresses),
		edges:     len(s.Edges),
		contracts: len(s.Contracts),
		startTime: s.StartTime,
		endTime:   s.EndTime,
	}
}

// rollback undoes everything added after m.
func (s *State) rollback(m mark) {
	for _, e := range s.Edges[m.edges:] {
		s.Weights[e.To] = s.Weights[e.To].Sub(e.Weight)
		s.Weights[e.From] = s.Weights[e.From].Add(e.Weight)
	}
	for _, idx := range s.Contracts[m.contracts:] {
		delete(s.isContract, idx)
	}
	for _, addr := range s.Addresses[m.vertices:] {
		delete(s.index, addr)
	}
	s.Edges = s.Edges[:m.edges]
	s.Contracts = s.Contracts[:m.contracts]
	s.Addresses = s.Addresses[:m.vertices]
	s.Weights = s.Weights[:m.vertices]
	s.StartTime = m.startTime
	s.EndTime = m.endTime
}
