package snapshot

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/goodnatureofminers/blockgraph7000-backend/internal/graph"
	"github.com/goodnatureofminers/blockgraph7000-backend/internal/ledger/model"
	"github.com/klauspost/compress/zstd"
	"github.com/shopspring/decimal"
)

type topologyRecord struct {
	Vertices uint64   `cbor:"1,keyasint"`
	From     []uint32 `cbor:"2,keyasint"`
	To       []uint32 `cbor:"3,keyasint"`
}

type stateRecord struct {
	Start       uint64   `cbor:"1,keyasint"`
	End         uint64   `cbor:"2,keyasint"`
	StartTime   *int64   `cbor:"3,keyasint,omitempty"`
	EndTime     *int64   `cbor:"4,keyasint,omitempty"`
	Addresses   []string `cbor:"5,keyasint"`
	Weights     []string `cbor:"6,keyasint"`
	EdgeWeights []string `cbor:"7,keyasint"`
	Contracts   []uint32 `cbor:"8,keyasint"`
}

var (
	encMode = func() cbor.EncMode {
		mode, err := cbor.CoreDetEncOptions().EncMode()
		if err != nil {
			panic(err)
		}
		return mode
	}()

	zstdEncoder = func() *zstd.Encoder {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			panic(err)
		}
		return enc
	}()

	zstdDecoder = func() *zstd.Decoder {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			panic(err)
		}
		return dec
	}()
)

func unixOrNil(t time.Time) *int64 {
	if t.IsZero() {
		return nil
	}
	v := t.Unix()
	return &v
}

func timeOrZero(v *int64) time.Time {
	if v == nil {
		return time.Time{}
	}
	return time.Unix(*v, 0).UTC()
}

// encode returns the compressed topology and state artifacts of s.
func encode(s *graph.State) (topology, state []byte, err error) {
	topo := topologyRecord{
		Vertices: uint64(len(s.Addresses)),
		From:     make([]uint32, len(s.Edges)),
		To:       make([]uint32, len(s.Edges)),
	}
	aux := stateRecord{
		Start:       s.StartBlock,
		End:         s.EndBlock,
		StartTime:   unixOrNil(s.StartTime),
		EndTime:     unixOrNil(s.EndTime),
		Addresses:   make([]string, len(s.Addresses)),
		Weights:     make([]string, len(s.Weights)),
		EdgeWeights: make([]string, len(s.Edges)),
		Contracts:   s.Contracts,
	}
	for i, e := range s.Edges {
		topo.From[i] = e.From
		topo.To[i] = e.To
		aux.EdgeWeights[i] = e.Weight.String()
	}
	for i, a := range s.Addresses {
		aux.Addresses[i] = string(a)
	}
	for i, w := range s.Weights {
		aux.Weights[i] = w.String()
	}

	rawTopology, err := encMode.Marshal(topo)
	if err != nil {
		return nil, nil, fmt.Errorf("encode topology: %w", err)
	}
	rawState, err := encMode.Marshal(aux)
	if err != nil {
		return nil, nil, fmt.Errorf("encode state: %w", err)
	}
	return zstdEncoder.EncodeAll(rawTopology, nil), zstdEncoder.EncodeAll(rawState, nil), nil
}

// decode re-attaches a topology to its auxiliary state. Any mismatch between
// the two artifacts or with the expected range yields ErrSnapshotCorrupted.
func decode(r Range, topology, state []byte) (*graph.State, error) {
	var topo topologyRecord
	if err := unpack(topology, &topo); err != nil {
		return nil, fmt.Errorf("%w: %s topology: %w", ErrSnapshotCorrupted, r, err)
	}
	var aux stateRecord
	if err := unpack(state, &aux); err != nil {
		return nil, fmt.Errorf("%w: %s state: %w", ErrSnapshotCorrupted, r, err)
	}

	switch {
	case aux.Start != r.Start || aux.End != r.End:
		return nil, fmt.Errorf("%w: %s holds range %d_%d", ErrSnapshotCorrupted, r, aux.Start, aux.End)
	case topo.Vertices != uint64(len(aux.Addresses)):
		return nil, fmt.Errorf("%w: %s topology has %d vertices, state has %d addresses", ErrSnapshotCorrupted, r, topo.Vertices, len(aux.Addresses))
	case len(topo.From) != len(topo.To) || len(topo.From) != len(aux.EdgeWeights):
		return nil, fmt.Errorf("%w: %s edge counts disagree", ErrSnapshotCorrupted, r)
	}

	s := &graph.State{
		StartBlock: aux.Start,
		EndBlock:   aux.End,
		StartTime:  timeOrZero(aux.StartTime),
		EndTime:    timeOrZero(aux.EndTime),
		Addresses:  make([]model.Address, len(aux.Addresses)),
		Weights:    make([]decimal.Decimal, len(aux.Weights)),
		Edges:      make([]graph.Edge, len(topo.From)),
		Contracts:  aux.Contracts,
	}
	for i, a := range aux.Addresses {
		s.Addresses[i] = model.Address(a)
	}
	for i, w := range aux.Weights {
		v, err := decimal.NewFromString(w)
		if err != nil {
			return nil, fmt.Errorf("%w: %s vertex weight %d: %w", ErrSnapshotCorrupted, r, i, err)
		}
		s.Weights[i] = v
	}
	for i := range topo.From {
		v, err := decimal.NewFromString(aux.EdgeWeights[i])
		if err != nil {
			return nil, fmt.Errorf("%w: %s edge weight %d: %w", ErrSnapshotCorrupted, r, i, err)
		}
		s.Edges[i] = graph.Edge{From: topo.From[i], To: topo.To[i], Weight: v}
	}
	if err := s.Reindex(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSnapshotCorrupted, r, err)
	}
	return s, nil
}

func unpack(data []byte, v any) error {
	raw, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return fmt.Errorf("decompress: %w", err)
	}
	if err := cbor.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return nil
}
