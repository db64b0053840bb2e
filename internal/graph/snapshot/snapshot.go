// Package snapshot persists graph states as two artifacts keyed by block range:
// the topology (vertex count and edge endpoints) and the auxiliary state
// (range, timestamps, addresses, weights, contracts).
package snapshot

import (
	"errors"
	"fmt"
)

var (
	// ErrSnapshotNotFound reports that at least one artifact of a range is missing.
	ErrSnapshotNotFound = errors.New("snapshot not found")
	// ErrSnapshotCorrupted reports artifacts that cannot be decoded or disagree.
	ErrSnapshotCorrupted = errors.New("snapshot corrupted")
)

const (
	artifactTopology = "topology"
	artifactState    = "state"

	operationSave   = "save"
	operationLoad   = "load"
	operationRanges = "ranges"
)

// Range is the key of a snapshot: the graph covers [Start, End).
type Range struct {
	Start uint64 `json:"start"`
	End   uint64 `json:"end"`
}

func (r Range) String() string {
	return fmt.Sprintf("%d_%d", r.Start, r.End)
}

func compareRanges(a, b Range) int {
	switch {
	case a.Start < b.Start:
		return -1
	case a.Start > b.Start:
		return 1
	case a.End < b.End:
		return -1
	case a.End > b.End:
		return 1
	}
	return 0
}
