package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/goodnatureofminers/blockgraph7000-backend/internal/graph"
	"go.uber.org/zap"
)

const (
	topologyFile  = "topology.cbor.zst"
	stateFile     = "state.cbor.zst"
	tempPrefix    = ".tmp-"
	retiredPrefix = tempPrefix + "old-"
	retiredName   = "snapshot"
)

// FileStore keeps each snapshot in its own directory <dir>/<start>_<end>/.
// A snapshot directory is assembled under a temporary name and renamed into
// place, so readers never observe one artifact without the other.
type FileStore struct {
	dir     string
	metrics Metrics
	logger  *zap.Logger
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string, metrics Metrics, logger *zap.Logger) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("snapshot dir is required")
	}
	if metrics == nil {
		return nil, errors.New("snapshot store metrics is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	s := &FileStore{dir: dir, metrics: metrics, logger: logger}
	if err := s.recoverRetired(); err != nil {
		return nil, err
	}
	return s, nil
}

// recoverRetired finishes overwrites interrupted between retiring the old
// snapshot and moving the new one into place: the retired copy is restored
// when its range has no snapshot, otherwise it is discarded.
func (s *FileStore) recoverRetired() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read snapshot dir: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || !strings.HasPrefix(name, retiredPrefix) {
			continue
		}
		old := filepath.Join(s.dir, name)
		r, ok := retiredRange(name)
		if ok {
			target := filepath.Join(s.dir, r.String())
			retired := filepath.Join(old, retiredName)
			_, targetErr := os.Stat(target)
			_, retiredErr := os.Stat(retired)
			if errors.Is(targetErr, fs.ErrNotExist) && retiredErr == nil {
				if err := os.Rename(retired, target); err != nil {
					return fmt.Errorf("restore retired snapshot %s: %w", r, err)
				}
				s.logger.Warn("restored snapshot from interrupted overwrite", zap.Stringer("range", r))
			}
		}
		if err := os.RemoveAll(old); err != nil {
			return fmt.Errorf("remove retired snapshot: %w", err)
		}
	}
	return syncDir(s.dir)
}

// retiredRange parses the range out of ".tmp-old-<start>_<end>-<random>".
func retiredRange(name string) (Range, bool) {
	rest := strings.TrimPrefix(name, retiredPrefix)
	i := strings.LastIndexByte(rest, '-')
	if i < 0 {
		return Range{}, false
	}
	var r Range
	if n, err := fmt.Sscanf(rest[:i], "%d_%d", &r.Start, &r.End); err != nil || n != 2 || rest[:i] != r.String() {
		return Range{}, false
	}
	return r, true
}

// Save writes both artifacts of state. An empty graph is not written.
func (s *FileStore) Save(ctx context.Context, state *graph.State) (saved bool, err error) {
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

	tmp, err := os.MkdirTemp(s.dir, tempPrefix+r.String()+"-")
	if err != nil {
		return false, fmt.Errorf("create temp dir: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.RemoveAll(tmp)
		}
	}()

	if err = writeFile(filepath.Join(tmp, topologyFile), topology); err != nil {
		return false, err
	}
	if err = writeFile(filepath.Join(tmp, stateFile), aux); err != nil {
		return false, err
	}
	if err = s.replace(tmp, filepath.Join(s.dir, r.String())); err != nil {
		return false, err
	}

	s.metrics.ObserveArtifact(artifactTopology, len(topology))
	s.metrics.ObserveArtifact(artifactState, len(aux))
	s.logger.Debug("snapshot saved",
		zap.Stringer("range", r),
		zap.Int("topology_bytes", len(topology)),
		zap.Int("state_bytes", len(aux)),
	)
	return true, nil
}

// replace moves the assembled directory to target, swapping out any older
// snapshot of the same range. The older copy is parked under a retired dir
// named after the range until the swap completes; NewFileStore restores it
// if the process dies in between.
func (s *FileStore) replace(tmp, target string) error {
	err := os.Rename(tmp, target)
	if err == nil {
		return syncDir(s.dir)
	}
	if _, statErr := os.Stat(target); statErr != nil {
		return fmt.Errorf("move snapshot into place: %w", err)
	}

	old, err := os.MkdirTemp(s.dir, retiredPrefix+filepath.Base(target)+"-")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	retired := filepath.Join(old, retiredName)
	if err := os.Rename(target, retired); err != nil {
		return fmt.Errorf("retire old snapshot: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("move snapshot into place: %w", err)
	}
	if err := os.RemoveAll(old); err != nil {
		s.logger.Warn("remove retired snapshot failed", zap.String("path", old), zap.Error(err))
	}
	return syncDir(s.dir)
}

// Load reads the snapshot of [start, end).
func (s *FileStore) Load(ctx context.Context, start, end uint64) (_ *graph.State, err error) {
	started := time.Now()
	defer func() {
		s.metrics.Observe(operationLoad, err, started)
	}()
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	r := Range{Start: start, End: end}
	dir := filepath.Join(s.dir, r.String())
	topology, err := readFile(filepath.Join(dir, topologyFile), r)
	if err != nil {
		return nil, err
	}
	aux, err := readFile(filepath.Join(dir, stateFile), r)
	if err != nil {
		return nil, err
	}
	return decode(r, topology, aux)
}

// Ranges lists every saved snapshot in ascending (start, end) order.
func (s *FileStore) Ranges(ctx context.Context) (_ []Range, err error) {
	started := time.Now()
	defer func() {
		s.metrics.Observe(operationRanges, err, started)
	}()
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read snapshot dir: %w", err)
	}
	ranges := make([]Range, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		var r Range
		if n, scanErr := fmt.Sscanf(entry.Name(), "%d_%d", &r.Start, &r.End); scanErr != nil || n != 2 || entry.Name() != r.String() {
			continue
		}
		ranges = append(ranges, r)
	}
	slices.SortFunc(ranges, compareRanges)
	return ranges, nil
}

func writeFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("sync %s: %w", filepath.Base(path), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readFile(path string, r Range) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s %s", ErrSnapshotNotFound, r, filepath.Base(path))
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return data, nil
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("open %s: %w", dir, err)
	}
	defer d.Close()
	if err := d.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", dir, err)
	}
	return nil
}

// Close is a no-op; FileStore holds no open handles.
func (s *FileStore) Close() error {
	return nil
}
