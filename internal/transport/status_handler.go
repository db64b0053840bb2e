// Package transport exposes the status API over gRPC and HTTP.
package transport

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/goodnatureofminers/blockgraph7000-backend/internal/graph/snapshot"
	gwruntime "github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
)

// StatusHandler serves snapshot listings and summaries.
type StatusHandler struct {
	snapshots SnapshotReader
	logger    *zap.Logger
}

// NewStatusHandler returns a StatusHandler.
func NewStatusHandler(snapshots SnapshotReader, logger *zap.Logger) (*StatusHandler, error) {
	if snapshots == nil {
		return nil, errors.New("snapshot reader is required")
	}
	return &StatusHandler{snapshots: snapshots, logger: logger}, nil
}

// Register mounts the REST routes on mux.
func (h *StatusHandler) Register(mux *gwruntime.ServeMux) error {
	if err := mux.HandlePath(http.MethodGet, "/v1/snapshots", h.listSnapshots); err != nil {
		return err
	}
	return mux.HandlePath(http.MethodGet, "/v1/snapshots/{start}/{end}", h.getSnapshot)
}

type snapshotsResponse struct {
	Snapshots []snapshot.Range `json:"snapshots"`
}

// SnapshotSummary describes one stored graph.
type SnapshotSummary struct {
	Start     uint64     `json:"start"`
	End       uint64     `json:"end"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Vertices  int        `json:"vertices"`
	Edges     int        `json:"edges"`
	Contracts int        `json:"contracts"`
	WeightSum string     `json:"weight_sum"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *StatusHandler) listSnapshots(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	ranges, err := h.snapshots.Ranges(r.Context())
	if err != nil {
		h.logger.Error("list snapshots failed", zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "list snapshots failed"})
		return
	}
	if ranges == nil {
		ranges = []snapshot.Range{}
	}
	h.writeJSON(w, http.StatusOK, snapshotsResponse{Snapshots: ranges})
}

func (h *StatusHandler) getSnapshot(w http.ResponseWriter, r *http.Request, params map[string]string) {
	start, err := strconv.ParseUint(params["start"], 10, 64)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "start must be a block number"})
		return
	}
	end, err := strconv.ParseUint(params["end"], 10, 64)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "end must be a block number"})
		return
	}

	state, err := h.snapshots.Load(r.Context(), start, end)
	switch {
	case errors.Is(err, snapshot.ErrSnapshotNotFound):
		h.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	case err != nil:
		h.logger.Error("load snapshot failed", zap.Uint64("start", start), zap.Uint64("end", end), zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "load snapshot failed"})
		return
	}

	summary := SnapshotSummary{
		Start:     state.StartBlock,
		End:       state.EndBlock,
		Vertices:  state.VertexCount(),
		Edges:     len(state.Edges),
		Contracts: len(state.Contracts),
		WeightSum: state.WeightSum().String(),
	}
	if !state.StartTime.IsZero() {
		summary.StartTime = &state.StartTime
	}
	if !state.EndTime.IsZero() {
		summary.EndTime = &state.EndTime
	}
	h.writeJSON(w, http.StatusOK, summary)
}

func (h *StatusHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Warn("write response failed", zap.Error(err))
	}
}
