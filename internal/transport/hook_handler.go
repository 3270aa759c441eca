// Package transport exposes the reconciler to the indexing host over HTTP.
package transport

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/goodnatureofminers/utxo-watch/internal/watch/model"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

const maxBodyBytes = 64 << 20

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type batchResponse struct {
	Records []model.UtxoRecord `json:"records"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// HookHandler serves host events. Events are applied one at a time in arrival order.
type HookHandler struct {
	mu         sync.Mutex
	reconciler Reconciler
	metrics    Metrics
	logger     *zap.Logger
}

// NewHookHandler returns a HookHandler instance.
func NewHookHandler(reconciler Reconciler, metrics Metrics, logger *zap.Logger) *HookHandler {
	return &HookHandler{
		reconciler: reconciler,
		metrics:    metrics,
		logger:     logger.Named("hook"),
	}
}

// Register mounts the event routes on mux.
func (h *HookHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/batches", h.batches)
	mux.HandleFunc("POST /v1/commits", h.commits)
	mux.HandleFunc("POST /v1/rollbacks", h.rollbacks)
	mux.HandleFunc("GET /v1/state", h.state)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func (h *HookHandler) batches(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	var event model.NewBatchEvent
	if err := decode(r, &event); err != nil {
		h.fail(w, "batch", http.StatusBadRequest, err, started)
		return
	}

	h.mu.Lock()
	kept, err := h.reconciler.OnNewBatch(r.Context(), event)
	h.mu.Unlock()
	if err != nil {
		h.fail(w, "batch", http.StatusInternalServerError, err, started)
		return
	}

	h.respond(w, "batch", http.StatusOK, batchResponse{Records: kept}, started)
}

func (h *HookHandler) commits(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	var event model.CommitEvent
	if err := decode(r, &event); err != nil {
		h.fail(w, "commit", http.StatusBadRequest, err, started)
		return
	}

	h.mu.Lock()
	result, err := h.reconciler.OnCommit(r.Context(), event)
	h.mu.Unlock()
	if err != nil {
		h.fail(w, "commit", http.StatusInternalServerError, err, started)
		return
	}

	h.respond(w, "commit", http.StatusOK, result, started)
}

func (h *HookHandler) rollbacks(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	var event model.RollbackEvent
	if err := decode(r, &event); err != nil {
		h.fail(w, "rollback", http.StatusBadRequest, err, started)
		return
	}
	if event.RollbackToSlot < 0 {
		h.fail(w, "rollback", http.StatusBadRequest, fmt.Errorf("negative rollback slot %d", event.RollbackToSlot), started)
		return
	}

	h.mu.Lock()
	err := h.reconciler.OnRollback(r.Context(), event)
	h.mu.Unlock()
	if err != nil {
		h.fail(w, "rollback", http.StatusInternalServerError, err, started)
		return
	}

	w.WriteHeader(http.StatusNoContent)
	h.metrics.ObserveRequest("rollback", http.StatusNoContent, started)
}

func (h *HookHandler) state(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	h.mu.Lock()
	snapshot, err := h.reconciler.Snapshot(r.Context())
	h.mu.Unlock()
	if err != nil {
		h.fail(w, "state", http.StatusInternalServerError, err, started)
		return
	}

	h.respond(w, "state", http.StatusOK, snapshot, started)
}

func decode(r *http.Request, dest any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return errors.New("request body too large")
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

func (h *HookHandler) respond(w http.ResponseWriter, event string, code int, body any, started time.Time) {
	payload, err := json.Marshal(body)
	if err != nil {
		h.fail(w, event, http.StatusInternalServerError, fmt.Errorf("encode response: %w", err), started)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(payload); err != nil {
		h.logger.Warn("write response", zap.String("event", event), zap.Error(err))
	}
	h.metrics.ObserveRequest(event, code, started)
}

func (h *HookHandler) fail(w http.ResponseWriter, event string, code int, err error, started time.Time) {
	if code >= http.StatusInternalServerError {
		h.logger.Error("event failed", zap.String("event", event), zap.Error(err))
	} else {
		h.logger.Warn("bad event request", zap.String("event", event), zap.Error(err))
	}

	payload, _ := json.Marshal(errorResponse{Error: err.Error()})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(payload)
	h.metrics.ObserveRequest(event, code, started)
}
