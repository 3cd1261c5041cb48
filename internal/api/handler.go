package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/opensource-finance/shrike/internal/domain"
	"github.com/opensource-finance/shrike/internal/scoring"
)

// Handler holds dependencies for API handlers.
type Handler struct {
	service *scoring.Service
	cache   domain.Cache
	bus     domain.EventBus
	version string
}

// NewHandler creates a new API handler.
func NewHandler(service *scoring.Service, cache domain.Cache, bus domain.EventBus, version string) *Handler {
	return &Handler{
		service: service,
		cache:   cache,
		bus:     bus,
		version: version,
	}
}

// PredictPrimary handles POST /predict/primary requests.
func (h *Handler) PredictPrimary(w http.ResponseWriter, r *http.Request) {
	var req domain.TransactionRecord
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	if req.Type == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "type is required",
		})
		return
	}
	if req.Amount < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "amount must be non-negative",
		})
		return
	}

	result, err := h.service.ScorePrimary(r.Context(), &req)
	if err != nil {
		h.writeScoringError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// PredictSecondary handles POST /predict/secondary requests.
func (h *Handler) PredictSecondary(w http.ResponseWriter, r *http.Request) {
	var req domain.CardTransaction
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	if req.Amount < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "amt must be non-negative",
		})
		return
	}
	if req.CityPop < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "city_pop must be non-negative",
		})
		return
	}

	result, err := h.service.ScoreSecondary(r.Context(), &req)
	if err != nil {
		h.writeScoringError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Ingest handles POST /ingest: it validates and enqueues a transaction for
// async scoring by the worker, returning immediately.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	if h.bus == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "event bus not available",
		})
		return
	}

	var req domain.TransactionRecord
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}
	if req.Type == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "type is required",
		})
		return
	}
	if req.Amount < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "amount must be non-negative",
		})
		return
	}

	payload, err := json.Marshal(&req)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to encode transaction",
		})
		return
	}
	if err := h.bus.Publish(r.Context(), domain.TopicTransactionIngested, payload); err != nil {
		slog.Error("failed to publish ingested transaction", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "failed to enqueue transaction",
		})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status": "accepted",
	})
}

// Health returns server health plus the loaded artifact keys, so operators
// can see which scoring capabilities are live.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"

	if h.cache != nil {
		if err := h.cache.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}
	if h.bus != nil {
		if err := h.bus.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	registry := h.service.Registry()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":             status,
		"version":            h.version,
		"artifacts":          registry.Keys(),
		"primary_ready":      registry.PrimaryReady(),
		"secondary_ready":    registry.SecondaryReady(),
		"rule_table_version": h.service.RuleTableVersion(),
	})
}

// Ready returns whether the server is ready to accept traffic.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"ready": "true",
	})
}

// writeScoringError maps a scoring failure to a response. A missing
// artifact disables one endpoint, not the service: 503 with remediation.
func (h *Handler) writeScoringError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrArtifactMissing) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "model not loaded; run the training pipeline first",
		})
		return
	}
	slog.Error("scoring failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "scoring failed",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
