package handler

import (
	"net/http"

	"github.com/notifyhub/push-fanout/internal/repository"
)

// MetricsHandler serves a human-readable JSON queue snapshot.
// Raw Prometheus metrics (counters, histograms) are available at /metrics
// via promhttp.Handler and are separate from this endpoint.
type MetricsHandler struct {
	queue repository.QueueRepository
}

func NewMetricsHandler(queue repository.QueueRepository) *MetricsHandler {
	return &MetricsHandler{queue: queue}
}

// GetMetrics handles GET /api/v1/metrics
//
// @Summary  Real-time pending-queue snapshot
// @Tags     metrics
// @Produce  json
// @Success  200  {object}  map[string]any
// @Router   /api/v1/metrics [get]
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	pending, err := h.queue.CountPending(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to count pending queue entries")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"queue_pending": pending,
	})
}
