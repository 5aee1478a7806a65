package handler

import (
	"net/http"

	"github.com/notifyhub/push-fanout/internal/repository"
)

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	queue repository.QueueRepository
}

func NewHealthHandler(queue repository.QueueRepository) *HealthHandler {
	return &HealthHandler{queue: queue}
}

// Health handles GET /health
//
// @Summary  Liveness probe
// @Tags     system
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "push-fanout",
	})
}

// Ready handles GET /ready
//
// Readiness means the queue store answers: a cron trigger hitting an
// unready instance should back off rather than start a drain cycle
// that dies on its first chunk read.
//
// @Summary  Readiness probe (verifies queue store connectivity)
// @Tags     system
// @Produce  json
// @Success  200  {object}  map[string]string
// @Failure  503  {object}  map[string]string
// @Router   /ready [get]
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if _, err := h.queue.CountPending(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "queue store unreachable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
