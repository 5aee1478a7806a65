package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/notifyhub/push-fanout/internal/service"
)

// DrainHandler exposes the drain cycle as an HTTP operation so an
// external cron can drive queue consumption.
type DrainHandler struct {
	drainer *service.Drainer
	logger  *zap.Logger
}

func NewDrainHandler(drainer *service.Drainer, logger *zap.Logger) *DrainHandler {
	return &DrainHandler{drainer: drainer, logger: logger}
}

// Run handles POST /api/v1/drain
//
// @Summary  Run one bounded drain cycle over the queue
// @Tags     drain
// @Produce  json
// @Success  200  {array}   domain.DrainResult  "Empty array when the queue had nothing to process"
// @Failure  409  {object}  map[string]string   "A cycle is already running"
// @Router   /api/v1/drain [post]
func (h *DrainHandler) Run(w http.ResponseWriter, r *http.Request) {
	results, err := h.drainer.RunCycle(r.Context())
	if err != nil {
		h.logger.Error("drain cycle failed", zap.Error(err))
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, results)
}
