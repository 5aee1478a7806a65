package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apimw "github.com/notifyhub/push-fanout/internal/api/middleware"
	"github.com/notifyhub/push-fanout/internal/domain"
	"github.com/notifyhub/push-fanout/internal/service"
)

// NotificationHandler handles notification creation and stats endpoints.
type NotificationHandler struct {
	svc    *service.NotificationService
	logger *zap.Logger
}

func NewNotificationHandler(svc *service.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{svc: svc, logger: logger}
}

// Create handles POST /api/v1/notifications
//
// @Summary     Create a notification and fan it out to the target country
// @Tags        notifications
// @Accept      json
// @Produce     json
// @Param       body  body      domain.CreateNotificationRequest  true  "Notification payload"
// @Success     201   {object}  map[string]int64
// @Failure     422   {object}  map[string]string
// @Failure     502   {object}  map[string]string  "Partial fan-out: notification persisted, queueing incomplete"
// @Router      /api/v1/notifications [post]
func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	n, err := h.svc.Create(r.Context(), req)
	if err != nil {
		h.logger.Warn("create notification failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		// A queue-write failure after the notification row was created
		// is a partial fan-out: report the id so the caller can still
		// track what did get queued.
		if n != nil && errors.Is(err, domain.ErrQueueWrite) {
			respondJSON(w, http.StatusBadGateway, map[string]any{
				"error":           err.Error(),
				"notification_id": n.ID,
			})
			return
		}
		mapError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]int64{"notification_id": n.ID})
}

// GetStats handles GET /api/v1/notifications/{id}
//
// @Summary  Get delivery statistics for a notification
// @Tags     notifications
// @Produce  json
// @Param    id   path      int  true  "Notification ID"
// @Success  200  {object}  domain.NotificationStats
// @Failure  404  {object}  map[string]string
// @Router   /api/v1/notifications/{id} [get]
func (h *NotificationHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "notification id must be an integer")
		return
	}

	stats, err := h.svc.GetStats(r.Context(), id)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
