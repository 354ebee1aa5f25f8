package httptransport

import (
	"net/http"

	"github.com/google/uuid"
)

type markReadDTO struct {
	IDs []uuid.UUID `json:"ids"`
}

// Notifications godoc
// @Summary Unread notifications, newest first
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {array} entity.Notification
// @Router /api/notifications [get]
func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Notifications.ListUnread(r.Context(), CurrentUser(r.Context()).ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// MarkNotificationRead godoc
// @Summary Mark one notification read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "notification id (uuid)"
// @Success 200 {object} messageResp
// @Failure 404 {object} apiError
// @Router /api/notifications/{id}/read [post]
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.svc.Notifications.MarkRead(r.Context(), CurrentUser(r.Context()).ID, id); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResp{Message: "Notification marked as read."})
}

// MarkNotificationsRead godoc
// @Summary Mark several notifications read
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body markReadDTO true "ids"
// @Success 200 {object} countResp
// @Failure 400 {object} apiError
// @Router /api/notifications/read [post]
func (h *Handler) MarkNotificationsRead(w http.ResponseWriter, r *http.Request) {
	var dto markReadDTO
	if err := decodeJSON(r, &dto); err != nil {
		h.fail(w, r, err)
		return
	}
	n, err := h.svc.Notifications.MarkManyRead(r.Context(), CurrentUser(r.Context()).ID, dto.IDs)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countResp{Count: n})
}

// MarkAllNotificationsRead godoc
// @Summary Mark every notification read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} countResp
// @Router /api/notifications/read-all [post]
func (h *Handler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Notifications.MarkAllRead(r.Context(), CurrentUser(r.Context()).ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countResp{Count: n})
}
