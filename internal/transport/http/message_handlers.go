package httptransport

import (
	"net/http"

	"github.com/google/uuid"

	"marketplace-service/internal/service"
)

type sendMessageDTO struct {
	ReceiverID uuid.UUID `json:"receiver_id"`
	Text       string    `json:"text"`
	Files      []string  `json:"files"`
}

// Conversations godoc
// @Summary Latest message per counterpart
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {array} entity.Conversation
// @Router /api/messages [get]
func (h *Handler) Conversations(w http.ResponseWriter, r *http.Request) {
	convs, err := h.svc.Messages.Conversations(r.Context(), CurrentUser(r.Context()).ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convs)
}

// UnreadMessages godoc
// @Summary Number of unread messages
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} countResp
// @Router /api/messages/unread-count [get]
func (h *Handler) UnreadMessages(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Messages.UnreadCount(r.Context(), CurrentUser(r.Context()).ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countResp{Count: int64(n)})
}

// Thread godoc
// @Summary Messages exchanged with one user, oldest first
// @Description Marks the incoming messages of the thread as read.
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path string true "other user id (uuid)"
// @Success 200 {array} entity.Message
// @Failure 404 {object} apiError
// @Router /api/messages/{id} [get]
func (h *Handler) Thread(w http.ResponseWriter, r *http.Request) {
	other, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	msgs, err := h.svc.Messages.Thread(r.Context(), CurrentUser(r.Context()).ID, other)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

// SendMessage godoc
// @Summary Send a message
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body sendMessageDTO true "message"
// @Success 201 {object} entity.Message
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Router /api/messages [post]
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var dto sendMessageDTO
	if err := decodeJSON(r, &dto); err != nil {
		h.fail(w, r, err)
		return
	}
	msg, err := h.svc.Messages.Send(r.Context(), CurrentUser(r.Context()), service.SendMessageRequest{
		ReceiverID: dto.ReceiverID,
		Text:       dto.Text,
		Files:      dto.Files,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// UserStatus godoc
// @Summary Online status of a user
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path string true "user id (uuid)"
// @Success 200 {object} service.UserStatus
// @Failure 404 {object} apiError
// @Router /api/users/{id}/status [get]
func (h *Handler) UserStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	st, err := h.svc.Messages.UserStatus(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// GoOffline godoc
// @Summary Drop the caller's presence mark
// @Tags messages
// @Security BearerAuth
// @Success 204
// @Router /api/presence/offline [post]
func (h *Handler) GoOffline(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Messages.GoOffline(r.Context(), CurrentUser(r.Context()).ID); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
