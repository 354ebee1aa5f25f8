package httptransport

import (
	"net/http"

	"github.com/google/uuid"

	"marketplace-service/internal/service"
)

type inviteDTO struct {
	FreelancerID uuid.UUID `json:"freelancer_id"`
	JobID        uuid.UUID `json:"job_id"`
	Message      string    `json:"message"`
}

type declineInviteDTO struct {
	Reason string `json:"reason"`
}

// InviteFreelancer godoc
// @Summary Invite a freelancer to a job
// @Description Emails the freelancer a link to the job.
// @Tags client
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body inviteDTO true "invite"
// @Success 201 {object} entity.Invite
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Router /api/client/invites [post]
func (h *Handler) InviteFreelancer(w http.ResponseWriter, r *http.Request) {
	var dto inviteDTO
	if err := decodeJSON(r, &dto); err != nil {
		h.fail(w, r, err)
		return
	}
	inv, err := h.svc.Invites.Invite(r.Context(), CurrentUser(r.Context()), service.InviteRequest{
		FreelancerID: dto.FreelancerID,
		JobID:        dto.JobID,
		Message:      dto.Message,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

// AcceptInvite godoc
// @Summary Accept an invite and start work
// @Tags freelancer
// @Produce json
// @Security BearerAuth
// @Param id path string true "invite id (uuid)"
// @Success 201 {object} entity.HiredFreelancer
// @Failure 404 {object} apiError
// @Failure 409 {object} apiError
// @Router /api/freelancer/invites/{id}/accept [post]
func (h *Handler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	hire, err := h.svc.Invites.Accept(r.Context(), CurrentUser(r.Context()), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, hire)
}

// DeclineInvite godoc
// @Summary Decline an invite
// @Tags freelancer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "invite id (uuid)"
// @Param request body declineInviteDTO false "reason"
// @Success 200 {object} entity.Invite
// @Failure 404 {object} apiError
// @Router /api/freelancer/invites/{id}/decline [post]
func (h *Handler) DeclineInvite(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var dto declineInviteDTO
	if err := decodeOptionalJSON(r, &dto); err != nil {
		h.fail(w, r, err)
		return
	}
	inv, err := h.svc.Invites.Decline(r.Context(), CurrentUser(r.Context()), id, dto.Reason)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}
