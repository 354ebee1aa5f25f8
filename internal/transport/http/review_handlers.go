package httptransport

import (
	"net/http"

	"github.com/google/uuid"

	"marketplace-service/internal/service"
)

type reviewDTO struct {
	RecipientID uuid.UUID `json:"recipient_id"`
	JobID       uuid.UUID `json:"job_id"`
	Rating      int       `json:"rating"`
	Comment     *string   `json:"comment"`
}

// PostReview godoc
// @Summary Review the other party of a job
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reviewDTO true "review"
// @Success 201 {object} entity.Review
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Router /api/reviews [post]
func (h *Handler) PostReview(w http.ResponseWriter, r *http.Request) {
	var dto reviewDTO
	if err := decodeJSON(r, &dto); err != nil {
		h.fail(w, r, err)
		return
	}
	rev, err := h.svc.Reviews.Post(r.Context(), CurrentUser(r.Context()), service.PostReviewRequest{
		RecipientID: dto.RecipientID,
		JobID:       dto.JobID,
		Rating:      dto.Rating,
		Comment:     dto.Comment,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rev)
}

// UserReviews godoc
// @Summary Reviews received by a user with their average rating
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Param id path string true "user id (uuid)"
// @Success 200 {object} service.ReviewsResult
// @Failure 404 {object} apiError
// @Router /api/users/{id}/reviews [get]
func (h *Handler) UserReviews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := h.svc.Reviews.ForRecipient(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
