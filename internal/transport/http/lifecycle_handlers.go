package httptransport

import (
	"net/http"

	"marketplace-service/internal/service"
)

type workDTO struct {
	Files []string `json:"files"`
	Notes *string  `json:"notes"`
}

type revisionReasonDTO struct {
	Reason string `json:"reason"`
}

// StartWork godoc
// @Summary Start or restart work on a job
// @Tags freelancer
// @Produce json
// @Security BearerAuth
// @Param id path string true "job id (uuid)"
// @Success 200 {object} entity.HiredFreelancer
// @Failure 404 {object} apiError
// @Failure 409 {object} apiError
// @Router /api/freelancer/jobs/{id}/start [post]
func (h *Handler) StartWork(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	hire, err := h.svc.Lifecycle.StartWork(r.Context(), CurrentUser(r.Context()).ID, jobID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hire)
}

// SubmitWork godoc
// @Summary Submit finished work
// @Tags freelancer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "job id (uuid)"
// @Param request body workDTO true "files and notes"
// @Success 201 {object} entity.JobSubmission
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Failure 409 {object} apiError
// @Router /api/freelancer/jobs/{id}/submit [post]
func (h *Handler) SubmitWork(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var dto workDTO
	if err := decodeJSON(r, &dto); err != nil {
		h.fail(w, r, err)
		return
	}
	sub, err := h.svc.Lifecycle.SubmitJob(r.Context(), CurrentUser(r.Context()).ID, jobID, service.WorkRequest{Files: dto.Files, Notes: dto.Notes})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

// SubmitRevision godoc
// @Summary Submit a revision
// @Tags freelancer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "job id (uuid)"
// @Param request body workDTO true "files and notes"
// @Success 201 {object} entity.Revision
// @Failure 400 {object} apiError
// @Failure 409 {object} apiError
// @Router /api/freelancer/jobs/{id}/revisions [post]
func (h *Handler) SubmitRevision(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var dto workDTO
	if err := decodeJSON(r, &dto); err != nil {
		h.fail(w, r, err)
		return
	}
	rev, err := h.svc.Lifecycle.SubmitRevision(r.Context(), CurrentUser(r.Context()).ID, jobID, service.WorkRequest{Files: dto.Files, Notes: dto.Notes})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rev)
}

// LatestSubmission godoc
// @Summary The freelancer's latest submission for a job
// @Tags freelancer
// @Produce json
// @Security BearerAuth
// @Param id path string true "job id (uuid)"
// @Success 200 {object} entity.JobSubmission
// @Failure 404 {object} apiError
// @Router /api/freelancer/jobs/{id}/submission [get]
func (h *Handler) LatestSubmission(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	sub, err := h.svc.Lifecycle.LatestSubmission(r.Context(), CurrentUser(r.Context()).ID, jobID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// CompleteJob godoc
// @Summary Accept the submitted work and complete the job
// @Tags client
// @Produce json
// @Security BearerAuth
// @Param id path string true "job id (uuid)"
// @Success 200 {object} entity.HiredFreelancer
// @Failure 404 {object} apiError
// @Failure 409 {object} apiError
// @Router /api/client/jobs/{id}/complete [post]
func (h *Handler) CompleteJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	hire, err := h.svc.Lifecycle.MarkSubmissionSatisfied(r.Context(), CurrentUser(r.Context()).ID, jobID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hire)
}

// RequestRevision godoc
// @Summary Ask the freelancer for a revision
// @Tags client
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "job id (uuid)"
// @Param request body revisionReasonDTO true "reason"
// @Success 201 {object} entity.RevisionReason
// @Failure 400 {object} apiError
// @Failure 409 {object} apiError
// @Router /api/client/jobs/{id}/revision [post]
func (h *Handler) RequestRevision(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var dto revisionReasonDTO
	if err := decodeJSON(r, &dto); err != nil {
		h.fail(w, r, err)
		return
	}
	rr, err := h.svc.Lifecycle.RequestRevision(r.Context(), CurrentUser(r.Context()).ID, jobID, dto.Reason)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rr)
}

// EngagementStatus godoc
// @Summary Engagement state of a job
// @Tags engagements
// @Produce json
// @Security BearerAuth
// @Param id path string true "job id (uuid)"
// @Success 200 {object} entity.HiredFreelancer
// @Failure 404 {object} apiError
// @Router /api/engagements/{id} [get]
func (h *Handler) EngagementStatus(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	hire, err := h.svc.Lifecycle.Status(r.Context(), CurrentUser(r.Context()).ID, jobID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hire)
}

// Submissions godoc
// @Summary Submissions of a job
// @Tags engagements
// @Produce json
// @Security BearerAuth
// @Param id path string true "job id (uuid)"
// @Success 200 {array} entity.JobSubmission
// @Failure 404 {object} apiError
// @Router /api/engagements/{id}/submissions [get]
func (h *Handler) Submissions(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	subs, err := h.svc.Lifecycle.Submissions(r.Context(), CurrentUser(r.Context()).ID, jobID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

// Revisions godoc
// @Summary Revisions of a job
// @Tags engagements
// @Produce json
// @Security BearerAuth
// @Param id path string true "job id (uuid)"
// @Success 200 {array} entity.Revision
// @Failure 404 {object} apiError
// @Router /api/engagements/{id}/revisions [get]
func (h *Handler) Revisions(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	revs, err := h.svc.Lifecycle.Revisions(r.Context(), CurrentUser(r.Context()).ID, jobID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, revs)
}

// LatestRevisionReason godoc
// @Summary Latest revision reason of a job
// @Tags engagements
// @Produce json
// @Security BearerAuth
// @Param id path string true "job id (uuid)"
// @Success 200 {object} entity.RevisionReason
// @Failure 404 {object} apiError
// @Router /api/engagements/{id}/revision-reason [get]
func (h *Handler) LatestRevisionReason(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rr, err := h.svc.Lifecycle.LatestRevisionReason(r.Context(), CurrentUser(r.Context()).ID, jobID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rr)
}

// Tasks godoc
// @Summary The freelancer's engagements with their jobs
// @Tags freelancer
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending or completed"
// @Success 200 {array} service.Task
// @Failure 400 {object} apiError
// @Router /api/freelancer/tasks [get]
func (h *Handler) Tasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.svc.Lifecycle.Tasks(r.Context(), CurrentUser(r.Context()).ID, r.URL.Query().Get("status"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// Task godoc
// @Summary One engagement of the freelancer
// @Tags freelancer
// @Produce json
// @Security BearerAuth
// @Param id path string true "job id (uuid)"
// @Success 200 {object} service.Task
// @Failure 404 {object} apiError
// @Router /api/freelancer/tasks/{id} [get]
func (h *Handler) Task(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	task, err := h.svc.Lifecycle.Task(r.Context(), CurrentUser(r.Context()).ID, jobID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}
