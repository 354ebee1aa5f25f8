package httptransport

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"marketplace-service/internal/entity"
	"marketplace-service/internal/service"
)

type jobsResp struct {
	Count int                  `json:"count"`
	Jobs  []service.JobListing `json:"jobs"`
}

func (h *Handler) writeJobs(w http.ResponseWriter, r *http.Request, jobs []service.JobListing, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jobsResp{Count: len(jobs), Jobs: jobs})
}

// ClientJobs godoc
// @Summary List the client's jobs, newest first
// @Tags client
// @Produce json
// @Security BearerAuth
// @Param search query string false "title contains"
// @Success 200 {object} jobsResp
// @Router /api/client/jobs [get]
func (h *Handler) ClientJobs(w http.ResponseWriter, r *http.Request) {
	u := CurrentUser(r.Context())
	jobs, err := h.svc.Listing.ClientJobs(r.Context(), u.ID, r.URL.Query().Get("search"))
	h.writeJobs(w, r, jobs, err)
}

// ClientCompletedJobs godoc
// @Summary List the client's completed jobs
// @Tags client
// @Produce json
// @Security BearerAuth
// @Success 200 {object} jobsResp
// @Router /api/client/jobs/completed [get]
func (h *Handler) ClientCompletedJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.svc.Listing.ClientCompletedJobs(r.Context(), CurrentUser(r.Context()).ID)
	h.writeJobs(w, r, jobs, err)
}

// ClientPendingJobs godoc
// @Summary List the client's jobs in progress
// @Tags client
// @Produce json
// @Security BearerAuth
// @Success 200 {object} jobsResp
// @Router /api/client/jobs/pending [get]
func (h *Handler) ClientPendingJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.svc.Listing.ClientPendingJobs(r.Context(), CurrentUser(r.Context()).ID)
	h.writeJobs(w, r, jobs, err)
}

// ClientJobsWithProposals godoc
// @Summary List the client's jobs that have proposals and no started engagement
// @Tags client
// @Produce json
// @Security BearerAuth
// @Success 200 {object} jobsResp
// @Router /api/client/jobs/with-proposals [get]
func (h *Handler) ClientJobsWithProposals(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.svc.Listing.ClientJobsWithProposals(r.Context(), CurrentUser(r.Context()).ID)
	h.writeJobs(w, r, jobs, err)
}

// ClientInvitedJobs godoc
// @Summary List the client's jobs with invites
// @Tags client
// @Produce json
// @Security BearerAuth
// @Success 200 {object} jobsResp
// @Router /api/client/jobs/invited [get]
func (h *Handler) ClientInvitedJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.svc.Listing.ClientInvitedJobs(r.Context(), CurrentUser(r.Context()).ID)
	h.writeJobs(w, r, jobs, err)
}

// ClientJobCounts godoc
// @Summary Dashboard counters for the client
// @Tags client
// @Produce json
// @Security BearerAuth
// @Success 200 {object} entity.JobCounts
// @Router /api/client/jobs/counts [get]
func (h *Handler) ClientJobCounts(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Listing.ClientJobCounts(r.Context(), CurrentUser(r.Context()).ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// ClientJobDetail godoc
// @Summary Job detail with its proposals
// @Tags client
// @Produce json
// @Security BearerAuth
// @Param id path string true "job id (uuid)"
// @Success 200 {object} service.ClientJobDetail
// @Failure 404 {object} apiError
// @Router /api/client/jobs/{id} [get]
func (h *Handler) ClientJobDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	d, err := h.svc.Listing.ClientJobDetail(r.Context(), CurrentUser(r.Context()).ID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// OpenJobs godoc
// @Summary Jobs a freelancer can still propose on
// @Tags freelancer
// @Produce json
// @Security BearerAuth
// @Success 200 {object} jobsResp
// @Router /api/freelancer/jobs [get]
func (h *Handler) OpenJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.svc.Listing.OpenJobs(r.Context(), CurrentUser(r.Context()).ID)
	h.writeJobs(w, r, jobs, err)
}

// InvitedJobs godoc
// @Summary Jobs the freelancer has an open invite for
// @Tags freelancer
// @Produce json
// @Security BearerAuth
// @Success 200 {object} jobsResp
// @Router /api/freelancer/jobs/invited [get]
func (h *Handler) InvitedJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.svc.Listing.InvitedJobs(r.Context(), CurrentUser(r.Context()).ID)
	h.writeJobs(w, r, jobs, err)
}

// MatchingJobs godoc
// @Summary Open jobs that match the freelancer profile
// @Tags freelancer
// @Produce json
// @Security BearerAuth
// @Success 200 {object} jobsResp
// @Router /api/freelancer/jobs/matching [get]
func (h *Handler) MatchingJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.svc.Listing.MatchingJobs(r.Context(), CurrentUser(r.Context()).ID)
	h.writeJobs(w, r, jobs, err)
}

// SearchJobs godoc
// @Summary Search open jobs
// @Description Matches title, description, skill and expertise names. The term is wrapped in <mark> in title and description.
// @Tags freelancer
// @Produce json
// @Security BearerAuth
// @Param q query string true "search term"
// @Success 200 {object} jobsResp
// @Failure 400 {object} apiError
// @Router /api/freelancer/jobs/search [get]
func (h *Handler) SearchJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.svc.Listing.SearchJobs(r.Context(), CurrentUser(r.Context()).ID, r.URL.Query().Get("q"))
	h.writeJobs(w, r, jobs, err)
}

// FreelancerJobDetail godoc
// @Summary Job detail for a freelancer
// @Tags freelancer
// @Produce json
// @Security BearerAuth
// @Param id path string true "job id (uuid)"
// @Success 200 {object} service.FreelancerJobDetail
// @Failure 404 {object} apiError
// @Router /api/freelancer/jobs/{id} [get]
func (h *Handler) FreelancerJobDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	d, err := h.svc.Listing.FreelancerJobDetail(r.Context(), CurrentUser(r.Context()).ID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Freelancers godoc
// @Summary Freelancer directory
// @Tags client
// @Produce json
// @Security BearerAuth
// @Param search query string false "name, username, skill or subject"
// @Param active query bool false "active freelancers only"
// @Param sort query string false "rating"
// @Param worked_with query bool false "only freelancers hired on my jobs"
// @Success 200 {array} entity.FreelancerSummary
// @Router /api/client/freelancers [get]
func (h *Handler) Freelancers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := entity.FreelancerFilter{
		Query:        q.Get("search"),
		SortByRating: q.Get("sort") == "rating",
	}
	f.ActiveOnly, _ = strconv.ParseBool(q.Get("active"))
	if ww, _ := strconv.ParseBool(q.Get("worked_with")); ww {
		id := CurrentUser(r.Context()).ID
		f.WorkedWith = &id
	}

	list, err := h.svc.Listing.Freelancers(r.Context(), f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Freelancer godoc
// @Summary Freelancer profile summary
// @Tags client
// @Produce json
// @Security BearerAuth
// @Param id path string true "freelancer id (uuid)"
// @Success 200 {object} entity.FreelancerSummary
// @Failure 404 {object} apiError
// @Router /api/client/freelancers/{id} [get]
func (h *Handler) Freelancer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	f, err := h.svc.Listing.Freelancer(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// FreelancerStats godoc
// @Summary Freelancer counters
// @Description Without an id the caller's own stats are returned.
// @Tags freelancer
// @Produce json
// @Security BearerAuth
// @Param id path string false "freelancer id (uuid)"
// @Success 200 {object} entity.FreelancerStats
// @Router /api/freelancer/stats [get]
// @Router /api/client/freelancers/{id}/stats [get]
func (h *Handler) FreelancerStats(w http.ResponseWriter, r *http.Request) {
	id := CurrentUser(r.Context()).ID
	if chi.URLParam(r, "id") != "" {
		var err error
		if id, err = pathID(r, "id"); err != nil {
			h.fail(w, r, err)
			return
		}
		if _, err := h.svc.Listing.Freelancer(r.Context(), id); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	stats, err := h.svc.Listing.FreelancerStats(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Terms godoc
// @Summary Taxonomy terms of one kind
// @Tags taxonomy
// @Produce json
// @Security BearerAuth
// @Param kind path string true "skill, expertise, subject, language, ..."
// @Success 200 {array} entity.Term
// @Failure 404 {object} apiError
// @Router /api/terms/{kind} [get]
func (h *Handler) Terms(w http.ResponseWriter, r *http.Request) {
	terms, err := h.svc.Listing.Terms(r.Context(), chi.URLParam(r, "kind"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, terms)
}

// PagePrices godoc
// @Summary Per-page pricing table
// @Tags taxonomy
// @Produce json
// @Success 200 {array} entity.PagePrice
// @Router /pricing/per-page [get]
func (h *Handler) PagePrices(w http.ResponseWriter, r *http.Request) {
	prices, err := h.svc.Listing.PagePrices(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prices)
}
