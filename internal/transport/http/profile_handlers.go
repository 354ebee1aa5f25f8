package httptransport

import (
	"net/http"

	"marketplace-service/internal/service"
)

// AddPortfolioItem godoc
// @Summary Add a portfolio item
// @Description image and document are file URLs; at least one is required.
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.PortfolioRequest true "portfolio item"
// @Success 201 {object} entity.PortfolioItem
// @Failure 400 {object} apiError
// @Router /api/freelancer/portfolio [post]
func (h *Handler) AddPortfolioItem(w http.ResponseWriter, r *http.Request) {
	var req service.PortfolioRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	item, err := h.svc.Profiles.AddPortfolioItem(r.Context(), CurrentUser(r.Context()).ID, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// Portfolio godoc
// @Summary The caller's portfolio, newest first
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {array} entity.PortfolioItem
// @Router /api/freelancer/portfolio [get]
func (h *Handler) Portfolio(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Profiles.Portfolio(r.Context(), CurrentUser(r.Context()).ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// DeletePortfolioItem godoc
// @Summary Remove a portfolio item
// @Tags profile
// @Security BearerAuth
// @Param id path string true "item id (uuid)"
// @Success 204
// @Failure 404 {object} apiError
// @Router /api/freelancer/portfolio/{id} [delete]
func (h *Handler) DeletePortfolioItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.svc.Profiles.DeletePortfolioItem(r.Context(), CurrentUser(r.Context()).ID, id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddEducation godoc
// @Summary Add an education entry
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.EducationRequest true "education"
// @Success 201 {object} entity.Education
// @Failure 400 {object} apiError
// @Router /api/freelancer/education [post]
func (h *Handler) AddEducation(w http.ResponseWriter, r *http.Request) {
	var req service.EducationRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	e, err := h.svc.Profiles.AddEducation(r.Context(), CurrentUser(r.Context()).ID, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// Education godoc
// @Summary The caller's education entries
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {array} entity.Education
// @Router /api/freelancer/education [get]
func (h *Handler) Education(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Profiles.Education(r.Context(), CurrentUser(r.Context()).ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// DeleteEducation godoc
// @Summary Remove an education entry
// @Tags profile
// @Security BearerAuth
// @Param id path string true "education id (uuid)"
// @Success 204
// @Failure 404 {object} apiError
// @Router /api/freelancer/education/{id} [delete]
func (h *Handler) DeleteEducation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.svc.Profiles.DeleteEducation(r.Context(), CurrentUser(r.Context()).ID, id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateSkills godoc
// @Summary Replace profile term lists
// @Description Keys: skills, expertise, subjects, languages, assignment_types, service_types. Lists that are left out stay unchanged.
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body map[string][]int64 true "term ids per list"
// @Success 200 {object} map[string][]int64
// @Failure 400 {object} apiError
// @Router /api/freelancer/skills [put]
func (h *Handler) UpdateSkills(w http.ResponseWriter, r *http.Request) {
	var req map[string][]int64
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	tax, err := h.svc.Profiles.UpdateSkills(r.Context(), CurrentUser(r.Context()).ID, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tax)
}
