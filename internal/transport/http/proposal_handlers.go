package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"marketplace-service/internal/entity"
	"marketplace-service/internal/service"
)

// decimal accepts a JSON string or number and keeps its text.
type decimal string

func (d *decimal) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*d = decimal(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*d = decimal(n.String())
	return nil
}

type submitProposalDTO struct {
	CoverLetter string   `json:"cover_letter"`
	BidAmount   decimal  `json:"bid_amount" swaggertype:"string"`
	Files       []string `json:"files"`
}

type updateProposalDTO struct {
	CoverLetter *string  `json:"cover_letter"`
	BidAmount   *decimal `json:"bid_amount" swaggertype:"string"`
	Files       []string `json:"files"`
}

type withdrawDTO struct {
	Reason *string `json:"reason"`
}

type proposalsResp struct {
	Count     int               `json:"count"`
	Proposals []entity.Proposal `json:"proposals"`
}

// SubmitProposal godoc
// @Summary Submit a proposal on a job
// @Tags freelancer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "job id (uuid)"
// @Param request body submitProposalDTO true "proposal"
// @Success 201 {object} entity.Proposal
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Router /api/freelancer/jobs/{id}/proposals [post]
func (h *Handler) SubmitProposal(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var dto submitProposalDTO
	if err := decodeJSON(r, &dto); err != nil {
		h.fail(w, r, err)
		return
	}

	p, err := h.svc.Proposals.Submit(r.Context(), CurrentUser(r.Context()), service.SubmitProposalRequest{
		JobID:       jobID,
		CoverLetter: dto.CoverLetter,
		BidAmount:   string(dto.BidAmount),
		Files:       dto.Files,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// ClientProposal godoc
// @Summary Proposal detail for the job owner
// @Description Marks the proposal viewed; viewed_at is stamped on the first view only.
// @Tags client
// @Produce json
// @Security BearerAuth
// @Param id path string true "proposal id (uuid)"
// @Success 200 {object} entity.Proposal
// @Failure 404 {object} apiError
// @Router /api/client/proposals/{id} [get]
func (h *Handler) ClientProposal(w http.ResponseWriter, r *http.Request) {
	h.clientProposalAction(w, r, h.svc.Proposals.DetailForClient)
}

// AcceptProposal godoc
// @Summary Accept a proposal
// @Tags client
// @Produce json
// @Security BearerAuth
// @Param id path string true "proposal id (uuid)"
// @Success 200 {object} entity.Proposal
// @Failure 404 {object} apiError
// @Router /api/client/proposals/{id}/accept [post]
func (h *Handler) AcceptProposal(w http.ResponseWriter, r *http.Request) {
	h.clientProposalAction(w, r, h.svc.Proposals.Accept)
}

// DeclineProposal godoc
// @Summary Decline a proposal
// @Tags client
// @Produce json
// @Security BearerAuth
// @Param id path string true "proposal id (uuid)"
// @Success 200 {object} entity.Proposal
// @Failure 404 {object} apiError
// @Router /api/client/proposals/{id}/decline [post]
func (h *Handler) DeclineProposal(w http.ResponseWriter, r *http.Request) {
	h.clientProposalAction(w, r, h.svc.Proposals.Decline)
}

func (h *Handler) clientProposalAction(w http.ResponseWriter, r *http.Request, do func(ctx context.Context, clientID, id uuid.UUID) (*entity.Proposal, error)) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := do(r.Context(), CurrentUser(r.Context()).ID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// MyProposals godoc
// @Summary The freelancer's proposals on jobs not yet started
// @Tags freelancer
// @Produce json
// @Security BearerAuth
// @Success 200 {object} proposalsResp
// @Router /api/freelancer/proposals [get]
func (h *Handler) MyProposals(w http.ResponseWriter, r *http.Request) {
	ps, err := h.svc.Proposals.ListForFreelancer(r.Context(), CurrentUser(r.Context()).ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, proposalsResp{Count: len(ps), Proposals: ps})
}

// MyProposal godoc
// @Summary One of the freelancer's proposals
// @Tags freelancer
// @Produce json
// @Security BearerAuth
// @Param id path string true "proposal id (uuid)"
// @Success 200 {object} entity.Proposal
// @Failure 404 {object} apiError
// @Router /api/freelancer/proposals/{id} [get]
func (h *Handler) MyProposal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.svc.Proposals.GetForFreelancer(r.Context(), CurrentUser(r.Context()).ID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdateProposal godoc
// @Summary Partially update a proposal
// @Tags freelancer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "proposal id (uuid)"
// @Param request body updateProposalDTO true "fields to change"
// @Success 200 {object} entity.Proposal
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Router /api/freelancer/proposals/{id} [patch]
func (h *Handler) UpdateProposal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var dto updateProposalDTO
	if err := decodeJSON(r, &dto); err != nil {
		h.fail(w, r, err)
		return
	}

	req := service.UpdateProposalRequest{CoverLetter: dto.CoverLetter, Files: dto.Files}
	if dto.BidAmount != nil {
		bid := string(*dto.BidAmount)
		req.BidAmount = &bid
	}
	p, err := h.svc.Proposals.Update(r.Context(), CurrentUser(r.Context()).ID, id, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeleteProposal godoc
// @Summary Delete a proposal
// @Tags freelancer
// @Security BearerAuth
// @Param id path string true "proposal id (uuid)"
// @Success 204
// @Failure 404 {object} apiError
// @Router /api/freelancer/proposals/{id} [delete]
func (h *Handler) DeleteProposal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.svc.Proposals.Delete(r.Context(), CurrentUser(r.Context()).ID, id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// WithdrawProposal godoc
// @Summary Withdraw a proposal with an optional reason
// @Tags freelancer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "proposal id (uuid)"
// @Param request body withdrawDTO false "reason"
// @Success 201 {object} entity.DeclinedJob
// @Failure 404 {object} apiError
// @Router /api/freelancer/proposals/{id}/withdraw [post]
func (h *Handler) WithdrawProposal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var dto withdrawDTO
	if err := decodeOptionalJSON(r, &dto); err != nil {
		h.fail(w, r, err)
		return
	}
	d, err := h.svc.Proposals.Withdraw(r.Context(), CurrentUser(r.Context()).ID, id, dto.Reason)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}
