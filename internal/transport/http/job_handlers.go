package httptransport

import (
	"net/http"

	"marketplace-service/internal/entity"
	"marketplace-service/internal/payment"
	"marketplace-service/internal/service"
)

type verifyPaymentDTO struct {
	InvoiceID string `json:"invoice_id"`
}

type verifyPaymentResp struct {
	Message string          `json:"message"`
	Job     *entity.Job     `json:"job,omitempty"`
	Invoice payment.Invoice `json:"invoice"`
}

func stringField(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

// PostJob godoc
// @Summary Post a job and start its payment
// @Description Validates the job post and initiates an M-Pesa STK push or card checkout. The job is created once the payment is verified.
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body map[string]interface{} true "job fields plus payment_method (mpesa|card), mpesa_number or card_id"
// @Success 200 {object} service.PaymentInitiation
// @Failure 400 {object} apiError
// @Failure 403 {object} apiError
// @Router /api/jobs [post]
func (h *Handler) PostJob(w http.ResponseWriter, r *http.Request) {
	var fields map[string]interface{}
	if err := decodeJSONNumbers(r, &fields); err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.svc.Jobs.PostJob(r.Context(), CurrentUser(r.Context()), service.PostJobRequest{
		Fields:        fields,
		PaymentMethod: stringField(fields, "payment_method"),
		MpesaNumber:   stringField(fields, "mpesa_number"),
		CardID:        stringField(fields, "card_id"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// VerifyPayment godoc
// @Summary Verify a job payment
// @Description Polls the gateway. COMPLETE creates the job (201), PENDING changes nothing (202), anything else fails the transaction (400).
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body verifyPaymentDTO true "invoice id"
// @Success 201 {object} verifyPaymentResp
// @Success 202 {object} verifyPaymentResp
// @Failure 400 {object} apiError
// @Router /api/jobs/verify-payment [post]
func (h *Handler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var dto verifyPaymentDTO
	if err := decodeJSON(r, &dto); err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.svc.Jobs.VerifyPaymentAndPostJob(r.Context(), CurrentUser(r.Context()), dto.InvoiceID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if res.Outcome == service.VerifyPending {
		writeJSON(w, http.StatusAccepted, verifyPaymentResp{
			Message: "Payment is still pending. Please try again shortly.",
			Invoice: *res.Invoice,
		})
		return
	}
	writeJSON(w, http.StatusCreated, verifyPaymentResp{
		Message: "Payment verified and job posted successfully.",
		Job:     res.Job,
		Invoice: *res.Invoice,
	})
}

// PostJobWithCard godoc
// @Summary Post a paid job immediately
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body map[string]interface{} true "job fields"
// @Success 201 {object} entity.Job
// @Failure 400 {object} apiError
// @Router /api/jobs/card [post]
func (h *Handler) PostJobWithCard(w http.ResponseWriter, r *http.Request) {
	var fields map[string]interface{}
	if err := decodeJSONNumbers(r, &fields); err != nil {
		h.fail(w, r, err)
		return
	}
	job, err := h.svc.Jobs.PostJobWithCard(r.Context(), CurrentUser(r.Context()), fields)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, job)
}
