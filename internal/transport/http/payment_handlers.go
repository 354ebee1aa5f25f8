package httptransport

import (
	"net/http"

	"marketplace-service/internal/service"
)

type mpesaDTO struct {
	PhoneNumber string `json:"phone_number"`
}

// Wallet godoc
// @Summary The caller's wallet
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} entity.Wallet
// @Failure 404 {object} apiError
// @Router /api/payments/wallet [get]
func (h *Handler) Wallet(w http.ResponseWriter, r *http.Request) {
	wl, err := h.svc.Payments.Wallet(r.Context(), CurrentUser(r.Context()).ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wl)
}

// Transactions godoc
// @Summary Payment history
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Success 200 {array} entity.Transaction
// @Router /api/payments/transactions [get]
func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.svc.Payments.Transactions(r.Context(), CurrentUser(r.Context()).ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

// AddMpesa godoc
// @Summary Save an M-Pesa number
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body mpesaDTO true "phone"
// @Success 201 {object} entity.MpesaAccount
// @Failure 400 {object} apiError
// @Router /api/payments/mpesa [post]
func (h *Handler) AddMpesa(w http.ResponseWriter, r *http.Request) {
	var dto mpesaDTO
	if err := decodeJSON(r, &dto); err != nil {
		h.fail(w, r, err)
		return
	}
	acc, err := h.svc.Payments.AddMpesa(r.Context(), CurrentUser(r.Context()).ID, dto.PhoneNumber)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, acc)
}

// MpesaAccounts godoc
// @Summary Saved M-Pesa numbers
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Success 200 {array} entity.MpesaAccount
// @Router /api/payments/mpesa [get]
func (h *Handler) MpesaAccounts(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Payments.MpesaAccounts(r.Context(), CurrentUser(r.Context()).ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// DeleteMpesa godoc
// @Summary Remove a saved M-Pesa number
// @Tags payments
// @Security BearerAuth
// @Param id path string true "account id (uuid)"
// @Success 204
// @Failure 404 {object} apiError
// @Router /api/payments/mpesa/{id} [delete]
func (h *Handler) DeleteMpesa(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.svc.Payments.DeleteMpesa(r.Context(), CurrentUser(r.Context()).ID, id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddPayPal godoc
// @Summary Save a PayPal account
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.AddPayPalRequest true "paypal"
// @Success 201 {object} entity.PayPalAccount
// @Failure 400 {object} apiError
// @Router /api/payments/paypal [post]
func (h *Handler) AddPayPal(w http.ResponseWriter, r *http.Request) {
	var req service.AddPayPalRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	acc, err := h.svc.Payments.AddPayPal(r.Context(), CurrentUser(r.Context()).ID, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, acc)
}

// PayPalAccounts godoc
// @Summary Saved PayPal accounts
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Success 200 {array} entity.PayPalAccount
// @Router /api/payments/paypal [get]
func (h *Handler) PayPalAccounts(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Payments.PayPalAccounts(r.Context(), CurrentUser(r.Context()).ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// DeletePayPal godoc
// @Summary Remove a saved PayPal account
// @Tags payments
// @Security BearerAuth
// @Param id path string true "account id (uuid)"
// @Success 204
// @Failure 404 {object} apiError
// @Router /api/payments/paypal/{id} [delete]
func (h *Handler) DeletePayPal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.svc.Payments.DeletePayPal(r.Context(), CurrentUser(r.Context()).ID, id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddCard godoc
// @Summary Save a card
// @Description Only the last four digits are stored.
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.AddCardRequest true "card"
// @Success 201 {object} entity.Card
// @Failure 400 {object} apiError
// @Router /api/payments/cards [post]
func (h *Handler) AddCard(w http.ResponseWriter, r *http.Request) {
	var req service.AddCardRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	card, err := h.svc.Payments.AddCard(r.Context(), CurrentUser(r.Context()).ID, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

// Cards godoc
// @Summary Saved cards
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Success 200 {array} entity.Card
// @Router /api/payments/cards [get]
func (h *Handler) Cards(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Payments.Cards(r.Context(), CurrentUser(r.Context()).ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// DeleteCard godoc
// @Summary Remove a saved card
// @Tags payments
// @Security BearerAuth
// @Param id path string true "card id (uuid)"
// @Success 204
// @Failure 404 {object} apiError
// @Router /api/payments/cards/{id} [delete]
func (h *Handler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.svc.Payments.DeleteCard(r.Context(), CurrentUser(r.Context()).ID, id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
