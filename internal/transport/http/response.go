package httptransport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"marketplace-service/internal/apperr"
)

type apiError struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

type messageResp struct {
	Message string `json:"message"`
}

type countResp struct {
	Count int64 `json:"count"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, apiError{Message: msg})
}

func statusOf(k apperr.Kind) int {
	switch k {
	case apperr.KindValidation, apperr.KindUpstream:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err using the error taxonomy. Internal errors are logged and
// answered with a generic message.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		h.log.Error("request failed",
			zap.String("req_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeErr(w, http.StatusInternalServerError, "internal server error")
		return
	}

	msg := ae.Message
	if ae.Kind == apperr.KindUpstream {
		msg = ae.Error()
	}
	writeJSON(w, statusOf(ae.Kind), apiError{Message: msg, Errors: ae.Fields})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.BadRequest("invalid json")
	}
	return nil
}

// decodeJSONNumbers keeps numbers as json.Number so money keeps the caller's digits.
func decodeJSONNumbers(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return apperr.BadRequest("invalid json")
	}
	return nil
}

// decodeOptionalJSON tolerates an empty body.
func decodeOptionalJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return apperr.BadRequest("invalid json")
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apperr.BadRequest("invalid " + name)
	}
	return id, nil
}
