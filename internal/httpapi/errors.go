package httpapi

import (
	"errors"
	"net/http"

	"github.com/andy/billing/internal/domain"
	"github.com/andy/billing/internal/log"
	"github.com/go-chi/render"
)

// badRequestError marks malformed input that never reached the domain.
type badRequestError struct {
	msg string
}

func (e *badRequestError) Error() string { return e.msg }

func badRequest(msg string) error { return &badRequestError{msg: msg} }

type errorResponse struct {
	Error  string              `json:"error"`
	Fields []domain.FieldError `json:"fields,omitempty"`
}

func statusOf(err error) int {
	var verr *domain.ValidationError
	var breq *badRequestError
	switch {
	case errors.As(err, &breq):
		return http.StatusBadRequest
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err to a status code and JSON body. Server-side failures
// are logged and their details withheld.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	body := errorResponse{Error: err.Error()}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		body.Error = "validation failed"
		body.Fields = verr.Fields
	}

	if status >= http.StatusInternalServerError {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "request failed", log.FieldError, err)
		body.Error = http.StatusText(status)
	}

	render.Status(r, status)
	render.JSON(w, r, body)
}
