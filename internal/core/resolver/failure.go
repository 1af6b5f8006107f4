package resolver

import (
	"errors"
	"net/http"

	"github.com/socialfeed/gateway/internal/core/domain"
)

// Failure is the structured error handed back to the transport.
type Failure struct {
	Message    string              `json:"message"`
	StatusCode int                 `json:"-"`
	Details    []domain.FieldError `json:"details,omitempty"`
}

// FailureOf maps err onto the failure taxonomy. The boolean is false for
// unexpected errors, whose message is replaced with a generic one.
func FailureOf(err error) (Failure, bool) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return Failure{Message: "validation failed", StatusCode: http.StatusUnprocessableEntity, Details: ve.Fields}, true
	case errors.Is(err, domain.ErrInvalidInput):
		return Failure{Message: "validation failed", StatusCode: http.StatusUnprocessableEntity}, true
	case errors.Is(err, domain.ErrNotAuthenticated):
		return Failure{Message: "not authenticated", StatusCode: http.StatusUnauthorized}, true
	case errors.Is(err, domain.ErrForbidden):
		return Failure{Message: "not authorized", StatusCode: http.StatusForbidden}, true
	case errors.Is(err, domain.ErrNotFound):
		return Failure{Message: "not found", StatusCode: http.StatusNotFound}, true
	case errors.Is(err, domain.ErrConflict):
		return Failure{Message: "already exists", StatusCode: http.StatusConflict}, true
	case errors.Is(err, domain.ErrInvalidCredentials):
		return Failure{Message: "invalid credentials", StatusCode: http.StatusUnauthorized}, true
	}
	return Failure{Message: "internal server error", StatusCode: http.StatusInternalServerError}, false
}

// Outcome is a short label for err used in metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrNotAuthenticated):
		return "not_authenticated"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	default:
		return "unexpected"
	}
}
