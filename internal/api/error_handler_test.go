package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/socialfeed/gateway/internal/core/domain"
)

type failureBody struct {
	Message string              `json:"message"`
	Details []domain.FieldError `json:"details"`
}

func render(t *testing.T, method string, err error) (*httptest.ResponseRecorder, failureBody) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/x", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var body failureBody
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
		}
	}
	return rec, body
}

func TestErrorHandler_Taxonomy(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", domain.NewValidationError("title", "title must be at least 5 characters"), http.StatusUnprocessableEntity, "validation failed"},
		{"not authenticated", fmt.Errorf("createPost: %w", domain.ErrNotAuthenticated), http.StatusUnauthorized, "not authenticated"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "not authorized"},
		{"not found", domain.ErrNotFound, http.StatusNotFound, "not found"},
		{"conflict", domain.ErrConflict, http.StatusConflict, "already exists"},
		{"invalid credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{"echo error", echo.NewHTTPError(http.StatusMethodNotAllowed, "Method Not Allowed"), http.StatusMethodNotAllowed, "Method Not Allowed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := render(t, http.MethodGet, tt.err)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if body.Message != tt.message {
				t.Errorf("message = %q, want %q", body.Message, tt.message)
			}
		})
	}
}

func TestErrorHandler_ValidationDetails(t *testing.T) {
	_, body := render(t, http.MethodPost, domain.NewValidationError("title", "title is required"))
	if len(body.Details) != 1 || body.Details[0].Field != "title" {
		t.Fatalf("details = %+v", body.Details)
	}
}

func TestErrorHandler_UnexpectedHidesCause(t *testing.T) {
	rec, body := render(t, http.MethodGet, errors.New("mongo: connection refused at 10.0.0.3"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if body.Message != "internal server error" {
		t.Errorf("message = %q", body.Message)
	}
}

func TestErrorHandler_Head(t *testing.T) {
	rec, _ := render(t, http.MethodHead, domain.ErrNotFound)
	if rec.Code != http.StatusNotFound || rec.Body.Len() != 0 {
		t.Errorf("status = %d body = %q", rec.Code, rec.Body.String())
	}
}
