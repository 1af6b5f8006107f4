package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/socialfeed/gateway/internal/core/domain"
	"github.com/socialfeed/gateway/internal/core/service"
	"github.com/socialfeed/gateway/internal/infrastructure/db/memory"
	"github.com/socialfeed/gateway/internal/infrastructure/token"
)

type nopNotifier struct{}

func (nopNotifier) Publish(context.Context, domain.Event) {}

type recordingCleaner struct{ refs []string }

func (c *recordingCleaner) Schedule(ref string) { c.refs = append(c.refs, ref) }

func newOperations(t *testing.T) (*service.Operations, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	auth := service.NewAuthService(store, token.NewManager("secret", time.Hour), zerolog.Nop())
	feed := service.NewFeedService(store.Posts(), store, nopNotifier{}, &recordingCleaner{}, nil, 2, zerolog.Nop())
	return service.NewOperations(auth, feed), store
}

func jsonContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Signup_Success(t *testing.T) {
	ops, store := newOperations(t)
	h := NewAuthHandler(ops)

	c, rec := jsonContext(http.MethodPut, "/auth/signup", `{"email":" Alice@Example.com ","password":"secret1","name":"Alice"}`)
	if err := h.Signup(c, domain.Anonymous()); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp signupResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	user, err := store.FindByEmail(context.Background(), "alice@example.com")
	if err != nil || user.ID != resp.UserID {
		t.Fatalf("stored user = %+v, %v; response %+v", user, err, resp)
	}
}

func TestAuthHandler_Signup_InvalidPayload(t *testing.T) {
	ops, _ := newOperations(t)
	h := NewAuthHandler(ops)

	c, _ := jsonContext(http.MethodPut, "/auth/signup", "not-json")
	err := h.Signup(c, domain.Anonymous())
	if err != errMalformedBody {
		t.Fatalf("expected malformed body error, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	ops, _ := newOperations(t)
	h := NewAuthHandler(ops)

	c, _ := jsonContext(http.MethodPut, "/auth/signup", `{"email":"alice@example.com","password":"secret1","name":"Alice"}`)
	if err := h.Signup(c, domain.Anonymous()); err != nil {
		t.Fatal(err)
	}

	c, rec := jsonContext(http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"secret1"}`)
	if err := h.Login(c, domain.Anonymous()); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] == "" || resp["userId"] == "" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_Me_Anonymous(t *testing.T) {
	ops, _ := newOperations(t)
	h := NewAuthHandler(ops)

	c, _ := jsonContext(http.MethodGet, "/auth/me", "")
	if err := h.Me(c, domain.Anonymous()); err != domain.ErrNotAuthenticated {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}
