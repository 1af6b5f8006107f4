package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/socialfeed/gateway/internal/core/domain"
)

type stubVerifier struct {
	valid map[string]string
	calls int
}

func (s *stubVerifier) Verify(raw string) domain.Verification {
	s.calls++
	if id, ok := s.valid[raw]; ok {
		return domain.Verification{IdentityID: id, Valid: true}
	}
	return domain.Verification{}
}

func (s *stubVerifier) VerifyHeader(header string) domain.Verification {
	if len(header) > 7 && header[:7] == "Bearer " {
		return s.Verify(header[7:])
	}
	s.calls++
	return domain.Verification{}
}

func serve(t *testing.T, a *Auth, header string) domain.AuthContext {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got domain.AuthContext
	called := false
	h := a.With(func(c echo.Context, ac domain.AuthContext) error {
		called = true
		got = ac
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	return got
}

func TestAuth_ValidToken(t *testing.T) {
	v := &stubVerifier{valid: map[string]string{"good": "user-1"}}
	ac := serve(t, NewAuth(v), "Bearer good")

	if !ac.IsAuthenticated() || ac.IdentityID() != "user-1" {
		t.Fatalf("expected user-1, got %+v", ac)
	}
	if v.calls != 1 {
		t.Errorf("verifier called %d times, want 1", v.calls)
	}
}

func TestAuth_MissingHeaderIsAnonymous(t *testing.T) {
	v := &stubVerifier{}
	ac := serve(t, NewAuth(v), "")

	if ac.IsAuthenticated() {
		t.Fatalf("expected anonymous")
	}
	if v.calls != 0 {
		t.Errorf("verifier should not run without a header")
	}
}

func TestAuth_InvalidCredentialIsAnonymous(t *testing.T) {
	for _, header := range []string{"Bearer bad", "Token good", "Bearer"} {
		ac := serve(t, NewAuth(&stubVerifier{valid: map[string]string{"good": "u"}}), header)
		if ac.IsAuthenticated() {
			t.Errorf("%q: expected anonymous", header)
		}
	}
}
