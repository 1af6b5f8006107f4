package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/socialfeed/gateway/internal/core/domain"
	"github.com/socialfeed/gateway/internal/core/ports"
)

// HandlerFunc is an echo handler that also receives the caller's
// authorization context.
type HandlerFunc func(c echo.Context, ac domain.AuthContext) error

// Auth resolves the caller from the Authorization header. It never rejects a
// request: a missing or invalid credential yields an anonymous context and
// each operation's policy decides what anonymous callers may do.
type Auth struct {
	verifier ports.CredentialVerifier
}

func NewAuth(verifier ports.CredentialVerifier) *Auth {
	return &Auth{verifier: verifier}
}

// Context derives the authorization context for the current request.
func (a *Auth) Context(c echo.Context) domain.AuthContext {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return domain.Anonymous()
	}
	return domain.NewAuthContext(a.verifier.VerifyHeader(header))
}

// With adapts h into an echo handler, building the context once per request.
func (a *Auth) With(h HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		return h(c, a.Context(c))
	}
}
