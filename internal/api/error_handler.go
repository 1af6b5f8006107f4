package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/socialfeed/gateway/internal/core/resolver"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps the domain error taxonomy to its HTTP status and message.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"message": "...", "details": [...]}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		f := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(f.StatusCode)
			return
		}
		_ = c.JSON(f.StatusCode, f)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) resolver.Failure {
	// Echo's own errors (unknown route, method not allowed, body too large).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := fmt.Sprintf("%v", he.Message)
		if he.Internal != nil {
			log.Debug().Err(he.Internal).Str("path", c.Path()).Msg("http error")
		}
		return resolver.Failure{Message: msg, StatusCode: he.Code}
	}

	f, known := resolver.FailureOf(err)
	if known {
		return f
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return f
}
