package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/socialfeed/gateway/internal/api/handler"
	"github.com/socialfeed/gateway/internal/api/middleware"
	"github.com/socialfeed/gateway/internal/core/ports"
	"github.com/socialfeed/gateway/internal/core/resolver"
	"github.com/socialfeed/gateway/internal/core/service"
)

const maxBodySize = "8M"

// Dependencies are the collaborators the HTTP surface is built from.
type Dependencies struct {
	Operations  *service.Operations
	Registry    *resolver.Registry
	Verifier    ports.CredentialVerifier
	Images      handler.ImageStore
	Cleaner     ports.AssetCleaner
	Realtime    http.Handler
	ImageDir    string
	CORSOrigins []string
	Checks      map[string]handler.Check
	Log         zerolog.Logger

	// Metrics receives the HTTP metrics and backs /metrics. Nil uses the
	// default Prometheus registry.
	Metrics *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLog(deps.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: deps.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization, "Idempotency-Key"},
	}))
	registerer, gatherer := prometheus.DefaultRegisterer, prometheus.DefaultGatherer
	if deps.Metrics != nil {
		registerer, gatherer = deps.Metrics, deps.Metrics
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "feed",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	e.Use(echomiddleware.BodyLimit(maxBodySize))

	auth := middleware.NewAuth(deps.Verifier)
	authHandler := handler.NewAuthHandler(deps.Operations)
	feedHandler := handler.NewFeedHandler(deps.Operations, deps.Images, deps.Cleaner, deps.Log)
	opsHandler := handler.NewOpsHandler(deps.Registry)

	// --- Auth routes ---
	a := e.Group("/auth")
	a.PUT("/signup", auth.With(authHandler.Signup))
	a.POST("/login", auth.With(authHandler.Login))
	a.GET("/me", auth.With(authHandler.Me))
	a.PUT("/password", auth.With(authHandler.ChangePassword))

	// --- Feed routes (policies enforced per operation) ---
	f := e.Group("/feed")
	f.GET("/posts", auth.With(feedHandler.ListPosts))
	f.POST("/post", auth.With(feedHandler.CreatePost))
	f.GET("/post/:postId", auth.With(feedHandler.GetPost))
	f.PUT("/post/:postId", auth.With(feedHandler.UpdatePost))
	f.DELETE("/post/:postId", auth.With(feedHandler.DeletePost))

	// --- Generic operation dispatch ---
	e.GET("/ops", opsHandler.List)
	e.POST("/ops/:name", auth.With(opsHandler.Execute))

	// --- Realtime and static assets ---
	if deps.Realtime != nil {
		e.GET("/ws", echo.WrapHandler(deps.Realtime))
	}
	if deps.ImageDir != "" {
		e.Static("/images", deps.ImageDir)
	}

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Checks)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
