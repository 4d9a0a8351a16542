package http

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/chaeso/delivery-api/internal/infrastructure/http/handlers"
)

// RegisterOps mounts the unauthenticated operational endpoints: health
// probes, Prometheus metrics and the Swagger UI.
func RegisterOps(e *echo.Echo, deps ...handlers.Dependency) {
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps...)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)
}

// IsOpsPath reports whether path belongs to an endpoint registered by
// RegisterOps. Used to keep probes out of access logs and HTTP metrics.
func IsOpsPath(path string) bool {
	switch path {
	case "/health", "/health/ready", "/metrics", "/swagger/*":
		return true
	}
	return false
}
