package api

import (
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/chaeso/delivery-api/internal/api/handler"
	"github.com/chaeso/delivery-api/internal/api/middleware"
	"github.com/chaeso/delivery-api/internal/core/ports"
	infrahttp "github.com/chaeso/delivery-api/internal/infrastructure/http"
	"github.com/chaeso/delivery-api/internal/infrastructure/http/handlers"
)

// Services are the use cases exposed over HTTP.
type Services struct {
	Auth       ports.AuthService
	Profiles   ports.ProfileService
	Catalog    ports.CatalogService
	Orders     ports.OrderService
	Statistics ports.StatisticsService
}

// RouterOptions tune optional middleware.
type RouterOptions struct {
	// Sentry enables the Sentry request hub; set it when sentry.Init succeeded.
	Sentry bool
	// Readiness lists the dependencies probed by /health/ready.
	Readiness []handlers.Dependency
	// Registerer receives the HTTP metrics. Defaults to the global registry.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, log zerolog.Logger, opts RouterOptions) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	skipOps := func(c echo.Context) bool { return infrahttp.IsOpsPath(c.Path()) }

	// --- Global middleware ---
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLogger(log, infrahttp.IsOpsPath))
	e.Use(echomiddleware.Recover())
	if opts.Sentry {
		e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
	}
	registerer := opts.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "chaeso",
		Skipper:    skipOps,
		Registerer: registerer,
	}))

	// --- Ops: health probes, metrics, swagger (no auth required) ---
	infrahttp.RegisterOps(e, opts.Readiness...)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(svc.Auth)
	profileHandler := handler.NewProfileHandler(svc.Profiles)
	productHandler := handler.NewProductHandler(svc.Catalog)
	orderHandler := handler.NewOrderHandler(svc.Orders)
	statsHandler := handler.NewStatisticsHandler(svc.Statistics)

	authMiddleware := middleware.Auth(svc.Auth)
	staffOnly := middleware.RequireStaff()

	// --- Public routes ---
	e.POST("/users", authHandler.Register)
	e.POST("/auth/token", authHandler.Login)

	// --- Authenticated routes ---
	r := e.Group("", authMiddleware)
	r.GET("/users/me", authHandler.Me)
	r.POST("/auth/logout", authHandler.Logout)

	r.POST("/clients", profileHandler.CreateClient)
	r.GET("/clients", profileHandler.ListClients)
	r.GET("/clients/:id", profileHandler.GetClient)
	r.PATCH("/clients/:id", profileHandler.UpdateClient)
	r.DELETE("/clients/:id", profileHandler.DeleteClient)

	r.POST("/transporters", profileHandler.CreateTransporter)
	r.GET("/transporters", profileHandler.ListTransporters)
	r.GET("/transporters/:id", profileHandler.GetTransporter)
	r.PATCH("/transporters/:id", profileHandler.UpdateTransporter)
	r.DELETE("/transporters/:id", profileHandler.DeleteTransporter)

	r.GET("/products", productHandler.List)
	r.GET("/products/:id", productHandler.Get)
	r.POST("/products", productHandler.Create, staffOnly)
	r.PATCH("/products/:id", productHandler.Update, staffOnly)
	r.DELETE("/products/:id", productHandler.Delete, staffOnly)
	r.PUT("/products/:id/photo", productHandler.UploadPhoto, staffOnly)

	r.POST("/orders", orderHandler.Create)
	r.GET("/orders", orderHandler.List)
	r.GET("/orders/:id", orderHandler.Get)
	r.POST("/orders/:id/deliver", orderHandler.Deliver)
	r.GET("/orders/:id/events", orderHandler.Events)

	r.GET("/transporter-statistics", statsHandler.Transporters)

	return e
}
