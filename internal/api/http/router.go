package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/service-marketplace/internal/api/http/handlers"
	"github.com/spec-kit/service-marketplace/internal/auth"
	"github.com/spec-kit/service-marketplace/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Requests       *handlers.RequestsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	if cfg.Health != nil {
		app.Get("/health/live", cfg.Health.Live)
		app.Get("/health/ready", cfg.Health.Ready)
	}
	if reg := cfg.Metrics.Registry(); reg != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	app.Get("/catalog/services", cfg.Requests.Catalog)

	authGroup := app.Group("/auth")
	authGroup.Post("/users/register", cfg.Users.Register)
	authGroup.Post("/users/login", cfg.Users.Login)
	authGroup.Post("/users/check-telephone", cfg.Users.CheckTelephone)
	authGroup.Post("/pin/reset", cfg.Users.ResetPIN)

	authGroup.Post("/signup/drafts", cfg.Users.StartSignUp)
	authGroup.Post("/signup/drafts/:id/telephone", cfg.Users.SubmitSignUpTelephone)
	authGroup.Post("/signup/drafts/:id/pin", cfg.Users.CompleteSignUp)

	requests := app.Group("/requests", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	requests.Post("", cfg.Requests.Submit)
	requests.Get("", cfg.Requests.List)
	requests.Post("/cancel", cfg.Requests.Cancel)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Get("/requests", cfg.Admin.ListRequests)
	admin.Patch("/requests/:id/status", cfg.Admin.UpdateStatus)
}
