package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/frontline-service/internal/api/http/handlers"
	"github.com/spec-kit/frontline-service/internal/auth"
	"github.com/spec-kit/frontline-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Citizens       *handlers.CitizensHandler
	Cases          *handlers.CasesHandler
	Services       *handlers.ServicesHandler
	Workers        *handlers.WorkersHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/citizens", cfg.Citizens.Register)
	app.Get("/citizens/:id", cfg.Citizens.Get)

	app.Post("/cases", cfg.Cases.Submit)
	app.Get("/cases/reference/:key", cfg.Cases.GetByReference)
	app.Get("/cases/:id", cfg.Cases.Get)
	app.Post("/cases/:id/cancel", cfg.Cases.Cancel)

	app.Get("/services", cfg.Services.List)
	app.Get("/services/:id", cfg.Services.Get)

	console := app.Group("/console")
	console.Post("/login", cfg.Workers.Login)

	protected := console.Group("", cfg.AuthMiddleware.Handle)
	protected.Get("/dashboard", cfg.Workers.Dashboard)
	protected.Get("/cases", cfg.Cases.List)
	protected.Post("/cases/:id/requeue", cfg.Cases.Requeue)

	admin := protected.Group("", auth.RequireRole(domain.WorkerRoleAdmin))
	admin.Post("/services", cfg.Services.Create)
	admin.Post("/workers", cfg.Workers.CreateAccount)
}
