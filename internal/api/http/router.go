package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/field-service/internal/api/http/handlers"
	"github.com/spec-kit/field-service/internal/auth"
	"github.com/spec-kit/field-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Get("/:id/history", cfg.Tickets.History)
	tickets.Post("/:id/notes", cfg.Tickets.AddNote)
	tickets.Post("/:id/transition", cfg.Tickets.Transition)

	tickets.Post("/:id/assign",
		auth.RequireRole(domain.RoleAdmin, domain.RoleZoneUser), cfg.Tickets.AssignTechnician)
	tickets.Post("/:id/zone-user",
		auth.RequireRole(domain.RoleAdmin, domain.RoleZoneUser), cfg.Tickets.AssignZoneUser)
	tickets.Post("/:id/visits", cfg.Tickets.PlanVisit)
	tickets.Post("/:id/visits/complete", cfg.Tickets.CompleteVisit)
	tickets.Post("/:id/purchase-orders", cfg.Tickets.RequestPO)
	tickets.Post("/:id/purchase-orders/approve",
		auth.RequireRole(domain.RoleAdmin), cfg.Tickets.ApprovePO)
	tickets.Post("/:id/spare-parts", cfg.Tickets.UpdateSpareParts)
	tickets.Post("/:id/close", cfg.Tickets.CloseTicket)
}
