package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/solterra/operations-service/internal/api/http/handlers"
	"github.com/solterra/operations-service/internal/auth"
)

// RouteConfig bundles the handlers and middleware the router needs.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Auth      *handlers.AuthHandler
	Tickets   *handlers.TicketsHandler
	Sales     *handlers.SalesHandler
	Cuts      *handlers.CutsHandler
	Lifecycle *handlers.LifecycleHandler
	AuthMW    *auth.AuthMiddleware
}

// RegisterRoutes wires all endpoints onto the app.
func RegisterRoutes(app *fiber.App, rc RouteConfig) {
	app.Get("/health/live", rc.Health.Live)
	app.Get("/health/ready", rc.Health.Ready)

	api := app.Group("/api/v1")

	api.Post("/auth/login", rc.Auth.Login)

	protected := api.Group("", rc.AuthMW.Handle)

	agents := protected.Group("/agents")
	agents.Post("", auth.RequirePermission(auth.ActionAgentesAdministrar), rc.Auth.RegisterAgent)

	tickets := protected.Group("/tickets")
	tickets.Post("", auth.RequirePermission(auth.ActionTicketsCrear), rc.Tickets.CreateTicket)
	tickets.Get("", auth.RequirePermission(auth.ActionTicketsVer), rc.Tickets.ListTickets)
	tickets.Get("/:id", auth.RequirePermission(auth.ActionTicketsVer), rc.Tickets.GetTicket)
	tickets.Post("/:id/status", auth.RequirePermission(auth.ActionTicketsGestionar), rc.Tickets.ChangeStatus)
	tickets.Post("/:id/assign", auth.RequirePermission(auth.ActionTicketsAsignar), rc.Tickets.AssignTicket)
	tickets.Delete("/:id/assign", auth.RequirePermission(auth.ActionTicketsAsignar), rc.Tickets.UnassignTicket)
	tickets.Post("/:id/notes", auth.RequirePermission(auth.ActionTicketsGestionar), rc.Tickets.AddNote)

	protected.Post("/contracts", auth.RequirePermission(auth.ActionVentasRegistrar), rc.Sales.CreateContract)
	protected.Post("/payments", auth.RequirePermission(auth.ActionCobranzasRegistrar), rc.Sales.RecordPayment)

	cuts := protected.Group("/cuts")
	cuts.Get("/today", auth.RequirePermission(auth.ActionCortesVer), rc.Cuts.GetToday)
	cuts.Post("/today/close", auth.RequirePermission(auth.ActionLifecycleEjecutar), rc.Cuts.CloseToday)

	lifecycle := protected.Group("/lifecycle", auth.RequirePermission(auth.ActionLifecycleEjecutar))
	lifecycle.Post("/sla-check", rc.Lifecycle.RunSLACheck)
	lifecycle.Post("/auto-assign", rc.Lifecycle.RunAutoAssign)
}
