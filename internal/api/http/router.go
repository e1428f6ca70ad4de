package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sso-gateway/internal/api/http/handlers"
	"github.com/spec-kit/sso-gateway/internal/auth"
	"github.com/spec-kit/sso-gateway/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	SSO       *handlers.SSOHandler
	Dashboard *handlers.DashboardHandler
	RoleGate  *auth.RoleGate
}

// RegisterRoutes wires HTTP routes. Each protected dashboard carries its own
// allowed-role list; directors and admins may enter the staff views, the
// customer view stays customer-only.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Get("/", cfg.Dashboard.Root)
	app.Get("/login", cfg.Dashboard.Login)
	app.Get("/sso/:token", cfg.SSO.Callback)
	app.Get("/dashboard", cfg.Dashboard.Dispatch)

	app.Get("/sales-dashboard",
		cfg.RoleGate.Require(domain.RoleSales, domain.RoleDirector, domain.RoleAdmin),
		cfg.Dashboard.View("sales-dashboard"))
	app.Get("/technician-dashboard",
		cfg.RoleGate.Require(domain.RoleTechnician, domain.RoleDirector, domain.RoleAdmin),
		cfg.Dashboard.View("technician-dashboard"))
	app.Get("/customer-dashboard",
		cfg.RoleGate.Require(domain.RoleCustomer),
		cfg.Dashboard.View("customer-dashboard"))
	app.Get("/admin-dashboard",
		cfg.RoleGate.Require(domain.RoleDirector, domain.RoleAdmin),
		cfg.Dashboard.View("admin-dashboard"))
}
