package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sso-gateway/internal/auth"
	"github.com/spec-kit/sso-gateway/internal/config"
	"github.com/spec-kit/sso-gateway/internal/domain"
)

// DashboardHandler serves the entry routes and role-specific views.
type DashboardHandler struct {
	verifier *auth.Verifier
	cfg      config.SSOConfig
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(verifier *auth.Verifier, cfg config.SSOConfig) *DashboardHandler {
	return &DashboardHandler{verifier: verifier, cfg: cfg}
}

// Root redirects to the dashboard dispatcher.
func (h *DashboardHandler) Root(c *fiber.Ctx) error {
	return c.Redirect("/dashboard", fiber.StatusFound)
}

// Login redirects the browser to the identity provider, qualified with the
// requesting hostname so the provider can route back.
func (h *DashboardHandler) Login(c *fiber.Ctx) error {
	return c.Redirect(fmt.Sprintf("%s/%s", h.cfg.LoginURL, c.Hostname()), fiber.StatusFound)
}

// Dispatch handles GET /dashboard: sends an authenticated browser to the
// dashboard for its role, everyone else to login.
func (h *DashboardHandler) Dispatch(c *fiber.Ctx) error {
	verdict := h.verifier.Verify(c.Cookies(auth.CookieName))
	if !verdict.Valid {
		return c.Redirect("/login", fiber.StatusFound)
	}
	if route, ok := domain.LandingRoute(verdict.Claims.Role); ok {
		return c.Redirect(route, fiber.StatusFound)
	}
	return c.Redirect("/login", fiber.StatusFound)
}

// View renders a role-gated dashboard payload. It runs behind the role gate,
// which stores the session claims in locals.
func (h *DashboardHandler) View(view string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := auth.ClaimsFromContext(c)
		if !ok {
			return c.Redirect("/login", fiber.StatusFound)
		}
		return c.JSON(fiber.Map{
			"view": view,
			"user": fiber.Map{
				"id":       claims.SubjectID,
				"name":     claims.Name,
				"username": claims.Username,
				"role":     claims.Role,
			},
		})
	}
}
