package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sso-gateway/internal/auth"
	"github.com/spec-kit/sso-gateway/internal/config"
	"github.com/spec-kit/sso-gateway/internal/service"
)

const sessionCookieMaxAge = 24 * 60 * 60

// SSOHandler terminates the identity provider's callback redirect.
type SSOHandler struct {
	sso *service.SSOService
	cfg config.SSOConfig
}

// NewSSOHandler constructs handler.
func NewSSOHandler(sso *service.SSOService, cfg config.SSOConfig) *SSOHandler {
	return &SSOHandler{sso: sso, cfg: cfg}
}

// Callback handles GET /sso/:token. Rejections go back to the external login
// page; a signing failure surfaces as a structured error instead, because the
// user was authorized and the fault is ours.
func (h *SSOHandler) Callback(c *fiber.Ctx) error {
	session, err := h.sso.ExchangeToken(c.UserContext(), c.Params("token"))
	if err != nil {
		if errors.Is(err, service.ErrLoginRequired) {
			return c.Redirect(h.cfg.ExternalLoginURL(), fiber.StatusFound)
		}
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     auth.CookieName,
		Value:    session.Token,
		MaxAge:   sessionCookieMaxAge,
		HTTPOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: h.cfg.CookieSameSite,
	})
	return c.Redirect(session.Landing, fiber.StatusSeeOther)
}
