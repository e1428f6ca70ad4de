package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sso-gateway/internal/domain"
	"github.com/spec-kit/sso-gateway/internal/events"
)

// CookieName carries the session token between requests.
const CookieName = "jwt_token"

const claimsKey = "session_claims"

// RoleGate protects routes with an allowed-role list backed by the session
// cookie.
type RoleGate struct {
	verifier   *Verifier
	dispatcher events.Dispatcher
}

// NewRoleGate constructs the gate. The dispatcher may be nil in tests.
func NewRoleGate(verifier *Verifier, dispatcher events.Dispatcher) *RoleGate {
	return &RoleGate{verifier: verifier, dispatcher: dispatcher}
}

// Require returns middleware enforcing that the session cookie holds a valid
// token whose role is in the allowed list. Missing or invalid sessions
// redirect to login; a valid session with the wrong role is denied outright,
// since that caller is known.
func (g *RoleGate) Require(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		verdict := g.verifier.Verify(c.Cookies(CookieName))
		if !verdict.Valid || verdict.Claims.Role == "" {
			return c.Redirect("/login", fiber.StatusFound)
		}

		if _, ok := allowedSet[verdict.Claims.Role]; !ok {
			g.publishDenied(c, verdict.Claims)
			return fiber.NewError(http.StatusForbidden, "insufficient role")
		}

		c.Locals(claimsKey, verdict.Claims)
		return c.Next()
	}
}

func (g *RoleGate) publishDenied(c *fiber.Ctx, claims *SessionClaims) {
	if g.dispatcher == nil {
		return
	}
	_ = g.dispatcher.Publish(c.UserContext(), events.NewEvent(events.EventAuthorizationDenied, events.Fields{
		SubjectID: claims.SubjectID,
		Role:      claims.Role,
		Path:      c.Path(),
		Reason:    "role not permitted on route",
	}))
}

// ClaimsFromContext retrieves the session claims stored by Require.
func ClaimsFromContext(c *fiber.Ctx) (*SessionClaims, bool) {
	val := c.Locals(claimsKey)
	if val == nil {
		return nil, false
	}
	claims, ok := val.(*SessionClaims)
	return claims, ok
}
