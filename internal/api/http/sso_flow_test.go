package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/sso-gateway/internal/api/http/handlers"
	"github.com/spec-kit/sso-gateway/internal/auth"
	"github.com/spec-kit/sso-gateway/internal/config"
	"github.com/spec-kit/sso-gateway/internal/domain"
	"github.com/spec-kit/sso-gateway/internal/events"
	"github.com/spec-kit/sso-gateway/internal/identity"
	"github.com/spec-kit/sso-gateway/internal/observability"
	"github.com/spec-kit/sso-gateway/internal/service"
	"github.com/spec-kit/sso-gateway/internal/worker"
)

const flowTestSecret = "flow-secret"

func flowTestConfig() config.SSOConfig {
	return config.SSOConfig{
		SessionSecret:  flowTestSecret,
		ExternalSecret: flowTestSecret,
		Algorithm:      "HS256",
		AppName:        "mirrorfiber",
		LoginURL:       "https://jalfry.com/login",
		AppDomain:      "mirrorfiber.com",
		CookieSameSite: "Lax",
	}
}

type stubResolver struct {
	result identity.Result
}

func (r *stubResolver) Resolve(context.Context, string) identity.Result {
	return r.result
}

func flowTestApp(t *testing.T, resolver identity.Resolver) (*fiber.App, *observability.Metrics) {
	t.Helper()
	cfg := flowTestConfig()

	codec, err := auth.NewSessionCodec(cfg.SessionSecret, cfg.Algorithm, cfg.AppName)
	require.NoError(t, err)
	sessionVerifier, err := auth.NewVerifier(cfg.SessionSecret, cfg.Algorithm)
	require.NoError(t, err)
	externalVerifier, err := auth.NewVerifier(cfg.ExternalSecret, cfg.Algorithm)
	require.NoError(t, err)

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger, metrics))

	ssoService := service.NewSSOService(externalVerifier, resolver, codec, dispatcher, logger)

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:    handlers.NewHealthHandler("sso-gateway", "test", nil, nil),
		SSO:       handlers.NewSSOHandler(ssoService, cfg),
		Dashboard: handlers.NewDashboardHandler(sessionVerifier, cfg),
		RoleGate:  auth.NewRoleGate(sessionVerifier, dispatcher),
	})
	return app, metrics
}

func externalAssertion(t *testing.T, email string) string {
	t.Helper()
	claims := &auth.SessionClaims{
		Email:      email,
		Expiration: time.Now().Format(time.RFC3339),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(flowTestSecret))
	require.NoError(t, err)
	return token
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, cookie := range resp.Cookies() {
		if cookie.Name == auth.CookieName {
			return cookie
		}
	}
	t.Fatalf("response did not set the %s cookie", auth.CookieName)
	return nil
}

func withCookie(path string, cookie *http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return req
}

func TestCallbackIssuesSessionAndGatesRoles(t *testing.T) {
	resolver := &stubResolver{result: identity.Resolved(&domain.Profile{
		ID:       "u-42",
		Phone:    "+15550100",
		Name:     "Alice Example",
		Username: "alice",
		Role:     domain.RoleSales,
	})}
	app, metrics := flowTestApp(t, resolver)

	resp, err := app.Test(withCookie("/sso/"+externalAssertion(t, "alice@example.com"), nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/sales-dashboard", resp.Header.Get("Location"))

	cookie := sessionCookie(t, resp)
	require.True(t, cookie.HttpOnly)

	// Same cookie, privileged route: denied outright, not bounced to login.
	resp, err = app.Test(withCookie("/admin-dashboard", cookie))
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Own dashboard: allowed, claims flow through to the view.
	resp, err = app.Test(withCookie("/sales-dashboard", cookie))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var payload struct {
		View string `json:"view"`
		User struct {
			Username string `json:"username"`
			Role     string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.Equal(t, "sales-dashboard", payload.View)
	require.Equal(t, "alice", payload.User.Username)
	require.Equal(t, "sales", payload.User.Role)

	require.Equal(t, int64(1), metrics.AuthEventCount("session_issued"))
	require.Equal(t, int64(1), metrics.AuthEventCount("authorization_denied"))
}

func TestDashboardDispatchesByRole(t *testing.T) {
	resolver := &stubResolver{result: identity.Resolved(&domain.Profile{
		ID: "u-7", Phone: "+15550101", Name: "Tessa", Username: "tessa",
		Role: domain.RoleTechnician,
	})}
	app, _ := flowTestApp(t, resolver)

	resp, err := app.Test(withCookie("/sso/"+externalAssertion(t, "tessa@example.com"), nil))
	require.NoError(t, err)
	cookie := sessionCookie(t, resp)

	resp, err = app.Test(withCookie("/dashboard", cookie))
	require.NoError(t, err)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/technician-dashboard", resp.Header.Get("Location"))
}

func TestCallbackRejectsInvalidExternalToken(t *testing.T) {
	app, _ := flowTestApp(t, &stubResolver{result: identity.NotFound("unused")})

	resp, err := app.Test(withCookie("/sso/garbage", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "https://jalfry.com/login/mirrorfiber.com", resp.Header.Get("Location"))
}

func TestCallbackRejectsUnknownIdentity(t *testing.T) {
	app, metrics := flowTestApp(t, &stubResolver{result: identity.NotFound("no active access grant")})

	resp, err := app.Test(withCookie("/sso/"+externalAssertion(t, "nobody@example.com"), nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "https://jalfry.com/login/mirrorfiber.com", resp.Header.Get("Location"))
	require.Equal(t, int64(1), metrics.AuthEventCount("callback_rejected"))
}

func TestCallbackUpstreamFailureRedirectsToLogin(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	codec, err := auth.NewSessionCodec(flowTestSecret, "HS256", "mirrorfiber")
	require.NoError(t, err)
	resolver := identity.NewRemoteResolver(codec, upstream.URL, 30*time.Second, 2*time.Second, zap.NewNop())
	app, _ := flowTestApp(t, resolver)

	// A broken verification service means no access, never a 5xx at the browser.
	resp, err := app.Test(withCookie("/sso/"+externalAssertion(t, "alice@example.com"), nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "https://jalfry.com/login/mirrorfiber.com", resp.Header.Get("Location"))
}

func TestCallbackSigningFailureIsStructuredError(t *testing.T) {
	// Resolver hands back a profile missing its phone; issuance must refuse
	// to sign and the browser gets a structured server error, not a redirect.
	resolver := &stubResolver{result: identity.Resolved(&domain.Profile{
		ID: "u-42", Name: "Alice Example", Username: "alice", Role: domain.RoleSales,
	})}
	app, _ := flowTestApp(t, resolver)

	resp, err := app.Test(withCookie("/sso/"+externalAssertion(t, "alice@example.com"), nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Empty(t, resp.Header.Get("Location"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.Equal(t, "SIGNING_FAILURE", payload.Error.Code)
}

func TestExpiredSessionCookieRedirectsToLogin(t *testing.T) {
	app, _ := flowTestApp(t, &stubResolver{result: identity.NotFound("unused")})

	claims := &auth.SessionClaims{
		SubjectID: "u-42", Phone: "+15550100", Name: "Alice Example",
		Username: "alice", Role: domain.RoleSales,
		Expiration: time.Now().AddDate(0, 0, -1).Format(time.RFC3339),
	}
	stale, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(flowTestSecret))
	require.NoError(t, err)

	resp, err := app.Test(withCookie("/sales-dashboard", &http.Cookie{Name: auth.CookieName, Value: stale}))
	require.NoError(t, err)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))
}
