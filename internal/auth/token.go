package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/sso-gateway/internal/domain"
)

// ErrMissingClaim is returned when a session token would be issued without a
// complete profile. A partial token is never signed.
var ErrMissingClaim = errors.New("missing required claim")

// SessionClaims is the payload carried inside a signed session token.
//
// Session expiry is date-grained: a token stays valid through the end of its
// issuance day. The custom expiration claim carries that timestamp and the
// Verifier applies the date comparison itself, so RegisteredClaims.ExpiresAt
// stays unset on session tokens. Verification tokens (service-to-service)
// use the registered exp claim with second granularity instead; the two
// policies are deliberately distinct.
type SessionClaims struct {
	SubjectID string      `json:"id"`
	Phone     string      `json:"phone"`
	Name      string      `json:"name"`
	Username  string      `json:"username"`
	Role      domain.Role `json:"role"`
	// Email is present on assertions from the identity provider, which carry
	// no resolved profile yet.
	Email      string `json:"email,omitempty"`
	IssuedOn   string `json:"issued_at,omitempty"`
	Expiration string `json:"expiration"`
	jwt.RegisteredClaims
}

// Profile converts the claims back to the resolved application identity.
func (c *SessionClaims) Profile() domain.Profile {
	return domain.Profile{
		ID:       c.SubjectID,
		Phone:    c.Phone,
		Name:     c.Name,
		Username: c.Username,
		Role:     c.Role,
	}
}

// VerificationClaims is the minimal payload that proves a gateway request to
// the remote access-verification service.
type VerificationClaims struct {
	Email     string `json:"email"`
	AppName   string `json:"app_name"`
	Timestamp int64  `json:"timestamp"`
	jwt.RegisteredClaims
}

// SessionCodec issues and decodes signed tokens under the shared secret and
// configured HMAC algorithm.
type SessionCodec struct {
	secret  []byte
	method  jwt.SigningMethod
	appName string
}

// NewSessionCodec validates the algorithm name and builds a codec.
func NewSessionCodec(secret, algorithm, appName string) (*SessionCodec, error) {
	method, err := hmacMethod(algorithm)
	if err != nil {
		return nil, err
	}
	return &SessionCodec{secret: []byte(secret), method: method, appName: appName}, nil
}

// Issue stamps issuance and expiration as now and signs the profile as a
// session token. Every profile field is required.
func (c *SessionCodec) Issue(profile domain.Profile) (string, error) {
	if profile.ID == "" || profile.Phone == "" || profile.Name == "" ||
		profile.Username == "" || profile.Role == "" {
		return "", ErrMissingClaim
	}

	now := time.Now()
	claims := &SessionClaims{
		SubjectID:  profile.ID,
		Phone:      profile.Phone,
		Name:       profile.Name,
		Username:   profile.Username,
		Role:       profile.Role,
		IssuedOn:   now.Format(time.RFC3339),
		Expiration: now.Format(time.RFC3339),
	}

	token := jwt.NewWithClaims(c.method, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// IssueVerification builds a short-lived token binding an email to this
// application for a service-to-service call. Expiry here is absolute seconds,
// not the session tokens' calendar-day window.
func (c *SessionCodec) IssueVerification(email string, ttl time.Duration) (string, error) {
	if email == "" {
		return "", ErrMissingClaim
	}

	now := time.Now()
	claims := &VerificationClaims{
		Email:     email,
		AppName:   c.appName,
		Timestamp: now.Unix(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(c.method, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign verification token: %w", err)
	}
	return signed, nil
}

// DecodeProfile parses a profile token returned by the verification service.
// The full field set is required; anything missing fails the decode.
func (c *SessionCodec) DecodeProfile(tokenStr string) (*domain.Profile, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != c.method.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.SubjectID == "" || claims.Phone == "" || claims.Name == "" ||
		claims.Username == "" || claims.Role == "" {
		return nil, ErrMissingClaim
	}

	profile := claims.Profile()
	return &profile, nil
}

func hmacMethod(algorithm string) (jwt.SigningMethod, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("signing algorithm %q is not an HMAC method", algorithm)
	}
	return method, nil
}
