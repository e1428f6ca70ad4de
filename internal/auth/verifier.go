package auth

import (
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Verification is the outcome of checking a session token. Verify never
// returns an error; every failure collapses into the zero value so callers
// branch on Valid and nothing else.
type Verification struct {
	Valid  bool
	Claims *SessionClaims
}

// Verifier validates token signature, structure and date-grained freshness.
type Verifier struct {
	secret []byte
	method jwt.SigningMethod
}

// NewVerifier validates the algorithm name and builds a verifier.
func NewVerifier(secret, algorithm string) (*Verifier, error) {
	method, err := hmacMethod(algorithm)
	if err != nil {
		return nil, err
	}
	return &Verifier{secret: []byte(secret), method: method}, nil
}

// Verify checks a token string. Absent, malformed, mis-signed and expired
// tokens all yield the invalid outcome; a token is fresh while its expiration
// date is today or later.
func (v *Verifier) Verify(tokenStr string) Verification {
	tokenStr = normalizeToken(tokenStr)
	if tokenStr == "" {
		return Verification{}
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != v.method.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Verification{}
	}

	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok {
		return Verification{}
	}

	expiration, err := parseClaimTime(claims.Expiration)
	if err != nil {
		return Verification{}
	}
	if calendarDay(expiration).Before(calendarDay(time.Now())) {
		return Verification{}
	}

	return Verification{Valid: true, Claims: claims}
}

// normalizeToken strips whitespace and the b'...' wrapper that appears when a
// byte-string token was stringified upstream.
func normalizeToken(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "b'") && strings.HasSuffix(s, "'") && len(s) > 3 {
		s = s[2 : len(s)-1]
	}
	return s
}

var claimTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// parseClaimTime accepts the RFC3339 timestamps this gateway issues as well
// as zone-less ISO timestamps from the identity provider.
func parseClaimTime(value string) (time.Time, error) {
	trimmed := strings.TrimSuffix(value, "Z")
	for _, layout := range claimTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("unparseable expiration claim")
}

func calendarDay(t time.Time) time.Time {
	local := t.In(time.Local)
	year, month, day := local.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.Local)
}
