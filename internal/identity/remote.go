package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/sso-gateway/internal/auth"
)

type verificationRequest struct {
	Token string `json:"token"`
}

type verificationResponse struct {
	Token string `json:"token"`
}

// RemoteResolver resolves identities through the remote access-verification
// service: it signs a short-lived verification token for the email, posts it,
// and decodes the profile token the service returns.
type RemoteResolver struct {
	codec      *auth.SessionCodec
	url        string
	ttl        time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

// NewRemoteResolver constructs the remote strategy with a bounded client
// timeout. The inbound request context additionally cancels in-flight calls.
func NewRemoteResolver(codec *auth.SessionCodec, url string, ttl, timeout time.Duration, logger *zap.Logger) *RemoteResolver {
	return &RemoteResolver{
		codec:      codec,
		url:        url,
		ttl:        ttl,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Resolve performs a single-attempt verification call. Every failure mode,
// from network errors to a profile token with missing fields, degrades to
// not-found; the operator detail lands in the log.
func (r *RemoteResolver) Resolve(ctx context.Context, email string) Result {
	token, err := r.codec.IssueVerification(email, r.ttl)
	if err != nil {
		r.logger.Error("verification token issuance failed", zap.Error(err))
		return NotFound("verification token issuance failed")
	}

	body, err := json.Marshal(verificationRequest{Token: token})
	if err != nil {
		return NotFound("verification request encoding failed")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return NotFound("verification request build failed")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.logger.Error("verification service unreachable",
			zap.String("code", "UPSTREAM_UNAVAILABLE"),
			zap.Error(err))
		return NotFound("verification service unavailable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.logger.Error("verification service rejected request",
			zap.String("code", "UPSTREAM_UNAVAILABLE"),
			zap.Int("status", resp.StatusCode))
		return NotFound("verification service returned non-success status")
	}

	var payload verificationResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		r.logger.Error("verification response malformed",
			zap.String("code", "UPSTREAM_UNAVAILABLE"),
			zap.Error(err))
		return NotFound("verification response malformed")
	}

	profile, err := r.codec.DecodeProfile(payload.Token)
	if err != nil {
		r.logger.Error("verification profile token rejected", zap.Error(err))
		return NotFound("verification profile token rejected")
	}
	return Resolved(profile)
}
