package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/sso-gateway/internal/auth"
	"github.com/spec-kit/sso-gateway/internal/domain"
	"github.com/spec-kit/sso-gateway/internal/events"
	"github.com/spec-kit/sso-gateway/internal/identity"
	apperrors "github.com/spec-kit/sso-gateway/pkg/util"
)

// ErrLoginRequired marks every access rejection on the callback path. The
// handler answers it with a redirect to the external login page; rejected
// and unknown identities look identical to the browser.
var ErrLoginRequired = errors.New("external login required")

// SSOService orchestrates the callback exchange: verify the external
// assertion, resolve the identity, issue a local session token.
type SSOService struct {
	external *auth.Verifier
	resolver identity.Resolver
	codec    *auth.SessionCodec
	events   events.Dispatcher
	logger   *zap.Logger
}

// NewSSOService builds the service. The resolver strategy is whatever the
// startup wiring selected; this layer does not know which one it holds.
func NewSSOService(external *auth.Verifier, resolver identity.Resolver, codec *auth.SessionCodec, dispatcher events.Dispatcher, logger *zap.Logger) *SSOService {
	return &SSOService{
		external: external,
		resolver: resolver,
		codec:    codec,
		events:   dispatcher,
		logger:   logger,
	}
}

// ExchangeToken trades an external SSO assertion for a local session. It
// returns ErrLoginRequired for any access rejection; a signing failure comes
// back as a structured server error, which is a fault and not an access
// decision.
func (s *SSOService) ExchangeToken(ctx context.Context, externalToken string) (*domain.Session, error) {
	verdict := s.external.Verify(externalToken)
	if !verdict.Valid || verdict.Claims.Email == "" {
		s.publishRejected(ctx, "", "external token rejected")
		return nil, ErrLoginRequired
	}
	email := verdict.Claims.Email

	result := s.resolver.Resolve(ctx, email)
	if !result.Found {
		s.publishRejected(ctx, email, result.Reason)
		return nil, ErrLoginRequired
	}

	// The browser may have gone away during a remote resolution; issuing a
	// session for an abandoned request would be a side effect with no owner.
	if ctx.Err() != nil {
		return nil, ErrLoginRequired
	}

	landing, ok := domain.LandingRoute(result.Profile.Role)
	if !ok {
		s.publishRejected(ctx, email, "no dashboard for role "+string(result.Profile.Role))
		return nil, ErrLoginRequired
	}

	token, err := s.codec.Issue(*result.Profile)
	if err != nil {
		s.logger.Error("session token issuance failed", zap.Error(err))
		return nil, apperrors.NewSigningFailure(err)
	}

	if s.events != nil {
		_ = s.events.Publish(ctx, events.NewEvent(events.EventSessionIssued, events.Fields{
			Email:     email,
			SubjectID: result.Profile.ID,
			Role:      result.Profile.Role,
		}))
	}

	return &domain.Session{Token: token, Role: result.Profile.Role, Landing: landing}, nil
}

func (s *SSOService) publishRejected(ctx context.Context, email, reason string) {
	if s.events == nil {
		return
	}
	_ = s.events.Publish(ctx, events.NewEvent(events.EventCallbackRejected, events.Fields{
		Email:  email,
		Reason: reason,
	}))
}
