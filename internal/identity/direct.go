package identity

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/sso-gateway/internal/repository"
)

// DirectResolver resolves identities against the relational identity store.
type DirectResolver struct {
	repo    repository.AccessRepository
	appName string
	logger  *zap.Logger
}

// NewDirectResolver constructs the database-backed strategy.
func NewDirectResolver(repo repository.AccessRepository, appName string, logger *zap.Logger) *DirectResolver {
	return &DirectResolver{repo: repo, appName: appName, logger: logger}
}

// Resolve looks up an active access grant for the email. A store failure is
// logged for operators and reported to the caller as not-found, same as a
// revoked or absent grant.
func (r *DirectResolver) Resolve(ctx context.Context, email string) Result {
	profile, err := r.repo.GetActiveGrant(ctx, email, r.appName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return NotFound("no active access grant for this application")
		}
		r.logger.Error("identity store lookup failed",
			zap.String("code", "UPSTREAM_UNAVAILABLE"),
			zap.Error(err))
		return NotFound("identity store unavailable")
	}
	if profile.Role == "" {
		return NotFound("grant has no role")
	}
	return Resolved(profile)
}
