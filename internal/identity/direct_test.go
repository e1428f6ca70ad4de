package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/sso-gateway/internal/domain"
)

type fakeAccessRepo struct {
	profile  *domain.Profile
	err      error
	gotEmail string
	gotApp   string
}

func (f *fakeAccessRepo) GetActiveGrant(_ context.Context, email, application string) (*domain.Profile, error) {
	f.gotEmail = email
	f.gotApp = application
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

func salesProfile() *domain.Profile {
	return &domain.Profile{
		ID:       "u-42",
		Phone:    "+15550100",
		Name:     "Alice Example",
		Username: "alice",
		Role:     domain.RoleSales,
	}
}

func TestDirectResolverFound(t *testing.T) {
	repo := &fakeAccessRepo{profile: salesProfile()}
	resolver := NewDirectResolver(repo, "mirrorfiber", zap.NewNop())

	result := resolver.Resolve(context.Background(), "alice@example.com")
	require.True(t, result.Found)
	require.Equal(t, salesProfile(), result.Profile)
	require.Equal(t, "alice@example.com", repo.gotEmail)
	require.Equal(t, "mirrorfiber", repo.gotApp)
}

func TestDirectResolverNoRowsIsNotFound(t *testing.T) {
	// Unknown email, revoked grant and wrong application all surface as
	// pgx.ErrNoRows from the repository; the result shape is identical.
	repo := &fakeAccessRepo{err: pgx.ErrNoRows}
	resolver := NewDirectResolver(repo, "mirrorfiber", zap.NewNop())

	result := resolver.Resolve(context.Background(), "nobody@example.com")
	require.False(t, result.Found)
	require.Nil(t, result.Profile)
	require.NotEmpty(t, result.Reason)
}

func TestDirectResolverStoreFailureDegradesToNotFound(t *testing.T) {
	repo := &fakeAccessRepo{err: errors.New("connection refused")}
	resolver := NewDirectResolver(repo, "mirrorfiber", zap.NewNop())

	result := resolver.Resolve(context.Background(), "alice@example.com")
	require.False(t, result.Found)
	require.Nil(t, result.Profile)
}

func TestDirectResolverEmptyRoleIsNotFound(t *testing.T) {
	profile := salesProfile()
	profile.Role = ""
	repo := &fakeAccessRepo{profile: profile}
	resolver := NewDirectResolver(repo, "mirrorfiber", zap.NewNop())

	require.False(t, resolver.Resolve(context.Background(), "alice@example.com").Found)
}
