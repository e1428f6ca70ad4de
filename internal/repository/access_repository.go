package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sso-gateway/internal/domain"
)

// AccessRepository reads access grants from the identity store.
type AccessRepository interface {
	// GetActiveGrant returns the profile for a user who matches the email and
	// holds an active access grant for the named application. Revoked grants,
	// grants for other applications and unknown emails are all pgx.ErrNoRows;
	// callers cannot tell those cases apart.
	GetActiveGrant(ctx context.Context, email, application string) (*domain.Profile, error)
}

type accessRepository struct {
	pool *pgxpool.Pool
}

// NewAccessRepository returns a Postgres-backed implementation.
func NewAccessRepository(pool *pgxpool.Pool) AccessRepository {
	return &accessRepository{pool: pool}
}

func (r *accessRepository) GetActiveGrant(ctx context.Context, email, application string) (*domain.Profile, error) {
	const query = `
        SELECT u.id, u.phone, u.name, u.username, r.name AS role_name
        FROM users u
        JOIN user_access ua ON u.id = ua.user_id
        JOIN roles r ON ua.role_id = r.id
        JOIN applications a ON ua.application_id = a.id
        WHERE u.email = $1
          AND a.name = $2
          AND ua.is_active = TRUE`

	var profile domain.Profile
	if err := r.pool.QueryRow(ctx, query, email, application).Scan(
		&profile.ID,
		&profile.Phone,
		&profile.Name,
		&profile.Username,
		&profile.Role,
	); err != nil {
		return nil, err
	}
	return &profile, nil
}
