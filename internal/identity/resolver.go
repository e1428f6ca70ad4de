// Package identity maps a verified external email to an application identity
// and role. Two interchangeable strategies exist behind one contract: a
// direct database lookup and a remote verification call. Both fail closed;
// the caller never learns why a resolution came back empty.
package identity

import (
	"context"

	"github.com/spec-kit/sso-gateway/internal/domain"
)

// Result is the outcome of resolving an email. Reason is operator-facing
// detail for the not-found case; it is never exposed to the end user.
type Result struct {
	Found   bool
	Profile *domain.Profile
	Reason  string
}

// Resolver resolves an external email to an application profile. Resolve
// never returns an error; upstream failures degrade to a not-found result
// and are logged by the implementation.
type Resolver interface {
	Resolve(ctx context.Context, email string) Result
}

// NotFound builds a negative result with operator detail.
func NotFound(reason string) Result {
	return Result{Reason: reason}
}

// Resolved builds a positive result.
func Resolved(profile *domain.Profile) Result {
	return Result{Found: true, Profile: profile}
}
