package identity

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/sso-gateway/internal/domain"
)

const cacheKeyPrefix = "identity:email:"

// CachedResolver is a read-through Redis cache over another resolver. Only
// positive results are cached; a cached not-found would delay newly granted
// access, and fail-closed semantics make positives the only safe entry.
// Cache errors are ignored, the inner resolver is always the fallback.
type CachedResolver struct {
	inner Resolver
	cache *redis.Client
	ttl   time.Duration
}

// NewCachedResolver wraps a resolver with caching.
func NewCachedResolver(inner Resolver, cache *redis.Client, ttl time.Duration) *CachedResolver {
	return &CachedResolver{inner: inner, cache: cache, ttl: ttl}
}

// Resolve serves from cache when possible, otherwise delegates and caches a
// positive result for the configured TTL.
func (r *CachedResolver) Resolve(ctx context.Context, email string) Result {
	key := cacheKeyPrefix + email

	if data, err := r.cache.Get(ctx, key).Bytes(); err == nil {
		var profile domain.Profile
		if json.Unmarshal(data, &profile) == nil && profile.Role != "" {
			return Resolved(&profile)
		}
	}

	result := r.inner.Resolve(ctx, email)
	if result.Found {
		if data, err := json.Marshal(result.Profile); err == nil {
			_ = r.cache.Set(ctx, key, data, r.ttl).Err()
		}
	}
	return result
}
