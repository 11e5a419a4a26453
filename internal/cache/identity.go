package cache

import (
	"context"
	"time"
)

const (
	// identityCachePrefix is the Redis key prefix for verified tokens.
	identityCachePrefix = "identity:token:"
	// MaxIdentityTTL caps how long a verification result is reused.
	MaxIdentityTTL = 5 * time.Minute
)

// GetVerifiedUID returns the user id cached for a token hash.
// Returns "" on a miss.
func (c *Cache) GetVerifiedUID(ctx context.Context, tokenHash string) string {
	uid, err := c.client.Get(ctx, identityCachePrefix+tokenHash).Result()
	if err != nil {
		// Cache miss is not an error
		return ""
	}
	return uid
}

// SetVerifiedUID caches a verification result. The entry never outlives
// the token: ttl is clamped to MaxIdentityTTL and skipped when non-positive.
func (c *Cache) SetVerifiedUID(ctx context.Context, tokenHash, uid string, ttl time.Duration) error {
	ttl = identityTTL(ttl)
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, identityCachePrefix+tokenHash, uid, ttl).Err()
}

func identityTTL(remaining time.Duration) time.Duration {
	if remaining > MaxIdentityTTL {
		return MaxIdentityTTL
	}
	return remaining
}
