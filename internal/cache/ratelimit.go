package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// rateLimitUserPrefix prefixes per-user bucket keys.
const rateLimitUserPrefix = "ratelimit:user:"

// RateLimitResult is the outcome of consuming one token.
type RateLimitResult struct {
	Allowed   bool
	Remaining int64
	// ResetAt is when the bucket will be full again.
	ResetAt time.Time
	// RetryAfter is zero when Allowed.
	RetryAfter time.Duration
}

// tokenBucketScript refills and consumes a token bucket atomically.
// Times are in milliseconds. Returns {allowed, retry_after_ms, tokens_left, ms_until_full}.
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local data = redis.call('HMGET', key, 'tokens', 'ts')
local tokens = tonumber(data[1]) or burst
local ts = tonumber(data[2]) or now
if now > ts then
	tokens = math.min(burst, tokens + (now - ts) * rate)
end

local allowed = 0
local retry = 0
if tokens >= 1 then
	tokens = tokens - 1
	allowed = 1
else
	retry = math.ceil((1 - tokens) / rate)
end

redis.call('HSET', key, 'tokens', tokens, 'ts', now)
redis.call('PEXPIRE', key, ttl)

return {allowed, retry, math.floor(tokens), math.ceil((burst - tokens) / rate)}
`)

// CheckUserRateLimit consumes one token from the caller's bucket. The
// bucket holds burst tokens and refills at ratePerMinute. A non-positive
// ratePerMinute disables limiting.
func (c *Cache) CheckUserRateLimit(ctx context.Context, userID string, ratePerMinute, burst int) (*RateLimitResult, error) {
	now := time.Now()
	if ratePerMinute <= 0 {
		return &RateLimitResult{Allowed: true, Remaining: int64(burst), ResetAt: now}, nil
	}
	if burst < 1 {
		burst = 1
	}

	perMs := float64(ratePerMinute) / float64(time.Minute/time.Millisecond)
	res, err := tokenBucketScript.Run(ctx, c.client,
		[]string{rateLimitUserPrefix + hashUserID(userID)},
		perMs, burst, now.UnixMilli(), bucketTTL(ratePerMinute, burst).Milliseconds(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit script: %w", err)
	}

	return &RateLimitResult{
		Allowed:    res[0] == 1,
		RetryAfter: time.Duration(res[1]) * time.Millisecond,
		Remaining:  res[2],
		ResetAt:    now.Add(time.Duration(res[3]) * time.Millisecond),
	}, nil
}

// bucketTTL is how long an idle bucket is kept: long enough to refill
// completely, after which a fresh bucket is equivalent.
func bucketTTL(ratePerMinute, burst int) time.Duration {
	refill := time.Duration(burst) * time.Minute / time.Duration(ratePerMinute)
	return refill + time.Minute
}

// hashUserID keeps provider user ids out of key names.
func hashUserID(userID string) string {
	hash := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(hash[:8])
}
