package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/todomanager/todomanager/internal/auth"
	"github.com/todomanager/todomanager/internal/cache"
)

// RateLimiter consumes tokens from per-user buckets.
type RateLimiter interface {
	CheckUserRateLimit(ctx context.Context, userID string, ratePerMinute, burst int) (*cache.RateLimitResult, error)
}

// RateLimitConfig holds configuration for rate limiting middleware.
type RateLimitConfig struct {
	Logger  *slog.Logger
	Limiter RateLimiter
	Enabled bool
	// RequestsPerMinute is the sustained rate; Burst the bucket size.
	RequestsPerMinute int
	Burst             int
}

// RateLimitUser limits each authenticated caller to a token bucket.
// It must run after Identity or RequireSession; anonymous requests pass.
// Limiter failures fail open.
func RateLimitUser(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !cfg.Enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := auth.UserIDFromContext(r.Context())
			if userID == "" {
				next.ServeHTTP(w, r)
				return
			}

			result, err := cfg.Limiter.CheckUserRateLimit(r.Context(), userID, cfg.RequestsPerMinute, cfg.Burst)
			if err != nil {
				cfg.Logger.Error("rate_limit_check_failed",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.RequestsPerMinute))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if result.Allowed {
				next.ServeHTTP(w, r)
				return
			}

			retry := retryAfterSeconds(result.RetryAfter)
			cfg.Logger.Warn("rate_limited",
				slog.String("user_id", userID),
				slog.String("endpoint", r.Method+" "+r.URL.Path),
				slog.Int("retry_after_seconds", retry),
				slog.String("request_id", GetRequestID(r.Context())),
			)
			h.Set("Retry-After", strconv.Itoa(retry))
			writeError(w, http.StatusTooManyRequests, "RATE_LIMITED",
				fmt.Sprintf("Rate limit exceeded. Retry after %d seconds.", retry))
		})
	}
}

// retryAfterSeconds rounds up to whole seconds, never below one.
func retryAfterSeconds(d time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}
