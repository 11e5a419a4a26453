//go:build integration

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/todomanager/todomanager/internal/auth"
	"github.com/todomanager/todomanager/internal/cache"
	"github.com/todomanager/todomanager/internal/model"
	"github.com/todomanager/todomanager/internal/testutil"
)

func newRedisLimited(t *testing.T, rpm, burst int) http.Handler {
	t.Helper()
	ctx := context.Background()

	c, err := cache.New(ctx, testutil.RequireEnv(t, "REDIS_URL"), cache.PoolOptions{PoolSize: 32})
	if err != nil {
		t.Fatalf("redis: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	if err := testutil.FlushRedis(ctx, c.Client()); err != nil {
		t.Fatalf("flush: %v", err)
	}

	return RateLimitUser(RateLimitConfig{
		Logger:            discardLogger(),
		Limiter:           c,
		Enabled:           true,
		RequestsPerMinute: rpm,
		Burst:             burst,
	})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
}

func limitedRequest(uid string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	return req.WithContext(auth.ContextWithAuth(req.Context(), &model.AuthContext{UserID: uid}))
}

func TestIntegrationRateLimit_BurstHoldsUnderContention(t *testing.T) {
	h := newRedisLimited(t, 6, 5)

	var passed, limited atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < 16; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 4; i++ {
				rec := httptest.NewRecorder()
				h.ServeHTTP(rec, limitedRequest("shared"))
				switch rec.Code {
				case http.StatusNoContent:
					passed.Add(1)
				case http.StatusTooManyRequests:
					limited.Add(1)
				default:
					t.Errorf("status %d", rec.Code)
				}
			}
		}()
	}
	wg.Wait()

	// 6 rpm refills one token every 10s, so nothing beyond the burst fits.
	if got := passed.Load(); got != 5 {
		t.Errorf("passed = %d, want 5", got)
	}
	if got := limited.Load(); got != 59 {
		t.Errorf("limited = %d, want 59", got)
	}
}

func TestIntegrationRateLimit_BucketsArePerUser(t *testing.T) {
	h := newRedisLimited(t, 60, 1)

	for _, uid := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, limitedRequest(uid))
		if rec.Code != http.StatusNoContent {
			t.Fatalf("first request for %s: %d", uid, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, limitedRequest("a"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request for a: %d", rec.Code)
	}
	if secs, err := strconv.Atoi(rec.Header().Get("Retry-After")); err != nil || secs != 1 {
		t.Errorf("Retry-After = %q", rec.Header().Get("Retry-After"))
	}
}
