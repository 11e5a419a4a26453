package identity

import (
	"context"
	"log/slog"
	"time"

	"github.com/todomanager/todomanager/internal/auth"
	"github.com/todomanager/todomanager/internal/metrics"
)

// TokenCache stores verification results keyed by token hash.
type TokenCache interface {
	GetVerifiedUID(ctx context.Context, tokenHash string) string
	SetVerifiedUID(ctx context.Context, tokenHash, uid string, ttl time.Duration) error
}

// CachingVerifier remembers successful verifications. Entries never
// outlive the token they were derived from.
type CachingVerifier struct {
	next    Verifier
	cache   TokenCache
	metrics metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// NewCachingVerifier wraps next with a token cache.
func NewCachingVerifier(next Verifier, cache TokenCache, recorder metrics.Recorder, logger *slog.Logger) *CachingVerifier {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachingVerifier{next: next, cache: cache, metrics: recorder, logger: logger, now: time.Now}
}

// Verify consults the cache before the wrapped verifier.
func (v *CachingVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrInvalidCredential
	}

	key := tokenKey(token)
	if uid := v.cache.GetVerifiedUID(ctx, key); uid != "" {
		v.metrics.IncIdentityCacheHit()
		return &Identity{UserID: uid}, nil
	}
	v.metrics.IncIdentityCacheMiss()

	id, err := v.next.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	if !id.ExpiresAt.IsZero() {
		ttl := id.ExpiresAt.Sub(v.now())
		if err := v.cache.SetVerifiedUID(ctx, key, id.UserID, ttl); err != nil {
			// Caching is best effort
			v.logger.Warn("identity cache write failed", slog.String("error", err.Error()))
		}
	}
	return id, nil
}

// tokenKey hashes the full token so raw credentials never reach Redis.
func tokenKey(token string) string {
	return auth.QuickHash(token)
}
