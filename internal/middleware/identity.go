package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/todomanager/todomanager/internal/auth"
	"github.com/todomanager/todomanager/internal/identity"
	"github.com/todomanager/todomanager/internal/metrics"
	"github.com/todomanager/todomanager/internal/model"
)

// UIDHeader carries a caller-asserted user id. It is only honored when
// IdentityConfig.TrustUIDHeader is set.
const UIDHeader = "X-Firebase-UID"

// IdentityConfig holds configuration for the identity middleware.
type IdentityConfig struct {
	Logger   *slog.Logger
	Verifier identity.Verifier
	Metrics  metrics.Recorder
	// TrustUIDHeader accepts UIDHeader when no bearer token is sent.
	TrustUIDHeader bool
}

// Identity returns a middleware that resolves the caller of the document
// API from "Authorization: Bearer <token>" and injects the auth context.
func Identity(cfg IdentityConfig) func(http.Handler) http.Handler {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, hasBearer := bearerToken(r)

			if !hasBearer {
				uid := strings.TrimSpace(r.Header.Get(UIDHeader))
				if cfg.TrustUIDHeader && uid != "" {
					cfg.Metrics.IncIdentityVerified(model.SourceHeader)
					serveAs(next, w, r, &model.AuthContext{UserID: uid, Source: model.SourceHeader})
					return
				}

				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "missing_credential"),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
				return
			}

			id, err := cfg.Verifier.Verify(r.Context(), token)
			if err != nil {
				if errors.Is(err, identity.ErrInvalidCredential) {
					cfg.Metrics.IncIdentityRejected()
					cfg.Logger.Warn("authentication failed",
						slog.String("reason", "invalid_token"),
						slog.String("endpoint", r.Method+" "+r.URL.Path),
						slog.String("request_id", GetRequestID(r.Context())),
					)
					writeError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired ID token")
					return
				}

				cfg.Logger.Error("identity verification failed",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
				return
			}

			cfg.Metrics.IncIdentityVerified(model.SourceToken)
			serveAs(next, w, r, &model.AuthContext{UserID: id.UserID, Source: model.SourceToken})
		})
	}
}

// bearerToken extracts the token from the Authorization header. The
// second result reports whether a Bearer header was present at all.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if len(header) < len("Bearer ") || !strings.EqualFold(header[:len("Bearer ")], "Bearer ") {
		return "", false
	}
	return strings.TrimSpace(header[len("Bearer "):]), true
}

func serveAs(next http.Handler, w http.ResponseWriter, r *http.Request, authCtx *model.AuthContext) {
	noteCaller(r.Context(), authCtx.UserID, authCtx.Source)
	ctx := auth.ContextWithAuth(r.Context(), authCtx)
	next.ServeHTTP(w, r.WithContext(ctx))
}
