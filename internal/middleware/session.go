package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/todomanager/todomanager/internal/identity"
	"github.com/todomanager/todomanager/internal/metrics"
	"github.com/todomanager/todomanager/internal/model"
)

// SessionCookie names the cookie carrying the session id.
const SessionCookie = "session_id"

// SessionConfig holds configuration for the session middleware.
type SessionConfig struct {
	Logger   *slog.Logger
	Verifier identity.Verifier
	Metrics  metrics.Recorder
	// Unauthenticated handles requests without a live session.
	// Defaults to a JSON 401.
	Unauthenticated http.Handler
}

// RequireSession returns a middleware that resolves the session cookie.
func RequireSession(cfg SessionConfig) func(http.Handler) http.Handler {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}
	if cfg.Unauthenticated == nil {
		cfg.Unauthenticated = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		})
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				cfg.Unauthenticated.ServeHTTP(w, r)
				return
			}

			id, err := cfg.Verifier.Verify(r.Context(), cookie.Value)
			if err != nil {
				if errors.Is(err, identity.ErrInvalidCredential) {
					cfg.Metrics.IncIdentityRejected()
					ClearSessionCookie(w, r)
					cfg.Unauthenticated.ServeHTTP(w, r)
					return
				}

				cfg.Logger.Error("session lookup failed",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
				return
			}

			cfg.Metrics.IncIdentityVerified(model.SourceSession)
			serveAs(next, w, r, &model.AuthContext{
				UserID:    id.UserID,
				Source:    model.SourceSession,
				SessionID: cookie.Value,
			})
		})
	}
}

// SetSessionCookie stores the session id in an HttpOnly cookie.
func SetSessionCookie(w http.ResponseWriter, r *http.Request, sessionID string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(w http.ResponseWriter, r *http.Request) {
	SetSessionCookie(w, r, "", -1)
}
