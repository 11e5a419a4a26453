package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/todomanager/todomanager/internal/model"
)

func TestRequireSession(t *testing.T) {
	t.Parallel()

	redirect := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/app/login", http.StatusSeeOther)
	})

	tests := []struct {
		name            string
		cookie          string
		unauthenticated http.Handler
		wantStatus      int
		wantBody        string
		wantCleared     bool
	}{
		{
			name:       "live session",
			cookie:     "good-u1",
			wantStatus: http.StatusOK,
			wantBody:   "u1|" + model.SourceSession,
		},
		{
			name:       "no cookie gives json 401",
			wantStatus: http.StatusUnauthorized,
			wantBody:   `"error":"Authentication required"`,
		},
		{
			name:            "no cookie uses custom handler",
			unauthenticated: redirect,
			wantStatus:      http.StatusSeeOther,
		},
		{
			name:            "expired session clears cookie",
			cookie:          "bad",
			unauthenticated: redirect,
			wantStatus:      http.StatusSeeOther,
			wantCleared:     true,
		},
		{
			name:       "store failure",
			cookie:     "broken",
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := RequireSession(SessionConfig{
				Logger:          discardLogger(),
				Verifier:        staticVerifier{},
				Unauthenticated: tt.unauthenticated,
			})(echoCaller())

			req := httptest.NewRequest(http.MethodGet, "/app/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %s, want to contain %s", rec.Body.String(), tt.wantBody)
			}

			setCookie := rec.Header().Get("Set-Cookie")
			cleared := strings.Contains(setCookie, SessionCookie+"=;") && strings.Contains(setCookie, "Max-Age=0")
			if cleared != tt.wantCleared {
				t.Errorf("Set-Cookie = %q, want cleared=%v", setCookie, tt.wantCleared)
			}
		})
	}
}

func TestSetSessionCookie(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	SetSessionCookie(rec, httptest.NewRequest(http.MethodPost, "/app/login", nil), "abc", 3600)

	got := rec.Header().Get("Set-Cookie")
	for _, want := range []string{"session_id=abc", "Path=/", "Max-Age=3600", "HttpOnly", "SameSite=Lax"} {
		if !strings.Contains(got, want) {
			t.Errorf("Set-Cookie = %q, missing %q", got, want)
		}
	}
	if strings.Contains(got, "Secure") {
		t.Errorf("Set-Cookie = %q, Secure set on plain http", got)
	}
}
