package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/todomanager/todomanager/internal/config"
	"github.com/todomanager/todomanager/internal/docstore"
	"github.com/todomanager/todomanager/internal/handler"
	"github.com/todomanager/todomanager/internal/identity"
	"github.com/todomanager/todomanager/internal/metrics"
	"github.com/todomanager/todomanager/internal/middleware"
	"github.com/todomanager/todomanager/internal/service"
	"github.com/todomanager/todomanager/internal/testutil/memstore"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestRouter(t *testing.T, trustHeader bool) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := metrics.NewInMemory()
	users := memstore.NewUsers()
	store := docstore.NewMemoryStore()
	provider := identity.NewLocalProvider(users, testSecret, time.Hour, logger)

	r, err := setupRouter(routerDeps{
		cfg: &config.Config{
			AppEnv:             "development",
			TrustUIDHeader:     trustHeader,
			MaxRequestBodySize: 1 << 20,
		},
		logger:   logger,
		recorder: recorder,
		provider: provider,
		tokens:   provider,
		sessions: identity.NewSessionVerifier(memstore.NewSessions(), time.Hour),
		todos:    service.NewTodoService(store, recorder, logger),
		tasks:    service.NewTaskService(memstore.NewTasks(), recorder, logger),
		accounts: service.NewAccountService(users, logger),
		health:   []handler.Dependency{{Name: "docstore", Checker: store}},
	})
	if err != nil {
		t.Fatalf("setupRouter: %v", err)
	}
	return r
}

func send(t *testing.T, h http.Handler, method, path string, header http.Header, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func asUser(uid string) http.Header {
	return http.Header{http.CanonicalHeaderKey(middleware.UIDHeader): {uid}}
}

func TestRouter_DocumentScenario(t *testing.T) {
	r := newTestRouter(t, true)

	rec := send(t, r, http.MethodPost, "/api/todos/", asUser("u1"), `{"text":"buy milk"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d, body %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Message string `json:"message"`
		ID      string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil || created.ID == "" {
		t.Fatalf("create body %s: %v", rec.Body.String(), err)
	}
	path := "/api/todos/" + created.ID + "/"

	steps := []struct {
		name   string
		method string
		uid    string
		body   string
		want   int
	}{
		{"owner get", http.MethodGet, "u1", "", http.StatusOK},
		{"other get", http.MethodGet, "u2", "", http.StatusNotFound},
		{"other update", http.MethodPut, "u2", `{"completed":true}`, http.StatusNotFound},
		{"owner update", http.MethodPut, "u1", `{"completed":true}`, http.StatusOK},
		{"other delete", http.MethodDelete, "u2", "", http.StatusNotFound},
		{"owner delete", http.MethodDelete, "u1", "", http.StatusNoContent},
		{"get after delete", http.MethodGet, "u1", "", http.StatusNotFound},
	}

	for _, step := range steps {
		rec := send(t, r, step.method, path, asUser(step.uid), step.body)
		if rec.Code != step.want {
			t.Fatalf("%s: status %d, want %d, body %s", step.name, rec.Code, step.want, rec.Body.String())
		}
		if step.name == "owner update" {
			var todo struct {
				Text      string `json:"text"`
				Completed bool   `json:"completed"`
				UserID    string `json:"userId"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &todo); err != nil {
				t.Fatal(err)
			}
			if todo.Text != "buy milk" || !todo.Completed || todo.UserID != "u1" {
				t.Errorf("updated todo = %+v", todo)
			}
		}
	}
}

func TestRouter_HeaderIgnoredUnlessTrusted(t *testing.T) {
	r := newTestRouter(t, false)

	rec := send(t, r, http.MethodGet, "/api/todos", asUser("u1"), "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "application/json") {
		t.Errorf("Content-Type = %q", got)
	}
}

func TestRouter_LocalTokenFlow(t *testing.T) {
	r := newTestRouter(t, false)

	rec := send(t, r, http.MethodPost, "/api/signup/", nil, `{"email":"a@example.com","password":"correct horse"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup: status %d, body %s", rec.Code, rec.Body.String())
	}

	rec = send(t, r, http.MethodPost, "/api/token", nil, `{"email":"a@example.com","password":"correct horse"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("token: status %d, body %s", rec.Code, rec.Body.String())
	}
	var issued struct {
		IDToken string `json:"idToken"`
		UID     string `json:"uid"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &issued); err != nil || issued.IDToken == "" {
		t.Fatalf("token body %s: %v", rec.Body.String(), err)
	}

	rec = send(t, r, http.MethodPost, "/api/login", nil, `{"idToken":"`+issued.IDToken+`"}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), issued.UID) {
		t.Fatalf("login: status %d, body %s", rec.Code, rec.Body.String())
	}

	bearer := http.Header{"Authorization": {"Bearer " + issued.IDToken}}
	rec = send(t, r, http.MethodPost, "/api/todos", bearer, `{"text":"read"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create with token: status %d, body %s", rec.Code, rec.Body.String())
	}

	rec = send(t, r, http.MethodGet, "/api/todos/", bearer, "")
	var todos []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &todos); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK || len(todos) != 1 || todos[0]["userId"] != issued.UID {
		t.Errorf("list: status %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_RESTRequiresSession(t *testing.T) {
	r := newTestRouter(t, true)

	// The document API header does not open the relational API.
	rec := send(t, r, http.MethodGet, "/rest/todos/", asUser("u1"), "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status %d, want 401", rec.Code)
	}

	rec = send(t, r, http.MethodPost, "/rest/auth/register/", nil, `{"username":"alice","password":"correct horse"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status %d, body %s", rec.Code, rec.Body.String())
	}
	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("no session cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "/rest/todos/pending/", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("pending: status %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_Surfaces(t *testing.T) {
	r := newTestRouter(t, true)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantBody   string
		wantCSP    string
	}{
		{"root", http.MethodGet, "/", http.StatusOK, "todomanager API", middleware.APIContentSecurityPolicy},
		{"liveness", http.MethodGet, "/healthz", http.StatusOK, `"ok"`, ""},
		{"readiness", http.MethodGet, "/readyz/", http.StatusOK, "docstore", ""},
		{"metrics", http.MethodGet, "/metrics", http.StatusOK, "todomanager_todos_total", ""},
		{"unknown", http.MethodGet, "/nope", http.StatusNotFound, "NOT_FOUND", ""},
		{"dotted unknown id", http.MethodGet, "/api/todos/bad.id", http.StatusNotFound, "Todo not found", ""},
		{"wrong method", http.MethodPatch, "/api/todos", http.StatusMethodNotAllowed, "", ""},
		{"app login page", http.MethodGet, "/app/login/", http.StatusOK, "<form", middleware.HTMLContentSecurityPolicy},
		{"app requires session", http.MethodGet, "/app/", http.StatusSeeOther, "", middleware.HTMLContentSecurityPolicy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := send(t, r, tt.method, tt.path, asUser("u1"), "")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status %d, want %d, body %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantBody != "" && !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body %s missing %q", rec.Body.String(), tt.wantBody)
			}
			if tt.wantCSP != "" && rec.Header().Get("Content-Security-Policy") != tt.wantCSP {
				t.Errorf("CSP = %q, want %q", rec.Header().Get("Content-Security-Policy"), tt.wantCSP)
			}
			if rec.Header().Get("X-Request-ID") == "" {
				t.Error("missing X-Request-ID")
			}
		})
	}
}

func TestSanitizeError(t *testing.T) {
	dsn := "postgres://app:s3cret@db:5432/todos"
	err := errors.New("dial " + dsn + " failed: password=s3cret")

	got := sanitizeError(err, dsn)
	if strings.Contains(got, "s3cret") {
		t.Errorf("secret leaked: %s", got)
	}
	if !strings.Contains(got, "postgres://app@db:5432/todos") {
		t.Errorf("redacted url missing: %s", got)
	}
}
