package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/todomanager/todomanager/internal/docstore"
	"github.com/todomanager/todomanager/internal/identity"
	"github.com/todomanager/todomanager/internal/middleware"
	"github.com/todomanager/todomanager/internal/model"
	"github.com/todomanager/todomanager/internal/service"
)

// rejectAll fails every bearer token; the tests authenticate via UIDHeader.
type rejectAll struct{}

func (rejectAll) Verify(context.Context, string) (*identity.Identity, error) {
	return nil, identity.ErrInvalidCredential
}

func newTodoRouter(t *testing.T) http.Handler {
	t.Helper()

	svc := service.NewTodoService(docstore.NewMemoryStore(), nil, discardLogger())
	h := NewTodoHandler(svc, discardLogger())

	r := chi.NewRouter()
	r.Use(middleware.Identity(middleware.IdentityConfig{
		Logger:         discardLogger(),
		Verifier:       rejectAll{},
		TrustUIDHeader: true,
	}))
	r.Get("/api/todos", h.List)
	r.Post("/api/todos", h.Create)
	r.Route("/api/todos/{"+TodoIDParam+"}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Patch("/", h.Update)
		r.Delete("/", h.Delete)
	})
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path, uid, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if uid != "" {
		req.Header.Set(middleware.UIDHeader, uid)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestTodoHandler_Scenario(t *testing.T) {
	r := newTodoRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/todos", "u1", `{"text":"buy milk"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d, body %s", rec.Code, rec.Body.String())
	}
	var created map[string]string
	decodeBody(t, rec, &created)
	if created["message"] != "Todo created successfully" || created["id"] == "" {
		t.Fatalf("create body = %v", created)
	}
	path := "/api/todos/" + created["id"] + "/"

	rec = doJSON(t, r, http.MethodGet, path, "u1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("owner get: status %d", rec.Code)
	}
	var todo model.Todo
	decodeBody(t, rec, &todo)
	if todo.Text != "buy milk" || todo.Completed || todo.UserID != "u1" || todo.CreatedAt.IsZero() {
		t.Errorf("owner get = %+v", todo)
	}

	rec = doJSON(t, r, http.MethodGet, path, "u2", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("other user get: status %d, want 404", rec.Code)
	}

	rec = doJSON(t, r, http.MethodPut, path, "u1", `{"completed":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status %d, body %s", rec.Code, rec.Body.String())
	}
	var updated model.Todo
	decodeBody(t, rec, &updated)
	if !updated.Completed || updated.Text != "buy milk" || !updated.CreatedAt.Equal(todo.CreatedAt) || updated.UserID != "u1" {
		t.Errorf("update = %+v", updated)
	}

	rec = doJSON(t, r, http.MethodDelete, path, "u1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("delete body = %q, want empty", rec.Body.String())
	}

	rec = doJSON(t, r, http.MethodGet, path, "u1", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: status %d, want 404", rec.Code)
	}
}

func TestTodoHandler_Errors(t *testing.T) {
	r := newTodoRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/todos", "u1", `{"text":"keep"}`)
	var created map[string]string
	decodeBody(t, rec, &created)
	path := "/api/todos/" + created["id"]

	tests := []struct {
		name       string
		method     string
		path       string
		uid        string
		body       string
		wantStatus int
		wantError  string
	}{
		{"no identity", http.MethodGet, "/api/todos", "", "", http.StatusUnauthorized, "Authentication required"},
		{"missing text", http.MethodPost, "/api/todos", "u1", `{}`, http.StatusBadRequest, "Text is required"},
		{"blank text", http.MethodPost, "/api/todos", "u1", `{"text":"  "}`, http.StatusBadRequest, "Text is required"},
		{"empty body", http.MethodPost, "/api/todos", "u1", "", http.StatusBadRequest, "Text is required"},
		{"malformed body", http.MethodPost, "/api/todos", "u1", `{"text":`, http.StatusBadRequest, "Invalid request body"},
		{"wrong type", http.MethodPost, "/api/todos", "u1", `{"text":5}`, http.StatusBadRequest, "Invalid request body"},
		{"no fields", http.MethodPatch, path, "u1", `{}`, http.StatusBadRequest, "No fields to update"},
		{"clear text", http.MethodPatch, path, "u1", `{"text":""}`, http.StatusBadRequest, "Text is required"},
		{"no fields other owner", http.MethodPut, path, "u2", `{}`, http.StatusNotFound, "Todo not found"},
		{"no fields unknown id", http.MethodPut, "/api/todos/does-not-exist", "u1", `{}`, http.StatusNotFound, "Todo not found"},
		{"clear text other owner", http.MethodPatch, path, "u2", `{"text":""}`, http.StatusNotFound, "Todo not found"},
		{"update other owner", http.MethodPatch, path, "u2", `{"text":"mine"}`, http.StatusNotFound, "Todo not found"},
		{"delete other owner", http.MethodDelete, path, "u2", "", http.StatusNotFound, "Todo not found"},
		{"unknown id", http.MethodGet, "/api/todos/nope", "u1", "", http.StatusNotFound, "Todo not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, r, tt.method, tt.path, tt.uid, tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			var body map[string]any
			decodeBody(t, rec, &body)
			if body["error"] != tt.wantError {
				t.Errorf("error = %v, want %q", body["error"], tt.wantError)
			}
		})
	}

	// The owner's record survives every rejected request.
	rec = doJSON(t, r, http.MethodGet, path, "u1", "")
	var todo model.Todo
	decodeBody(t, rec, &todo)
	if todo.Text != "keep" {
		t.Errorf("todo after rejected writes = %+v", todo)
	}
}

func TestTodoHandler_ListOrderAndScope(t *testing.T) {
	r := newTodoRouter(t)

	for _, text := range []string{"first", "second", "third"} {
		doJSON(t, r, http.MethodPost, "/api/todos", "u1", `{"text":"`+text+`"}`)
	}
	doJSON(t, r, http.MethodPost, "/api/todos", "u2", `{"text":"other"}`)

	rec := doJSON(t, r, http.MethodGet, "/api/todos", "u1", "")
	var todos []model.Todo
	decodeBody(t, rec, &todos)

	if len(todos) != 3 {
		t.Fatalf("len = %d, want 3", len(todos))
	}
	for i, want := range []string{"first", "second", "third"} {
		if todos[i].Text != want || todos[i].UserID != "u1" {
			t.Errorf("todos[%d] = %+v, want %q", i, todos[i], want)
		}
	}

	rec = doJSON(t, r, http.MethodGet, "/api/todos", "u3", "")
	if got := rec.Body.String(); got != "[]\n" {
		t.Errorf("empty list body = %q", got)
	}
}

func TestTodoHandler_PatchPreservesOmittedFields(t *testing.T) {
	r := newTodoRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/todos", "u1", `{"text":"draft"}`)
	var created map[string]string
	_ = json.NewDecoder(rec.Body).Decode(&created)
	path := "/api/todos/" + created["id"]

	doJSON(t, r, http.MethodPatch, path, "u1", `{"completed":true}`)
	rec = doJSON(t, r, http.MethodPatch, path, "u1", `{"text":"final"}`)

	var todo model.Todo
	decodeBody(t, rec, &todo)
	if todo.Text != "final" || !todo.Completed {
		t.Errorf("todo = %+v", todo)
	}
}
