package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/todomanager/todomanager/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func TestHandler_Hello(t *testing.T) {
	h := New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	h.Hello(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	contentType := rec.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", contentType)
	}

	var response map[string]string
	decodeBody(t, rec, &response)

	if response["version"] != Version {
		t.Errorf("unexpected version: %s", response["version"])
	}
}

func TestHandler_Fallbacks(t *testing.T) {
	h := New()

	tests := []struct {
		name    string
		handler http.HandlerFunc
		status  int
		code    string
	}{
		{"not found", h.NotFound, http.StatusNotFound, "NOT_FOUND"},
		{"method not allowed", h.MethodNotAllowed, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler(rec, httptest.NewRequest(http.MethodPost, "/nowhere", nil))

			if rec.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, rec.Code)
			}
			var response map[string]string
			decodeBody(t, rec, &response)
			if response["code"] != tt.code {
				t.Errorf("code = %q, want %q", response["code"], tt.code)
			}
		})
	}
}

func TestWriteServiceError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err     error
		status  int
		message string
	}{
		{service.ErrTextRequired, http.StatusBadRequest, "Text is required"},
		{service.ErrNoFieldsToUpdate, http.StatusBadRequest, "No fields to update"},
		{service.ErrTitleTooLong, http.StatusBadRequest, "Title must be at most 200 characters"},
		{fmt.Errorf("lookup: %w", service.ErrTodoNotFound), http.StatusNotFound, "Todo not found"},
		{service.ErrTaskNotFound, http.StatusNotFound, "Todo not found"},
		{fmt.Errorf("rpc error: deadline exceeded"), http.StatusInternalServerError, "An internal error occurred"},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		writeServiceError(rec, discardLogger(), tt.err)

		if rec.Code != tt.status {
			t.Errorf("%v: status = %d, want %d", tt.err, rec.Code, tt.status)
		}
		var body map[string]any
		decodeBody(t, rec, &body)
		if body["error"] != tt.message {
			t.Errorf("%v: error = %q, want %q", tt.err, body["error"], tt.message)
		}
	}
}

func TestWriteBodyError(t *testing.T) {
	tests := []struct {
		name   string
		limit  int64
		body   string
		status int
		code   string
	}{
		{"malformed", 1 << 10, `{"text":`, http.StatusBadRequest, "INVALID_JSON"},
		{"cut off by limit", 8, `{"text":"far too long for the limit"}`, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/todos/", strings.NewReader(tt.body))
			req.Body = http.MaxBytesReader(rec, req.Body, tt.limit)

			var dst map[string]any
			err := decodeJSON(req, &dst)
			if err == nil {
				t.Fatal("decodeJSON succeeded")
			}
			writeBodyError(rec, err)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			var response map[string]string
			decodeBody(t, rec, &response)
			if response["code"] != tt.code {
				t.Errorf("code = %q, want %q", response["code"], tt.code)
			}
		})
	}
}
