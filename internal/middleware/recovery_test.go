package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRecoverer(t *testing.T) {
	t.Parallel()

	handler := RequestID(Recoverer(discardLogger(), false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/todos/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"code":"INTERNAL_ERROR"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		incoming string
		wantSame bool
	}{
		{"reuses well formed id", "req-123", true},
		{"replaces id with spaces", "req 123", false},
		{"replaces oversized id", strings.Repeat("a", 200), false},
		{"generates when absent", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var seen string
			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetRequestID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if seen == "" || rec.Header().Get(RequestIDHeader) != seen {
				t.Fatalf("request id %q, header %q", seen, rec.Header().Get(RequestIDHeader))
			}
			if (seen == tt.incoming) != tt.wantSame {
				t.Errorf("request id = %q, incoming %q, wantSame %v", seen, tt.incoming, tt.wantSame)
			}
		})
	}
}

func TestRecoverer_AfterPartialWrite(t *testing.T) {
	t.Parallel()

	handler := Logger(discardLogger())(Recoverer(discardLogger(), false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("partial"))
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rest/todos/", nil))

	if rec.Code != http.StatusAccepted || rec.Body.String() != "partial" {
		t.Errorf("status %d, body %q", rec.Code, rec.Body.String())
	}
}

func TestRecoverer_ReraisesAbort(t *testing.T) {
	t.Parallel()

	handler := Recoverer(discardLogger(), false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	defer func() {
		if rvr := recover(); rvr != http.ErrAbortHandler {
			t.Errorf("recovered %v, want http.ErrAbortHandler", rvr)
		}
	}()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestRequestID_PropagatesTrace(t *testing.T) {
	t.Parallel()

	var trace string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		trace = GetTraceID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TraceIDHeader, "trace-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if trace != "trace-1" || rec.Header().Get(TraceIDHeader) != "trace-1" {
		t.Errorf("trace %q, header %q", trace, rec.Header().Get(TraceIDHeader))
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TraceIDHeader, "bad trace")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if trace != "" || rec.Header().Get(TraceIDHeader) != "" {
		t.Errorf("malformed trace propagated: %q", trace)
	}
}
