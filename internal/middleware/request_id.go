package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type idKey int

const (
	requestIDKey idKey = iota
	traceIDKey
)

// Correlation headers. Both are echoed on the response.
const (
	RequestIDHeader = "X-Request-ID"
	TraceIDHeader   = "X-Trace-ID"
)

// maxInboundIDLength caps client-supplied request and trace ids.
const maxInboundIDLength = 128

// RequestID tags every request with an id. A well-formed inbound
// X-Request-ID is kept, anything else is replaced by a random UUID.
// X-Trace-ID is only propagated, never generated.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		requestID := r.Header.Get(RequestIDHeader)
		if !acceptableID(requestID) {
			requestID = uuid.NewString()
		}
		ctx = context.WithValue(ctx, requestIDKey, requestID)
		w.Header().Set(RequestIDHeader, requestID)

		if traceID := r.Header.Get(TraceIDHeader); acceptableID(traceID) {
			ctx = context.WithValue(ctx, traceIDKey, traceID)
			w.Header().Set(TraceIDHeader, traceID)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the id assigned by RequestID, or "".
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// GetTraceID returns the propagated trace id, or "".
func GetTraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceIDKey).(string)
	return id
}

// acceptableID reports whether a client-supplied id is safe to echo and log.
func acceptableID(id string) bool {
	return id != "" && len(id) <= maxInboundIDLength && validResourceIDPattern.MatchString(id)
}
