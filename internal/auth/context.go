package auth

import (
	"context"

	"github.com/todomanager/todomanager/internal/model"
)

type authKey struct{}

// ContextWithAuth returns a copy of ctx carrying the resolved caller.
func ContextWithAuth(ctx context.Context, caller *model.AuthContext) context.Context {
	return context.WithValue(ctx, authKey{}, caller)
}

// AuthFromContext returns the caller, or nil for anonymous requests.
func AuthFromContext(ctx context.Context) *model.AuthContext {
	caller, _ := ctx.Value(authKey{}).(*model.AuthContext)
	return caller
}

// UserIDFromContext returns the caller's user id, or "".
func UserIDFromContext(ctx context.Context) string {
	if caller := AuthFromContext(ctx); caller != nil {
		return caller.UserID
	}
	return ""
}

// SessionIDFromContext returns the session behind the request, if any.
func SessionIDFromContext(ctx context.Context) string {
	if caller := AuthFromContext(ctx); caller != nil {
		return caller.SessionID
	}
	return ""
}
