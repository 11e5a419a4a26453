package model

// Identity sources.
const (
	SourceToken   = "token"
	SourceHeader  = "header"
	SourceSession = "session"
)

// AuthContext holds the authenticated caller for a request.
// This is injected into the request context by the identity middleware.
type AuthContext struct {
	UserID string
	// Source records how the identity was established.
	Source string
	// SessionID is set for session-authenticated requests.
	SessionID string
}
