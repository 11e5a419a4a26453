// Package identity resolves credentials to user ids. Backends: Firebase
// Authentication, locally issued JWTs and server-side sessions.
package identity

import (
	"context"
	"errors"
	"time"
)

// Identity errors.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrDuplicateAccount  = errors.New("account already exists")
	ErrInvalidCredential = errors.New("invalid or expired credential")
	ErrProvider          = errors.New("identity provider failure")
	ErrNotSupported      = errors.New("operation not supported by identity provider")
)

// Identity is a verified caller.
type Identity struct {
	UserID string
	// ExpiresAt is when the credential stops being valid. Zero if unknown.
	ExpiresAt time.Time
}

// Verifier turns a credential into an Identity.
type Verifier interface {
	Verify(ctx context.Context, credential string) (*Identity, error)
}

// Provider creates accounts and verifies their tokens.
type Provider interface {
	Verifier
	CreateAccount(ctx context.Context, email, password string) (string, error)
}

// IssuedToken is a signed credential handed to a client.
type IssuedToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}

// TokenIssuer is implemented by providers that can sign in a user
// server-side. Firebase leaves that to its client SDKs.
type TokenIssuer interface {
	IssueToken(ctx context.Context, email, password string) (*IssuedToken, error)
}

// IssueToken signs in through p when it supports it.
func IssueToken(ctx context.Context, p Provider, email, password string) (*IssuedToken, error) {
	issuer, ok := p.(TokenIssuer)
	if !ok {
		return nil, ErrNotSupported
	}
	return issuer.IssueToken(ctx, email, password)
}
