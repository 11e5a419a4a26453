package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/todomanager/todomanager/internal/auth"
	"github.com/todomanager/todomanager/internal/cache"
	"github.com/todomanager/todomanager/internal/model"
)

// SessionStore is the session persistence SessionVerifier needs.
type SessionStore interface {
	CreateSession(ctx context.Context, id string, s *cache.Session, ttl time.Duration) error
	GetSession(ctx context.Context, id string) (*cache.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// SessionVerifier maps opaque session ids to users.
type SessionVerifier struct {
	store SessionStore
	ttl   time.Duration
	now   func() time.Time
}

// NewSessionVerifier creates a SessionVerifier issuing sessions that live for ttl.
func NewSessionVerifier(store SessionStore, ttl time.Duration) *SessionVerifier {
	return &SessionVerifier{store: store, ttl: ttl, now: time.Now}
}

// TTL returns the lifetime of new sessions.
func (v *SessionVerifier) TTL() time.Duration {
	return v.ttl
}

// Start opens a session for user and returns its id.
func (v *SessionVerifier) Start(ctx context.Context, user *model.User) (string, error) {
	id, err := auth.GenerateSessionID()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProvider, err)
	}

	s := &cache.Session{UserID: user.ID, Username: user.Username, CreatedAt: v.now().UTC()}
	if err := v.store.CreateSession(ctx, id, s, v.ttl); err != nil {
		return "", fmt.Errorf("%w: %v", ErrProvider, err)
	}
	return id, nil
}

// Verify resolves a session id.
func (v *SessionVerifier) Verify(ctx context.Context, sessionID string) (*Identity, error) {
	if !auth.ValidSessionID(sessionID) {
		return nil, ErrInvalidCredential
	}

	s, err := v.store.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, cache.ErrSessionNotFound) {
			return nil, ErrInvalidCredential
		}
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	return &Identity{UserID: s.UserID, ExpiresAt: s.CreatedAt.Add(v.ttl)}, nil
}

// End revokes a session. Unknown ids are ignored.
func (v *SessionVerifier) End(ctx context.Context, sessionID string) error {
	if !auth.ValidSessionID(sessionID) {
		return nil
	}
	if err := v.store.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("%w: %v", ErrProvider, err)
	}
	return nil
}
