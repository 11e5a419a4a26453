package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// sessionKeyPrefix is the Redis key prefix for login sessions.
const sessionKeyPrefix = "session:"

var (
	// ErrSessionNotFound is returned for unknown or expired sessions.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExists is returned when a session id is already taken.
	ErrSessionExists = errors.New("session id already in use")
)

// Session is the server-side state behind a session cookie.
type Session struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateSession stores a session under id for ttl.
func (c *Cache) CreateSession(ctx context.Context, id string, s *Session, ttl time.Duration) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	// Never overwrite an existing session.
	ok, err := c.client.SetNX(ctx, sessionKeyPrefix+id, data, ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	if !ok {
		return ErrSessionExists
	}
	return nil
}

// GetSession loads a session. Returns ErrSessionNotFound on a miss.
func (c *Cache) GetSession(ctx context.Context, id string) (*Session, error) {
	data, err := c.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		// Corrupted entry - treat as logged out
		return nil, ErrSessionNotFound
	}
	return &s, nil
}

// DeleteSession removes a session. Deleting an unknown session is not an error.
func (c *Cache) DeleteSession(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
