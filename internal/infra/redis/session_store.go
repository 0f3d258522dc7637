package redis

import (
	"context"
	"fmt"
	"time"

	"gamebot-panel/internal/domain"

	"github.com/google/uuid"
)

// SessionStore keeps session-id -> user-id mappings in redis so that logout
// revokes a session server-side instead of waiting for the cookie to expire.
type SessionStore struct {
	client RedisClient
	ttl    time.Duration
}

func NewSessionStore(client RedisClient, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func sessionKey(sid string) string { return fmt.Sprintf("session:%s", sid) }

// Create stores a fresh session for userID and returns its ID.
func (s *SessionStore) Create(ctx context.Context, userID string) (string, error) {
	sid := uuid.NewString()
	if err := s.client.Set(ctx, sessionKey(sid), userID, s.ttl); err != nil {
		return "", err
	}
	return sid, nil
}

// Get resolves a session ID to the user it belongs to.
// Returns domain.ErrUnauthorized for unknown or revoked sessions.
func (s *SessionStore) Get(ctx context.Context, sid string) (string, error) {
	userID, err := s.client.Get(ctx, sessionKey(sid))
	if err != nil {
		if IsNil(err) {
			return "", domain.ErrUnauthorized
		}
		return "", err
	}
	return userID, nil
}

// Delete revokes a session. Deleting an unknown session is a no-op.
func (s *SessionStore) Delete(ctx context.Context, sid string) error {
	return s.client.Del(ctx, sessionKey(sid))
}
