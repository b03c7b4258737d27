// Package session issues and validates opaque server-side session references.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"proxyshare/internal/observability"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TTL is the sliding session lifetime; each successful resolve renews it.
const TTL = 7 * 24 * time.Hour

// ErrNoSession indicates the token does not map to a live session.
var ErrNoSession = errors.New("session not found")

// Store binds opaque tokens to user ids in Redis. Only the id is stored, not
// the user record, so the session never serves stale profile data.
type Store struct {
	rdb *redis.Client
}

// NewStore returns a session store backed by the given Redis client.
func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

// Create issues a new opaque token bound to the given user id.
func (s *Store) Create(ctx context.Context, userID string) (string, error) {
	if s.rdb == nil {
		return "", errors.New("session store unavailable")
	}
	token := uuid.New().String()
	if err := s.rdb.Set(ctx, sessionKey(token), userID, TTL).Err(); err != nil {
		return "", err
	}
	observability.SessionsIssued.Inc()
	return token, nil
}

// Resolve returns the user id bound to the token and renews its lifetime.
func (s *Store) Resolve(ctx context.Context, token string) (string, error) {
	if s.rdb == nil || token == "" {
		return "", ErrNoSession
	}
	userID, err := s.rdb.Get(ctx, sessionKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoSession
	}
	if err != nil {
		return "", err
	}
	s.rdb.Expire(ctx, sessionKey(token), TTL)
	return userID, nil
}

// Destroy invalidates the token. Destroying an unknown token is not an error.
func (s *Store) Destroy(ctx context.Context, token string) error {
	if s.rdb == nil || token == "" {
		return nil
	}
	deleted, err := s.rdb.Del(ctx, sessionKey(token)).Result()
	if err != nil {
		return err
	}
	if deleted > 0 {
		observability.SessionsDestroyed.Inc()
	}
	return nil
}
