package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// SessionCache tracks which logins currently hold an authorized session.
// Key format: session:<login>, TTL equal to the account's remaining minutes
// so an abandoned session expires when its balance would have run out.
type SessionCache struct {
	client *redis.Client
}

// NewSessionCache creates a SessionCache wrapping the given Redis client.
func NewSessionCache(client *redis.Client) *SessionCache {
	return &SessionCache{client: client}
}

// Track marks the login as active for ttl, refreshing any existing marker.
func (s *SessionCache) Track(ctx context.Context, login string, ttl time.Duration) error {
	if err := s.client.Set(ctx, sessionKey(login), "1", ttl).Err(); err != nil {
		return fmt.Errorf("track session: %w", err)
	}
	return nil
}

// Release removes the login's session marker.
func (s *SessionCache) Release(ctx context.Context, login string) error {
	if err := s.client.Del(ctx, sessionKey(login)).Err(); err != nil {
		return fmt.Errorf("release session: %w", err)
	}
	return nil
}

// Active returns the logins with a live session marker.
func (s *SessionCache) Active(ctx context.Context) ([]string, error) {
	var logins []string
	iter := s.client.Scan(ctx, 0, sessionKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		logins = append(logins, iter.Val()[len(sessionKeyPrefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan sessions: %w", err)
	}
	return logins, nil
}

func sessionKey(login string) string {
	return sessionKeyPrefix + login
}
