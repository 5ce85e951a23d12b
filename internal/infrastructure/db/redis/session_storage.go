package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/condominio/portal/internal/core/domain"
	"github.com/condominio/portal/internal/core/ports"
)

// SessionStorage keeps session records in Redis.
// Key format: session:<session_id>:current_user and session:<session_id>:access_token
type SessionStorage struct {
	client redis.Cmdable
}

var _ ports.SessionStorage = (*SessionStorage)(nil)

// NewSessionStorage creates a SessionStorage over a Redis client or cluster client.
func NewSessionStorage(client redis.Cmdable) *SessionStorage {
	return &SessionStorage{client: client}
}

// Load reads both keys in one round trip.
func (s *SessionStorage) Load(ctx context.Context, sessionID string) (*ports.SessionRecord, error) {
	vals, err := s.client.MGet(ctx, userKey(sessionID), tokenKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	user, _ := vals[0].(string)
	token, _ := vals[1].(string)
	if user == "" && token == "" {
		return nil, domain.ErrSessionNotFound
	}
	return &ports.SessionRecord{CurrentUser: []byte(user), AccessToken: token}, nil
}

// Save writes both keys atomically with the same expiry.
func (s *SessionStorage) Save(ctx context.Context, sessionID string, rec ports.SessionRecord, ttl time.Duration) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, userKey(sessionID), rec.CurrentUser, ttl)
		pipe.Set(ctx, tokenKey(sessionID), rec.AccessToken, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Delete removes both keys together.
func (s *SessionStorage) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, userKey(sessionID), tokenKey(sessionID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SessionStorage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func userKey(sessionID string) string  { return "session:" + sessionID + ":current_user" }
func tokenKey(sessionID string) string { return "session:" + sessionID + ":access_token" }
