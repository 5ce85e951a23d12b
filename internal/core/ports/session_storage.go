package ports

import (
	"context"
	"time"
)

// SessionRecord is the durable layout of one browser session: the serialized
// current user and the bearer access token. Both are written and removed together.
type SessionRecord struct {
	CurrentUser []byte
	AccessToken string
}

// SessionStorage persists session records keyed by session id.
type SessionStorage interface {
	// Load returns domain.ErrSessionNotFound when neither key exists. A record
	// with only one of the two keys present is returned as is.
	Load(ctx context.Context, sessionID string) (*SessionRecord, error)
	Save(ctx context.Context, sessionID string, rec SessionRecord, ttl time.Duration) error
	// Delete is a no-op for unknown ids.
	Delete(ctx context.Context, sessionID string) error
	Ping(ctx context.Context) error
}
