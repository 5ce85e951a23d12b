// Package memory provides a process-local session storage for development
// and tests. Sessions do not survive a restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/condominio/portal/internal/core/domain"
	"github.com/condominio/portal/internal/core/ports"
)

type entry struct {
	rec       ports.SessionRecord
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// SessionStorage is a mutex-guarded map with lazy expiry.
type SessionStorage struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

var _ ports.SessionStorage = (*SessionStorage)(nil)

func NewSessionStorage() *SessionStorage {
	return &SessionStorage{entries: make(map[string]entry), now: time.Now}
}

func (s *SessionStorage) Load(_ context.Context, sessionID string) (*ports.SessionRecord, error) {
	s.mu.RLock()
	e, ok := s.entries[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if e.expired(s.now()) {
		s.mu.Lock()
		// A Save may have replaced the entry since the read lock was released.
		if cur, ok := s.entries[sessionID]; ok && cur.expired(s.now()) {
			delete(s.entries, sessionID)
		}
		s.mu.Unlock()
		return nil, domain.ErrSessionNotFound
	}
	rec := ports.SessionRecord{
		CurrentUser: append([]byte(nil), e.rec.CurrentUser...),
		AccessToken: e.rec.AccessToken,
	}
	return &rec, nil
}

func (s *SessionStorage) Save(_ context.Context, sessionID string, rec ports.SessionRecord, ttl time.Duration) error {
	e := entry{rec: ports.SessionRecord{
		CurrentUser: append([]byte(nil), rec.CurrentUser...),
		AccessToken: rec.AccessToken,
	}}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.mu.Lock()
	s.entries[sessionID] = e
	s.mu.Unlock()
	return nil
}

func (s *SessionStorage) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.entries, sessionID)
	s.mu.Unlock()
	return nil
}

func (s *SessionStorage) Ping(context.Context) error { return nil }
