package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/condominio/portal/internal/core/domain"
	"github.com/condominio/portal/internal/core/ports"
)

const defaultSessionTTL = 24 * time.Hour

// Sessions opens identity stores bound to a browser session id.
type Sessions struct {
	storage ports.SessionStorage
	backend ports.AuthBackend
	logouts ports.LogoutQueue
	ttl     time.Duration
	log     zerolog.Logger
	now     func() time.Time
}

// NewSessions wires the collaborators shared by every identity store.
// logouts may be nil, in which case backend logouts are skipped.
func NewSessions(storage ports.SessionStorage, backend ports.AuthBackend, logouts ports.LogoutQueue, ttl time.Duration, log zerolog.Logger) *Sessions {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &Sessions{
		storage: storage,
		backend: backend,
		logouts: logouts,
		ttl:     ttl,
		log:     log,
		now:     time.Now,
	}
}

// TTL is the lifetime of a persisted session.
func (s *Sessions) TTL() time.Duration { return s.ttl }

// Open returns a store for sessionID in the loading state. Restore must run
// before its identity is reliable.
func (s *Sessions) Open(sessionID string) *IdentityStore {
	return &IdentityStore{
		sessionID: sessionID,
		sessions:  s,
		loading:   true,
	}
}

// IdentityStore is the single source of truth for who is logged in on one
// browser session. Memory and durable storage are mutated together.
type IdentityStore struct {
	sessionID string
	sessions  *Sessions

	mu       sync.RWMutex
	identity *domain.Identity
	token    string
	loading  bool
}

// SessionID is the durable storage key of this store.
func (s *IdentityStore) SessionID() string { return s.sessionID }

// Identity returns a copy of the current identity, or nil.
func (s *IdentityStore) Identity() *domain.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity.Clone()
}

// IsLoading reports whether Restore has not yet reached a definitive outcome.
func (s *IdentityStore) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Session returns the derived view evaluated by route guards.
func (s *IdentityStore) Session() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Session{Identity: s.identity.Clone(), IsLoading: s.loading}
}

// AccessToken returns the bearer token of the current identity, or "".
func (s *IdentityStore) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Restore hydrates memory from durable storage. Malformed or expired records
// resolve to "no identity" and are purged. A storage failure is returned and
// leaves the store loading, since the outcome is unknown.
func (s *IdentityStore) Restore(ctx context.Context) error {
	log := s.sessions.log.With().Str("session_id", s.sessionID).Logger()

	if s.sessionID == "" {
		s.assign(nil, "")
		return nil
	}

	rec, err := s.sessions.storage.Load(ctx, s.sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		s.assign(nil, "")
		return nil
	}
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	identity, err := s.validate(rec)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownRole) {
			log.Warn().
				Str("identity_id", identity.ID).
				Str("role", identity.Role.String()).
				Msg("restored identity has a role outside the canonical enumeration")
		} else {
			log.Debug().Err(err).Msg("discarding stored session")
			s.purge(ctx, log)
			s.assign(nil, "")
			return nil
		}
	}

	s.assign(identity, rec.AccessToken)
	return nil
}

func (s *IdentityStore) validate(rec *ports.SessionRecord) (*domain.Identity, error) {
	if len(rec.CurrentUser) == 0 || rec.AccessToken == "" {
		return nil, fmt.Errorf("%w: incomplete record", domain.ErrMalformedSession)
	}
	if tokenExpired(rec.AccessToken, s.sessions.now()) {
		return nil, domain.ErrSessionExpired
	}
	return decodeIdentity(rec.CurrentUser)
}

// Authenticate verifies credentials with the backend and, on success, persists
// and returns the new identity. On failure any prior identity is untouched.
func (s *IdentityStore) Authenticate(ctx context.Context, email, password string) (*domain.Identity, error) {
	log := s.sessions.log.With().Str("session_id", s.sessionID).Logger()

	res, err := s.sessions.backend.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if res.AccessToken == "" {
		return nil, fmt.Errorf("authenticate: %w: empty access token", domain.ErrBackendFailure)
	}

	identity, err := identityFromBackend(res.User)
	if err != nil {
		if !errors.Is(err, domain.ErrUnknownRole) {
			return nil, fmt.Errorf("authenticate: %w: %v", domain.ErrBackendFailure, err)
		}
		log.Warn().
			Str("identity_id", identity.ID).
			Str("role", identity.Role.String()).
			Msg("backend returned a role outside the canonical enumeration")
	}

	payload, err := encodeIdentity(identity)
	if err != nil {
		return nil, fmt.Errorf("authenticate: encode identity: %w", err)
	}
	rec := ports.SessionRecord{CurrentUser: payload, AccessToken: res.AccessToken}
	if err := s.sessions.storage.Save(ctx, s.sessionID, rec, s.sessions.ttl); err != nil {
		return nil, fmt.Errorf("authenticate: persist session: %w", err)
	}

	s.assign(identity, res.AccessToken)
	log.Info().Str("identity_id", identity.ID).Str("role", identity.Role.String()).Msg("identity authenticated")
	return identity.Clone(), nil
}

// Clear removes the identity from memory and durable storage. Calling it on an
// empty store is a no-op. Memory is always cleared, even if storage fails.
func (s *IdentityStore) Clear(ctx context.Context) error {
	s.assign(nil, "")
	if s.sessionID == "" {
		return nil
	}
	if err := s.sessions.storage.Delete(ctx, s.sessionID); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Logout hands the access token to the logout queue and clears locally.
func (s *IdentityStore) Logout(ctx context.Context) error {
	if token := s.AccessToken(); token != "" && s.sessions.logouts != nil {
		s.sessions.logouts.Enqueue(ports.LogoutJob{SessionID: s.sessionID, AccessToken: token})
	}
	return s.Clear(ctx)
}

func (s *IdentityStore) assign(identity *domain.Identity, token string) {
	s.mu.Lock()
	s.identity = identity
	s.token = token
	s.loading = false
	s.mu.Unlock()
}

func (s *IdentityStore) purge(ctx context.Context, log zerolog.Logger) {
	if err := s.sessions.storage.Delete(ctx, s.sessionID); err != nil {
		log.Error().Err(err).Msg("failed to purge stored session")
	}
}
