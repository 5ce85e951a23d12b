package service

import (
	"context"
	"sync"
	"time"

	"github.com/condominio/portal/internal/core/domain"
	"github.com/condominio/portal/internal/core/ports"
)

type stubStorage struct {
	mu      sync.Mutex
	records map[string]ports.SessionRecord
	loadErr error
	saveErr error
	delErr  error
	deleted []string
}

func newStubStorage() *stubStorage {
	return &stubStorage{records: make(map[string]ports.SessionRecord)}
}

func (s *stubStorage) Load(_ context.Context, sid string) (*ports.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	rec, ok := s.records[sid]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &rec, nil
}

func (s *stubStorage) Save(_ context.Context, sid string, rec ports.SessionRecord, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.records[sid] = rec
	return nil
}

func (s *stubStorage) Delete(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.delErr != nil {
		return s.delErr
	}
	delete(s.records, sid)
	s.deleted = append(s.deleted, sid)
	return nil
}

func (s *stubStorage) Ping(context.Context) error { return nil }

type stubBackend struct {
	loginFn func(ctx context.Context, email, password string) (*ports.LoginResult, error)
}

func (b *stubBackend) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	return b.loginFn(ctx, email, password)
}

func (b *stubBackend) Logout(context.Context, string) error { return nil }

func (b *stubBackend) Profile(context.Context, string) (map[string]any, error) {
	return map[string]any{}, nil
}

type stubQueue struct {
	jobs []ports.LogoutJob
}

func (q *stubQueue) Enqueue(job ports.LogoutJob) { q.jobs = append(q.jobs, job) }

func backendReturning(user ports.BackendUser, token string) *stubBackend {
	return &stubBackend{loginFn: func(context.Context, string, string) (*ports.LoginResult, error) {
		return &ports.LoginResult{AccessToken: token, User: user}, nil
	}}
}

func backendFailing(err error) *stubBackend {
	return &stubBackend{loginFn: func(context.Context, string, string) (*ports.LoginResult, error) {
		return nil, err
	}}
}
