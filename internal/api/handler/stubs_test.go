package handler

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/condominio/portal/internal/api/middleware"
	"github.com/condominio/portal/internal/api/view"
	"github.com/condominio/portal/internal/core/domain"
	"github.com/condominio/portal/internal/core/ports"
	"github.com/condominio/portal/internal/core/service"
	"github.com/condominio/portal/internal/infrastructure/memory"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type stubBackend struct {
	loginFn    func(ctx context.Context, email, password string) (*ports.LoginResult, error)
	profileFn  func(ctx context.Context, token string) (map[string]any, error)
	logoutsHit int
}

func (b *stubBackend) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	return b.loginFn(ctx, email, password)
}

func (b *stubBackend) Logout(context.Context, string) error {
	b.logoutsHit++
	return nil
}

func (b *stubBackend) Profile(ctx context.Context, token string) (map[string]any, error) {
	if b.profileFn == nil {
		return map[string]any{}, nil
	}
	return b.profileFn(ctx, token)
}

type recordingQueue struct {
	jobs []ports.LogoutJob
}

func (q *recordingQueue) Enqueue(job ports.LogoutJob) { q.jobs = append(q.jobs, job) }

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func loginAs(role string) func(context.Context, string, string) (*ports.LoginResult, error) {
	return func(_ context.Context, email, _ string) (*ports.LoginResult, error) {
		return &ports.LoginResult{
			AccessToken: "tok-1",
			User:        ports.BackendUser{ID: "u-1", Email: email, Name: "Ana", Role: role},
		}, nil
	}
}

func loginFails(err error) func(context.Context, string, string) (*ports.LoginResult, error) {
	return func(context.Context, string, string) (*ports.LoginResult, error) { return nil, err }
}

var errBoom = errors.New("boom")

type fixture struct {
	e        *echo.Echo
	storage  *memory.SessionStorage
	backend  *stubBackend
	queue    *recordingQueue
	sessions *service.Sessions
	cookie   *middleware.SessionCookie
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	r, err := view.New()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	e := echo.New()
	e.Renderer = r
	e.Validator = NewValidator()

	f := &fixture{
		e:       e,
		storage: memory.NewSessionStorage(),
		backend: &stubBackend{loginFn: loginFails(domain.ErrInvalidCredentials)},
		queue:   &recordingQueue{},
		cookie:  middleware.NewSessionCookie(testSecret, time.Hour, false),
	}
	f.sessions = service.NewSessions(f.storage, f.backend, f.queue, time.Hour, zerolog.Nop())
	return f
}

// context builds an echo context carrying a restored store for sid.
func (f *fixture) context(t *testing.T, method, target, body, contentType, sid string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)

	store := f.sessions.Open(sid)
	if err := store.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	c.Set(middleware.ContextStore, store)
	return c, rec
}

// seed stores a signed-in user under sid.
func (f *fixture) seed(t *testing.T, sid, role string) {
	t.Helper()
	user := `{"id":"u-1","email":"ana@example.com","name":"Ana","role":"` + role + `"}`
	if err := f.storage.Save(context.Background(), sid, ports.SessionRecord{CurrentUser: []byte(user), AccessToken: "tok-1"}, time.Hour); err != nil {
		t.Fatalf("seed: %v", err)
	}
}
