package middleware

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/condominio/portal/internal/api/view"
	"github.com/condominio/portal/internal/core/ports"
	"github.com/condominio/portal/internal/core/service"
	"github.com/condominio/portal/internal/infrastructure/memory"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var errStorageDown = errors.New("storage down")

type downStorage struct{}

func (downStorage) Load(context.Context, string) (*ports.SessionRecord, error) {
	return nil, errStorageDown
}
func (downStorage) Save(context.Context, string, ports.SessionRecord, time.Duration) error {
	return errStorageDown
}
func (downStorage) Delete(context.Context, string) error { return errStorageDown }
func (downStorage) Ping(context.Context) error           { return errStorageDown }

type nopBackend struct {
	profileErr error
}

func (nopBackend) Login(context.Context, string, string) (*ports.LoginResult, error) {
	return nil, errors.New("not used")
}
func (nopBackend) Logout(context.Context, string) error { return nil }
func (b nopBackend) Profile(context.Context, string) (map[string]any, error) {
	return map[string]any{}, b.profileErr
}

func newEcho(t *testing.T) *echo.Echo {
	t.Helper()
	r, err := view.New()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	e := echo.New()
	e.Renderer = r
	return e
}

// seededStore returns a restored store whose storage holds a user with role.
func seededStore(t *testing.T, role string) *service.IdentityStore {
	t.Helper()
	storage := memory.NewSessionStorage()
	user := `{"id":"u-1","email":"ana@example.com","name":"Ana","role":"` + role + `"}`
	if err := storage.Save(context.Background(), "sid-1", ports.SessionRecord{CurrentUser: []byte(user), AccessToken: "tok"}, time.Hour); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store := service.NewSessions(storage, nopBackend{}, nil, time.Hour, zerolog.Nop()).Open("sid-1")
	if err := store.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	return store
}

func emptyStore(t *testing.T) *service.IdentityStore {
	t.Helper()
	store := service.NewSessions(memory.NewSessionStorage(), nopBackend{}, nil, time.Hour, zerolog.Nop()).Open("")
	if err := store.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	return store
}

func loadingStore(t *testing.T) *service.IdentityStore {
	t.Helper()
	store := service.NewSessions(downStorage{}, nopBackend{}, nil, time.Hour, zerolog.Nop()).Open("sid-1")
	if err := store.Restore(context.Background()); err == nil {
		t.Fatalf("expected restore error")
	}
	return store
}

func newContext(e *echo.Echo, method, target string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}
