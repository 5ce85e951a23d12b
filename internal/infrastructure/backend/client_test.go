package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/condominio/portal/internal/core/domain"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/", Timeout: time.Second}, zerolog.Nop())
}

func TestClient_LoginSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/login", r.URL.Path)

		var req loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "tenant@x.com", req.Email)
		assert.Equal(t, "pw", req.Password)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","user":{"id":4,"email":"tenant@x.com","name":"Tina","role":"inquilino","unitNumber":"12B","tower":"A","tags":["x"]}}`))
	})

	res, err := c.Login(context.Background(), "tenant@x.com", "pw")

	require.NoError(t, err)
	assert.Equal(t, "tok", res.AccessToken)
	assert.Equal(t, "4", res.User.ID)
	assert.Equal(t, "inquilino", res.User.Role)
	assert.Equal(t, "12B", res.User.UnitNumber)
	assert.Equal(t, map[string]string{"tower": "A"}, res.User.Extra)
}

func TestClient_LoginInvalidCredentials(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"INVALID_CREDENTIALS","message":"bad"}`))
	})

	_, err := c.Login(context.Background(), "a@x.com", "bad")

	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestClient_LoginServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Login(context.Background(), "a@x.com", "pw")

	assert.ErrorIs(t, err, domain.ErrBackendFailure)
	assert.False(t, errors.Is(err, domain.ErrInvalidCredentials))
}

func TestClient_LoginGarbageBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	})

	_, err := c.Login(context.Background(), "a@x.com", "pw")

	assert.ErrorIs(t, err, domain.ErrBackendFailure)
}

func TestClient_LoginUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	c := NewClient(Config{BaseURL: url, Timeout: time.Second}, zerolog.Nop())

	_, err := c.Login(context.Background(), "a@x.com", "pw")

	assert.ErrorIs(t, err, domain.ErrBackendUnreachable)
}

func TestClient_LogoutSendsBearer(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.Logout(context.Background(), "tok"))
	assert.Equal(t, "Bearer tok", gotAuth)
}

func TestClient_ProfileExpired(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.Profile(context.Background(), "tok")

	assert.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestClient_Profile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"unidad":"12B","saldo":0}`))
	})

	profile, err := c.Profile(context.Background(), "tok")

	require.NoError(t, err)
	assert.Equal(t, "12B", profile["unidad"])
}
