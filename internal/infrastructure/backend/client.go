// Package backend is the REST client for the external condominium service.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/condominio/portal/internal/core/domain"
	"github.com/condominio/portal/internal/core/ports"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

// Config captures the settings for reaching the backend.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client implements ports.AuthBackend over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

var _ ports.AuthBackend = (*Client)(nil)

// NewClient returns a Client. A default timeout is applied when none is provided.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string          `json:"access_token"`
	User        json.RawMessage `json:"user"`
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Login posts the credentials to /login.
func (c *Client) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	resp, err := c.do(ctx, http.MethodPost, "/login", "", loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("login: read body: %w", domain.ErrBackendUnreachable)
	}

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
	case isCredentialRejection(resp.StatusCode):
		c.logRejection(resp.StatusCode, body)
		return nil, domain.ErrInvalidCredentials
	default:
		c.logRejection(resp.StatusCode, body)
		return nil, fmt.Errorf("login: status %d: %w", resp.StatusCode, domain.ErrBackendFailure)
	}

	var lr loginResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return nil, fmt.Errorf("login: decode response: %w", domain.ErrBackendFailure)
	}
	user, err := decodeUser(lr.User)
	if err != nil {
		return nil, fmt.Errorf("login: decode user: %v: %w", err, domain.ErrBackendFailure)
	}
	return &ports.LoginResult{AccessToken: lr.AccessToken, User: user}, nil
}

// Logout posts to /logout with the bearer token. Callers treat failures as advisory.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	resp, err := c.do(ctx, http.MethodPost, "/logout", accessToken, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))

	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusUnauthorized {
		return fmt.Errorf("logout: status %d: %w", resp.StatusCode, domain.ErrBackendFailure)
	}
	return nil
}

// Profile fetches /profile for the token's owner.
func (c *Client) Profile(ctx context.Context, accessToken string) (map[string]any, error) {
	resp, err := c.do(ctx, http.MethodGet, "/profile", accessToken, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, domain.ErrSessionExpired
	case resp.StatusCode >= 300:
		return nil, fmt.Errorf("profile: status %d: %w", resp.StatusCode, domain.ErrBackendFailure)
	}

	var profile map[string]any
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&profile); err != nil {
		return nil, fmt.Errorf("profile: decode: %w", domain.ErrBackendFailure)
	}
	return profile, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s %s: encode: %w", method, path, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Msg("backend request failed")
		return nil, fmt.Errorf("%s %s: %v: %w", method, path, err, domain.ErrBackendUnreachable)
	}
	return resp, nil
}

func (c *Client) logRejection(status int, body []byte) {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)
	c.log.Info().
		Int("status", status).
		Str("code", eb.Code).
		Str("error", firstNonEmpty(eb.Error, eb.Message)).
		Msg("backend rejected login")
}

func isCredentialRejection(status int) bool {
	switch status {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusUnprocessableEntity:
		return true
	}
	return false
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// decodeUser keeps the known fields and flattens any other scalar fields into Extra.
func decodeUser(raw json.RawMessage) (ports.BackendUser, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return ports.BackendUser{}, errors.New("missing user object")
	}
	var fields map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return ports.BackendUser{}, err
	}

	u := ports.BackendUser{}
	for key, val := range fields {
		str, ok := scalarString(val)
		if !ok {
			continue
		}
		switch key {
		case "id":
			u.ID = str
		case "email":
			u.Email = str
		case "name", "nombre":
			u.Name = str
		case "role", "rol":
			u.Role = str
		case "unitNumber", "unit_number", "numero_unidad":
			u.UnitNumber = str
		case "phone", "telefono":
			u.Phone = str
		default:
			if u.Extra == nil {
				u.Extra = make(map[string]string)
			}
			u.Extra[key] = str
		}
	}
	return u, nil
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		if t {
			return "true", true
		}
		return "false", true
	}
	return "", false
}
