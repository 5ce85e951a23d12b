package domain

import "errors"

var (
	// ErrInvalidCredentials is returned when the backend rejects the email/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrBackendUnreachable signals a transport failure talking to the backend.
	ErrBackendUnreachable = errors.New("backend unreachable")
	// ErrBackendFailure signals a server-side error or an unusable backend response.
	ErrBackendFailure = errors.New("backend failure")
	// ErrSessionExpired is returned when the backend no longer accepts the access token.
	ErrSessionExpired = errors.New("session expired")

	ErrMalformedSession = errors.New("malformed session")
	ErrMissingRole      = errors.New("identity has no role")
	ErrUnknownRole      = errors.New("unknown role")

	ErrSessionNotFound = errors.New("session not found")
)
