package ports

import "context"

// BackendUser is the user object returned by the backend's login endpoint,
// before role normalisation.
type BackendUser struct {
	ID         string
	Email      string
	Name       string
	Role       string
	UnitNumber string
	Phone      string
	Extra      map[string]string
}

// LoginResult is a successful backend authentication.
type LoginResult struct {
	AccessToken string
	User        BackendUser
}

// AuthBackend is the external condominium service that owns credentials.
type AuthBackend interface {
	// Login returns domain.ErrInvalidCredentials, domain.ErrBackendUnreachable
	// or domain.ErrBackendFailure on failure.
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, accessToken string) error
	// Profile returns domain.ErrSessionExpired when the token is rejected.
	Profile(ctx context.Context, accessToken string) (map[string]any, error)
}
