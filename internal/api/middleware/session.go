package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/condominio/portal/internal/api/metrics"
	"github.com/condominio/portal/internal/core/service"
)

const (
	// ContextStore is the echo context key holding the request's *service.IdentityStore.
	ContextStore = "identity_store"
	// ContextIdentity holds the *domain.Identity of an authorized request.
	ContextIdentity = "identity"

	cookieName   = "condominio_session"
	cookieIssuer = "condominio-portal"
)

// SessionCookie signs and reads the session-id cookie. The cookie carries
// only the id; the identity itself stays in session storage.
type SessionCookie struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

func NewSessionCookie(secret string, ttl time.Duration, secure bool) *SessionCookie {
	return &SessionCookie{secret: []byte(secret), ttl: ttl, secure: secure}
}

// NewSessionID returns a random (version 4) UUID.
func NewSessionID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Issue writes a cookie for sessionID.
func (sc *SessionCookie) Issue(c echo.Context, sessionID string) error {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        sessionID,
		Issuer:    cookieIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(sc.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(sc.secret)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     cookieName,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Secure:   sc.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  now.Add(sc.ttl),
	})
	return nil
}

// Clear expires the cookie in the browser.
func (sc *SessionCookie) Clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   sc.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}

// Read returns the session id of a valid cookie.
func (sc *SessionCookie) Read(c echo.Context) (string, error) {
	ck, err := c.Cookie(cookieName)
	if err != nil {
		return "", err
	}
	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(ck.Value, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return sc.secret, nil
	}, jwt.WithIssuer(cookieIssuer))
	if err != nil || !tkn.Valid {
		return "", errors.Join(jwt.ErrTokenInvalidClaims, err)
	}
	if claims.ID == "" {
		return "", jwt.ErrTokenInvalidId
	}
	return claims.ID, nil
}

// Session opens and restores the identity store for every request. A missing
// or tampered cookie yields an empty store. A storage failure leaves the store
// loading so guards render the resolving state instead of bouncing to login.
func Session(sessions *service.Sessions, cookie *SessionCookie, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid, err := cookie.Read(c)
			if err != nil && !errors.Is(err, http.ErrNoCookie) {
				log.Debug().Err(err).Msg("ignoring invalid session cookie")
				cookie.Clear(c)
			}

			store := sessions.Open(sid)
			if err := store.Restore(c.Request().Context()); err != nil {
				metrics.SessionRestoreFailuresTotal.Inc()
				log.Error().Err(err).Str("session_id", sid).Msg("session restore failed")
			}
			c.Set(ContextStore, store)
			return next(c)
		}
	}
}

// StoreFrom returns the request's identity store. Panics if the Session
// middleware did not run, since every route depends on it.
func StoreFrom(c echo.Context) *service.IdentityStore {
	store, ok := c.Get(ContextStore).(*service.IdentityStore)
	if !ok {
		panic("middleware: identity store missing from context")
	}
	return store
}
