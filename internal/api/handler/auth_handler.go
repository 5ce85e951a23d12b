package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/condominio/portal/internal/api/metrics"
	"github.com/condominio/portal/internal/api/middleware"
	"github.com/condominio/portal/internal/api/view"
	"github.com/condominio/portal/internal/core/domain"
	"github.com/condominio/portal/internal/core/service"
)

type AuthHandler struct {
	sessions *service.Sessions
	cookie   *middleware.SessionCookie
	log      zerolog.Logger
}

func NewAuthHandler(sessions *service.Sessions, cookie *middleware.SessionCookie, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{sessions: sessions, cookie: cookie, log: log}
}

type loginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email,max=254"`
	Password string `json:"password" form:"password" validate:"required,max=512"`
}

type loginResponse struct {
	Identity *domain.Identity `json:"identity"`
	Redirect string           `json:"redirect"`
}

// LoginPage renders the public entry. A visitor who is already signed in is
// sent to their landing route.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	if sess := middleware.StoreFrom(c).Session(); sess.IsAuthenticated() {
		return c.Redirect(http.StatusSeeOther, service.PostLoginRoute(sess.Identity))
	}
	return c.Render(http.StatusOK, view.PageLogin, view.Page{Title: "Ingreso"})
}

// Login handles the HTML login form.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.Render(http.StatusBadRequest, view.PageLogin, view.Page{Title: "Ingreso", Message: "Solicitud inválida."})
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := c.Validate(&req); err != nil {
		metrics.LoginsTotal.WithLabelValues("invalid_input").Inc()
		return c.Render(http.StatusUnprocessableEntity, view.PageLogin, view.Page{Title: "Ingreso", Message: err.Error(), Email: req.Email})
	}

	identity, err := h.authenticate(c, req)
	if err != nil {
		status, msg := loginFailure(err)
		return c.Render(status, view.PageLogin, view.Page{Title: "Ingreso", Message: msg, Email: req.Email})
	}
	return c.Redirect(http.StatusSeeOther, service.PostLoginRoute(identity))
}

// APILogin authenticates a JSON client.
//
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/auth/login [post]
func (h *AuthHandler) APILogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := c.Validate(&req); err != nil {
		metrics.LoginsTotal.WithLabelValues("invalid_input").Inc()
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}

	identity, err := h.authenticate(c, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, loginResponse{Identity: identity, Redirect: service.PostLoginRoute(identity)})
}

// Logout ends the session and returns to the public entry.
func (h *AuthHandler) Logout(c echo.Context) error {
	h.logout(c)
	return c.Redirect(http.StatusSeeOther, domain.PublicEntryRoute)
}

// APILogout ends the session of a JSON client.
//
// @Summary      Log out
// @Tags         auth
// @Success      204
// @Router       /api/auth/logout [post]
func (h *AuthHandler) APILogout(c echo.Context) error {
	h.logout(c)
	return c.NoContent(http.StatusNoContent)
}

// authenticate signs in under a fresh session id so a pre-login id is never
// reused, then drops the previous session record.
func (h *AuthHandler) authenticate(c echo.Context, req loginRequest) (*domain.Identity, error) {
	sid, err := middleware.NewSessionID()
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	ctx := c.Request().Context()
	identity, err := h.sessions.Open(sid).Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc()
		h.log.Info().Err(err).Str("email", req.Email).Msg("login rejected")
		return nil, err
	}

	if prev := middleware.StoreFrom(c); prev.SessionID() != "" {
		if err := prev.Clear(ctx); err != nil {
			h.log.Warn().Err(err).Msg("failed to drop previous session")
		}
	}
	if err := h.cookie.Issue(c, sid); err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	return identity, nil
}

func (h *AuthHandler) logout(c echo.Context) {
	if err := middleware.StoreFrom(c).Logout(c.Request().Context()); err != nil {
		h.log.Error().Err(err).Msg("logout: clear session")
	}
	h.cookie.Clear(c)
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrBackendUnreachable):
		return "backend_unreachable"
	case errors.Is(err, domain.ErrBackendFailure):
		return "backend_failure"
	default:
		return "error"
	}
}

func loginFailure(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Correo o contraseña incorrectos."
	case errors.Is(err, domain.ErrBackendUnreachable):
		return http.StatusServiceUnavailable, "No fue posible contactar al servidor. Intenta de nuevo."
	case errors.Is(err, domain.ErrBackendFailure):
		return http.StatusBadGateway, "El servidor respondió con un error. Intenta más tarde."
	default:
		return http.StatusInternalServerError, "Ocurrió un error inesperado."
	}
}
