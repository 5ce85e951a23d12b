package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/condominio/portal/internal/api/metrics"
	"github.com/condominio/portal/internal/api/view"
	"github.com/condominio/portal/internal/core/domain"
	"github.com/condominio/portal/internal/core/service"
)

const retryAfterSeconds = "2"

// GuardResponse is the JSON body returned to API clients that are not authorized.
type GuardResponse struct {
	State    string `json:"state"`
	Redirect string `json:"redirect,omitempty"`
}

// Guard protects a section. Every request is evaluated against the section;
// if the handler reports that the backend rejected the session, the store is
// cleared and the guard runs again so the visitor is sent back to the entry page.
func Guard(section domain.Section, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			store := StoreFrom(c)

			decision := evaluate(store, section, log)
			if decision.State != domain.StateAuthorized {
				return respond(c, section, decision)
			}

			c.Set(ContextIdentity, store.Identity())
			err := next(c)
			if !errors.Is(err, domain.ErrSessionExpired) {
				return err
			}

			log.Info().Str("session_id", store.SessionID()).Str("section", section.Name).Msg("session rejected by backend")
			if clearErr := store.Clear(c.Request().Context()); clearErr != nil {
				log.Error().Err(clearErr).Msg("clear expired session")
			}
			return respond(c, section, evaluate(store, section, log))
		}
	}
}

func evaluate(store *service.IdentityStore, section domain.Section, log zerolog.Logger) domain.Decision {
	decision := service.Evaluate(store.Session(), section)
	metrics.GuardDecisionsTotal.WithLabelValues(section.Name, decision.State.String()).Inc()

	if errors.Is(decision.Err, domain.ErrUnknownRole) {
		metrics.UnknownRolesTotal.Inc()
		ev := log.Warn().Err(decision.Err).Str("section", section.Name)
		if id := store.Identity(); id != nil {
			ev = ev.Str("identity_id", id.ID).Str("role", string(id.Role))
		}
		ev.Msg("identity carries a role outside the known set")
	}
	return decision
}

func respond(c echo.Context, section domain.Section, decision domain.Decision) error {
	switch decision.State {
	case domain.StateResolving:
		c.Response().Header().Set("Retry-After", retryAfterSeconds)
		if WantsJSON(c) {
			return c.JSON(http.StatusServiceUnavailable, GuardResponse{State: decision.State.String()})
		}
		return c.Render(http.StatusServiceUnavailable, view.PageLoading, view.Page{
			Title:   section.Chrome.Title,
			Section: section.Name,
			Message: "Verificando tu sesión...",
			Refresh: true,
		})

	case domain.StateUnauthenticated, domain.StateForbidden:
		if WantsJSON(c) {
			status := http.StatusUnauthorized
			if decision.State == domain.StateForbidden {
				status = http.StatusForbidden
			}
			return c.JSON(status, GuardResponse{State: decision.State.String(), Redirect: decision.Redirect})
		}
		msg := "Inicia sesión para continuar."
		if decision.State == domain.StateForbidden {
			msg = "No tienes acceso a esta sección."
		}
		c.Response().Header().Set(echo.HeaderLocation, decision.Redirect)
		return c.Render(http.StatusSeeOther, view.PageRedirect, view.Page{
			Title:    section.Chrome.Title,
			Section:  section.Name,
			Message:  msg,
			Redirect: decision.Redirect,
		})
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "unexpected guard state")
}

// WantsJSON reports whether the client expects a JSON answer instead of a page.
func WantsJSON(c echo.Context) bool {
	if strings.HasPrefix(c.Request().URL.Path, "/api/") {
		return true
	}
	accept := c.Request().Header.Get(echo.HeaderAccept)
	return strings.Contains(accept, echo.MIMEApplicationJSON) && !strings.Contains(accept, echo.MIMETextHTML)
}

// IdentityFrom returns the identity set by Guard, or nil outside a guarded route.
func IdentityFrom(c echo.Context) *domain.Identity {
	id, _ := c.Get(ContextIdentity).(*domain.Identity)
	return id
}
