package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/condominio/portal/internal/api/middleware"
	"github.com/condominio/portal/internal/api/view"
	"github.com/condominio/portal/internal/core/domain"
	"github.com/condominio/portal/internal/core/ports"
)

// SectionHandler serves the pages behind the route guard.
type SectionHandler struct {
	backend ports.AuthBackend
	log     zerolog.Logger
}

func NewSectionHandler(backend ports.AuthBackend, log zerolog.Logger) *SectionHandler {
	return &SectionHandler{backend: backend, log: log}
}

// Dashboard renders a section's entry page with the backend profile.
// ErrSessionExpired is returned as-is so the guard can re-evaluate.
func (h *SectionHandler) Dashboard(section domain.Section) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity := middleware.IdentityFrom(c)
		page := view.Page{
			Title:    section.Chrome.Title,
			Section:  section.Name,
			Chrome:   &section.Chrome,
			Identity: identity,
		}

		profile, err := h.backend.Profile(c.Request().Context(), middleware.StoreFrom(c).AccessToken())
		switch {
		case errors.Is(err, domain.ErrSessionExpired):
			return err
		case err != nil:
			h.log.Warn().Err(err).Str("section", section.Name).Msg("profile unavailable")
			page.Message = "No fue posible cargar tu perfil en este momento."
		default:
			page.Profile = profile
		}
		return c.Render(http.StatusOK, view.PageDashboard, page)
	}
}

// Denied renders the generic fallback for identities without a section.
func (h *SectionHandler) Denied(c echo.Context) error {
	return c.Render(http.StatusForbidden, view.PageDenied, view.Page{
		Title:    "Acceso denegado",
		Identity: middleware.StoreFrom(c).Identity(),
	})
}
