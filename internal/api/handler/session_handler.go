package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/condominio/portal/internal/api/middleware"
	"github.com/condominio/portal/internal/core/domain"
	"github.com/condominio/portal/internal/core/service"
)

type SessionHandler struct{}

func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

type sessionResponse struct {
	State    string           `json:"state"`
	Identity *domain.Identity `json:"identity,omitempty"`
	Landing  string           `json:"landing,omitempty"`
}

type routesResponse struct {
	PublicEntry string                 `json:"public_entry"`
	Fallback    string                 `json:"fallback"`
	Landing     map[domain.Role]string `json:"landing"`
}

// Current reports the session as the portal sees it.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Failure      503  {object}  sessionResponse
// @Router       /api/session [get]
func (h *SessionHandler) Current(c echo.Context) error {
	sess := middleware.StoreFrom(c).Session()
	if sess.IsLoading {
		c.Response().Header().Set("Retry-After", "2")
		return c.JSON(http.StatusServiceUnavailable, sessionResponse{State: domain.StateResolving.String()})
	}
	if !sess.IsAuthenticated() {
		return c.JSON(http.StatusOK, sessionResponse{State: "anonymous"})
	}
	return c.JSON(http.StatusOK, sessionResponse{
		State:    "authenticated",
		Identity: sess.Identity,
		Landing:  service.PostLoginRoute(sess.Identity),
	})
}

// Routes lists the landing route of every role.
//
// @Summary      Landing routes
// @Tags         session
// @Produce      json
// @Success      200  {object}  routesResponse
// @Router       /api/routes [get]
func (h *SessionHandler) Routes(c echo.Context) error {
	return c.JSON(http.StatusOK, routesResponse{
		PublicEntry: domain.PublicEntryRoute,
		Fallback:    domain.FallbackRoute,
		Landing:     domain.LandingRoutes(),
	})
}
