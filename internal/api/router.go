package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/condominio/portal/docs"
	"github.com/condominio/portal/internal/api/handler"
	"github.com/condominio/portal/internal/api/middleware"
	"github.com/condominio/portal/internal/api/view"
	"github.com/condominio/portal/internal/core/domain"
	"github.com/condominio/portal/internal/core/ports"
	"github.com/condominio/portal/internal/core/service"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Sessions *service.Sessions
	Cookie   *middleware.SessionCookie
	Backend  ports.AuthBackend
	Storage  ports.SessionStorage
	Sections []domain.Section
	Log      zerolog.Logger

	CookieSecure bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) (*echo.Echo, error) {
	if err := service.CheckSections(d.Sections); err != nil {
		return nil, fmt.Errorf("section table: %w", err)
	}
	renderer, err := view.New()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("portal"))

	// --- Probes and tooling (no session) ---
	healthHandler := handler.NewHealthHandler(map[string]handler.Pinger{"session_store": d.Storage})
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Session-aware routes ---
	session := middleware.Session(d.Sessions, d.Cookie, d.Log)
	authHandler := handler.NewAuthHandler(d.Sessions, d.Cookie, d.Log)
	sessionHandler := handler.NewSessionHandler()
	sectionHandler := handler.NewSectionHandler(d.Backend, d.Log)

	csrf := echomiddleware.CSRFWithConfig(echomiddleware.CSRFConfig{
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/api/")
		},
		TokenLookup:    "form:" + view.CSRFField,
		ContextKey:     view.CSRFContextKey,
		CookiePath:     "/",
		CookieSecure:   d.CookieSecure,
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteLaxMode,
	})

	app := e.Group("", session, csrf)
	app.GET(domain.PublicEntryRoute, authHandler.LoginPage)
	app.POST("/login", authHandler.Login)
	app.POST("/logout", authHandler.Logout)
	app.GET(domain.FallbackRoute, sectionHandler.Denied)

	apiGroup := app.Group("/api")
	apiGroup.POST("/auth/login", authHandler.APILogin)
	apiGroup.POST("/auth/logout", authHandler.APILogout)
	apiGroup.GET("/session", sessionHandler.Current)
	apiGroup.GET("/routes", sessionHandler.Routes)

	// --- Guarded sections ---
	for _, sec := range d.Sections {
		g := app.Group(sec.BasePath, middleware.Guard(sec, d.Log))
		g.GET("/dashboard", sectionHandler.Dashboard(sec))
	}

	return e, nil
}
