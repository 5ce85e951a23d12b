// Package view renders the portal's HTML pages for echo.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"sort"

	"github.com/labstack/echo/v4"

	"github.com/condominio/portal/internal/core/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names understood by the renderer.
const (
	PageLogin     = "login"
	PageDashboard = "dashboard"
	PageLoading   = "loading"
	PageRedirect  = "redirect"
	PageDenied    = "denied"
)

// CSRF token plumbing shared with echo's CSRF middleware.
const (
	CSRFContextKey = "csrf"
	CSRFField      = "_csrf"
)

// Page is the data every template receives.
type Page struct {
	Title    string
	Section  string
	Chrome   *domain.Chrome
	Identity *domain.Identity
	Message  string
	Redirect string
	Email    string
	Profile  map[string]any
	Refresh  bool // reload the page shortly, used while the session resolves
	CSRF     string
}

// Renderer implements echo.Renderer over the embedded templates.
type Renderer struct {
	tmpl *template.Template
}

var _ echo.Renderer = (*Renderer)(nil)

// New parses the embedded templates.
func New() (*Renderer, error) {
	tmpl, err := template.New("portal").Funcs(template.FuncMap{
		"sortedKeys": sortedKeys,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render executes the named page. Pages rendered behind the CSRF middleware
// receive its token so their forms can post back.
func (r *Renderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	if p, ok := data.(Page); ok && c != nil {
		if tok, ok := c.Get(CSRFContextKey).(string); ok {
			p.CSRF = tok
		}
		data = p
	}
	return r.tmpl.ExecuteTemplate(w, name, data)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
