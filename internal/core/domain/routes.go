package domain

const (
	// PublicEntryRoute is where unauthenticated visitors are sent.
	PublicEntryRoute = "/"
	// FallbackRoute receives identities whose role is outside the enumeration.
	FallbackRoute = "/acceso-denegado"
)

// landingRoutes must stay in sync with the guarded sections served by the router.
var landingRoutes = map[Role]string{
	RoleAdministrator: "/admin/dashboard",
	RoleSecurity:      "/seguridad/dashboard",
	RoleOwner:         "/propietario/dashboard",
	RoleTenant:        "/inquilino/dashboard",
	RoleEmployee:      "/empleado/dashboard",
}

// LandingRoute returns the default section path for a role. It is total:
// any value outside the enumeration maps to FallbackRoute.
func LandingRoute(r Role) string {
	if path, ok := landingRoutes[r]; ok {
		return path
	}
	return FallbackRoute
}

// LandingRoutes returns a copy of the role to landing-route table.
func LandingRoutes() map[Role]string {
	out := make(map[Role]string, len(landingRoutes))
	for r, p := range landingRoutes {
		out[r] = p
	}
	return out
}
