package service

import (
	"fmt"

	"github.com/condominio/portal/internal/core/domain"
)

// Evaluate projects a session onto a section. It is pure: the same inputs
// always produce the same decision, and it never performs navigation itself.
func Evaluate(sess domain.Session, section domain.Section) domain.Decision {
	if sess.IsLoading {
		return domain.Decision{State: domain.StateResolving}
	}
	if sess.Identity == nil {
		return domain.Decision{State: domain.StateUnauthenticated, Redirect: domain.PublicEntryRoute}
	}

	role := sess.Identity.Role
	if !role.Valid() {
		return domain.Decision{
			State:    domain.StateForbidden,
			Redirect: domain.FallbackRoute,
			Err:      fmt.Errorf("%w: %q", domain.ErrUnknownRole, role),
		}
	}
	if !section.AllowedRoles.Contains(role) {
		return domain.Decision{State: domain.StateForbidden, Redirect: domain.LandingRoute(role)}
	}
	return domain.Decision{State: domain.StateAuthorized}
}

// PostLoginRoute is where an identity lands right after authenticating.
func PostLoginRoute(identity *domain.Identity) string {
	if identity == nil {
		return domain.PublicEntryRoute
	}
	return domain.LandingRoute(identity.Role)
}

// CheckSections verifies that every canonical role's landing route is served
// by a section allowing that role. A gap would bounce a forbidden user into
// another forbidden section.
func CheckSections(sections []domain.Section) error {
	for _, role := range domain.Roles {
		landing := domain.LandingRoute(role)
		served := false
		for _, sec := range sections {
			if sec.DashboardPath() == landing && sec.AllowedRoles.Contains(role) {
				served = true
				break
			}
		}
		if !served {
			return fmt.Errorf("landing route %s for role %s is not served by a section allowing it", landing, role)
		}
	}
	return nil
}
