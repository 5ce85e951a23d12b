package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/condominio/portal/internal/core/domain"
)

var securityOnly = domain.Section{
	Name:         "seguridad",
	BasePath:     "/seguridad",
	AllowedRoles: domain.NewRoleSet(domain.RoleSecurity),
}

var adminOrSecurity = domain.Section{
	Name:         "panel",
	BasePath:     "/panel",
	AllowedRoles: domain.NewRoleSet(domain.RoleAdministrator, domain.RoleSecurity),
}

func identityWithRole(role domain.Role) *domain.Identity {
	return &domain.Identity{ID: "4", Email: "tenant@x.com", Role: role}
}

func TestEvaluate_LoadingWinsOverIdentity(t *testing.T) {
	for _, identity := range []*domain.Identity{nil, identityWithRole(domain.RoleSecurity), identityWithRole("janitor")} {
		dec := Evaluate(domain.Session{Identity: identity, IsLoading: true}, securityOnly)

		assert.Equal(t, domain.StateResolving, dec.State)
		assert.Empty(t, dec.Redirect)
	}
}

func TestEvaluate_NoIdentityRedirectsToPublicEntry(t *testing.T) {
	for _, sec := range domain.Sections {
		dec := Evaluate(domain.Session{}, sec)

		assert.Equal(t, domain.StateUnauthenticated, dec.State, sec.Name)
		assert.Equal(t, "/", dec.Redirect, sec.Name)
	}
}

func TestEvaluate_TenantOnAdminSecuritySection(t *testing.T) {
	dec := Evaluate(domain.Session{Identity: identityWithRole(domain.RoleTenant)}, adminOrSecurity)

	assert.Equal(t, domain.StateForbidden, dec.State)
	assert.Equal(t, domain.LandingRoute(domain.RoleTenant), dec.Redirect)
	assert.NoError(t, dec.Err)
}

func TestEvaluate_TenantOnSecurityOnlySection(t *testing.T) {
	dec := Evaluate(domain.Session{Identity: identityWithRole(domain.RoleTenant)}, securityOnly)

	assert.Equal(t, domain.StateForbidden, dec.State)
	assert.Equal(t, "/inquilino/dashboard", dec.Redirect)
}

func TestEvaluate_Authorized(t *testing.T) {
	dec := Evaluate(domain.Session{Identity: identityWithRole(domain.RoleAdministrator)}, adminOrSecurity)

	assert.Equal(t, domain.StateAuthorized, dec.State)
	assert.Empty(t, dec.Redirect)
}

func TestEvaluate_UnknownRoleIsNeverAuthorized(t *testing.T) {
	open := domain.Section{Name: "x", BasePath: "/x", AllowedRoles: domain.RoleSet{"janitor": {}}}

	dec := Evaluate(domain.Session{Identity: identityWithRole("janitor")}, open)

	assert.Equal(t, domain.StateForbidden, dec.State)
	assert.Equal(t, domain.FallbackRoute, dec.Redirect)
	assert.ErrorIs(t, dec.Err, domain.ErrUnknownRole)
}

func TestEvaluate_EveryRoleReachesItsOwnLanding(t *testing.T) {
	for _, role := range domain.Roles {
		landing := domain.LandingRoute(role)
		var target *domain.Section
		for i := range domain.Sections {
			if domain.Sections[i].DashboardPath() == landing {
				target = &domain.Sections[i]
			}
		}
		require.NotNil(t, target, role)

		dec := Evaluate(domain.Session{Identity: identityWithRole(role)}, *target)
		assert.Equal(t, domain.StateAuthorized, dec.State, role)
	}
}

func TestPostLoginRoute(t *testing.T) {
	assert.Equal(t, "/", PostLoginRoute(nil))
	assert.Equal(t, "/propietario/dashboard", PostLoginRoute(identityWithRole(domain.RoleOwner)))
	assert.Equal(t, domain.FallbackRoute, PostLoginRoute(identityWithRole("janitor")))
}

func TestCheckSections(t *testing.T) {
	assert.NoError(t, CheckSections(domain.Sections))

	missingEmployee := make([]domain.Section, 0, len(domain.Sections))
	for _, sec := range domain.Sections {
		if sec.Name != "empleado" {
			missingEmployee = append(missingEmployee, sec)
		}
	}
	assert.Error(t, CheckSections(missingEmployee))
}
