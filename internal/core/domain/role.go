package domain

import "strings"

// Role is the canonical access category of an authenticated identity.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleSecurity      Role = "security"
	RoleOwner         Role = "owner"
	RoleTenant        Role = "tenant"
	RoleEmployee      Role = "employee"
)

// Roles lists the closed enumeration in a stable order.
var Roles = []Role{RoleAdministrator, RoleSecurity, RoleOwner, RoleTenant, RoleEmployee}

// roleAliases maps every spelling the backend is known to emit to its canonical role.
var roleAliases = map[string]Role{
	"administrator": RoleAdministrator,
	"administrador": RoleAdministrator,
	"admin":         RoleAdministrator,
	"security":      RoleSecurity,
	"seguridad":     RoleSecurity,
	"guard":         RoleSecurity,
	"vigilante":     RoleSecurity,
	"owner":         RoleOwner,
	"propietario":   RoleOwner,
	"tenant":        RoleTenant,
	"inquilino":     RoleTenant,
	"employee":      RoleEmployee,
	"empleado":      RoleEmployee,
}

// ParseRole normalises a raw role string to the canonical enumeration.
//
// An empty value yields ErrMissingRole. A non-empty value outside the
// enumeration is returned lowercased together with ErrUnknownRole so callers
// can keep it for diagnostics without ever treating it as valid.
func ParseRole(raw string) (Role, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return "", ErrMissingRole
	}
	if r, ok := roleAliases[key]; ok {
		return r, nil
	}
	return Role(key), ErrUnknownRole
}

// Valid reports whether r belongs to the canonical enumeration.
func (r Role) Valid() bool {
	switch r {
	case RoleAdministrator, RoleSecurity, RoleOwner, RoleTenant, RoleEmployee:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// RoleSet is an immutable allow-list of roles.
type RoleSet map[Role]struct{}

// NewRoleSet builds a RoleSet from the given roles.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Contains reports whether r is a valid role present in the set.
func (s RoleSet) Contains(r Role) bool {
	if !r.Valid() {
		return false
	}
	_, ok := s[r]
	return ok
}

// Slice returns the members of s in enumeration order.
func (s RoleSet) Slice() []Role {
	out := make([]Role, 0, len(s))
	for _, r := range Roles {
		if _, ok := s[r]; ok {
			out = append(out, r)
		}
	}
	return out
}
