package domain

// Sections is the portal's table of protected areas.
var Sections = []Section{
	{
		Name:         "admin",
		BasePath:     "/admin",
		AllowedRoles: NewRoleSet(RoleAdministrator),
		Chrome: Chrome{
			Title: "Administración",
			Sidebar: []NavLink{
				{Label: "Panel", Path: "/admin/dashboard"},
				{Label: "Seguridad", Path: "/seguridad/dashboard"},
			},
		},
	},
	{
		Name:         "seguridad",
		BasePath:     "/seguridad",
		AllowedRoles: NewRoleSet(RoleAdministrator, RoleSecurity),
		Chrome: Chrome{
			Title:   "Seguridad",
			Sidebar: []NavLink{{Label: "Panel", Path: "/seguridad/dashboard"}},
		},
	},
	{
		Name:         "propietario",
		BasePath:     "/propietario",
		AllowedRoles: NewRoleSet(RoleOwner),
		Chrome: Chrome{
			Title:   "Propietario",
			Sidebar: []NavLink{{Label: "Panel", Path: "/propietario/dashboard"}},
		},
	},
	{
		Name:         "inquilino",
		BasePath:     "/inquilino",
		AllowedRoles: NewRoleSet(RoleTenant),
		Chrome: Chrome{
			Title:   "Inquilino",
			Sidebar: []NavLink{{Label: "Panel", Path: "/inquilino/dashboard"}},
		},
	},
	{
		Name:         "empleado",
		BasePath:     "/empleado",
		AllowedRoles: NewRoleSet(RoleEmployee),
		Chrome: Chrome{
			Title:   "Empleado",
			Sidebar: []NavLink{{Label: "Panel", Path: "/empleado/dashboard"}},
		},
	},
}
