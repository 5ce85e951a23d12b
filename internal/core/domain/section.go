package domain

// GuardState is the outcome of evaluating a session against a section.
type GuardState int

const (
	StateResolving GuardState = iota
	StateUnauthenticated
	StateForbidden
	StateAuthorized
)

func (s GuardState) String() string {
	switch s {
	case StateResolving:
		return "resolving"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateForbidden:
		return "forbidden"
	case StateAuthorized:
		return "authorized"
	default:
		return "unknown"
	}
}

// NavLink is a single entry of a section's navigation chrome.
type NavLink struct {
	Label string
	Path  string
}

// Chrome describes the navbar and sidebar wrapped around a section's content.
type Chrome struct {
	Title   string
	Sidebar []NavLink
}

// Section is the static declaration of a protected area.
type Section struct {
	Name         string
	BasePath     string
	AllowedRoles RoleSet
	Chrome       Chrome
}

// DashboardPath is the section's entry page.
func (s Section) DashboardPath() string { return s.BasePath + "/dashboard" }

// Decision is what a guard should do for one evaluation.
type Decision struct {
	State    GuardState
	Redirect string // empty unless State is Unauthenticated or Forbidden
	Err      error  // ErrUnknownRole when the identity's role is outside the enumeration
}
