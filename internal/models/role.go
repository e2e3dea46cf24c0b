package models

import "fmt"

// Role is the closed set of portal roles. Navigation, menus, and the
// role-gated router switch exhaustively over these values.
type Role string

const (
	RoleStudent   Role = "student"
	RoleAdmin     Role = "admin"
	RoleRegistrar Role = "registrar"
)

// ParseRole validates a role string coming from the upstream API.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleStudent, RoleAdmin, RoleRegistrar:
		return Role(raw), nil
	}
	return "", fmt.Errorf("unknown role %q", raw)
}

// DashboardPath returns the landing page for a role. Unmatched paths and
// post-login redirects always resolve through this table.
func (r Role) DashboardPath() string {
	switch r {
	case RoleAdmin:
		return "/admin/dashboard"
	case RoleRegistrar:
		return "/registrar/dashboard"
	case RoleStudent:
		return "/student/dashboard"
	}
	return "/login"
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}
