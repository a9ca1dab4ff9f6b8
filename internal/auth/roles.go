package auth

import "slices"

// Administrator roles. Viewers read standings and fixtures, admins run the
// matchday, and superadmins may also rewind a jornada or purge a user's bets.
const (
	RoleViewer     = "viewer"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// AllAdminRoles returns all valid admin roles.
func AllAdminRoles() []string {
	return []string{RoleViewer, RoleAdmin, RoleSuperAdmin}
}

// WriteRoles may settle matches, replace odds and change the betting window.
func WriteRoles() []string {
	return []string{RoleAdmin, RoleSuperAdmin}
}

// ResetRoles may undo settled results or delete bets.
func ResetRoles() []string {
	return []string{RoleSuperAdmin}
}

// ValidAdminRole reports whether role is one of AllAdminRoles.
func ValidAdminRole(role string) bool {
	return slices.Contains(AllAdminRoles(), role)
}
