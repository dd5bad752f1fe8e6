package domain

import "slices"

// Permission catalog. Roles may only grant names from this list.
const (
	PermReadPolls   = "polls:read"
	PermAddPolls    = "polls:add"
	PermUpdatePolls = "polls:update"
	PermDeletePolls = "polls:delete"

	PermReadQuestions   = "questions:read"
	PermAddQuestions    = "questions:add"
	PermUpdateQuestions = "questions:update"

	PermReadUsers   = "users:read"
	PermAddUsers    = "users:add"
	PermUpdateUsers = "users:update"

	PermReadRoles   = "roles:read"
	PermAddRoles    = "roles:add"
	PermUpdateRoles = "roles:update"

	PermReadResults = "results:read"
	PermAddVotes    = "votes:add"
)

var allPermissions = []string{
	PermReadPolls, PermAddPolls, PermUpdatePolls, PermDeletePolls,
	PermReadQuestions, PermAddQuestions, PermUpdateQuestions,
	PermReadUsers, PermAddUsers, PermUpdateUsers,
	PermReadRoles, PermAddRoles, PermUpdateRoles,
	PermReadResults, PermAddVotes,
}

// AllPermissions returns a copy of the catalog.
func AllPermissions() []string { return slices.Clone(allPermissions) }

// IsKnownPermission reports whether name is in the catalog.
func IsKnownPermission(name string) bool { return slices.Contains(allPermissions, name) }

const (
	RoleAdmin  = "Admin"
	RoleMember = "Member"
)

// DefaultRoles are created by bootstrap when no seed file overrides them.
func DefaultRoles() []RoleDefinition {
	return []RoleDefinition{
		{Name: RoleAdmin, Permissions: AllPermissions()},
		{Name: RoleMember, Permissions: []string{PermReadPolls, PermAddVotes, PermReadResults}, Default: true},
	}
}
