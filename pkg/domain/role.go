package domain

import dErrors "eventhub/pkg/domain-errors"

// Role is the actor's resolved role. The enumeration is part of the wire
// contract and must stay verbatim.
type Role string

const (
	RoleStudent      Role = "student"
	RoleCollegeAdmin Role = "college-admin"
	RoleSuperAdmin   Role = "super-admin"
)

// validRoles is the single source of truth for supported roles.
var validRoles = map[Role]bool{
	RoleStudent:      true,
	RoleCollegeAdmin: true,
	RoleSuperAdmin:   true,
}

// ParseRole constructs a Role from external input.
//
// Errors: CodeValidation when the value is empty or unsupported.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "role cannot be empty")
	}
	r := Role(s)
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid role")
	}
	return r, nil
}

// IsValid checks the role against the supported enumeration.
func (r Role) IsValid() bool {
	return validRoles[r]
}

// IsAdmin reports whether the role carries administrative privileges.
func (r Role) IsAdmin() bool {
	return r == RoleCollegeAdmin || r == RoleSuperAdmin
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// Actor is the resolved, trusted identity performing an operation. Every
// core operation receives it explicitly; nothing is read from ambient
// process state.
type Actor struct {
	UserID UserID `json:"userId"`
	Role   Role   `json:"role"`
}

// IsZero reports whether no actor has been resolved.
func (a Actor) IsZero() bool {
	return a.UserID.IsNil() && a.Role == ""
}
