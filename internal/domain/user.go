package domain

import "time"

// Role is the authority level of a user.
type Role string

const (
	RoleRegular Role = "regular"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleRegular || r == RoleAdmin
}

// RoleFromAdminFlag maps the legacy is_admin flag onto a Role.
func RoleFromAdminFlag(isAdmin bool) Role {
	if isAdmin {
		return RoleAdmin
	}
	return RoleRegular
}

// User represents an account of the system.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Principal is the authenticated identity making a request.
type Principal struct {
	ID    int64
	Email string
	Role  Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// PrincipalOf derives the request principal from a stored user.
func PrincipalOf(u User) Principal {
	return Principal{ID: u.ID, Email: u.Email, Role: u.Role}
}

// UserPatch carries the fields of a partial user update. Nil fields are left untouched.
type UserPatch struct {
	Email    *string
	Password *string
	Role     *Role
}
