package auth

import (
	"errors"
	"time"
)

// Role is a user's authorisation tier. It cannot change after creation.
type Role string

const (
	// RoleHomeowner operates and manages their own devices.
	RoleHomeowner Role = "homeowner"

	// RoleAdmin operates any device and manages user accounts.
	RoleAdmin Role = "admin"
)

// ValidRoles lists every role a user account may hold.
var ValidRoles = []Role{RoleHomeowner, RoleAdmin}

// IsValidRole returns true if r is one of ValidRoles.
func IsValidRole(r Role) bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}

// User is a HomeGuard account, identified by email.
type User struct {
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"` // never serialised
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Sentinel errors for auth operations.
var (
	ErrUserNotFound       = errors.New("auth: user not found")
	ErrUserExists         = errors.New("auth: user already exists")
	ErrInvalidRole        = errors.New("auth: invalid role")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrForbidden          = errors.New("auth: insufficient permissions")
	ErrSelfModification   = errors.New("auth: cannot modify own account in this way")
)
