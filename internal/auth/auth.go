package auth

import (
	"context"
)

// Global roles.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
	// RoleClubHead is accepted for compatibility with older accounts. It grants
	// nothing beyond RoleMember when authorizing club operations.
	RoleClubHead = "club_head"
)

// ValidRole reports whether role is one of the global roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleMember, RoleClubHead:
		return true
	}
	return false
}

// User represents an authenticated caller.
type User struct {
	ID    string
	Email string
	Name  string
	Role  string
}

// IsAdmin returns true if the user has the global admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// UserLookup resolves a user id carried by a token to the current user record.
type UserLookup interface {
	LookupUser(ctx context.Context, id string) (*User, error)
}
