package user

import (
	"context"

	"github.com/alecgard/clubhive/internal/auth"
)

// Finder loads users by id. *Store satisfies it.
type Finder interface {
	GetByID(ctx context.Context, id string) (*User, error)
}

// AuthAdapter adapts a Finder to the auth.UserLookup interface.
type AuthAdapter struct {
	store Finder
}

// NewAuthAdapter creates a new AuthAdapter wrapping the given user store.
func NewAuthAdapter(store Finder) *AuthAdapter {
	return &AuthAdapter{store: store}
}

// LookupUser loads the current record of the user a token was issued for.
func (a *AuthAdapter) LookupUser(ctx context.Context, id string) (*auth.User, error) {
	u, err := a.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToAuthUser(u), nil
}

// ToAuthUser converts a stored user into the caller identity used by policy checks.
func ToAuthUser(u *User) *auth.User {
	return &auth.User{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}
}
