package auth

import (
	"context"
	"fmt"

	"github.com/alecgard/clubhive/internal/apperr"
)

// BoardLookup answers whether a user holds an approved board membership in a
// club. It is consulted on every call; results are never cached.
type BoardLookup interface {
	IsApprovedBoardMember(ctx context.Context, userID, clubID string) (bool, error)
}

// CanManageClub reports whether u may manage clubID: u is a global admin, or
// u holds an approved board membership in that club.
func CanManageClub(ctx context.Context, u *User, clubID string, boards BoardLookup) (bool, error) {
	if u == nil {
		return false, nil
	}
	if u.IsAdmin() {
		return true, nil
	}
	ok, err := boards.IsApprovedBoardMember(ctx, u.ID, clubID)
	if err != nil {
		return false, fmt.Errorf("checking board membership: %w", err)
	}
	return ok, nil
}

// RequireClubManager returns a Forbidden error carrying msg when u may not
// manage clubID.
func RequireClubManager(ctx context.Context, u *User, clubID string, boards BoardLookup, msg string) error {
	ok, err := CanManageClub(ctx, u, clubID, boards)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Forbidden(msg)
	}
	return nil
}

// RequireAdmin returns a Forbidden error carrying msg unless u is a global
// admin. Board membership never substitutes.
func RequireAdmin(u *User, msg string) error {
	if !u.IsAdmin() {
		return apperr.Forbidden(msg)
	}
	return nil
}
