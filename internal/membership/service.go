package membership

import (
	"context"
	"errors"

	"github.com/alecgard/clubhive/internal/apperr"
	"github.com/alecgard/clubhive/internal/auth"
	"github.com/alecgard/clubhive/internal/club"
	"github.com/alecgard/clubhive/internal/user"
)

// Repository is the ledger persistence. *Store satisfies it.
type Repository interface {
	auth.BoardLookup
	RequestJoin(ctx context.Context, userID, clubID string) (*Membership, error)
	Get(ctx context.Context, userID, clubID string) (*Membership, error)
	UpdateStatus(ctx context.Context, userID, clubID string, status Status, guardLastBoard bool) (*Membership, error)
	UpsertRole(ctx context.Context, userID, clubID string, role Role) (*Membership, error)
	Delete(ctx context.Context, userID, clubID string, guardLastBoard bool) error
	ListByUser(ctx context.Context, userID string, statuses ...Status) ([]*Membership, error)
	ListByClub(ctx context.Context, clubID string, status Status) ([]*Membership, error)
}

// ClubFinder resolves clubs by id.
type ClubFinder interface {
	GetByID(ctx context.Context, id string) (*club.Club, error)
}

// UserFinder resolves users by id.
type UserFinder interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

// Service applies the authorization policy in front of every ledger change.
type Service struct {
	repo  Repository
	clubs ClubFinder
	users UserFinder
}

// NewService creates a new Service.
func NewService(repo Repository, clubs ClubFinder, users UserFinder) *Service {
	return &Service{repo: repo, clubs: clubs, users: users}
}

// Decision is the outcome of a Decide call.
type Decision struct {
	Membership *Membership
	Previous   Status
}

// RequestJoin files a pending join request for actor.
func (s *Service) RequestJoin(ctx context.Context, actor *auth.User, clubID string) (*Membership, error) {
	if _, err := s.clubs.GetByID(ctx, clubID); err != nil {
		return nil, err
	}
	return s.repo.RequestJoin(ctx, actor.ID, clubID)
}

// Decide approves or rejects the membership of userID in clubID. Calling it
// again with the same status leaves the row unchanged.
func (s *Service) Decide(ctx context.Context, actor *auth.User, clubID, userID string, status Status) (*Decision, error) {
	if status != StatusApproved && status != StatusRejected {
		return nil, apperr.Invalid(`status must be "approved" or "rejected"`)
	}
	if err := auth.RequireClubManager(ctx, actor, clubID, s.repo,
		"only board members can manage memberships for this club"); err != nil {
		return nil, err
	}
	current, err := s.repo.Get(ctx, userID, clubID)
	if err != nil {
		return nil, err
	}
	m, err := s.repo.UpdateStatus(ctx, userID, clubID, status, !actor.IsAdmin())
	if err != nil {
		return nil, err
	}
	return &Decision{Membership: m, Previous: current.Status}, nil
}

// AssignRole sets the tier and title of userID in clubID, approving or
// creating the membership. An empty title keeps the current one when it is
// valid for tier, and falls back to the tier default otherwise.
func (s *Service) AssignRole(ctx context.Context, actor *auth.User, clubID, userID, tier, title string) (*Membership, error) {
	if err := auth.RequireAdmin(actor, "only admins can assign roles"); err != nil {
		return nil, err
	}
	t, err := ParseTier(tier)
	if err != nil {
		return nil, err
	}

	var role Role
	if title != "" {
		if role, err = NewRole(t, Title(title)); err != nil {
			return nil, err
		}
	}

	if _, err := s.clubs.GetByID(ctx, clubID); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	if title == "" {
		current, err := s.repo.Get(ctx, userID, clubID)
		switch {
		case err == nil:
			role, err = current.Role.WithTier(t)
			if err != nil {
				return nil, err
			}
		case errors.Is(err, apperr.ErrNotFound):
			role, _ = NewRole(t, DefaultTitle(t))
		default:
			return nil, err
		}
	}

	return s.repo.UpsertRole(ctx, userID, clubID, role)
}

// Remove deletes the membership of userID in clubID. Non-admins may not
// remove the last approved board member.
func (s *Service) Remove(ctx context.Context, actor *auth.User, clubID, userID string) error {
	if err := auth.RequireClubManager(ctx, actor, clubID, s.repo,
		"not authorized to remove members"); err != nil {
		return err
	}
	return s.repo.Delete(ctx, userID, clubID, !actor.IsAdmin())
}

// ListMine returns actor's pending and approved memberships, newest first.
func (s *Service) ListMine(ctx context.Context, actor *auth.User) ([]*Membership, error) {
	return s.repo.ListByUser(ctx, actor.ID, StatusPending, StatusApproved)
}

// ListForUser returns every membership of userID. Only the user or an admin
// may look.
func (s *Service) ListForUser(ctx context.Context, actor *auth.User, userID string) ([]*Membership, error) {
	if actor == nil || (actor.ID != userID && !actor.IsAdmin()) {
		return nil, apperr.Forbidden("you can only view your own memberships")
	}
	return s.repo.ListByUser(ctx, userID)
}

// ListMembers returns the approved members of clubID.
func (s *Service) ListMembers(ctx context.Context, actor *auth.User, clubID string) ([]*Membership, error) {
	if err := auth.RequireClubManager(ctx, actor, clubID, s.repo,
		"not authorized to view members"); err != nil {
		return nil, err
	}
	return s.repo.ListByClub(ctx, clubID, StatusApproved)
}

// ListPending returns the open join requests of clubID.
func (s *Service) ListPending(ctx context.Context, actor *auth.User, clubID string) ([]*Membership, error) {
	if err := auth.RequireClubManager(ctx, actor, clubID, s.repo,
		"not a board member for this club"); err != nil {
		return nil, err
	}
	return s.repo.ListByClub(ctx, clubID, StatusPending)
}

// CanManage reports whether actor may manage clubID.
func (s *Service) CanManage(ctx context.Context, actor *auth.User, clubID string) (bool, error) {
	return auth.CanManageClub(ctx, actor, clubID, s.repo)
}
