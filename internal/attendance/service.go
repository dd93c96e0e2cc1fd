package attendance

import (
	"context"
	"errors"
	"strings"

	"github.com/alecgard/clubhive/internal/apperr"
	"github.com/alecgard/clubhive/internal/auth"
	"github.com/alecgard/clubhive/internal/event"
)

// Repository is the participation persistence. *Store satisfies it.
type Repository interface {
	Register(ctx context.Context, userID, eventID string) (*Participation, error)
	Get(ctx context.Context, userID, eventID string) (*Participation, error)
	Unregister(ctx context.Context, userID, eventID string) error
	ListByEvent(ctx context.Context, eventID string) ([]*Participation, error)
	SetStatus(ctx context.Context, userID, eventID string, to Status) (*Transition, error)
}

// EventFinder resolves events by id.
type EventFinder interface {
	GetByID(ctx context.Context, id string) (*event.Event, error)
}

// Service runs the attendance ledger behind the authorization policy.
type Service struct {
	repo   Repository
	events EventFinder
	boards auth.BoardLookup
}

// NewService creates a new Service.
func NewService(repo Repository, events EventFinder, boards auth.BoardLookup) *Service {
	return &Service{repo: repo, events: events, boards: boards}
}

// Register signs actor up for eventID.
func (s *Service) Register(ctx context.Context, actor *auth.User, eventID string) (*Participation, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repo.Register(ctx, actor.ID, eventID)
}

// Unregister withdraws actor from eventID while attendance is unmarked.
func (s *Service) Unregister(ctx context.Context, actor *auth.User, eventID string) error {
	return s.repo.Unregister(ctx, actor.ID, eventID)
}

// MyRegistration reports actor's own status for eventID.
func (s *Service) MyRegistration(ctx context.Context, actor *auth.User, eventID string) (*Registration, error) {
	p, err := s.repo.Get(ctx, actor.ID, eventID)
	if errors.Is(err, apperr.ErrNotFound) {
		return &Registration{}, nil
	}
	if err != nil {
		return nil, err
	}
	st := p.Status
	return &Registration{Registered: true, Status: &st}, nil
}

// Participants returns the full roster of eventID.
func (s *Service) Participants(ctx context.Context, actor *auth.User, eventID string) ([]*Participation, error) {
	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireClubManager(ctx, actor, ev.ClubID, s.boards,
		"only board members can view participants"); err != nil {
		return nil, err
	}
	return s.repo.ListByEvent(ctx, eventID)
}

// MarkAttendance sets the status of userID at eventID and settles points.
func (s *Service) MarkAttendance(ctx context.Context, actor *auth.User, eventID, userID, status string) (*Transition, error) {
	to, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperr.Invalid("userId is required")
	}
	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireClubManager(ctx, actor, ev.ClubID, s.boards,
		"only board members can mark attendance"); err != nil {
		return nil, err
	}
	t, err := s.repo.SetStatus(ctx, userID, eventID, to)
	if err != nil {
		return nil, err
	}
	t.ClubID = ev.ClubID
	return t, nil
}
