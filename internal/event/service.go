package event

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alecgard/clubhive/internal/apperr"
	"github.com/alecgard/clubhive/internal/auth"
	"github.com/alecgard/clubhive/internal/club"
)

// Validation errors returned by the Service layer.
var (
	ErrTitleRequired  = apperr.Invalid("title is required")
	ErrClubRequired   = apperr.Invalid("clubId is required")
	ErrClubInvalid    = apperr.Invalid("clubId must be a valid id")
	ErrDateInvalid    = apperr.Invalid("date is required, as RFC 3339, YYYY-MM-DDTHH:MM or YYYY-MM-DD")
	ErrPointsNegative = apperr.Invalid("points must not be negative")
)

// dateLayouts are tried in order when parsing an event date.
var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// Repository is the event persistence. *Store satisfies it.
type Repository interface {
	Create(ctx context.Context, in NewEvent) (*Event, error)
	GetByID(ctx context.Context, id string) (*Event, error)
	ListAll(ctx context.Context) ([]*Event, error)
	ListForUser(ctx context.Context, userID string) ([]*Event, error)
}

// ClubFinder resolves clubs by id.
type ClubFinder interface {
	GetByID(ctx context.Context, id string) (*club.Club, error)
}

// Service is the event store behind the authorization policy.
type Service struct {
	repo   Repository
	clubs  ClubFinder
	boards auth.BoardLookup
}

// NewService creates a new Service.
func NewService(repo Repository, clubs ClubFinder, boards auth.BoardLookup) *Service {
	return &Service{repo: repo, clubs: clubs, boards: boards}
}

// Create validates in and creates the event for its club. The actor must be
// able to manage that club.
func (s *Service) Create(ctx context.Context, actor *auth.User, in CreateEventInput) (*Event, error) {
	ne, err := validateCreate(in)
	if err != nil {
		return nil, err
	}
	if _, err := s.clubs.GetByID(ctx, ne.ClubID); err != nil {
		return nil, err
	}
	if err := auth.RequireClubManager(ctx, actor, ne.ClubID, s.boards,
		"only board members can create events for this club"); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, ne)
}

// Get returns a single event.
func (s *Service) Get(ctx context.Context, id string) (*Event, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns the events actor may see: all of them for admins, otherwise
// those of clubs with an approved membership.
func (s *Service) List(ctx context.Context, actor *auth.User) ([]*Event, error) {
	if actor.IsAdmin() {
		return s.repo.ListAll(ctx)
	}
	return s.repo.ListForUser(ctx, actor.ID)
}

func validateCreate(in CreateEventInput) (NewEvent, error) {
	ne := NewEvent{
		ClubID:      strings.TrimSpace(in.ClubID),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Venue:       in.Venue,
		Points:      DefaultPoints,
	}
	if ne.Title == "" {
		return NewEvent{}, ErrTitleRequired
	}
	if ne.ClubID == "" {
		return NewEvent{}, ErrClubRequired
	}
	if _, err := uuid.Parse(ne.ClubID); err != nil {
		return NewEvent{}, ErrClubInvalid
	}
	date, err := ParseDate(in.Date)
	if err != nil {
		return NewEvent{}, err
	}
	ne.Date = date
	if in.Points != nil {
		switch {
		case *in.Points < 0:
			return NewEvent{}, ErrPointsNegative
		case *in.Points > 0:
			ne.Points = *in.Points
		}
	}
	return ne, nil
}

// ParseDate accepts the date formats clients send for events.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrDateInvalid
}
