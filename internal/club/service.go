package club

import (
	"context"
	"strings"

	"github.com/alecgard/clubhive/internal/apperr"
)

// Validation errors returned by the Service layer.
var (
	ErrNameRequired = apperr.Invalid("name is required")
	ErrNameTaken    = apperr.Conflict("a club with that name already exists")
)

// Repository is the persistence the Service needs. *Store satisfies it.
type Repository interface {
	Create(ctx context.Context, input CreateClubInput) (*Club, error)
	GetByID(ctx context.Context, id string) (*Club, error)
	List(ctx context.Context) ([]*Club, error)
	Update(ctx context.Context, id string, input UpdateClubInput) (*Club, error)
	Delete(ctx context.Context, id string) error
}

// Service provides validated business logic over the club Repository.
// Admin gating happens at the router.
type Service struct {
	repo Repository
}

// NewService creates a new Service wrapping the given Repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates the input and creates the club.
func (s *Service) Create(ctx context.Context, input CreateClubInput) (*Club, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, ErrNameRequired
	}
	return s.repo.Create(ctx, input)
}

// GetByID retrieves a club by its ID.
func (s *Service) GetByID(ctx context.Context, id string) (*Club, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns every club.
func (s *Service) List(ctx context.Context) ([]*Club, error) {
	return s.repo.List(ctx)
}

// Update validates the input and applies the update.
func (s *Service) Update(ctx context.Context, id string, input UpdateClubInput) (*Club, error) {
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		input.Name = &name
	}
	return s.repo.Update(ctx, id, input)
}

// Delete removes a club and everything it owns.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
