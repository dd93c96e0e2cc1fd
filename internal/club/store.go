package club

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alecgard/clubhive/internal/apperr"
	"github.com/alecgard/clubhive/internal/db"
)

// Store provides database operations for clubs.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const clubColumns = `id, name, description, faculty_advisor, category, created_at, updated_at`

var errClubNotFound = apperr.NotFound("club not found")

func scanClub(row pgx.Row) (*Club, error) {
	var c Club
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.FacultyAdvisor, &c.Category, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new club and returns the full row.
func (s *Store) Create(ctx context.Context, input CreateClubInput) (*Club, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO clubs (name, description, faculty_advisor, category)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+clubColumns,
		input.Name, input.Description, input.FacultyAdvisor, input.Category,
	)
	c, err := scanClub(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrNameTaken
		}
		return nil, fmt.Errorf("creating club: %w", err)
	}
	return c, nil
}

// GetByID retrieves a single club.
func (s *Store) GetByID(ctx context.Context, id string) (*Club, error) {
	c, err := scanClub(s.pool.QueryRow(ctx,
		`SELECT `+clubColumns+` FROM clubs WHERE id = $1`, id))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, errClubNotFound
		}
		return nil, fmt.Errorf("getting club: %w", err)
	}
	return c, nil
}

// GetByName retrieves a club by its unique name.
func (s *Store) GetByName(ctx context.Context, name string) (*Club, error) {
	c, err := scanClub(s.pool.QueryRow(ctx,
		`SELECT `+clubColumns+` FROM clubs WHERE name = $1`, name))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, errClubNotFound
		}
		return nil, fmt.Errorf("getting club by name: %w", err)
	}
	return c, nil
}

// List returns all clubs ordered by name.
func (s *Store) List(ctx context.Context) ([]*Club, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+clubColumns+` FROM clubs ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing clubs: %w", err)
	}
	defer rows.Close()

	clubs := []*Club{}
	for rows.Next() {
		c, err := scanClub(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning club row: %w", err)
		}
		clubs = append(clubs, c)
	}
	return clubs, rows.Err()
}

// Update applies a partial update to a club and returns the updated row.
func (s *Store) Update(ctx context.Context, id string, input UpdateClubInput) (*Club, error) {
	setClauses := []string{}
	args := []interface{}{}
	argIdx := 1

	if input.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argIdx))
		args = append(args, *input.Name)
		argIdx++
	}
	if input.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", argIdx))
		args = append(args, *input.Description)
		argIdx++
	}
	if input.FacultyAdvisor != nil {
		setClauses = append(setClauses, fmt.Sprintf("faculty_advisor = $%d", argIdx))
		args = append(args, *input.FacultyAdvisor)
		argIdx++
	}
	if input.Category != nil {
		setClauses = append(setClauses, fmt.Sprintf("category = $%d", argIdx))
		args = append(args, *input.Category)
		argIdx++
	}

	if len(setClauses) == 0 {
		return s.GetByID(ctx, id)
	}

	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", argIdx))
	args = append(args, time.Now().UTC())
	argIdx++

	args = append(args, id)

	query := fmt.Sprintf(`UPDATE clubs SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), argIdx, clubColumns)

	c, err := scanClub(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		switch {
		case db.IsNoRows(err):
			return nil, errClubNotFound
		case db.IsUniqueViolation(err):
			return nil, ErrNameTaken
		}
		return nil, fmt.Errorf("updating club: %w", err)
	}
	return c, nil
}

// Delete removes a club. Memberships and events go with it through ON DELETE CASCADE.
func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM clubs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting club: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errClubNotFound
	}
	return nil
}
