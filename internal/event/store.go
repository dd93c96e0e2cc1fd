package event

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alecgard/clubhive/internal/apperr"
	"github.com/alecgard/clubhive/internal/db"
)

// ErrEventNotFound is returned when no event has the requested id.
var ErrEventNotFound = apperr.NotFound("event not found")

// Store provides database operations for events.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const eventColumns = `e.id, e.club_id, e.title, e.description, e.venue, e.date, e.points, e.created_at`

func scanEvent(row pgx.Row, withClub bool) (*Event, error) {
	var e Event
	dest := []any{&e.ID, &e.ClubID, &e.Title, &e.Description, &e.Venue, &e.Date, &e.Points, &e.CreatedAt}
	var c ClubSummary
	if withClub {
		dest = append(dest, &c.ID, &c.Name)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if withClub {
		e.Club = &c
	}
	return &e, nil
}

// Create inserts a new event.
func (s *Store) Create(ctx context.Context, in NewEvent) (*Event, error) {
	e, err := scanEvent(s.pool.QueryRow(ctx,
		`INSERT INTO events AS e (club_id, title, description, venue, date, points)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+eventColumns,
		in.ClubID, in.Title, in.Description, in.Venue, in.Date, in.Points,
	), false)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, apperr.NotFound("club not found")
		}
		return nil, fmt.Errorf("creating event: %w", err)
	}
	return e, nil
}

// GetByID retrieves a single event with its club.
func (s *Store) GetByID(ctx context.Context, id string) (*Event, error) {
	e, err := scanEvent(s.pool.QueryRow(ctx,
		`SELECT `+eventColumns+`, c.id, c.name
		 FROM events e JOIN clubs c ON c.id = e.club_id
		 WHERE e.id = $1`, id), true)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("getting event: %w", err)
	}
	return e, nil
}

// ListAll returns every event ordered by date.
func (s *Store) ListAll(ctx context.Context) ([]*Event, error) {
	return s.list(ctx,
		`SELECT `+eventColumns+`, c.id, c.name
		 FROM events e JOIN clubs c ON c.id = e.club_id
		 ORDER BY e.date ASC`)
}

// ListForUser returns the events of clubs where userID holds an approved
// membership.
func (s *Store) ListForUser(ctx context.Context, userID string) ([]*Event, error) {
	return s.list(ctx,
		`SELECT `+eventColumns+`, c.id, c.name
		 FROM events e
		 JOIN clubs c ON c.id = e.club_id
		 JOIN club_memberships m ON m.club_id = e.club_id
		 WHERE m.user_id = $1 AND m.status = 'approved'
		 ORDER BY e.date ASC`, userID)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]*Event, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	events := []*Event{}
	for rows.Next() {
		e, err := scanEvent(rows, true)
		if err != nil {
			return nil, fmt.Errorf("scanning event row: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
