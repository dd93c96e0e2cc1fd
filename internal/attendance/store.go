package attendance

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alecgard/clubhive/internal/apperr"
	"github.com/alecgard/clubhive/internal/db"
	"github.com/alecgard/clubhive/internal/event"
)

var (
	ErrAlreadyRegistered = apperr.Conflict("already registered for this event")
	ErrNotRegistered     = apperr.NotFound("not registered for this event")
	ErrAttendanceMarked  = apperr.Conflict("cannot unregister after attendance has been marked")
	ErrParticipantAbsent = apperr.NotFound("participant not found")
)

// Store provides database operations for event participations. SetStatus is
// the only code path that changes users.points.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const participationColumns = `p.id, p.user_id, p.event_id, p.status, p.points_awarded, p.created_at, p.updated_at`

func scanParticipation(row pgx.Row, extra ...any) (*Participation, error) {
	var p Participation
	dest := append([]any{&p.ID, &p.UserID, &p.EventID, &p.Status, &p.PointsAwarded, &p.CreatedAt, &p.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &p, nil
}

// Register creates a registered participation for userID.
func (s *Store) Register(ctx context.Context, userID, eventID string) (*Participation, error) {
	p, err := scanParticipation(s.pool.QueryRow(ctx,
		`INSERT INTO event_participations AS p (user_id, event_id, status)
		 VALUES ($1, $2, $3)
		 RETURNING `+participationColumns,
		userID, eventID, StatusRegistered))
	if err != nil {
		switch {
		case db.IsUniqueViolation(err):
			return nil, ErrAlreadyRegistered
		case db.IsForeignKeyViolation(err):
			return nil, apperr.NotFound("event not found")
		}
		return nil, fmt.Errorf("registering for event: %w", err)
	}
	return p, nil
}

// Get returns the participation of userID in eventID.
func (s *Store) Get(ctx context.Context, userID, eventID string) (*Participation, error) {
	p, err := scanParticipation(s.pool.QueryRow(ctx,
		`SELECT `+participationColumns+` FROM event_participations p
		 WHERE p.user_id = $1 AND p.event_id = $2`, userID, eventID))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotRegistered
		}
		return nil, fmt.Errorf("getting participation: %w", err)
	}
	return p, nil
}

// Unregister deletes the participation while it is still registered.
func (s *Store) Unregister(ctx context.Context, userID, eventID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM event_participations
		 WHERE user_id = $1 AND event_id = $2 AND status = $3`,
		userID, eventID, StatusRegistered)
	if err != nil {
		return fmt.Errorf("unregistering from event: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	if _, err := s.Get(ctx, userID, eventID); err != nil {
		return err
	}
	return ErrAttendanceMarked
}

// ListByEvent returns every participation of eventID with user summaries.
func (s *Store) ListByEvent(ctx context.Context, eventID string) ([]*Participation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+participationColumns+`, u.id, u.name, u.email
		 FROM event_participations p JOIN users u ON u.id = p.user_id
		 WHERE p.event_id = $1
		 ORDER BY p.created_at ASC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("listing participants: %w", err)
	}
	defer rows.Close()

	out := []*Participation{}
	for rows.Next() {
		var u UserSummary
		p, err := scanParticipation(rows, &u.ID, &u.Name, &u.Email)
		if err != nil {
			return nil, fmt.Errorf("scanning participation row: %w", err)
		}
		p.User = &u
		out = append(out, p)
	}
	return out, rows.Err()
}

// SetStatus moves the participation of userID in eventID to status and
// applies the point delta to the user in the same transaction. The delta is
// computed from the locked row and the event's current point value.
func (s *Store) SetStatus(ctx context.Context, userID, eventID string, to Status) (*Transition, error) {
	var out *Transition
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		current, err := scanParticipation(tx.QueryRow(ctx,
			`SELECT `+participationColumns+` FROM event_participations p
			 WHERE p.user_id = $1 AND p.event_id = $2
			 FOR UPDATE`, userID, eventID))
		if err != nil {
			if db.IsNoRows(err) {
				return ErrParticipantAbsent
			}
			return fmt.Errorf("locking participation: %w", err)
		}

		var points int
		if err := tx.QueryRow(ctx,
			`SELECT COALESCE(NULLIF(points, 0), $2) FROM events WHERE id = $1`,
			eventID, event.DefaultPoints).Scan(&points); err != nil {
			return fmt.Errorf("reading event points: %w", err)
		}

		delta := PointDelta(current.Status, to, points)
		var balance int
		if err := tx.QueryRow(ctx,
			`UPDATE users SET points = GREATEST(points + $1, 0), updated_at = now()
			 WHERE id = $2
			 RETURNING points`, delta, userID).Scan(&balance); err != nil {
			if db.IsNoRows(err) {
				return apperr.NotFound("user not found")
			}
			return fmt.Errorf("applying points: %w", err)
		}

		awarded := current.PointsAwarded
		if delta != 0 {
			awarded = AwardedFor(to, points)
		}
		updated, err := scanParticipation(tx.QueryRow(ctx,
			`UPDATE event_participations AS p
			 SET status = $1, points_awarded = $2, updated_at = now()
			 WHERE p.id = $3
			 RETURNING `+participationColumns,
			to, awarded, current.ID))
		if err != nil {
			return fmt.Errorf("updating participation: %w", err)
		}

		out = &Transition{Participation: updated, From: current.Status, To: to, Delta: delta, Balance: balance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
