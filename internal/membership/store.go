package membership

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alecgard/clubhive/internal/apperr"
	"github.com/alecgard/clubhive/internal/db"
)

var (
	ErrAlreadyMember      = apperr.Conflict("membership already requested or approved for this club")
	ErrMembershipNotFound = apperr.NotFound("membership not found")
	ErrClubNotFound       = apperr.NotFound("club not found")
	ErrLastBoardMember    = apperr.ConflictCode("last_board_member", "cannot remove the last board member of a club")
)

// Store provides database operations for club memberships.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const membershipColumns = `m.id, m.user_id, m.club_id, m.role, m.role_name, m.status, m.created_at, m.updated_at`

func scanMembership(row pgx.Row, extra ...any) (*Membership, error) {
	var (
		m     Membership
		tier  string
		title string
	)
	dest := append([]any{&m.ID, &m.UserID, &m.ClubID, &tier, &title, &m.Status, &m.CreatedAt, &m.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	role, err := NewRole(Tier(tier), Title(title))
	if err != nil {
		return nil, fmt.Errorf("membership %s has invalid role %s/%s", m.ID, tier, title)
	}
	m.Role = role
	return &m, nil
}

// RequestJoin creates a pending membership. A rejected row is reset to
// pending with the default role; any other existing row is a conflict.
func (s *Store) RequestJoin(ctx context.Context, userID, clubID string) (*Membership, error) {
	def := DefaultRole()
	m, err := scanMembership(s.pool.QueryRow(ctx,
		`INSERT INTO club_memberships AS m (user_id, club_id, role, role_name, status)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, club_id) DO UPDATE
		   SET status = EXCLUDED.status, role = EXCLUDED.role, role_name = EXCLUDED.role_name, updated_at = now()
		   WHERE m.status = $6
		 RETURNING `+membershipColumns,
		userID, clubID, def.Tier(), def.Title(), StatusPending, StatusRejected,
	))
	if err != nil {
		switch {
		case db.IsNoRows(err):
			return nil, ErrAlreadyMember
		case db.IsForeignKeyViolation(err):
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("requesting membership: %w", err)
	}
	return m, nil
}

// Get returns the membership of userID in clubID.
func (s *Store) Get(ctx context.Context, userID, clubID string) (*Membership, error) {
	m, err := scanMembership(s.pool.QueryRow(ctx,
		`SELECT `+membershipColumns+` FROM club_memberships m
		 WHERE m.user_id = $1 AND m.club_id = $2`, userID, clubID))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrMembershipNotFound
		}
		return nil, fmt.Errorf("getting membership: %w", err)
	}
	return m, nil
}

// UpdateStatus sets the status of an existing membership. With guardLastBoard
// set, taking away the only approved board seat of the club fails with
// ErrLastBoardMember.
func (s *Store) UpdateStatus(ctx context.Context, userID, clubID string, status Status, guardLastBoard bool) (*Membership, error) {
	var out *Membership
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		current, err := lockMembership(ctx, tx, userID, clubID)
		if err != nil {
			return err
		}
		if guardLastBoard && status != StatusApproved && current.HoldsBoardSeat() {
			if err := ensureOtherBoardSeat(ctx, tx, userID, clubID); err != nil {
				return err
			}
		}
		out, err = scanMembership(tx.QueryRow(ctx,
			`UPDATE club_memberships AS m SET status = $1, updated_at = now()
			 WHERE m.user_id = $2 AND m.club_id = $3
			 RETURNING `+membershipColumns,
			status, userID, clubID))
		if err != nil {
			return fmt.Errorf("updating membership status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpsertRole sets the role of userID in clubID and approves the membership,
// creating it when absent.
func (s *Store) UpsertRole(ctx context.Context, userID, clubID string, role Role) (*Membership, error) {
	m, err := scanMembership(s.pool.QueryRow(ctx,
		`INSERT INTO club_memberships AS m (user_id, club_id, role, role_name, status)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, club_id) DO UPDATE
		   SET role = EXCLUDED.role, role_name = EXCLUDED.role_name, status = EXCLUDED.status, updated_at = now()
		 RETURNING `+membershipColumns,
		userID, clubID, role.Tier(), role.Title(), StatusApproved,
	))
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, apperr.NotFound("user or club not found")
		}
		return nil, fmt.Errorf("assigning club role: %w", err)
	}
	return m, nil
}

// Delete removes the membership of userID in clubID. guardLastBoard behaves
// as in UpdateStatus.
func (s *Store) Delete(ctx context.Context, userID, clubID string, guardLastBoard bool) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		current, err := lockMembership(ctx, tx, userID, clubID)
		if err != nil {
			return err
		}
		if guardLastBoard && current.HoldsBoardSeat() {
			if err := ensureOtherBoardSeat(ctx, tx, userID, clubID); err != nil {
				return err
			}
		}
		if _, err := tx.Exec(ctx,
			`DELETE FROM club_memberships WHERE user_id = $1 AND club_id = $2`, userID, clubID); err != nil {
			return fmt.Errorf("deleting membership: %w", err)
		}
		return nil
	})
}

// lockMembership locks the club row and then the membership row. Holding the
// club lock serializes board seat changes within one club.
func lockMembership(ctx context.Context, tx pgx.Tx, userID, clubID string) (*Membership, error) {
	var id string
	if err := tx.QueryRow(ctx, `SELECT id FROM clubs WHERE id = $1 FOR UPDATE`, clubID).Scan(&id); err != nil {
		if db.IsNoRows(err) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("locking club: %w", err)
	}
	m, err := scanMembership(tx.QueryRow(ctx,
		`SELECT `+membershipColumns+` FROM club_memberships m
		 WHERE m.user_id = $1 AND m.club_id = $2
		 FOR UPDATE`, userID, clubID))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrMembershipNotFound
		}
		return nil, fmt.Errorf("locking membership: %w", err)
	}
	return m, nil
}

func ensureOtherBoardSeat(ctx context.Context, tx pgx.Tx, userID, clubID string) error {
	var others int
	err := tx.QueryRow(ctx,
		`SELECT count(*) FROM club_memberships
		 WHERE club_id = $1 AND user_id <> $2 AND role = $3 AND status = $4`,
		clubID, userID, TierBoard, StatusApproved,
	).Scan(&others)
	if err != nil {
		return fmt.Errorf("counting board members: %w", err)
	}
	if others == 0 {
		return ErrLastBoardMember
	}
	return nil
}

// ListByUser returns the memberships of userID with any of the given
// statuses, newest first. No statuses means all of them.
func (s *Store) ListByUser(ctx context.Context, userID string, statuses ...Status) ([]*Membership, error) {
	query := `SELECT ` + membershipColumns + `, c.id, c.name, c.description
		FROM club_memberships m JOIN clubs c ON c.id = m.club_id
		WHERE m.user_id = $1`
	args := []any{userID}
	if len(statuses) > 0 {
		names := make([]string, len(statuses))
		for i, st := range statuses {
			names[i] = string(st)
		}
		query += ` AND m.status = ANY($2)`
		args = append(args, names)
	}
	query += ` ORDER BY m.created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing memberships for user: %w", err)
	}
	defer rows.Close()

	out := []*Membership{}
	for rows.Next() {
		var c ClubSummary
		m, err := scanMembership(rows, &c.ID, &c.Name, &c.Description)
		if err != nil {
			return nil, fmt.Errorf("scanning membership row: %w", err)
		}
		m.Club = &c
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListByClub returns the memberships of clubID in the given status, oldest
// first, with the member's summary attached.
func (s *Store) ListByClub(ctx context.Context, clubID string, status Status) ([]*Membership, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+membershipColumns+`, u.id, u.name, u.email
		 FROM club_memberships m JOIN users u ON u.id = m.user_id
		 WHERE m.club_id = $1 AND m.status = $2
		 ORDER BY m.created_at ASC`, clubID, status)
	if err != nil {
		return nil, fmt.Errorf("listing memberships for club: %w", err)
	}
	defer rows.Close()

	out := []*Membership{}
	for rows.Next() {
		var u UserSummary
		m, err := scanMembership(rows, &u.ID, &u.Name, &u.Email)
		if err != nil {
			return nil, fmt.Errorf("scanning membership row: %w", err)
		}
		m.User = &u
		out = append(out, m)
	}
	return out, rows.Err()
}

// IsApprovedBoardMember implements auth.BoardLookup.
func (s *Store) IsApprovedBoardMember(ctx context.Context, userID, clubID string) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM club_memberships
		   WHERE user_id = $1 AND club_id = $2 AND role = $3 AND status = $4
		 )`, userID, clubID, TierBoard, StatusApproved,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("checking board membership: %w", err)
	}
	return ok, nil
}
