package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/alecgard/clubhive/internal/apperr"
	"github.com/alecgard/clubhive/internal/auth"
	"github.com/alecgard/clubhive/internal/db"
)

const userColumns = `id, email, password_hash, name, role, points, created_at`

// Store provides database operations for users.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new user store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func scanUser(scan func(dest ...any) error) (*User, error) {
	u := &User{}
	if err := scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.Points, &u.CreatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

// NormalizeEmail lowercases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts a new user with a bcrypt-hashed password. A taken email
// yields a Conflict error.
func (s *Store) Create(ctx context.Context, in CreateUserInput) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	role := in.Role
	if role == "" {
		role = auth.RoleMember
	}

	u, err := scanUser(func(dest ...any) error {
		return s.pool.QueryRow(ctx,
			`INSERT INTO users (email, password_hash, name, role)
			 VALUES ($1, $2, $3, $4)
			 RETURNING `+userColumns,
			NormalizeEmail(in.Email), string(hash), strings.TrimSpace(in.Name), role,
		).Scan(dest...)
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperr.Conflict("email already registered")
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return u, nil
}

// GetByID retrieves a user by primary key.
func (s *Store) GetByID(ctx context.Context, id string) (*User, error) {
	u, err := scanUser(func(dest ...any) error {
		return s.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE id = $1`, id,
		).Scan(dest...)
	})
	if err != nil {
		if db.IsNoRows(err) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("getting user by id: %w", err)
	}
	return u, nil
}

// GetByEmail retrieves a user by email address.
func (s *Store) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(func(dest ...any) error {
		return s.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE email = $1`, NormalizeEmail(email),
		).Scan(dest...)
	})
	if err != nil {
		if db.IsNoRows(err) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return u, nil
}

// List returns all users ordered by created_at DESC.
func (s *Store) List(ctx context.Context) ([]*User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	users := []*User{}
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateRole sets the global role of a user.
func (s *Store) UpdateRole(ctx context.Context, id, role string) (*User, error) {
	u, err := scanUser(func(dest ...any) error {
		return s.pool.QueryRow(ctx,
			`UPDATE users SET role = $1, updated_at = now() WHERE id = $2
			 RETURNING `+userColumns,
			role, id,
		).Scan(dest...)
	})
	if err != nil {
		if db.IsNoRows(err) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("updating user role: %w", err)
	}
	return u, nil
}

// Leaderboard returns the top limit non-admin users by points.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]Standing, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, email, points FROM users
		 WHERE role <> $1
		 ORDER BY points DESC, name ASC
		 LIMIT $2`, auth.RoleAdmin, limit)
	if err != nil {
		return nil, fmt.Errorf("querying leaderboard: %w", err)
	}
	defer rows.Close()

	board := []Standing{}
	for rows.Next() {
		var st Standing
		if err := rows.Scan(&st.ID, &st.Name, &st.Email, &st.Points); err != nil {
			return nil, fmt.Errorf("scanning leaderboard row: %w", err)
		}
		board = append(board, st)
	}
	return board, rows.Err()
}

// CheckPassword verifies a plaintext password against the user's stored hash.
func CheckPassword(u *User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
