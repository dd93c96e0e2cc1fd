package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/alecgard/clubhive/internal/apperr"
	"github.com/alecgard/clubhive/internal/auth"
	"github.com/alecgard/clubhive/internal/config"
	"github.com/alecgard/clubhive/internal/user"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the site admin and two demo members",
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

// accountStore is the slice of user.Store the seeder needs.
type accountStore interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	Create(ctx context.Context, in user.CreateUserInput) (*user.User, error)
}

// seedAccounts returns the admin from cfg followed by the demo members.
func seedAccounts(cfg config.SeedConfig) []user.CreateUserInput {
	return []user.CreateUserInput{
		{Email: cfg.AdminEmail, Password: cfg.AdminPassword, Name: cfg.AdminName, Role: auth.RoleAdmin},
		{Email: "chad@local.com", Password: "password", Name: "Chad", Role: auth.RoleMember},
		{Email: "amogh@local.com", Password: "password", Name: "Amogh", Role: auth.RoleMember},
	}
}

// seedUsers creates every account that does not exist yet and returns the
// ones it created. Existing accounts are left untouched.
func seedUsers(ctx context.Context, store accountStore, accounts []user.CreateUserInput) ([]*user.User, error) {
	var created []*user.User
	for _, in := range accounts {
		existing, err := store.GetByEmail(ctx, in.Email)
		if err == nil {
			slog.Info("user already exists, skipping", "email", existing.Email)
			continue
		}
		if !errors.Is(err, apperr.ErrNotFound) {
			return created, fmt.Errorf("looking up %s: %w", in.Email, err)
		}

		u, err := store.Create(ctx, in)
		if err != nil {
			return created, fmt.Errorf("creating %s: %w", in.Email, err)
		}
		slog.Info("created user", "email", u.Email, "id", u.ID, "role", u.Role)
		created = append(created, u)
	}
	return created, nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	accounts := seedAccounts(cfg.Seed)
	created, err := seedUsers(ctx, user.NewStore(pool), accounts)
	if err != nil {
		return err
	}

	fmt.Printf("\n=== Users Seeded ===\n")
	fmt.Printf("Created:   %d of %d\n", len(created), len(accounts))
	for _, in := range accounts {
		fmt.Printf("  %-20s %-8s password: %s\n", in.Email, in.Role, in.Password)
	}
	fmt.Printf("\nTry it:\n")
	fmt.Printf("  curl -X POST -d '{\"email\":\"chad@local.com\",\"password\":\"password\"}' http://localhost:8080/api/auth/login\n")

	return nil
}
