package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/alecgard/clubhive/internal/auth"
	"github.com/alecgard/clubhive/internal/club"
	"github.com/alecgard/clubhive/internal/config"
	"github.com/alecgard/clubhive/internal/membership"
	"github.com/alecgard/clubhive/internal/user"
)

var promoteCmd = &cobra.Command{
	Use:   "promote <email> <club name> [board|member] [roleName]",
	Short: "Assign a club role to a user by email and club name",
	Long: "Approves the user's membership in the named club with the given tier (default board) " +
		"and title. Without a title the current one is kept when valid for the tier.",
	Args: cobra.RangeArgs(2, 4),
	RunE: runPromote,
}

func init() {
	rootCmd.AddCommand(promoteCmd)
}

// promoteRequest is the parsed promote command line.
type promoteRequest struct {
	Email    string
	ClubName string
	Tier     string
	Title    string
}

func parsePromoteArgs(args []string) promoteRequest {
	req := promoteRequest{Email: args[0], ClubName: args[1], Tier: string(membership.TierBoard)}
	if len(args) > 2 {
		req.Tier = args[2]
	}
	if len(args) > 3 {
		req.Title = args[3]
	}
	return req
}

type userByEmail interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}

type clubByName interface {
	GetByName(ctx context.Context, name string) (*club.Club, error)
}

type roleAssigner interface {
	AssignRole(ctx context.Context, actor *auth.User, clubID, userID, tier, title string) (*membership.Membership, error)
}

// operator is the admin identity the CLI acts as.
var operator = &auth.User{ID: "cli", Name: "clubhive cli", Role: auth.RoleAdmin}

func promote(ctx context.Context, users userByEmail, clubs clubByName, roles roleAssigner, req promoteRequest) (*membership.Membership, error) {
	u, err := users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("finding user %s: %w", req.Email, err)
	}
	c, err := clubs.GetByName(ctx, req.ClubName)
	if err != nil {
		return nil, fmt.Errorf("finding club %q: %w", req.ClubName, err)
	}
	return roles.AssignRole(ctx, operator, c.ID, u.ID, req.Tier, req.Title)
}

func runPromote(cmd *cobra.Command, args []string) error {
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

	users := user.NewStore(pool)
	clubs := club.NewStore(pool)
	service := membership.NewService(membership.NewStore(pool), clubs, users)

	req := parsePromoteArgs(args)
	m, err := promote(ctx, users, clubs, service, req)
	if err != nil {
		return err
	}

	fmt.Printf("%s is now %s (%s) of %s\n", req.Email, m.Role.Title(), m.Role.Tier(), req.ClubName)
	return nil
}
