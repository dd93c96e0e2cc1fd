package api

import (
	"context"
	"net/http"
	"time"

	"github.com/alecgard/clubhive/internal/activity"
	"github.com/alecgard/clubhive/internal/attendance"
	"github.com/alecgard/clubhive/internal/auth"
	"github.com/alecgard/clubhive/internal/club"
	"github.com/alecgard/clubhive/internal/event"
	"github.com/alecgard/clubhive/internal/membership"
	"github.com/alecgard/clubhive/internal/metrics"
	"github.com/alecgard/clubhive/internal/ratelimit"
	"github.com/alecgard/clubhive/internal/user"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// UserStore is the account persistence the handlers need. *user.Store
// satisfies it.
type UserStore interface {
	Create(ctx context.Context, in user.CreateUserInput) (*user.User, error)
	GetByID(ctx context.Context, id string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	List(ctx context.Context) ([]*user.User, error)
	UpdateRole(ctx context.Context, id, role string) (*user.User, error)
	Leaderboard(ctx context.Context, limit int) ([]user.Standing, error)
}

// ActivityReader pages through a club's activity log. *activity.Store
// satisfies it.
type ActivityReader interface {
	ListByClub(ctx context.Context, q activity.Query) ([]*activity.Entry, string, error)
}

// Pinger is implemented by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterDeps holds all dependencies for the API router.
type RouterDeps struct {
	Users            UserStore
	Tokens           *auth.TokenIssuer
	Clubs            *club.Service
	Memberships      *membership.Service
	Events           *event.Service
	Attendance       *attendance.Service
	Activity         ActivityReader
	Collector        *activity.Collector
	Limiter          *ratelimit.Limiter
	Metrics          *metrics.Metrics
	DB               Pinger
	AllowedOrigins   []string
	LeaderboardLimit int
}

// NewRouter builds the chi router with all routes and middleware.
func NewRouter(deps RouterDeps) http.Handler {
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	if deps.LeaderboardLimit <= 0 {
		deps.LeaderboardLimit = 50
	}
	m := deps.Metrics

	r := chi.NewRouter()

	// Global middleware.
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(requestIDMiddleware)
	r.Use(secureHeaders)
	if c := corsMiddleware(deps.AllowedOrigins); c != nil {
		r.Use(c)
	}
	r.Use(instrument(m))

	audit := &auditor{collector: deps.Collector, metrics: m}
	authH := newAuthHandler(deps.Users, deps.Tokens, m, audit)
	users := newUsersHandler(deps.Users, deps.Memberships, audit, deps.LeaderboardLimit)
	clubs := newClubsHandler(deps.Clubs, deps.Memberships, deps.Activity, m, audit)
	events := newEventsHandler(deps.Events, deps.Attendance, m, audit)

	r.Get("/health", healthHandler(deps.DB))
	r.Handle("/metrics", promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}))

	r.Route("/api", func(api chi.Router) {
		// Public routes.
		api.Get("/leaderboard", users.Leaderboard)

		api.Group(func(pr chi.Router) {
			pr.Use(ratelimit.Middleware(deps.Limiter, func() { m.IncRateLimitRejection("auth") }))
			pr.Post("/auth/register", authH.Register)
			pr.Post("/auth/login", authH.Login)
		})

		// Authenticated routes.
		api.Group(func(ar chi.Router) {
			ar.Use(auth.MemberAuthMiddleware(deps.Tokens, user.NewAuthAdapter(deps.Users),
				func() { m.IncAuthFailure("token") }))

			ar.Get("/auth/me", authH.Me)

			ar.Route("/clubs", func(cr chi.Router) {
				cr.Get("/", clubs.ListClubs)
				cr.Get("/my-clubs", clubs.MyClubs)
				cr.With(auth.AdminOnly).Post("/", clubs.CreateClub)

				cr.Route("/{clubId}", func(c chi.Router) {
					c.Get("/", clubs.GetClub)
					c.With(auth.AdminOnly).Put("/", clubs.UpdateClub)
					c.With(auth.AdminOnly).Delete("/", clubs.DeleteClub)

					c.Post("/join", clubs.Join)
					c.Put("/membership/{userId}", clubs.Decide)
					c.Get("/pending", clubs.ListPending)
					c.Get("/members", clubs.ListMembers)
					c.Put("/members/{userId}/role", clubs.SetMemberRole)
					c.Delete("/members/{userId}", clubs.RemoveMember)
					c.Get("/activity", clubs.ListActivity)
				})
			})

			ar.Route("/events", func(er chi.Router) {
				er.Get("/", events.ListEvents)
				er.Post("/", events.CreateEvent)

				er.Route("/{eventId}", func(e chi.Router) {
					e.Get("/", events.GetEvent)
					e.Post("/register", events.Register)
					e.Delete("/register", events.Unregister)
					e.Get("/my-registration", events.MyRegistration)
					e.Get("/participants", events.Participants)
					e.Put("/attendance", events.MarkAttendance)
				})
			})

			ar.Route("/users", func(ur chi.Router) {
				ur.With(auth.AdminOnly).Get("/", users.ListUsers)
				ur.With(auth.AdminOnly).Put("/{userId}/role", users.UpdateRole)
				ur.With(auth.AdminOnly).Put("/{userId}/club-role", users.AssignClubRole)
				ur.Get("/{userId}/memberships", users.ListMemberships)
			})

			ar.With(auth.AdminOnly).Get("/admin/metrics", m.Handler())
		})
	})

	return r
}

// healthHandler reports liveness and, when db is set, database reachability.
func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status":   "degraded",
					"database": "unreachable",
				})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"status":   "ok",
			"database": "connected",
		})
	}
}
