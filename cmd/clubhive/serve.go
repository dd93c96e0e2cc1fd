package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/alecgard/clubhive/internal/activity"
	"github.com/alecgard/clubhive/internal/api"
	"github.com/alecgard/clubhive/internal/attendance"
	"github.com/alecgard/clubhive/internal/auth"
	"github.com/alecgard/clubhive/internal/club"
	"github.com/alecgard/clubhive/internal/config"
	"github.com/alecgard/clubhive/internal/event"
	"github.com/alecgard/clubhive/internal/membership"
	"github.com/alecgard/clubhive/internal/metrics"
	"github.com/alecgard/clubhive/internal/ratelimit"
	"github.com/alecgard/clubhive/internal/user"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the ClubHive API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return err
	}
	slog.Info("connected to database")

	m := metrics.New()
	m.RegisterDBPoolCollector(func() (int32, int32, int32) {
		s := pool.Stat()
		return s.TotalConns(), s.IdleConns(), s.AcquiredConns()
	})

	userStore := user.NewStore(pool)
	clubService := club.NewService(club.NewStore(pool))
	membershipStore := membership.NewStore(pool)
	eventStore := event.NewStore(pool)
	activityStore := activity.NewStore(pool)
	collector := activity.NewCollector(activityStore, cfg.Activity.BatchSize, cfg.Activity.FlushInterval)
	limiter := ratelimit.New(cfg.RateLimit.Login, cfg.RateLimit.Window)

	router := api.NewRouter(api.RouterDeps{
		Users:            userStore,
		Tokens:           auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL),
		Clubs:            clubService,
		Memberships:      membership.NewService(membershipStore, clubService, userStore),
		Events:           event.NewService(eventStore, clubService, membershipStore),
		Attendance:       attendance.NewService(attendance.NewStore(pool), eventStore, membershipStore),
		Activity:         activityStore,
		Collector:        collector,
		Limiter:          limiter,
		Metrics:          m,
		DB:               pool,
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		LeaderboardLimit: cfg.Leaderboard.Limit,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	// The collector outlives in-flight requests and is stopped after Shutdown.
	g.Go(func() error {
		collector.Start(context.Background())
		return nil
	})

	g.Go(func() error {
		pruneLimiter(gctx, limiter, cfg.RateLimit.Window)
		return nil
	})

	g.Go(func() error {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		collector.Stop()
		return err
	})

	return g.Wait()
}

// pruneLimiter drops idle rate limit buckets once per window until ctx ends.
func pruneLimiter(ctx context.Context, limiter *ratelimit.Limiter, window time.Duration) {
	if !limiter.Enabled() {
		return
	}
	ticker := time.NewTicker(window)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := limiter.Prune(); n > 0 {
				slog.Debug("pruned rate limit buckets", "count", n)
			}
		}
	}
}
