package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/vagago/internmatch/internal/auth"
	"github.com/vagago/internmatch/internal/config"
	"github.com/vagago/internmatch/internal/controller"
	"github.com/vagago/internmatch/internal/notification"
	"github.com/vagago/internmatch/internal/repository"
	"github.com/vagago/internmatch/internal/scheduler"
	"github.com/vagago/internmatch/internal/service"
)

// App owns the process lifecycle: database, migrations, service graph,
// HTTP server and the background sweep.
type App struct {
	cfg    *config.Config
	logger *zap.Logger

	pool   *pgxpool.Pool
	server *http.Server
	sweep  *scheduler.Scheduler
}

func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	migrator, err := NewMigrator(pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	defer migrator.Close()

	if err := migrator.Run(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	version, err := migrator.Version(ctx)
	if err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("migrations applied", zap.Int64("version", version))

	users := repository.NewUserRepository(pool)
	internships := repository.NewInternshipRepository(pool)
	reservations := repository.NewReservationRepository(pool)
	stats := repository.NewStatsRepository(pool)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	hub := notification.NewHub(logger)

	userService := service.NewUserService(users, repository.NewDependencyChecker(internships, reservations), tokens, logger)
	internshipService := service.NewInternshipService(internships, reservations, hub, logger)
	reservationService := service.NewReservationService(reservations, internships, hub, logger)
	statsService := service.NewStatsService(stats)

	if err := userService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure admin: %w", err)
	}

	ctrl := controller.New(userService, internshipService, reservationService, statsService, tokens, hub, logger)

	app := &App{
		cfg:    cfg,
		logger: logger,
		pool:   pool,
		server: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           ctrl.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	if cfg.ReservationTTL > 0 {
		app.sweep = scheduler.New(reservationService, cfg.SweepInterval, cfg.ReservationTTL, logger)
	}

	return app, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	if a.sweep != nil {
		go a.sweep.Start(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", zap.String("addr", a.cfg.HTTPAddr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	a.pool.Close()
	a.logger.Info("server stopped")
	return nil
}
