package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/org-admin/internal/api/http"
	"github.com/spec-kit/org-admin/internal/api/http/handlers"
	"github.com/spec-kit/org-admin/internal/auth"
	"github.com/spec-kit/org-admin/internal/events"
	"github.com/spec-kit/org-admin/internal/observability"
	"github.com/spec-kit/org-admin/internal/persistence"
	"github.com/spec-kit/org-admin/internal/repository"
	"github.com/spec-kit/org-admin/internal/service"
	"github.com/spec-kit/org-admin/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime()
			if err != nil {
				return err
			}
			defer rt.close()
			return serve(cmd.Context(), rt)
		},
	}
}

func serve(parent context.Context, rt *runtime) error {
	cfg, logger := rt.cfg, rt.logger

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	pg, err := rt.postgres(ctx)
	if err != nil {
		return err
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			return err
		}
	}

	redisClient := persistence.NewRedisClient(ctx, cfg.Redis, logger)
	defer redisClient.Close()

	metrics := observability.NewMetrics(nil)
	dispatcher := events.NewInMemoryDispatcher()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	orgDeps := service.OrgDependencies{
		DepartmentRepo: repository.NewDepartmentRepository(pool),
		EmployeeRepo:   repository.NewEmployeeRepository(pool),
		Dispatcher:     dispatcher,
		Logger:         logger,
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:     userRepo,
		TokenManager: tokens,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	departmentService := service.NewDepartmentService(orgDeps)
	employeeService := service.NewEmployeeService(orgDeps)
	geoService := service.NewGeoService(cfg.Geo, service.NewRedisGeoCache(redisClient), metrics, logger)
	auditService := service.NewAuditService(dispatcher, logger, metrics)
	worker.StartAuditWorker(auditService)

	loginLimiter, err := auth.NewLoginLimiter(cfg.Auth.LoginRate, redisClient, logger)
	if err != nil {
		return err
	}

	app, err := httptransport.NewApp(cfg.App.Name, logger, metrics)
	if err != nil {
		return err
	}
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	err = httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    persistence.NewRedisProbe(redisClient),
		}),
		Auth:           handlers.NewAuthHandler(authService, cfg.App.IsProduction()),
		Dashboard:      handlers.NewDashboardHandler(service.NewDashboardService(departmentService, employeeService, auditService)),
		Departments:    handlers.NewDepartmentsHandler(departmentService),
		Employees:      handlers.NewEmployeesHandler(employeeService),
		Geo:            handlers.NewGeoHandler(geoService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, userRepo),
		LoginLimiter:   loginLimiter,
		Metrics:        metrics,
	})
	if err != nil {
		return err
	}

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))
		listenErr <- app.Listen(cfg.App.Addr())
	}()

	select {
	case err := <-listenErr:
		return err
	case <-waitForShutdown(logger):
	}
	return app.ShutdownWithTimeout(shutdownTimeout)
}

func waitForShutdown(logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("shutting down", zap.String("signal", sig.String()))
		close(done)
	}()
	return done
}
