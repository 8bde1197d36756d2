package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/remotereps/agent-onboarding/internal/api/http"
	"github.com/remotereps/agent-onboarding/internal/api/http/handlers"
	"github.com/remotereps/agent-onboarding/internal/auth"
	"github.com/remotereps/agent-onboarding/internal/config"
	"github.com/remotereps/agent-onboarding/internal/events"
	"github.com/remotereps/agent-onboarding/internal/observability"
	"github.com/remotereps/agent-onboarding/internal/persistence"
	"github.com/remotereps/agent-onboarding/internal/repository"
	"github.com/remotereps/agent-onboarding/internal/service"
	"github.com/remotereps/agent-onboarding/internal/storage"
	"github.com/remotereps/agent-onboarding/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	objectStore, err := storage.NewDiskStore(cfg.Storage.Root, cfg.Storage.BaseURL)
	if err != nil {
		logger.Fatal("failed to init object store", zap.Error(err))
	}

	pool := pg.PoolHandle()
	profileRepo := repository.NewProfileRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)
	credentialCache := repository.NewRedisCredentialCache(redis.Client, cfg.Resolver.CacheTTL())
	draftStore := repository.NewRedisDraftStore(redis.Client, cfg.Training.DraftTTL())
	trainingStore := repository.NewRedisTrainingStore(redis.Client, cfg.Training.DraftTTL())
	denylist := repository.NewRedisTokenDenylist(redis.Client)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	resolver := service.NewCredentialResolver(credentialCache, profileRepo, cfg.Resolver.MaxAttempts, logger)
	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		ProfileRepo:       profileRepo,
		PasswordResetRepo: resetRepo,
		Denylist:          denylist,
		Resolver:          resolver,
	}).WithLogger(logger)
	applicationService := service.NewApplicationService(service.ApplicationDependencies{
		ProfileRepo: profileRepo,
		DraftStore:  draftStore,
		ObjectStore: objectStore,
		AuthService: authService,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	trainingService := service.NewTrainingService(profileRepo, trainingStore, dispatcher, cfg.Training, logger)
	reviewService := service.NewReviewService(profileRepo, dispatcher, logger)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), profileRepo, denylist, logger)

	app := fiber.New(fiber.Config{BodyLimit: 12 << 20})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	app.Static("/uploads", objectStore.PublicDir())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Wizard:         handlers.NewWizardHandler(applicationService, authService),
		Training:       handlers.NewTrainingHandler(trainingService),
		Dashboard:      handlers.NewDashboardHandler(profileRepo),
		Supervisor:     handlers.NewSupervisorHandler(reviewService),
		Internal:       handlers.NewInternalHandler(reviewService, metrics),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
