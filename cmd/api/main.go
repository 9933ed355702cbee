package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/service-marketplace/internal/api/http"
	"github.com/spec-kit/service-marketplace/internal/api/http/handlers"
	"github.com/spec-kit/service-marketplace/internal/auth"
	"github.com/spec-kit/service-marketplace/internal/config"
	"github.com/spec-kit/service-marketplace/internal/events"
	"github.com/spec-kit/service-marketplace/internal/observability"
	"github.com/spec-kit/service-marketplace/internal/persistence"
	"github.com/spec-kit/service-marketplace/internal/repository"
	"github.com/spec-kit/service-marketplace/internal/service"
	"github.com/spec-kit/service-marketplace/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics("marketplace")
	readiness := map[string]handlers.Pinger{}

	useFirestore := cfg.Store.Backend == config.StoreBackendFirestore
	fb, err := persistence.NewFirebase(ctx, cfg.Firebase, useFirestore, logger)
	if err != nil {
		logger.Fatal("failed to init firebase", zap.Error(err))
	}
	defer fb.Close()

	var (
		userRepo    repository.UserRepository
		requestRepo repository.ServiceRequestRepository
	)
	if useFirestore {
		userRepo = repository.NewFirestoreUserRepository(fb.Firestore, cfg.Store.UsersCollection)
		requestRepo = repository.NewFirestoreServiceRequestRepository(fb.Firestore, cfg.Store.RequestsCollection)
		readiness["firestore"] = handlers.PingFunc(func(ctx context.Context) error {
			return fb.Ping(ctx, cfg.Store.UsersCollection)
		})
	} else {
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer pg.Close()
		if pg.PoolHandle() == nil {
			logger.Fatal("postgres backend selected but POSTGRES_DSN is empty")
		}

		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), persistence.DefaultMigrationsDir, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}

		pool := pg.PoolHandle()
		userRepo = repository.NewUserRepository(pool)
		requestRepo = repository.NewServiceRequestRepository(pool)
		readiness["postgres"] = pg
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()
	readiness["redis"] = redis

	hasher, err := auth.NewHasher(cfg.Auth.PINHashScheme, cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("invalid pin hash scheme", zap.Error(err))
	}

	var provider auth.IdentityProvider = auth.NoopProvider{Domain: cfg.Auth.PseudoEmailDomain}
	if fb != nil {
		provider = auth.NewFirebaseProvider(fb.Auth, cfg.Auth.PseudoEmailDomain, cfg.Auth.PlaceholderSecret)
	}

	dispatcher := events.NewInMemoryDispatcher(func(event events.Event, err error) {
		logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	})

	var bridge *events.NATSBridge
	if cfg.Notification.NATSURL != "" {
		conn, err := events.ConnectNATS(cfg.Notification.NATSURL, cfg.App.Name)
		if err != nil {
			logger.Warn("nats unavailable; events stay in-process", zap.Error(err))
		} else {
			defer conn.Drain() //nolint:errcheck
			bridge = events.NewNATSBridge(conn, cfg.Notification.NATSSubjectPrefix)
		}
	}

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService, dispatcher, bridge, logger)

	identityService := service.NewIdentityService(*cfg, service.IdentityDependencies{
		UserRepo:   userRepo,
		DraftRepo:  repository.NewSignUpDraftRepository(redis.Client, cfg.Auth.SignUpDraftTTL()),
		Hasher:     hasher,
		Provider:   provider,
		Locker:     persistence.NewRedisLocker(redis.Client, cfg.Auth.RegistrationLockTTL()),
		Delivery:   notificationService,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	requestService := service.NewRequestService(*cfg, service.RequestDependencies{
		RequestRepo: requestRepo,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
	})

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, readiness),
		Users:          handlers.NewUsersHandler(identityService),
		Requests:       handlers.NewRequestsHandler(requestService),
		Admin:          handlers.NewAdminHandler(requestService),
		AuthMiddleware: auth.NewAuthMiddleware(identityService.TokenManager()),
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
