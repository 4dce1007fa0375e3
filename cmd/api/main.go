package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/project-gallery/internal/api/http"
	"github.com/spec-kit/project-gallery/internal/api/http/handlers"
	"github.com/spec-kit/project-gallery/internal/api/validate"
	"github.com/spec-kit/project-gallery/internal/auth"
	"github.com/spec-kit/project-gallery/internal/cache"
	"github.com/spec-kit/project-gallery/internal/config"
	"github.com/spec-kit/project-gallery/internal/events"
	"github.com/spec-kit/project-gallery/internal/observability"
	"github.com/spec-kit/project-gallery/internal/persistence"
	"github.com/spec-kit/project-gallery/internal/repository"
	"github.com/spec-kit/project-gallery/internal/service"
	"github.com/spec-kit/project-gallery/internal/shopify"
	"github.com/spec-kit/project-gallery/internal/storage"
	"github.com/spec-kit/project-gallery/internal/worker"
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
	if pg.Pool == nil {
		logger.Fatal("POSTGRES_DSN is required")
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(cfg.Postgres.DSN, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	rdb := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer rdb.Close()

	var sharedCache redis.UniversalClient
	if rdb != nil {
		sharedCache = rdb.Client
	}
	listingCache := cache.NewTiered[service.ListingPage](cfg.Listing.LocalCacheSize, cfg.Listing.CacheTTL(), sharedCache, logger)
	go listingCache.Listen(ctx)

	submissionRepo := repository.NewSubmissionRepository(pg.Pool)
	historyRepo := repository.NewSubmissionHistoryRepository(pg.Pool)
	dispatcher := events.NewInMemoryDispatcher(logger)

	submissionService := service.NewSubmissionService(service.SubmissionDependencies{
		SubmissionRepo: submissionRepo,
		HistoryRepo:    historyRepo,
		Dispatcher:     dispatcher,
		AdminPageSize:  cfg.Listing.AdminPageSize,
		Logger:         logger,
	})
	listingService := service.NewListingService(service.ListingDependencies{
		SubmissionRepo: submissionRepo,
		Cache:          listingCache,
		DefaultPerPage: cfg.Listing.DefaultPerPage,
		MaxPerPage:     cfg.Listing.MaxPerPage,
		Logger:         logger,
	})

	service.NewListingInvalidator(dispatcher, listingCache).RegisterHandlers()
	notificationService := service.NewNotificationService(logger, cfg.Notification)
	notifications := worker.NewNotificationWorker(notificationService, dispatcher, 2, 256, logger)
	notifications.Start(ctx)

	var uploader storage.Uploader
	if cfg.Storage.Endpoint != "" {
		minioUploader, err := storage.NewMinioUploader(cfg.Storage)
		if err != nil {
			logger.Fatal("failed to init object storage", zap.Error(err))
		}
		bucketCtx, bucketCancel := context.WithTimeout(ctx, 10*time.Second)
		if err := minioUploader.EnsureBucket(bucketCtx); err != nil {
			logger.Warn("unable to ensure upload bucket", zap.String("bucket", cfg.Storage.Bucket), zap.Error(err))
		}
		bucketCancel()
		uploader = minioUploader
	} else {
		logger.Warn("STORAGE_ENDPOINT not provided; uploads are disabled")
	}
	uploadService := service.NewUploadService(uploader, cfg.Storage.MaxUploadBytes, logger)
	storefront := shopify.NewStorefrontClient(cfg.Shopify, logger)

	verifier := auth.NewSessionVerifier(cfg.Auth.APIKey, cfg.Auth.APISecret, cfg.Auth.Leeway())
	if !verifier.Configured() {
		logger.Warn("SHOPIFY_API_KEY or SHOPIFY_API_SECRET missing; admin routes will reject every request")
	}
	validator := validate.New()
	metrics := observability.NewMetrics()

	expectedSchema, err := persistence.LatestMigration()
	if err != nil {
		logger.Fatal("failed to read embedded migrations", zap.Error(err))
	}
	health := handlers.HealthDependencies{
		ServiceName:    cfg.App.Name,
		Version:        cfg.App.Version,
		Database:       pg,
		ExpectedSchema: expectedSchema,
	}
	if rdb != nil {
		health.Redis = rdb
	}

	bodyLimit := int(cfg.Storage.MaxUploadBytes) + 1<<20
	app := httptransport.NewApp(cfg.App.Name, bodyLimit)
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(health),
		Submissions:    handlers.NewSubmissionsHandler(submissionService, validator),
		Public:         handlers.NewPublicSubmissionsHandler(listingService, submissionService, validator),
		Upload:         handlers.NewUploadHandler(uploadService),
		Products:       handlers.NewProductsHandler(storefront),
		AuthMiddleware: auth.NewAuthMiddleware(verifier),
		PublicMaxAge:   cfg.Listing.PublicMaxAgeSeconds,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	_ = app.ShutdownWithContext(shutdownCtx)
	cancel()
	notifications.Wait()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
