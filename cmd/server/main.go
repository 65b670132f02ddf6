package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/aquaportal/backend/internal/application/billing"
	dashboardapp "github.com/aquaportal/backend/internal/application/dashboard"
	identityapp "github.com/aquaportal/backend/internal/application/identity"
	paymentapp "github.com/aquaportal/backend/internal/application/payment"
	supportapp "github.com/aquaportal/backend/internal/application/support"
	"github.com/aquaportal/backend/internal/domain/access"
	"github.com/aquaportal/backend/internal/domain/billing"
	"github.com/aquaportal/backend/internal/infrastructure/auth"
	"github.com/aquaportal/backend/internal/infrastructure/cache"
	"github.com/aquaportal/backend/internal/infrastructure/config"
	"github.com/aquaportal/backend/internal/infrastructure/event"
	"github.com/aquaportal/backend/internal/infrastructure/logger"
	"github.com/aquaportal/backend/internal/infrastructure/metrics"
	"github.com/aquaportal/backend/internal/infrastructure/persistence"
	"github.com/aquaportal/backend/internal/infrastructure/scheduler"
	"github.com/aquaportal/backend/internal/infrastructure/storage"
	"github.com/aquaportal/backend/internal/infrastructure/telemetry"
	"github.com/aquaportal/backend/internal/interfaces/http/handler"
	"github.com/aquaportal/backend/internal/interfaces/http/middleware"
	"github.com/aquaportal/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/aquaportal/backend/docs"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

//go:generate swag init -g main.go -d ./,../../internal/interfaces/http/handler -o ../../docs --parseDependency --parseInternal --outputTypes go

// @title                       Water Billing Portal API
// @version                     1.0
// @description                 Customer and staff API for meter readings, water bills, payments and complaints.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the access token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	log.Info("Starting water billing portal",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	// Tracing goes first so the database and HTTP instrumentation pick up
	// the global provider.
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.RegisterDBTracing(db.DB, cfg.Database.DBName); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}

	collector := metrics.New(cfg.Metrics.Namespace)
	if sqlDB, err := db.DB.DB(); err == nil {
		if err := collector.RegisterDB(sqlDB, cfg.Database.DBName); err != nil {
			log.Warn("Failed to export connection pool metrics", zap.Error(err))
		}
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing redis client", zap.Error(err))
		}
	}()
	log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))

	// Domain events fan out to the metrics collector and, when enabled, to
	// Kafka for downstream consumers.
	eventBus := event.NewInMemoryEventBus(log, 1024)
	eventBus.Subscribe(collector, collector.EventTypes()...)

	if cfg.Kafka.Enabled {
		producer, err := event.NewSyncProducer(cfg.Kafka)
		if err != nil {
			log.Fatal("Failed to create kafka producer", zap.Error(err))
		}
		kafkaPublisher := event.NewKafkaPublisher(producer, cfg.Kafka.Topic, log)
		defer func() {
			if err := kafkaPublisher.Close(); err != nil {
				log.Error("Error closing kafka producer", zap.Error(err))
			}
		}()
		eventBus.Subscribe(kafkaPublisher, kafkaPublisher.EventTypes()...)
		log.Info("Kafka event forwarding enabled",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
		)
	}

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	var attachments supportapp.AttachmentStorage = storage.DisabledStorage{}
	if cfg.Storage.Enabled {
		s3Storage, err := storage.NewS3ObjectStorage(ctx, cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize attachment storage", zap.Error(err))
		}
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			log.Fatal("Failed to prepare attachment bucket", zap.Error(err))
		}
		attachments = s3Storage
		log.Info("Attachment storage enabled", zap.String("bucket", cfg.Storage.Bucket))
	} else {
		log.Info("Attachment storage disabled")
	}

	// Repositories
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	profileRepo := persistence.NewGormProfileRepository(db.DB)
	registrationScope := persistence.NewGormRegistrationScope(db.DB)
	billRepo := persistence.NewGormBillRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	settlementScope := persistence.NewGormSettlementScope(db.DB)
	complaintRepo := persistence.NewGormComplaintRepository(db.DB)

	// Application services
	policy := access.NewPolicy()
	jwtService := auth.NewJWTService(cfg.JWT)
	blacklist := auth.NewRedisTokenBlacklist(redisClient)

	billConfig, err := billServiceConfig(cfg)
	if err != nil {
		log.Fatal("Invalid billing configuration", zap.Error(err))
	}

	authService := identityapp.NewAuthService(accountRepo, profileRepo, registrationScope, jwtService, blacklist, eventBus)
	profileService := identityapp.NewProfileService(accountRepo, profileRepo, policy, eventBus)
	billService := billingapp.NewBillService(billRepo, profileRepo, policy, eventBus, billConfig)
	paymentService := paymentapp.NewPaymentService(settlementScope, paymentRepo, policy, eventBus)
	complaintService := supportapp.NewComplaintService(complaintRepo, attachments, policy, eventBus, cfg.Storage.MaxUploadBytes)
	dashboardService := dashboardapp.NewService(profileRepo, billRepo, paymentRepo, complaintRepo, policy)

	if cfg.Scheduler.Enabled {
		sweeper := scheduler.NewOverdueSweeper(scheduler.OverdueSweeperConfig{
			Interval:   cfg.Scheduler.OverdueSweepInterval,
			JobTimeout: cfg.Scheduler.JobTimeout,
		}, billService, log)
		if err := sweeper.Start(ctx); err != nil {
			log.Fatal("Failed to start overdue sweeper", zap.Error(err))
		}
		defer func() {
			if err := sweeper.Stop(context.Background()); err != nil {
				log.Error("Error stopping overdue sweeper", zap.Error(err))
			}
		}()
		log.Info("Overdue sweeper started",
			zap.Duration("interval", cfg.Scheduler.OverdueSweepInterval),
			zap.Int("batch_size", billConfig.OverdueBatchSize),
		)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to register validators", zap.Error(err))
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins

	// Middleware order:
	// 1. RequestID - generate or propagate the request ID
	// 2. Recovery - turn panics into 500s with the request ID attached
	// 3. Logger - request-scoped zap logger and access log
	// 4. Tracing + SpanStatus - server span per request
	// 5. Secure, CORS, BodyLimit
	// 6. Metrics - request counters by route template
	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.Tracing(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		middleware.SpanStatus(),
		middleware.Secure(),
		middleware.CORSWithConfig(corsConfig),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		collector.Middleware(),
	)

	guards := router.Guards{
		Authenticate: middleware.JWTAuth(middleware.JWTMiddlewareConfig{
			JWTService: jwtService,
			Blacklist:  blacklist,
			Logger:     log,
		}),
		Idempotency: middleware.Idempotency(
			cache.NewRedisRequestClaimer(redisClient, ""),
			cfg.HTTP.IdempotencyTTL,
		),
	}
	if cfg.HTTP.RateLimitEnabled {
		guards.AuthRateLimit = middleware.RateLimit(cache.NewRedisRateLimiter(
			redisClient, "auth", cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow))
		guards.RateLimit = middleware.RateLimit(cache.NewRedisRateLimiter(
			redisClient, "api", cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow))
	}

	checks := map[string]handler.ReadinessCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		"redis": func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
	}

	ops := router.Ops{
		DocsHandler: ginSwagger.WrapHandler(swaggerFiles.Handler),
		DocsGuard: middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}, guards.Authenticate),
	}
	if cfg.Metrics.Enabled {
		ops.MetricsPath = cfg.Metrics.Path
		ops.MetricsHandler = collector.Handler()
	}

	router.Mount(engine, router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Profile:   handler.NewProfileHandler(profileService),
		Bill:      handler.NewBillHandler(billService),
		Payment:   handler.NewPaymentHandler(paymentService),
		Complaint: handler.NewComplaintHandler(complaintService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		System:    handler.NewSystemHandler(cfg.App.Name, version, checks),
	}, guards, ops)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}

// billServiceConfig maps the billing and scheduler settings onto the bill
// service configuration.
func billServiceConfig(cfg *config.Config) (billingapp.BillServiceConfig, error) {
	out := billingapp.DefaultBillServiceConfig()

	rate, err := decimal.NewFromString(cfg.Billing.DefaultRatePerUnit)
	if err != nil {
		return out, err
	}
	if !rate.IsPositive() {
		return out, errors.New("billing.default_rate_per_unit must be positive")
	}
	out.DefaultRatePerUnit = rate
	out.ReadingPolicy = billing.ReadingPolicy(cfg.Billing.ReadingPolicy)
	if cfg.Billing.DueDays > 0 {
		out.DueDays = cfg.Billing.DueDays
	}
	if cfg.Scheduler.OverdueBatchSize > 0 {
		out.OverdueBatchSize = cfg.Scheduler.OverdueBatchSize
	}
	return out, nil
}
