package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	identityapp "github.com/rentfolio/backend/internal/application/identity"
	leaseapp "github.com/rentfolio/backend/internal/application/leasing"
	"github.com/rentfolio/backend/internal/application/notification"
	portfolioapp "github.com/rentfolio/backend/internal/application/portfolio"
	"github.com/rentfolio/backend/internal/infrastructure/auth"
	"github.com/rentfolio/backend/internal/infrastructure/cache"
	"github.com/rentfolio/backend/internal/infrastructure/config"
	"github.com/rentfolio/backend/internal/infrastructure/event"
	"github.com/rentfolio/backend/internal/infrastructure/logger"
	"github.com/rentfolio/backend/internal/infrastructure/persistence"
	"github.com/rentfolio/backend/internal/infrastructure/scheduler"
	"github.com/rentfolio/backend/internal/infrastructure/telemetry"
	"github.com/rentfolio/backend/internal/interfaces/http/handler"
	"github.com/rentfolio/backend/internal/interfaces/http/middleware"
	"github.com/rentfolio/backend/internal/interfaces/http/router"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// version is overridden at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Rentfolio backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Telemetry (no-op provider when disabled)
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()

	// Database
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log, gormLogLevel)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := db.EnableTracing(); err != nil {
			log.Warn("Failed to enable database tracing", zap.Error(err))
		}
	}
	log.Info("Database connected")

	// Redis is optional: token revocation and the dashboard cache fall back
	// to in-memory implementations when it is unreachable.
	var redisClient *redis.Client
	if client, err := cache.NewRedisClient(cfg.Redis); err != nil {
		log.Warn("Redis unavailable, using in-memory fallbacks", zap.Error(err))
	} else {
		redisClient = client
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing redis client", zap.Error(err))
			}
		}()
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	propertyRepo := persistence.NewGormPropertyRepository(db.DB)
	leaseRepo := persistence.NewGormLeaseRepository(db.DB)
	paymentRepo := persistence.NewGormRentPaymentRepository(db.DB)
	sweepRunRepo := persistence.NewGormSweepRunRepository(db.DB)

	// Event bus and notification handlers
	eventBus := event.NewInMemoryEventBus(log)
	notifier := notification.NewLogNotifier(log)
	leaseNoticeHandler := notification.NewLeaseNoticeHandler(notifier, log)
	paymentNoticeHandler := notification.NewPaymentNoticeHandler(notifier, log)
	welcomeHandler := notification.NewWelcomeHandler(notifier, log)
	eventBus.Subscribe(leaseNoticeHandler)
	eventBus.Subscribe(paymentNoticeHandler)
	eventBus.Subscribe(welcomeHandler)
	log.Info("Event handlers registered",
		zap.Strings("lease_notice_events", leaseNoticeHandler.EventTypes()),
		zap.Strings("payment_notice_events", paymentNoticeHandler.EventTypes()),
		zap.Strings("welcome_events", welcomeHandler.EventTypes()),
	)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Auth infrastructure
	jwtService := auth.NewJWTService(cfg.JWT)
	var blacklist auth.TokenBlacklist
	if redisClient != nil {
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
	}

	// Dashboard summary cache
	var summaryCache portfolioapp.SummaryCache
	if redisClient != nil {
		summaryCache = cache.NewRedisSummaryCache(redisClient, "dashboard:")
	} else {
		summaryCache = cache.NewInMemorySummaryCache()
	}

	// Application services
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, eventBus, log)
	userService := identityapp.NewUserService(userRepo, log)
	propertyService := portfolioapp.NewPropertyService(propertyRepo, eventBus, log)
	leaseService := leaseapp.NewLeaseService(leaseRepo, propertyRepo, eventBus, log)
	paymentService := leaseapp.NewPaymentService(paymentRepo, leaseRepo, propertyRepo, eventBus, log)
	metricsService := portfolioapp.NewMetricsService(propertyRepo, leaseRepo, paymentRepo, summaryCache, log)
	expirySweepService := leaseapp.NewExpirySweepService(leaseRepo, propertyRepo, userRepo, sweepRunRepo, eventBus, log)
	dueSweepService := leaseapp.NewDueSweepService(paymentRepo, sweepRunRepo, eventBus, log)

	// Daily sweeps
	sweepScheduler := scheduler.NewSweepScheduler(cfg.Sweep, log,
		scheduler.NewLeaseExpiryJob(expirySweepService, log),
		scheduler.NewPaymentDueJob(dueSweepService, log),
	)
	if err := sweepScheduler.Start(context.Background()); err != nil {
		log.Fatal("Failed to start sweep scheduler", zap.Error(err))
	}
	defer func() {
		if err := sweepScheduler.Stop(context.Background()); err != nil {
			log.Error("Error stopping sweep scheduler", zap.Error(err))
		}
	}()

	// HTTP layer
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if cfg.Telemetry.Enabled {
		engine.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	}

	authMW := middleware.Auth(middleware.AuthConfig{
		JWTService: jwtService,
		Blacklist:  blacklist,
		UserRepo:   userRepo,
		Logger:     log,
	})

	router.NewRouter(engine).
		Register(handler.NewSystemHandler(db, version)).
		Register(handler.NewAuthHandler(authService, authMW)).
		Register(handler.NewUserHandler(userService, authMW)).
		Register(handler.NewPropertyHandler(propertyService, metricsService, authMW)).
		Register(handler.NewLeaseHandler(leaseService, paymentService, authMW)).
		Register(handler.NewPaymentHandler(paymentService, authMW)).
		Register(handler.NewDashboardHandler(metricsService, authMW)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}
