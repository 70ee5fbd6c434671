package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"festivaltickets/api/routes"
	"festivaltickets/docs"
	"festivaltickets/internal/holds"
	"festivaltickets/internal/jobs"
	"festivaltickets/internal/notifications"
	"festivaltickets/internal/shared/config"
	"festivaltickets/internal/shared/database"
	"festivaltickets/internal/shared/middleware"
	"festivaltickets/pkg/cache"
	"festivaltickets/pkg/logger"
	"festivaltickets/pkg/metrics"
	"festivaltickets/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// @title                       Festival Tickets API
// @version                     1.0
// @BasePath                    /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	appLogger := logger.GetDefault()

	// Smart environment loading
	if err := godotenv.Load(); err != nil {
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// JSON records in production, text while developing
	appLogger = logger.NewWithWriter(os.Stdout, logger.ParseLevel(cfg.LogLevel), cfg.IsProduction())
	logger.SetDefault(appLogger)
	docs.SwaggerInfo.Version = cfg.APIVersion
	docs.SwaggerInfo.BasePath = cfg.GetAPIBasePath()

	db, err := database.InitDB(cfg, appLogger)
	if err != nil {
		appLogger.Error("failed to initialize databases", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	rootCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	var appMetrics *metrics.Metrics
	if cfg.Metrics.Enabled {
		appMetrics = metrics.New()
	}

	// Seat holds
	holdStore := newHoldStore(rootCtx, cfg, db, appLogger)
	sweeper := holds.NewSweeper(holdStore, cfg.Holds.SweepInterval, appLogger, appMetrics.ObserveSwept)
	go sweeper.Start(rootCtx)

	publisher := newPublisher(cfg, appLogger)
	defer func() {
		if err := publisher.Close(); err != nil {
			appLogger.Error("Error closing publisher", slog.Any("error", err))
		}
	}()

	deps := routes.Dependencies{
		Config:    cfg,
		DB:        db,
		Log:       appLogger,
		Cache:     cache.NewService(db.GetRedisClient(), appLogger),
		Holds:     holdStore,
		Publisher: publisher,
		Metrics:   appMetrics,
	}

	var scheduler *jobs.RedisScheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewRedisScheduler(db.GetRedisClient())
		deps.Scheduler = scheduler
	}

	appRouter := routes.NewRouter(deps)
	router := setupRouter(cfg, db, appRouter, appMetrics, appLogger)

	// Archive jobs run after the routes wired the event service
	var processor *jobs.Processor
	if scheduler != nil {
		processor = jobs.NewProcessor(scheduler, jobs.ProcessorConfig{
			PollInterval: cfg.Jobs.PollInterval,
			RetryDelay:   cfg.Jobs.RetryDelay,
			MaxAttempts:  cfg.Jobs.MaxAttempts,
			BatchSize:    cfg.Jobs.BatchSize,
			Lease:        cfg.Jobs.Lease,
		}, appLogger, appMetrics)
		processor.Register(jobs.KindArchiveEvent, appRouter.EventService().HandleArchiveJob)
		go processor.Start(rootCtx)
	}

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("api_status", fmt.Sprintf("http://localhost:%s/status", cfg.Port)),
			slog.String("version", Version),
			slog.String("build_time", BuildTime),
			slog.String("commit", GitCommit),
			slog.String("hold_store", cfg.Holds.Store),
			slog.Bool("jobs", cfg.Jobs.Enabled),
			slog.Bool("kafka", cfg.Kafka.Enabled),
			slog.Bool("rate_limiting", cfg.RateLimit.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	if processor != nil {
		processor.Stop()
	}
	sweeper.Stop()
	stopBackground()

	appLogger.Info("Server exited gracefully")
}

// newHoldStore picks the seat hold backend. Redis is shared between instances;
// memory is bounded and local to this process.
func newHoldStore(ctx context.Context, cfg *config.Config, db *database.DB, log *logger.Logger) holds.Store {
	if cfg.Holds.Store == "memory" {
		log.Info("Using in-memory hold store", slog.Int("max_entries", cfg.Holds.MaxEntries))
		return holds.NewMemoryStore(cfg.Holds.MaxEntries)
	}

	store := holds.NewRedisStore(db.GetRedisClient())
	preloadCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := store.PreloadScripts(preloadCtx); err != nil {
		// Scripts are loaded on first use
		log.Warn("Failed to preload hold scripts", slog.Any("error", err))
	} else {
		log.Info("Redis hold scripts preloaded")
	}
	return store
}

func newPublisher(cfg *config.Config, log *logger.Logger) notifications.Publisher {
	if !cfg.Kafka.Enabled {
		return notifications.NoopPublisher{}
	}

	kafkaConfig := notifications.DefaultKafkaProducerConfig()
	kafkaConfig.Brokers = cfg.Kafka.Brokers
	kafkaConfig.Topic = cfg.Kafka.Topic
	kafkaConfig.ClientID = cfg.Kafka.ClientID

	publisher, err := notifications.NewKafkaPublisher(kafkaConfig, log)
	if err != nil {
		log.Error("Failed to initialize Kafka publisher, domain events are dropped", slog.Any("error", err))
		return notifications.NoopPublisher{}
	}
	log.Info("Kafka publisher initialized", slog.String("topic", cfg.Kafka.Topic))
	return publisher
}

func setupRouter(cfg *config.Config, db *database.DB, appRouter *routes.Router, m *metrics.Metrics, log *logger.Logger) *gin.Engine {
	engine := gin.New()

	// Built-in middleware: logs requests + recovers from panics
	engine.Use(middleware.RequestLogger(log), gin.Recovery())
	if m != nil {
		engine.Use(m.Middleware())
		engine.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true // allow every origin dynamically
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Idempotency-Key"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if cfg.RateLimit.Enabled {
		rateLimiter := ratelimit.NewRateLimiter(db.GetRedisClient(), cfg.RateLimit)
		engine.Use(ratelimit.Middleware(rateLimiter, log))
		log.Info("Rate limiter initialized",
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("default_requests", cfg.RateLimit.DefaultRequests),
		)
	} else {
		log.Info("Rate limiting disabled")
	}

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	appRouter.SetupRoutes(engine)
	return engine
}
