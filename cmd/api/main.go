// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/steamybeans/api/internal/admin"
	"github.com/steamybeans/api/internal/config"
	"github.com/steamybeans/api/internal/core"
	"github.com/steamybeans/api/internal/health"
	"github.com/steamybeans/api/internal/middleware"
	"github.com/steamybeans/api/internal/server"
	"github.com/steamybeans/api/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to read .env file", "error", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"db_driver", cfg.Database.Driver,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := core.NewMetrics(registry)

	var (
		db       *core.Database
		usersCol *mongo.Collection
		userRepo user.Repository
		dbCheck  health.Checker
	)

	switch cfg.Database.Driver {
	case config.DriverMemory:
		userRepo = user.NewMemoryRepository()
		dbCheck = health.CheckerFunc(func(context.Context) error { return nil })
		logger.Warn("using in-memory user store, data is not persisted")
	default:
		db, err = core.NewDatabase(ctx, cfg.Database, cfg.App.Name)
		if err != nil {
			return err
		}
		logger.Info("database connected",
			"database", cfg.Database.Name,
			"collection", cfg.Database.Collection,
			"max_pool_size", cfg.Database.MaxPoolSize,
		)

		usersCol = db.Collection(cfg.Database.Collection)
		userRepo = user.NewRepository(usersCol, metrics)
		dbCheck = db
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redis.Enabled() {
		logger.Info("redis connected",
			"pool_size", cfg.Redis.PoolSize,
		)
	} else {
		logger.Info("redis not configured, rate limiting is per instance")
	}

	userSvc := user.NewService(userRepo,
		user.WithPasswordHashing(cfg.Security.HashPasswords),
	)
	userHandler := user.NewHandler(userSvc)

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Checker: dbCheck},
		health.Dependency{Name: "redis", Checker: redis},
	)

	// Not ready until the unique email index exists.
	if usersCol != nil {
		indexes := healthHandler.WaitFor(ctx, func(ctx context.Context) error {
			return user.EnsureIndexes(ctx, usersCol)
		})
		go func() {
			if err := <-indexes; err != nil {
				logger.Error("failed to ensure user indexes", "error", err)
				return
			}
			logger.Info("user indexes ready")
		}()
	}

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
		StaticDir:     cfg.Static.Dir,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Metrics(metrics))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerWindow(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
				cfg.RateLimit.Window,
			),
			KeyFunc:  middleware.KeyByIPAndEndpoint,
			FailOpen: true,
			BypassFunc: middleware.BypassPaths(
				"/healthz", "/livez", "/readyz", "/metrics",
			),
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))
	router.Use(middleware.MaxBodyBytes(cfg.Server.MaxBodyBytes))

	healthHandler.RegisterRoutes(router)
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		Registry: registry,
	}))

	userHandler.RegisterRoutes(router)

	if cfg.Admin.Enabled {
		adminCfg := admin.HandlerConfig{
			DBDriver:   cfg.Database.Driver,
			RedisStats: redis.PoolStats,
			RedisPing:  redis.Ping,
			UserCount:  userSvc.Count,
		}
		if db != nil {
			adminCfg.DBStats = db.Stats
			adminCfg.DBPing = db.Ping
		}
		admin.NewHandler(adminCfg).RegisterRoutes(router)
		logger.Warn("admin stats endpoints enabled without authentication")
	}

	srv.MountFrontend()

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if db != nil {
		if err := db.Close(shutdownCtx); err != nil {
			logger.Error("database close error", "error", err)
		}
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
