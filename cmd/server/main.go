package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	config "github.com/booknest/catalog-service/configs"
	"github.com/booknest/catalog-service/internal/application/services"
	"github.com/booknest/catalog-service/internal/core/ports"
	"github.com/booknest/catalog-service/internal/infrastructure/db"
	"github.com/booknest/catalog-service/internal/infrastructure/health"
	"github.com/booknest/catalog-service/internal/infrastructure/httpserver"
	"github.com/booknest/catalog-service/internal/infrastructure/listcache"
	"github.com/booknest/catalog-service/internal/infrastructure/redis"
	"github.com/booknest/catalog-service/internal/infrastructure/repositories"
)

func newLogger(cfg config.LogConfig) *logrus.Logger {
	logger := logrus.New()
	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}
	return logger
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger := newLogger(cfg.Log)
	logger.Info("Starting book catalog service...")

	database, err := db.NewDatabase(&cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer database.Close()

	if err := database.Migrate(cfg.Database.MigrationsDir); err != nil {
		logger.WithError(err).Warn("Failed to run migrations")
	}

	redisClient, err := redis.NewRedisClient(&cfg.Redis, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisClient.Close()

	eviction, err := listcache.ParseEvictionPolicy(cfg.Cache.Eviction)
	if err != nil {
		logger.WithError(err).Fatal("Invalid list cache configuration")
	}
	listCache := listcache.New(listcache.Config{
		Capacity:         cfg.Cache.Capacity,
		DefaultTTL:       cfg.Cache.ListTTL,
		SweepInterval:    cfg.Cache.SweepInterval,
		SnapshotInterval: cfg.Cache.SnapshotInterval,
		Eviction:         eviction,
		Registerer:       prometheus.DefaultRegisterer,
	}, logger)
	logger.WithFields(logrus.Fields{
		"capacity": cfg.Cache.Capacity,
		"ttl":      cfg.Cache.ListTTL,
		"eviction": eviction,
	}).Info("List cache started")

	bookRepo := repositories.NewCachingBookRepository(
		repositories.NewBookRepository(database, logger),
		listCache,
		cfg.Cache.ListTTL,
		logger,
	)
	authorRepo := repositories.NewAuthorRepository(database)
	fileStore := repositories.NewFSBookFileStore(cfg.Storage.BookFilesDir)
	rateLimitRepo := repositories.NewRateLimitRedisRepository(redisClient)

	catalogService := services.NewCatalogService(bookRepo, authorRepo, fileStore, logger)
	auditService := services.NewAuditService(repositories.NewAuditRepository(database, logger), logger)
	rateLimiterService := services.NewRateLimiterService(rateLimitRepo, &services.RateLimiterConfig{
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		BurstMultiplier:   cfg.RateLimit.BurstMultiplier,
		Window:            cfg.RateLimit.Window,
		KeyPrefix:         cfg.RateLimit.KeyPrefix,
	}, logger)

	hcSlice := []ports.HealthChecker{
		health.NewDBHealthChecker(database),
		health.NewRedisHealthChecker(redisClient),
		health.NewListCacheHealthChecker(listCache),
	}

	serverConfig := &httpserver.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		TLSCertFile:    cfg.Server.TLSCertFile,
		TLSKeyFile:     cfg.Server.TLSKeyFile,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Environment:    cfg.Server.Environment,
		JWTSecret:      cfg.JWT.Secret,
		JWTIssuer:      cfg.JWT.Issuer,
		AdminRole:      cfg.JWT.AdminRole,
	}

	server := httpserver.NewServer(serverConfig, logger, httpserver.ServerDeps{
		CatalogService:     catalogService,
		CacheInspector:     listCache,
		AuditService:       auditService,
		RateLimiterService: rateLimiterService,
		HealthCheckers:     hcSlice,
	})

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}
	_ = listCache.Close()

	logger.Info("Server exited")
}
