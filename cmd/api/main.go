package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/clearpath-health/cataract-planner/internal/adherence"
	"github.com/clearpath-health/cataract-planner/internal/api/router"
	"github.com/clearpath-health/cataract-planner/internal/audit"
	"github.com/clearpath-health/cataract-planner/internal/catalog"
	appconfig "github.com/clearpath-health/cataract-planner/internal/config"
	"github.com/clearpath-health/cataract-planner/internal/observability/metrics"
	"github.com/clearpath-health/cataract-planner/internal/planning"
	"github.com/clearpath-health/cataract-planner/internal/reports"
	"github.com/clearpath-health/cataract-planner/pkg/clock"
	"github.com/clearpath-health/cataract-planner/pkg/logging"
)

func main() {
	// Load .env in development; the file is absent in deployed environments.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting cataract-planner API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	redisClient := newRedisClient(ctx, cfg, logger)
	if redisClient == nil {
		logger.Error("redis is required for plan and catalog storage", "addr", cfg.RedisAddr)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	plannerMetrics := metrics.NewPlannerMetrics(registry)

	catalogStore := catalog.NewStore(redisClient)
	planStore := planning.NewStore(redisClient)

	// Postgres backs the audit trail and reports; both degrade to
	// disabled when no DATABASE_URL is configured.
	var (
		auditLog       planning.AuditLog
		reportsHandler *reports.StatsHandler
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		sqlDB, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open postgres", "error", err)
			os.Exit(1)
		}
		defer func() { _ = sqlDB.Close() }()

		auditLog = audit.NewRecorder(pool)
		reportsHandler = reports.NewStatsHandler(
			reports.NewStatsRepository(pool),
			reports.NewSummaryRepository(sqlDB),
			logger,
		)
	} else {
		logger.Warn("DATABASE_URL not set; audit trail and reports are disabled")
	}

	planService := planning.NewService(planStore, catalogStore, auditLog, clock.Real{}, plannerMetrics, logger)
	trackerService := adherence.NewService(planService, clock.Real{}, plannerMetrics, logger)

	routerCfg := &router.Config{
		Logger:             logger,
		CatalogHandler:     catalog.NewHandler(catalogStore, logger),
		PlanningHandler:    planning.NewHandler(planService, logger),
		TrackerHandler:     adherence.NewHandler(trackerService, logger),
		ReportsHandler:     reportsHandler,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		TrackerRateLimit:   cfg.TrackerRateLimit,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

func newRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		options.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(options)
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		return nil
	}
	return client
}
