package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/cambiar/rates-api/internal/core/ports"
	"github.com/cambiar/rates-api/internal/core/services"
	"github.com/cambiar/rates-api/internal/handlers"
	"github.com/cambiar/rates-api/internal/middleware"
	"github.com/cambiar/rates-api/internal/platform/config"
	"github.com/cambiar/rates-api/internal/platform/metrics"
	"github.com/cambiar/rates-api/internal/platform/scheduler"
	"github.com/cambiar/rates-api/internal/providers/ambito"
	"github.com/cambiar/rates-api/internal/providers/openexchangerates"
	"github.com/cambiar/rates-api/internal/repositories/database/pgsql"
	"github.com/cambiar/rates-api/internal/repositories/memory"
	"github.com/cambiar/rates-api/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/ulule/limiter/v3"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// @title Exchange Rate API
// @version 1.0
// @description Currency exchange rates with on-demand provider backfill and alternative-market rate support.

// @host localhost:8080
// @BasePath /
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Rates serialize as JSON numbers for provider-compatible payloads
	decimal.MarshalJSONWithoutQuotes = true

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repos, cleanup, err := buildRepositories(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanup()

	rateMetrics := metrics.NewRateMetrics(prometheus.DefaultRegisterer)

	officialProvider := openexchangerates.NewClient(cfg.OXRBaseURL, cfg.OXRAPIKey, cfg.ProviderTimeout, logger)
	alternativeProvider := ambito.NewClient(cfg.AmbitoBaseURL, cfg.ProviderTimeout, logger)

	container := services.NewContainer(repos, officialProvider, alternativeProvider, logger, rateMetrics)

	refresh, err := scheduler.NewRefreshScheduler(cfg.RefreshCron, container.Ingestion, logger)
	if err != nil {
		logger.Error("Invalid refresh cron spec", slog.String("spec", cfg.RefreshCron), slog.String("error", err.Error()))
		os.Exit(1)
	}
	refresh.Start()
	defer refresh.Stop()
	if cfg.RefreshOnStart {
		go refresh.RunNow()
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(corsConfig(cfg)))

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		logger.Error("Invalid rate limit format", slog.String("value", cfg.RateLimit), slog.String("error", err.Error()))
		os.Exit(1)
	}
	r.Use(middleware.RateLimit(limiter.New(memorystore.NewStore(), rate)))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, container)

	logger.Info("Starting server", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// buildRepositories selects the durable pgx-backed store when a database URL
// is configured, falling back to the in-memory store otherwise.
func buildRepositories(cfg *config.Config, logger *slog.Logger) (*ports.RepositoryProvider, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("No database configured, using in-memory rate store")
		return memory.NewRepositoryProvider(), func() {}, nil
	}

	pool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
		pool.Close()
		return nil, nil, err
	}

	return pgsql.NewRepositoryProvider(pool), pool.Close, nil
}

// runMigrations applies all available "up" migrations using a temporary
// database/sql connection compatible with the main pool.
func runMigrations(databaseURL string, logger *slog.Logger) error {
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return err
	}
	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.DefaultConfig()
	if len(cfg.CORSAllowOrigins) == 1 && cfg.CORSAllowOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORSAllowOrigins
	}
	return corsCfg
}
