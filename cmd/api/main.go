package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"tiktokapi/docs"
	"tiktokapi/internal/config"
	"tiktokapi/internal/database"
	"tiktokapi/internal/database/migration"
	handlers "tiktokapi/internal/http/handler"
	"tiktokapi/internal/http/middleware"
	"tiktokapi/internal/logger"
	tracing "tiktokapi/internal/otel"
	"tiktokapi/internal/repository/postgres"
	"tiktokapi/internal/service"
	"tiktokapi/internal/storage"
	"tiktokapi/internal/tiktok"
)

// @title TikTok API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := logger.LoadLocation(cfg.Timezone)
	log := logger.NewStdout(cfg.LogLevel, loc)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, log)
	if err != nil {
		log.Fatal("tracing_init_failed", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	tkMetrics, err := tiktok.NewMetrics(reg)
	if err != nil {
		log.Fatal("metrics_init_failed", zap.Error(err))
	}

	// Session bootstrap: one shared client for every handler
	client, err := tiktok.New(ctx, tiktok.Config{
		MSToken:     cfg.TikTok.MSToken,
		Headless:    cfg.TikTok.Headless,
		Browser:     cfg.TikTok.Browser,
		NumSessions: cfg.TikTok.NumSessions,
		Timeout:     time.Duration(cfg.TikTok.TimeoutSec) * time.Second,
	}, tiktok.WithMetrics(tkMetrics), tiktok.WithLogger(log))
	if err != nil {
		log.Fatal("tiktok_client_init_failed", zap.Error(err))
	}

	var (
		db      *sql.DB
		archive service.ArchiveService
	)
	if cfg.Archive.Enabled {
		db, archive, err = openArchive(ctx, cfg, log)
		if err != nil {
			log.Fatal("archive_init_failed", zap.Error(err))
		}
		defer db.Close()
	}

	tkSvc := service.NewTikTokService(client, archive, log)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		ReadTimeout:  10 * time.Second,
		// Upstream lookups can page through many requests.
		WriteTimeout: 2 * time.Minute,
	})

	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatal("metrics_init_failed", zap.Error(err))
	}

	// Register global middleware
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(promMiddleware.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	handlers.RegisterRoutes(app, handlers.Deps{
		DB:      db,
		TikTok:  tkSvc,
		Archive: archive,
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.Info("http_server_start", zap.String("addr", addr), zap.Bool("archive_enabled", archive != nil))
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal("http_server_failed", zap.Error(err))
		}
	case <-ctx.Done():
		log.Info("http_server_stop", zap.String("reason", "signal"))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		log.Error("http_server_shutdown_failed", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing_shutdown_failed", zap.Error(err))
	}
}

// openArchive connects the database, applies the schema and selects the
// object store backing the fetch archive.
func openArchive(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (*sql.DB, service.ArchiveService, error) {
	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	store, err := storage.New(cfg.Archive.StorageDriver, cfg.MinIO, cfg.S3)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	log.Info("archive_ready", zap.String("storage_driver", cfg.Archive.StorageDriver))

	return db, service.NewArchiveService(store, postgres.NewFetchPostgres(db)), nil
}
