package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/loadlinkhq/loadlink-backend/internal/apps"
	"github.com/loadlinkhq/loadlink-backend/internal/apps/bookings"
	"github.com/loadlinkhq/loadlink-backend/internal/apps/loads"
	"github.com/loadlinkhq/loadlink-backend/internal/apps/trucks"
	"github.com/loadlinkhq/loadlink-backend/internal/config"
	"github.com/loadlinkhq/loadlink-backend/internal/database"
	"github.com/loadlinkhq/loadlink-backend/internal/handlers"
	"github.com/loadlinkhq/loadlink-backend/internal/identity"
	"github.com/loadlinkhq/loadlink-backend/internal/logging"
	"github.com/loadlinkhq/loadlink-backend/internal/middleware"
	"github.com/loadlinkhq/loadlink-backend/internal/routes"
	"github.com/loadlinkhq/loadlink-backend/internal/services"
	"github.com/loadlinkhq/loadlink-backend/internal/token"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.TokenSecret == "" {
		slog.Error("ACCESS_TOKEN_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database — mandatory; there is no degraded mode without storage
	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	if err := database.MigrateShared(db); err != nil {
		slog.Error("shared migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(db)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		pgLogHandler,
	)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(db, cleanupDone)

	issuer := token.NewIssuer(cfg.TokenSecret, cfg.TokenLifetime)

	// Federated identity verifiers. Discovery failure disables the
	// corresponding login route (it answers 503) instead of killing the
	// process: phone/password login must survive a Google outage.
	initCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	googleVerifier := buildVerifier(initCtx, "google", cfg.GoogleClientID, identity.NewGoogleVerifier)
	firebaseVerifier := buildVerifier(initCtx, "firebase", cfg.FirebaseProjectID, identity.NewFirebaseVerifier)
	cancel()

	// Services
	authService := services.NewAuthService(db, issuer, googleVerifier, firebaseVerifier)

	// Marketplace feature plugins
	plugins := []apps.Plugin{
		loads.New(),
		trucks.New(),
		bookings.New(),
	}

	for _, p := range plugins {
		if pluginModels := p.Models(); len(pluginModels) > 0 {
			if err := database.MigrateModels(db, pluginModels); err != nil {
				slog.Error("plugin migration failed", "plugin", p.ID(), "error", err)
				os.Exit(1)
			}
			slog.Info("plugin migrated", "plugin", p.ID(), "models", len(pluginModels))
		}
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, cfg.TokenLifetime)
	healthHandler := handlers.NewHealthHandler(db)
	adminHandler := handlers.NewAdminHandler(authService)

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		return c.Next()
	})

	// Routes
	routes.Setup(app, db, issuer, authHandler, healthHandler, adminHandler, plugins)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

// buildVerifier constructs one federated verifier, logging and returning
// nil (capability disabled) when configuration is absent or discovery
// fails.
func buildVerifier(ctx context.Context, name, audience string, build func(context.Context, string) (*identity.OIDCVerifier, error)) identity.Verifier {
	if audience == "" {
		slog.Warn("federated login not configured", "provider", name)
		return nil
	}
	v, err := build(ctx, audience)
	if err != nil {
		slog.Error("federated verifier init failed, provider disabled", "provider", name, "error", err)
		return nil
	}
	slog.Info("federated verifier ready", "provider", name)
	return v
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
