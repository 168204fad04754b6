package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/loadlinkhq/loadlink-backend/internal/apps"
	"github.com/loadlinkhq/loadlink-backend/internal/handlers"
	"github.com/loadlinkhq/loadlink-backend/internal/middleware"
	"github.com/loadlinkhq/loadlink-backend/internal/models"
	"github.com/loadlinkhq/loadlink-backend/internal/token"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	db *gorm.DB,
	issuer *token.Issuer,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	adminHandler *handlers.AdminHandler,
	plugins []apps.Plugin,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Health (public)
	api.Get("/health", healthHandler.Check)

	// Auth — public, with a stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/google", authHandler.GoogleLogin)
	auth.Post("/firebase/login", authHandler.FirebaseLogin)

	// Protected profile routes — apply the gate per-route so the public
	// auth endpoints above stay public
	api.Get("/auth/me", middleware.Protected(issuer), authHandler.Me)
	api.Put("/auth/profile", middleware.Protected(issuer), authHandler.UpdateProfile)

	// Admin back office
	admin := api.Group("/admin", middleware.Protected(issuer), middleware.RequireRoles(models.RoleAdmin))
	admin.Get("/users", adminHandler.ListUsers)
	admin.Put("/users/:id/verify", adminHandler.VerifyUser)

	// Marketplace features: a protected group for plugin routes, plus a
	// download group whose gate also accepts the ?token= credential.
	// Downloads get their own prefix because group middleware applies to
	// everything under the prefix.
	protected := api.Group("/p", middleware.Protected(issuer))
	download := api.Group("/downloads", middleware.ProtectedDownload(issuer))
	for _, p := range plugins {
		p.RegisterRoutes(protected, db, issuer)
		if ap, ok := p.(apps.AdminPlugin); ok {
			ap.RegisterAdminRoutes(admin, db)
		}
		if dp, ok := p.(apps.DownloadPlugin); ok {
			dp.RegisterDownloadRoutes(download, db)
		}
	}
}
