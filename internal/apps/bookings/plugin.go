package bookings

import (
	"github.com/gofiber/fiber/v2"
	"github.com/loadlinkhq/loadlink-backend/internal/middleware"
	"github.com/loadlinkhq/loadlink-backend/internal/models"
	"github.com/loadlinkhq/loadlink-backend/internal/token"
	"gorm.io/gorm"
)

type BookingsPlugin struct{}

func New() *BookingsPlugin {
	return &BookingsPlugin{}
}

func (p *BookingsPlugin) ID() string { return "bookings" }

func (p *BookingsPlugin) Models() []interface{} {
	return []interface{}{
		&Booking{},
	}
}

func (p *BookingsPlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, issuer *token.Issuer) {
	svc := NewBookingService(db)
	handler := NewBookingHandler(svc)

	router.Post("/bookings", middleware.RequireRoles(models.RoleDriver), handler.Create)
	router.Get("/bookings", middleware.RequireRoles(), handler.List)
	router.Put("/bookings/:id/status", middleware.RequireRoles(models.RoleDriver), handler.UpdateStatus)
}

// RegisterDownloadRoutes mounts the document endpoints on a group that
// also accepts the ?token= credential source.
func (p *BookingsPlugin) RegisterDownloadRoutes(router fiber.Router, db *gorm.DB) {
	svc := NewBookingService(db)
	handler := NewBookingHandler(svc)

	router.Get("/bookings/:id/bilty", handler.Bilty)
	router.Get("/bookings/:id/invoice", handler.Invoice)
}
