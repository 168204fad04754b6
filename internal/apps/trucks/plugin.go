package trucks

import (
	"github.com/gofiber/fiber/v2"
	"github.com/loadlinkhq/loadlink-backend/internal/middleware"
	"github.com/loadlinkhq/loadlink-backend/internal/models"
	"github.com/loadlinkhq/loadlink-backend/internal/token"
	"gorm.io/gorm"
)

type TrucksPlugin struct{}

func New() *TrucksPlugin {
	return &TrucksPlugin{}
}

func (p *TrucksPlugin) ID() string { return "trucks" }

func (p *TrucksPlugin) Models() []interface{} {
	return []interface{}{
		&Truck{},
	}
}

func (p *TrucksPlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, _ *token.Issuer) {
	svc := NewTruckService(db)
	handler := NewTruckHandler(svc)

	router.Post("/trucks", middleware.RequireRoles(models.RoleDriver), handler.Create)
	router.Get("/trucks", middleware.RequireRoles(), handler.List)
	router.Get("/trucks/mine", middleware.RequireRoles(models.RoleDriver), handler.ListMine)
	router.Put("/trucks/:id/availability", middleware.RequireRoles(models.RoleDriver), handler.SetAvailability)
}
