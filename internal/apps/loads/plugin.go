package loads

import (
	"github.com/gofiber/fiber/v2"
	"github.com/loadlinkhq/loadlink-backend/internal/middleware"
	"github.com/loadlinkhq/loadlink-backend/internal/models"
	"github.com/loadlinkhq/loadlink-backend/internal/token"
	"gorm.io/gorm"
)

type LoadsPlugin struct{}

func New() *LoadsPlugin {
	return &LoadsPlugin{}
}

func (p *LoadsPlugin) ID() string { return "loads" }

func (p *LoadsPlugin) Models() []interface{} {
	return []interface{}{
		&Load{},
	}
}

func (p *LoadsPlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, _ *token.Issuer) {
	svc := NewLoadService(db)
	handler := NewLoadHandler(svc)

	router.Post("/loads", middleware.RequireRoles(models.RoleCustomer), handler.Create)
	router.Get("/loads", middleware.RequireRoles(), handler.List)
	router.Get("/loads/mine", middleware.RequireRoles(models.RoleCustomer), handler.ListMine)
	router.Get("/loads/:id", middleware.RequireRoles(), handler.Get)
	router.Delete("/loads/:id", middleware.RequireRoles(models.RoleCustomer), handler.Cancel)
}
