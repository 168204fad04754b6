package apps

import (
	"github.com/gofiber/fiber/v2"
	"github.com/loadlinkhq/loadlink-backend/internal/token"
	"gorm.io/gorm"
)

// Plugin defines the interface every marketplace feature must implement.
type Plugin interface {
	// ID returns the unique feature identifier.
	ID() string

	// Models returns the list of GORM model pointers for AutoMigrate.
	Models() []interface{}

	// RegisterRoutes mounts feature routes on the given Fiber group. The
	// group is already JWT-protected; features add their own role gates.
	RegisterRoutes(router fiber.Router, db *gorm.DB, issuer *token.Issuer)
}

// AdminPlugin extends Plugin with admin-only route registration. The admin
// group has both the auth gate and the admin role gate applied.
type AdminPlugin interface {
	Plugin

	RegisterAdminRoutes(router fiber.Router, db *gorm.DB)
}

// DownloadPlugin extends Plugin with routes mounted on the download group,
// whose auth gate also accepts the ?token= query credential.
type DownloadPlugin interface {
	Plugin

	RegisterDownloadRoutes(router fiber.Router, db *gorm.DB)
}
