// Package server assembles the Fiber application and its routes.
package server

import (
	"log"
	"time"

	"grosir/internal/database"
	"grosir/internal/handlers"
	"grosir/internal/middleware"
	"grosir/internal/services"
	"grosir/pkg/result"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	DB       *gorm.DB
	Auth     *services.AuthService
	Products *services.ProductService
	Out      result.Writer

	// UploadDir is served under /uploads when set.
	UploadDir      string
	MaxUploadBytes int
	// EventsEnabled is reported by /health.
	EventsEnabled bool
	// AccessLog turns on the request logger.
	AccessLog bool
}

// New builds the application with every route registered.
func New(d Deps) *fiber.App {
	cfg := fiber.Config{
		ErrorHandler: d.Out.ErrorHandler,
		UnescapePath: true,
	}
	if d.MaxUploadBytes > 0 {
		cfg.BodyLimit = d.MaxUploadBytes
	}
	app := fiber.New(cfg)

	app.Use(recover.New())
	if d.AccessLog {
		app.Use(logger.New())
	}

	if d.UploadDir != "" {
		app.Static("/uploads", d.UploadDir)
	}

	app.Get("/health", healthHandler(d))

	authRequired := middleware.AuthRequired(d.Auth, d.Out)
	handlers.NewAuthHandler(d.Auth, d.Out).RegisterRoutes(app)
	handlers.NewProductHandler(d.Products, d.Out).RegisterRoutes(app, authRequired)

	return app
}

func healthHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbStatus := "connected"
		if err := database.Ping(d.DB); err != nil {
			log.Printf("Health check: database ping failed: %v", err)
			dbStatus = "unreachable"
		}
		events := "disabled"
		if d.EventsEnabled {
			events = "enabled"
		}

		status := "healthy"
		if dbStatus != "connected" {
			status = "degraded"
		}
		return d.Out.Send(c, fiber.Map{
			"status":   status,
			"time":     time.Now().Format(time.RFC3339),
			"database": dbStatus,
			"events":   events,
		}, nil)
	}
}
