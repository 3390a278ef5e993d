package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/juazsh/ata-portal-sub001/internal/config"
	"github.com/juazsh/ata-portal-sub001/internal/database"
	"github.com/juazsh/ata-portal-sub001/internal/logger"
	"github.com/juazsh/ata-portal-sub001/internal/routes"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync()

	// 2. Connect Database
	if err := database.ConnectDB(cfg.DBUrl); err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB()

	// 3. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "ata-portal",
	})

	app.Use(cors.New())
	app.Use(fiberlogger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// 4. Register Routes
	if err := routes.RegisterRoutes(app, cfg, database.DB, zl); err != nil {
		zl.Fatal("failed to register routes", zap.Error(err))
	}

	// 5. Start Server
	zl.Info("starting server", zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}
