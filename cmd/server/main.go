package main

import (
	"log"

	"github.com/labstack/echo/v4"
	"github.com/wandertales/backend/internal/realtime"
	"github.com/wandertales/backend/internal/router"
	"github.com/wandertales/backend/pkg/config"
	"github.com/wandertales/backend/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connection
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.CloseDB() // Ensure database connection is closed when main exits

	// Start the realtime broadcast hub
	hub := realtime.NewHub()
	go hub.Run()

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Validator
	e.Validator = validators.NewValidator()

	// Setup routes and dependencies
	router.SetupRoutes(e, cfg, db.Mongo.Database(cfg.MongoDB), hub)

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
