package router

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/wandertales/backend/internal/geocode"
	"github.com/wandertales/backend/internal/handlers"
	"github.com/wandertales/backend/internal/middleware"
	"github.com/wandertales/backend/internal/realtime"
	"github.com/wandertales/backend/internal/repositories"
	"github.com/wandertales/backend/internal/upload"
	"github.com/wandertales/backend/pkg/config"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/time/rate"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.Use(eMiddleware.Logger())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, cfg *config.Config, db *mongo.Database, hub *realtime.Hub) {
	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// Uploaded images served read-only
	e.Static("/uploads", cfg.UploadDir)

	// --- Initialize dependencies ---
	userRepo := repositories.NewMongoUserRepository(db)
	postRepo := repositories.NewMongoPostRepository(db)

	uploads, err := upload.NewStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to create upload directories: %v", err)
	}
	geocoder := geocode.NewClient(cfg.GeocodeURL, cfg.GeocodeUserAgent)

	authMW := middleware.JWTAuth(cfg.JWTSecret)
	adminMW := middleware.AdminAuth(cfg.JWTSecret)

	// Credential endpoints get a per-IP rate limit
	loginLimiter := eMiddleware.RateLimiterWithConfig(eMiddleware.RateLimiterConfig{
		Store: eMiddleware.NewRateLimiterMemoryStoreWithConfig(eMiddleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(5),
			Burst:     10,
			ExpiresIn: 3 * time.Minute,
		}),
	})

	// --- Auth and profile routes ---
	authHandler := handlers.NewAuthHandler(userRepo, uploads, hub, cfg.JWTSecret, cfg.JWTTTL)
	authHandler.RegisterPublicRoutes(e.Group("/api/auth", loginLimiter))
	authHandler.RegisterProtectedRoutes(e.Group("/api/auth", authMW))
	log.Println("Auth routes configured.")

	// --- Post routes ---
	postHandler := handlers.NewPostHandler(postRepo, userRepo, uploads, hub)
	postHandler.RegisterPublicRoutes(e.Group("/api/posts"))
	postHandler.RegisterProtectedRoutes(e.Group("/api/posts", authMW))
	log.Println("Post routes configured.")

	// --- Blog (location) routes ---
	blogHandler := handlers.NewBlogHandler(postHandler, postRepo, geocoder)
	blogHandler.RegisterPublicRoutes(e.Group("/api/blogs"))
	blogHandler.RegisterProtectedRoutes(e.Group("/api/blogs", authMW))
	log.Println("Blog routes configured.")

	// --- Admin routes ---
	adminHandler := handlers.NewAdminHandler(userRepo, postRepo)
	adminHandler.RegisterAdminRoutes(e.Group("/api/admin", adminMW))
	log.Println("Admin routes configured.")

	// --- Realtime channel ---
	e.GET("/ws", realtime.ServeWS(hub))
	log.Println("Realtime channel configured.")

	log.Println("All routes configured.")
}
