package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	Env              string
	MongoURI         string
	MongoDB          string
	JWTSecret        string
	JWTTTL           time.Duration
	UploadDir        string
	GeocodeURL       string
	GeocodeUserAgent string
}

func Load() *Config {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	return &Config{
		Port:             getEnv("PORT", "8080"),
		Env:              getEnv("ENV", "development"),
		MongoURI:         getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
		MongoDB:          getEnv("MONGO_DB", "travelblog"),
		JWTSecret:        getEnv("JWT_SECRET", "secretKey"),
		JWTTTL:           time.Duration(getEnvInt("JWT_TTL_MINUTES", 60)) * time.Minute,
		UploadDir:        getEnv("UPLOAD_DIR", "uploads"),
		GeocodeURL:       getEnv("GEOCODE_URL", "https://nominatim.openstreetmap.org"),
		GeocodeUserAgent: getEnv("GEOCODE_USER_AGENT", "wandertales/1.0 (contact: dev@wandertales.app)"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
