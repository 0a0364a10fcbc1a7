package config

import (
	"os"
	"strings"
	"time"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port           string
	MongoURI       string
	MongoDB        string
	RedisAddr      string
	RedisPassword  string
	JWTSecret      string
	JWTIssuer      string
	TokenTTL       time.Duration
	PostCacheTTL   time.Duration
	AllowedOrigins []string
	LogLevel       string
	LogJSON        bool
}

func Load() *Config {
	return &Config{
		Port:           getenv("PORT", "8080"),
		MongoURI:       getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:        getenv("MONGO_DB", "blog"),
		RedisAddr:      getenv("REDIS_ADDR", "redis:6379"),
		RedisPassword:  getenv("REDIS_PASSWORD", ""),
		JWTSecret:      getenv("JWT_SECRET", ""),
		JWTIssuer:      getenv("JWT_ISSUER", "blogapi"),
		TokenTTL:       getdur("TOKEN_TTL", 24*time.Hour),
		PostCacheTTL:   getdur("POST_CACHE_TTL", 30*time.Second),
		AllowedOrigins: strings.Split(getenv("ALLOWED_ORIGINS", "http://localhost:3000"), ","),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		LogJSON:        getenv("LOG_JSON", "false") == "true",
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getdur(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
