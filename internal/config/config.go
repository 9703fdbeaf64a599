package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	MongoURI           string
	DBName             string
	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	Environment        string
	RedisAddr          string
	Port               string
}

// IsProduction gates the Secure flag on auth cookies.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsTest disables rate limiting.
func (c Config) IsTest() bool {
	return c.Environment == "test"
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = Config{
		MongoURI:           getEnvOrDefault("MONGO_URI", ""),
		DBName:             getEnvOrDefault("DB_NAME", "listmanagement"),
		AccessTokenSecret:  getEnvOrDefault("ACCESS_TOKEN_SECRET", ""),
		RefreshTokenSecret: getEnvOrDefault("REFRESH_TOKEN_SECRET", ""),
		AccessTokenTTL:     getDurationEnv("ACCESS_TOKEN_TTL", 15, time.Minute),
		RefreshTokenTTL:    getDurationEnv("REFRESH_TOKEN_TTL", 7, 24*time.Hour),
		Environment:        getEnvOrDefault("APP_ENV", "development"),
		RedisAddr:          getEnvOrDefault("REDIS_ADDR", ""),
		Port:               getEnvOrDefault("PORT", "8080"),
	}

	if AppEnv.AccessTokenSecret == "" || AppEnv.RefreshTokenSecret == "" {
		log.Fatal("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET are required")
	}
	if AppEnv.AccessTokenSecret == AppEnv.RefreshTokenSecret {
		log.Fatal("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}
