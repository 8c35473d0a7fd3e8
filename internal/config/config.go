package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port               string
	DBHost             string
	DBPort             string
	DBUser             string
	DBPassword         string
	DBName             string
	DBSSLMode          string
	AutoMigrate        bool
	GinMode            string
	RedisAddr          string
	RouteCacheTTL      time.Duration
	EligibilityTimeout time.Duration
}

func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "5432"),
		DBUser:             getEnv("DB_USER", "routing"),
		DBPassword:         getEnv("DB_PASSWORD", "routing_secret"),
		DBName:             getEnv("DB_NAME", "routing"),
		DBSSLMode:          getEnv("DB_SSLMODE", "disable"),
		AutoMigrate:        getEnv("AUTO_MIGRATE", "false") == "true",
		GinMode:            getEnv("GIN_MODE", "debug"),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RouteCacheTTL:      getDurationMs("ROUTE_CACHE_TTL_MS", 30_000),
		EligibilityTimeout: getDurationMs("ELIGIBILITY_TIMEOUT_MS", 2_000),
	}
}

func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getDurationMs(key string, fallback int) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if ms, err := strconv.Atoi(value); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return time.Duration(fallback) * time.Millisecond
}
