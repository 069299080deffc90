package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr            string
	Env             string
	DatabaseURL     string
	JWTSecret       string
	SessionLifetime time.Duration

	RedisAddr    string
	FeedCacheTTL time.Duration

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	MinioPublicURL string

	// LunchThrottle blocks post writes during the 13:00-14:59 window.
	// Shipped off by default.
	LunchThrottle bool
}

func Load() *Config {
	return &Config{
		Addr:            ":" + getEnv("PORT", "8080"),
		Env:             getEnv("ENV", "development"),
		DatabaseURL:     getEnv("DATABASE_URL", "yatube.db"),
		JWTSecret:       getEnv("JWT_SECRET", "supersecretjwtkey"),
		SessionLifetime: getDuration("SESSION_LIFETIME", 24*time.Hour),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		FeedCacheTTL:    getDuration("FEED_CACHE_TTL", 20*time.Second),
		MinioEndpoint:   getEnv("MINIO_ENDPOINT", ""),
		MinioAccessKey:  getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:  getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:     getEnv("MINIO_BUCKET", "yatube"),
		MinioUseSSL:     getBool("MINIO_USE_SSL", false),
		MinioPublicURL:  getEnv("MINIO_PUBLIC_URL", ""),
		LunchThrottle:   getBool("LUNCH_THROTTLE", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultValue
	}
	return b
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultValue
	}
	return d
}
