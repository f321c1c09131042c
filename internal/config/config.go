package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Session  SessionConfig
	Cache    CacheConfig
	Storage  StorageConfig
	Demo     DemoConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	GinMode            string
	CORSAllowedOrigins string
	ShutdownTimeout    time.Duration
}

// DatabaseConfig selects the gorm dialector and its connection settings.
// Driver is one of "sqlite", "postgres" or "mysql".
type DatabaseConfig struct {
	Driver   string
	DSN      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// RedisConfig holds Redis connection settings. An empty Host disables Redis.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type SessionConfig struct {
	Secret string
	MaxAge int
}

// CacheConfig tunes the query cache.
type CacheConfig struct {
	StaleTime    time.Duration
	GCTime       time.Duration
	RetryCount   int
	RetryBackoff time.Duration
	GCSchedule   string
}

// StorageConfig configures video media resolution. An empty Region disables S3.
type StorageConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	PresignExpiry   time.Duration
}

// DemoConfig controls the seeded demo data and the simulated data-service latency.
type DemoConfig struct {
	Seed    bool
	Latency time.Duration
}

// Addr returns the Redis address, or "" when Redis is disabled.
func (c RedisConfig) Addr() string {
	if c.Host == "" {
		return ""
	}
	return c.Host + ":" + c.Port
}

// IsRelease reports whether gin runs in release mode.
func (c ServerConfig) IsRelease() bool {
	return c.GinMode == "release"
}

// Load reads configuration from the environment, with an optional .env file.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			GinMode:            getEnv("GIN_MODE", "debug"),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			ShutdownTimeout:    getEnvDuration("SHUTDOWN_TIMEOUT", 5*time.Second),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
			DSN:      getEnv("DB_DSN", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "lmsuser"),
			Password: getEnv("DB_PASSWORD", "lmspassword"),
			Name:     getEnv("DB_NAME", "learning_admin"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Session: SessionConfig{
			Secret: getEnv("SESSION_SECRET", "default-secret-key-change-me"),
			MaxAge: getEnvInt("SESSION_MAX_AGE", 86400*7),
		},
		Cache: CacheConfig{
			StaleTime:    getEnvDuration("CACHE_STALE_TIME", 5*time.Minute),
			GCTime:       getEnvDuration("CACHE_GC_TIME", 5*time.Minute),
			RetryCount:   getEnvInt("CACHE_RETRY_COUNT", 3),
			RetryBackoff: getEnvDuration("CACHE_RETRY_BACKOFF", time.Second),
			GCSchedule:   getEnv("CACHE_GC_SCHEDULE", "@every 1m"),
		},
		Storage: StorageConfig{
			Region:          getEnv("AWS_REGION", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			PresignExpiry:   getEnvDuration("MEDIA_PRESIGN_EXPIRY", 15*time.Minute),
		},
		Demo: DemoConfig{
			Seed:    getEnvBool("SEED_DEMO_DATA", true),
			Latency: getEnvDuration("SIMULATED_LATENCY", 0),
		},
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go duration strings ("250ms", "5m").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}
