package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	BotToken      string
	StoreDriver   string
	StoreTimeout  time.Duration
	CatalogSeed   int64
	SessionMaxAge time.Duration
	HealthAddr    string
	Database      DatabaseConfig
	SQLite        SQLiteConfig
	Redis         RedisConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
}

// SQLiteConfig holds embedded database settings
type SQLiteConfig struct {
	Path     string
	PoolSize int
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg, err := LoadStore()
	if err != nil {
		return nil, err
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}

	return cfg, nil
}

// LoadStore reads configuration without requiring bot credentials.
// Used by tools that only talk to the store.
func LoadStore() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	timeoutMs, err := getEnvInt("STORE_TIMEOUT_MS", 3000)
	if err != nil {
		return nil, err
	}
	if timeoutMs <= 0 {
		return nil, fmt.Errorf("STORE_TIMEOUT_MS must be positive, got %d", timeoutMs)
	}

	seed, err := strconv.ParseInt(getEnv("CATALOG_SEED", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid CATALOG_SEED value: %w", err)
	}

	maxAgeHours, err := getEnvInt("SESSION_MAX_AGE_HOURS", 24)
	if err != nil {
		return nil, err
	}
	if maxAgeHours < 0 {
		return nil, fmt.Errorf("SESSION_MAX_AGE_HOURS must not be negative, got %d", maxAgeHours)
	}

	sqlitePoolSize, err := getEnvInt("SQLITE_POOL_SIZE", 4)
	if err != nil {
		return nil, err
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		BotToken:      os.Getenv("BOT_TOKEN"),
		StoreDriver:   getEnv("STORE_DRIVER", DriverPostgres),
		StoreTimeout:  time.Duration(timeoutMs) * time.Millisecond,
		CatalogSeed:   seed,
		SessionMaxAge: time.Duration(maxAgeHours) * time.Hour,
		HealthAddr:    os.Getenv("HEALTH_ADDR"),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "melodybot"),
			User:     getEnv("DB_USER", "melodybot"),
			Password: os.Getenv("DB_PASSWORD"),
		},
		SQLite: SQLiteConfig{
			Path:     getEnv("SQLITE_PATH", "melodybot.db"),
			PoolSize: sqlitePoolSize,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
	}

	switch cfg.StoreDriver {
	case DriverPostgres:
		if cfg.Database.Password == "" {
			return nil, fmt.Errorf("DB_PASSWORD is required")
		}
	case DriverSQLite, DriverRedis, DriverMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	return cfg, nil
}

// DSN returns PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return n, nil
}
