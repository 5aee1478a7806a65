package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field has a sensible default; only DATABASE_URL is required.
type Config struct {
	// Server
	HTTPPort        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Database
	DatabaseURL    string
	DBMaxConns     int32
	DBMinConns     int32
	DBConnLifetime time.Duration
	MigrationsDir  string

	// External push gateway
	GatewayBaseURL string
	GatewayTimeout time.Duration

	// Fan-out: recipient tokens fetched per page, one bulk insert per page
	FanOutPageSize int

	// Drain: entries read per chunk, hard cap per cycle, trigger interval
	DrainChunkSize int
	DrainMaxPerRun int
	DrainInterval  time.Duration

	// Rate limiting: maximum deliveries per second
	DeliveryRateLimit int
}

func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		ReadTimeout:     getDuration("READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    getDuration("WRITE_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		DatabaseURL:    dbURL,
		DBMaxConns:     int32(getInt("DB_MAX_CONNS", 25)),
		DBMinConns:     int32(getInt("DB_MIN_CONNS", 5)),
		DBConnLifetime: getDuration("DB_CONN_LIFETIME", 30*time.Minute),
		MigrationsDir:  getEnv("MIGRATIONS_DIR", "migrations"),

		GatewayBaseURL: getEnv("GATEWAY_BASE_URL", "https://push-gateway.invalid/send"),
		GatewayTimeout: getDuration("GATEWAY_TIMEOUT", 10*time.Second),

		FanOutPageSize: getInt("FANOUT_PAGE_SIZE", 5000),

		DrainChunkSize: getInt("DRAIN_CHUNK_SIZE", 10000),
		DrainMaxPerRun: getInt("DRAIN_MAX_PER_RUN", 100000),
		DrainInterval:  getDuration("DRAIN_INTERVAL", time.Minute),

		DeliveryRateLimit: getInt("DELIVERY_RATE_LIMIT", 0),
	}, nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
