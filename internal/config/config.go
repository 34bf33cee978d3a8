package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
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
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// BaseURL is the externally reachable UI address used for the
	// View Secret links embedded in notification cards.
	BaseURL string

	// Outbound webhook delivery
	WebhookTimeout  time.Duration
	DeliveryWorkers int
	DeliveryRate    int // deliveries per second

	// Notification policy
	HorizonDays int
	CronSpec    string
	Timezone    string
}

func Load() (*Config, error) {
	// A missing .env file is fine; existing env variables are never overridden.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		ReadTimeout:     getDuration("READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    getDuration("WRITE_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		DatabaseURL: dbURL,
		DBMaxConns:  int32(getInt("DB_MAX_CONNS", 25)),
		DBMinConns:  int32(getInt("DB_MIN_CONNS", 5)),

		BaseURL: getEnv("BASE_URL", "http://localhost:3000"),

		WebhookTimeout:  getDuration("WEBHOOK_TIMEOUT", 10*time.Second),
		DeliveryWorkers: getInt("DELIVERY_WORKERS", 4),
		DeliveryRate:    getInt("DELIVERY_RATE_PER_SEC", 10),

		HorizonDays: getInt("NOTIFY_HORIZON_DAYS", 14),
		CronSpec:    getEnv("NOTIFY_CRON", "0 12 * * *"),
		Timezone:    getEnv("NOTIFY_TIMEZONE", "Europe/Berlin"),
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
