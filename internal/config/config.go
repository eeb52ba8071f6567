package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	// Postgres and Cloudinary credentials are read from the environment
	// by pkg/database and pkg/storage themselves.
	RedisURL string

	MeiliSearchHost string
	MeiliMasterKey  string

	// Notification pipeline tunables.
	NotifCooldownWindow        time.Duration
	NotifRetentionDays         int
	NotifProfitImpactThreshold float64

	// Scan schedules (cron expressions) and windows.
	StockScanSchedule    string
	ExpiryScanSchedule   string
	DailyReportSchedule  string
	RetentionSchedule    string
	ExpiryWarningWindow  time.Duration
	ExpiryCriticalWindow time.Duration
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		RedisURL: os.Getenv("REDIS_URL"),

		MeiliSearchHost: getEnv("MEILISEARCH_HOST", "http://localhost:7700"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		NotifRetentionDays: getEnvInt("NOTIF_RETENTION_DAYS", 30),

		StockScanSchedule:   getEnv("STOCK_SCAN_SCHEDULE", "*/30 * * * *"),
		ExpiryScanSchedule:  getEnv("EXPIRY_SCAN_SCHEDULE", "0 7 * * *"),
		DailyReportSchedule: getEnv("DAILY_REPORT_SCHEDULE", "0 21 * * *"),
		RetentionSchedule:   getEnv("RETENTION_SCHEDULE", "0 3 * * *"),
	}

	var err error
	cfg.NotifCooldownWindow, err = time.ParseDuration(getEnv("NOTIF_COOLDOWN_WINDOW", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIF_COOLDOWN_WINDOW: %w", err)
	}
	cfg.ExpiryWarningWindow, err = time.ParseDuration(getEnv("EXPIRY_WARNING_WINDOW", "2160h")) // 90 days
	if err != nil {
		return nil, fmt.Errorf("invalid EXPIRY_WARNING_WINDOW: %w", err)
	}
	cfg.ExpiryCriticalWindow, err = time.ParseDuration(getEnv("EXPIRY_CRITICAL_WINDOW", "720h")) // 30 days
	if err != nil {
		return nil, fmt.Errorf("invalid EXPIRY_CRITICAL_WINDOW: %w", err)
	}
	cfg.NotifProfitImpactThreshold, err = strconv.ParseFloat(getEnv("NOTIF_PROFIT_IMPACT_THRESHOLD", "1000"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIF_PROFIT_IMPACT_THRESHOLD: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if v, err := strconv.Atoi(value); err == nil {
			return v
		}
	}
	return fallback
}
