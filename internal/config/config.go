package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port         int
	DevMode      bool
	LogLevel     string
	DatabasePath string

	// External provider endpoints
	StatsAPIBaseURL string
	OddsURL         string
	Season          int

	// Operating-day computation
	Timezone    string
	CutoverHour int

	// Caching and retention
	CacheTTL      time.Duration
	RosterTTL     time.Duration
	LookupTTL     time.Duration
	RetentionDays int

	// Fetching
	FetchTimeout time.Duration
	PreloadDelay time.Duration

	// Vulnerability analysis
	MinSampleSize int
	MinHRRate     float64
	TopPitchers   int

	// Report generation
	VariantCount int

	// Job anchors, local time "HH:MM" in Timezone
	CleanupAt string
	RefreshAt string
	PreloadAt string
	ReportAt  string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnvAsInt("PORT", 8080),
		DevMode:      getEnvAsBool("DEV_MODE", false),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		DatabasePath: getEnv("DATABASE_PATH", "./data/daily_mlb_data.db"),

		StatsAPIBaseURL: getEnv("STATSAPI_BASE_URL", "https://statsapi.mlb.com/api/v1"),
		OddsURL:         getEnv("ODDS_URL", "https://djstrauss08.github.io/HomeRunOdds/api/v1/homerun-props.json"),
		Season:          getEnvAsInt("SEASON", 2025),

		Timezone:    getEnv("OPERATING_TIMEZONE", "US/Eastern"),
		CutoverHour: getEnvAsInt("CUTOVER_HOUR", 3),

		CacheTTL:      getEnvAsDuration("CACHE_TTL", 5*time.Minute),
		RosterTTL:     getEnvAsDuration("ROSTER_TTL", time.Hour),
		LookupTTL:     getEnvAsDuration("LOOKUP_TTL", 24*time.Hour),
		RetentionDays: getEnvAsInt("RETENTION_DAYS", 7),

		FetchTimeout: getEnvAsDuration("FETCH_TIMEOUT", 10*time.Second),
		PreloadDelay: getEnvAsDuration("PRELOAD_DELAY", 2*time.Second),

		MinSampleSize: getEnvAsInt("MIN_SAMPLE_SIZE", 100),
		MinHRRate:     getEnvAsFloat("MIN_HR_RATE", 0.5),
		TopPitchers:   getEnvAsInt("TOP_PITCHERS", 3),

		VariantCount: getEnvAsInt("REPORT_VARIANTS", 0), // 0 = all built-in variants

		CleanupAt: getEnv("CLEANUP_AT", "02:00"),
		RefreshAt: getEnv("REFRESH_AT", "03:00"),
		PreloadAt: getEnv("PRELOAD_AT", "03:30"),
		ReportAt:  getEnv("REPORT_AT", "11:00"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present and coherent
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.CutoverHour < 0 || c.CutoverHour > 23 {
		return fmt.Errorf("CUTOVER_HOUR must be between 0 and 23, got %d", c.CutoverHour)
	}
	if c.RetentionDays < 1 {
		return fmt.Errorf("RETENTION_DAYS must be at least 1, got %d", c.RetentionDays)
	}
	if c.MinSampleSize < 1 {
		return fmt.Errorf("MIN_SAMPLE_SIZE must be at least 1, got %d", c.MinSampleSize)
	}
	for _, anchor := range []string{c.CleanupAt, c.RefreshAt, c.PreloadAt, c.ReportAt} {
		if _, _, err := ParseAnchor(anchor); err != nil {
			return err
		}
	}
	return nil
}

// ParseAnchor parses a local-time job anchor of the form "HH:MM".
func ParseAnchor(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid job anchor %q: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
