package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	CORS       CORSConfig
	Thresholds ThresholdConfig
	LargeDeals LargeDealConfig
	Secrets    SecretsConfig
	Scheduler  SchedulerConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// ThresholdConfig holds the significance thresholds applied on every
// reconciliation run. The engine receives these explicitly per call; it
// never reads ambient state.
type ThresholdConfig struct {
	MVSignificance float64 // minimum market value for a discrepancy to matter
	IRRDiff        float64 // absolute IRR difference threshold (inclusive)
	DurationDiff   float64 // absolute duration difference threshold (inclusive)
}

// LargeDealConfig holds the large-deal summary settings.
type LargeDealConfig struct {
	ExcludeNames []string // name fragments excluded from the summary
	TopN         int
}

// SecretsConfig holds the fernet key used to encrypt annotation text at rest.
type SecretsConfig struct {
	FernetKey string
}

// SchedulerConfig controls the automatic reconciliation trigger.
type SchedulerConfig struct {
	Enabled bool
	Spec    string // cron expression
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	mvSignificance, err := getEnvFloat("MV_SIGNIFICANCE", 25_000_000)
	if err != nil {
		return nil, err
	}
	irrDiff, err := getEnvFloat("IRR_DIFF_THRESHOLD", 0.05)
	if err != nil {
		return nil, err
	}
	durationDiff, err := getEnvFloat("DURATION_DIFF_THRESHOLD", 0.5)
	if err != nil {
		return nil, err
	}
	topN, err := getEnvInt("LARGE_DEAL_TOP_N", 10)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/valuation_recon.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost")),
		},
		Thresholds: ThresholdConfig{
			MVSignificance: mvSignificance,
			IRRDiff:        irrDiff,
			DurationDiff:   durationDiff,
		},
		LargeDeals: LargeDealConfig{
			ExcludeNames: splitList(getEnv("LARGE_DEAL_EXCLUDE", "CoreWeave")),
			TopN:         topN,
		},
		Secrets: SecretsConfig{
			FernetKey: os.Getenv("FERNET_KEY"),
		},
		Scheduler: SchedulerConfig{
			Enabled: getEnv("SCHEDULER_ENABLED", "true") == "true",
			// Daily sweep: reconcile any date whose sources are complete
			// but which has no stored run yet.
			Spec: getEnv("SCHEDULER_SPEC", "0 6 * * *"),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return parsed, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return parsed, nil
}

// splitList splits a comma-separated env value into trimmed entries.
func splitList(value string) []string {
	var entries []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			entries = append(entries, part)
		}
	}
	return entries
}
