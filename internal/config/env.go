package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ApplyEnv overrides cfg from environment variables.
//
// Environment variables:
//   - LEADSCOUT_PROVIDER: anthropic or gemini
//   - LEADSCOUT_DISCOVERY_MODEL, LEADSCOUT_VALIDATION_MODEL: model overrides
//   - LEADSCOUT_BASE_URL: API endpoint override
//   - LEADSCOUT_MAX_SEARCHES: web searches per discovery call (default: 5)
//   - LEADSCOUT_TIMEOUT_SECS: per-call timeout in seconds (default: 120)
//   - LEADSCOUT_MIN_INTERVAL_MS: minimum spacing between calls (default: 1000)
//   - LEADSCOUT_CIRCUIT_BREAKER: enable the circuit breaker (default: true)
//   - LEADSCOUT_DEFAULT_LIMIT: 50, 100 or 200 (default: 50)
//   - LEADSCOUT_MAX_EXCLUDED: History identifiers listed in the prompt (default: 100)
//   - LEADSCOUT_WITHIN_BATCH_DEDUP: drop repeats inside a batch (default: false)
//   - LEADSCOUT_STORAGE_BACKEND: sqlite, file or memory (default: sqlite)
//   - LEADSCOUT_DB_PATH: History location
//   - LEADSCOUT_EXPORT_DIR, LEADSCOUT_EXPORT_FORMAT, LEADSCOUT_EXPORT_LABELS
//
// Returns an error if any environment variable has an invalid value.
func ApplyEnv(cfg *Config) error {
	parseEnvString("LEADSCOUT_PROVIDER", &cfg.Provider)
	parseEnvString("LEADSCOUT_DISCOVERY_MODEL", &cfg.DiscoveryModel)
	parseEnvString("LEADSCOUT_VALIDATION_MODEL", &cfg.ValidationModel)
	parseEnvString("LEADSCOUT_BASE_URL", &cfg.BaseURL)
	parseEnvString("LEADSCOUT_STORAGE_BACKEND", &cfg.StorageBackend)
	parseEnvString("LEADSCOUT_DB_PATH", &cfg.StoragePath)
	parseEnvString("LEADSCOUT_EXPORT_DIR", &cfg.ExportDir)
	parseEnvString("LEADSCOUT_EXPORT_FORMAT", &cfg.ExportFormat)
	parseEnvString("LEADSCOUT_EXPORT_LABELS", &cfg.ExportLabels)

	if err := parseEnvInt("LEADSCOUT_MAX_SEARCHES", &cfg.MaxSearches); err != nil {
		return err
	}
	if err := parseEnvDuration("LEADSCOUT_TIMEOUT_SECS", &cfg.Gate.Timeout, time.Second); err != nil {
		return err
	}
	if err := parseEnvDuration("LEADSCOUT_MIN_INTERVAL_MS", &cfg.Gate.MinInterval, time.Millisecond); err != nil {
		return err
	}
	if err := parseEnvBool("LEADSCOUT_CIRCUIT_BREAKER", &cfg.Gate.CircuitBreakerEnabled); err != nil {
		return err
	}
	if err := parseEnvInt("LEADSCOUT_DEFAULT_LIMIT", &cfg.DefaultLimit); err != nil {
		return err
	}
	if err := parseEnvInt("LEADSCOUT_MAX_EXCLUDED", &cfg.MaxExcludedInPrompt); err != nil {
		return err
	}
	if err := parseEnvBool("LEADSCOUT_WITHIN_BATCH_DEDUP", &cfg.WithinBatchDedup); err != nil {
		return err
	}
	return nil
}

// Load builds the effective configuration for dir: defaults, then the
// config file, then the environment. The result is validated.
func Load(dir string) (*Config, error) {
	cfg, err := LoadFile(dir)
	if err != nil {
		return nil, err
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// parseEnvString copies a non-empty environment variable into dest
func parseEnvString(key string, dest *string) {
	if value := os.Getenv(key); value != "" {
		*dest = value
	}
}

// parseEnvInt parses an int from an environment variable
func parseEnvInt(key string, dest *int) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

// parseEnvBool parses a bool from an environment variable
func parseEnvBool(key string, dest *bool) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

// parseEnvDuration parses a duration from an environment variable
// The multiplier is used to convert the numeric value to a duration
// (e.g., for seconds: multiplier = time.Second)
func parseEnvDuration(key string, dest *time.Duration, multiplier time.Duration) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = time.Duration(parsed) * multiplier
	return nil
}
