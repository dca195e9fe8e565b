// Package config holds leadscout's runtime configuration.
//
// Values are layered: built-in defaults, then .leadscout/config.yaml, then
// LEADSCOUT_* environment variables, then command-line flags (applied by the
// caller). API keys are never part of the file; see package secrets.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/leadscout/leadscout/internal/ai"
	"github.com/leadscout/leadscout/internal/deduplication"
	"github.com/leadscout/leadscout/internal/discovery"
	"github.com/leadscout/leadscout/internal/export"
	"github.com/leadscout/leadscout/internal/history"
	"github.com/leadscout/leadscout/internal/types"
	"github.com/leadscout/leadscout/internal/validation"
)

// DirName is the per-project directory holding config, History and the lock.
const DirName = ".leadscout"

// Config is the effective configuration.
type Config struct {
	// Oracle
	Provider        string
	DiscoveryModel  string
	ValidationModel string
	BaseURL         string
	MaxSearches     int
	Gate            ai.GateConfig

	// Discovery
	DefaultLimit        int
	MaxExcludedInPrompt int
	WithinBatchDedup    bool
	DiscoveryMaxTokens  int
	Market              discovery.Market

	// Storage
	StorageBackend string
	StoragePath    string

	// Export
	ExportDir    string
	ExportPrefix string
	ExportFormat string
	ExportLabels string
}

// Default returns the built-in configuration rooted at dir (normally
// ./.leadscout).
func Default(dir string) Config {
	disc := discovery.DefaultConfig()
	return Config{
		Provider:            ai.ProviderAnthropic,
		MaxSearches:         5,
		Gate:                ai.DefaultGateConfig(),
		DefaultLimit:        types.DefaultLimit,
		MaxExcludedInPrompt: disc.MaxExcludedInPrompt,
		WithinBatchDedup:    deduplication.DefaultConfig().EnableWithinBatchDedup,
		DiscoveryMaxTokens:  disc.MaxTokens,
		Market:              disc.Market,
		StorageBackend:      history.BackendSQLite,
		StoragePath:         filepath.Join(dir, "leadscout.db"),
		ExportDir:           ".",
		ExportPrefix:        export.DefaultPrefix,
		ExportFormat:        string(export.FormatXLSX),
		ExportLabels:        "en",
	}
}

// Dir returns the configuration directory: $LEADSCOUT_HOME if set, else
// .leadscout in the current directory. Parent directories are not searched.
func Dir() (string, error) {
	if dir := os.Getenv("LEADSCOUT_HOME"); dir != "" {
		return dir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return filepath.Join(wd, DirName), nil
}

// Validate checks if the configuration has valid values
func (c Config) Validate() error {
	switch strings.ToLower(c.Provider) {
	case ai.ProviderAnthropic, ai.ProviderGemini:
	default:
		return fmt.Errorf("provider must be %s or %s (got %q)", ai.ProviderAnthropic, ai.ProviderGemini, c.Provider)
	}
	if c.MaxSearches <= 0 {
		return fmt.Errorf("max_searches must be positive (got %d)", c.MaxSearches)
	}
	if c.MaxSearches > 20 {
		return fmt.Errorf("max_searches too large (got %d, max 20)", c.MaxSearches)
	}
	if err := c.Gate.Validate(); err != nil {
		return fmt.Errorf("limits: %w", err)
	}
	if !types.IsAllowedLimit(c.DefaultLimit) {
		return fmt.Errorf("default_limit must be one of %v (got %d)", types.AllowedLimits, c.DefaultLimit)
	}
	if err := c.DiscoveryConfig().Validate(); err != nil {
		return fmt.Errorf("discovery: %w", err)
	}
	switch c.StorageBackend {
	case history.BackendSQLite, history.BackendFile:
		if c.StoragePath == "" {
			return fmt.Errorf("storage path is required for the %s backend", c.StorageBackend)
		}
	case history.BackendMemory:
	default:
		return fmt.Errorf("storage backend must be sqlite, file or memory (got %q)", c.StorageBackend)
	}
	if _, err := export.ParseFormat(c.ExportFormat); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if _, err := export.LabelSet(c.ExportLabels); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// String returns a human-readable representation of the config
func (c Config) String() string {
	return fmt.Sprintf(
		"Config{Provider: %s, DiscoveryModel: %s, ValidationModel: %s, MaxSearches: %d, "+
			"Timeout: %v, MinInterval: %v, CircuitBreaker: %t, DefaultLimit: %d, "+
			"MaxExcluded: %d, WithinBatch: %t, Market: %s, Storage: %s:%s, "+
			"Export: %s/%s.%s [%s]}",
		c.Provider, orDefault(c.DiscoveryModel), orDefault(c.ValidationModel), c.MaxSearches,
		c.Gate.Timeout, c.Gate.MinInterval, c.Gate.CircuitBreakerEnabled, c.DefaultLimit,
		c.MaxExcludedInPrompt, c.WithinBatchDedup, c.Market.Country, c.StorageBackend, c.StoragePath,
		c.ExportDir, c.ExportPrefix, c.ExportFormat, c.ExportLabels,
	)
}

func orDefault(s string) string {
	if s == "" {
		return "default"
	}
	return s
}

// LockPath is the history lock file for this configuration ("" for memory).
func (c Config) LockPath() string {
	if c.StorageBackend == history.BackendMemory {
		return ""
	}
	return history.LockPath(c.StoragePath)
}

// AIConfig builds the oracle configuration with the given key.
func (c Config) AIConfig(apiKey string) ai.Config {
	return ai.Config{
		Provider:        c.Provider,
		APIKey:          apiKey,
		BaseURL:         c.BaseURL,
		DiscoveryModel:  c.DiscoveryModel,
		ValidationModel: c.ValidationModel,
		MaxSearches:     c.MaxSearches,
		Gate:            c.Gate,
	}
}

// DiscoveryConfig builds the discovery client configuration.
func (c Config) DiscoveryConfig() discovery.Config {
	return discovery.Config{
		Market:              c.Market,
		MaxExcludedInPrompt: c.MaxExcludedInPrompt,
		MaxTokens:           c.DiscoveryMaxTokens,
	}
}

// ValidationConfig builds the validation client configuration.
func (c Config) ValidationConfig() validation.Config {
	cfg := validation.DefaultConfig()
	cfg.Demonym = c.Market.Demonym
	if cfg.Demonym == "" {
		cfg.Demonym = c.Market.Country
	}
	return cfg
}

// DedupConfig builds the History filter configuration.
func (c Config) DedupConfig() deduplication.Config {
	return deduplication.Config{EnableWithinBatchDedup: c.WithinBatchDedup}
}

// Exporter builds the export writer for the configured labels.
func (c Config) Exporter() (*export.Exporter, error) {
	labels, err := export.LabelSet(c.ExportLabels)
	if err != nil {
		return nil, err
	}
	return export.New(labels)
}
