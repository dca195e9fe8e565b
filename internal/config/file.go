package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the config file inside the config directory.
const FileName = "config.yaml"

// ConfigFile represents the structure of .leadscout/config.yaml
type ConfigFile struct {
	Provider    string       `yaml:"provider"`
	Models      ModelsConfig `yaml:"models"`
	BaseURL     string       `yaml:"base_url"`
	MaxSearches int          `yaml:"max_searches"`

	Limits    LimitsConfig    `yaml:"limits"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Market    MarketConfig    `yaml:"market"`
	Storage   StorageConfig   `yaml:"storage"`
	Export    ExportConfig    `yaml:"export"`
}

// ModelsConfig picks models per operation.
type ModelsConfig struct {
	Discovery  string `yaml:"discovery"`
	Validation string `yaml:"validation"`
}

// LimitsConfig defines oracle call limits in the config file.
type LimitsConfig struct {
	Timeout          string `yaml:"timeout"`      // Duration string like "90s", "2m"
	MinInterval      string `yaml:"min_interval"` // Duration string like "500ms"
	MaxConcurrent    int    `yaml:"max_concurrent"`
	CircuitBreaker   *bool  `yaml:"circuit_breaker"`
	FailureThreshold int    `yaml:"failure_threshold"`
	SuccessThreshold int    `yaml:"success_threshold"`
	OpenTimeout      string `yaml:"open_timeout"`
}

// DiscoveryConfig defines discovery settings in the config file.
type DiscoveryConfig struct {
	DefaultLimit        int   `yaml:"default_limit"`
	MaxExcludedInPrompt *int  `yaml:"max_excluded_in_prompt"`
	WithinBatchDedup    *bool `yaml:"within_batch_dedup"`
	MaxTokens           int   `yaml:"max_tokens"`
}

// MarketConfig defines the country wording in the config file.
type MarketConfig struct {
	Country       string   `yaml:"country"`
	Demonym       string   `yaml:"demonym"`
	PhonePrefixes []string `yaml:"phone_prefixes"`
	RegistryName  string   `yaml:"registry_name"`
	RegistryLabel *string  `yaml:"registry_label"`
}

// StorageConfig defines where History lives.
type StorageConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// ExportConfig defines export settings in the config file.
type ExportConfig struct {
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
	Format string `yaml:"format"`
	Labels string `yaml:"labels"`
}

// LoadFile loads dir/config.yaml over the defaults. A missing file yields
// the defaults.
func LoadFile(dir string) (*Config, error) {
	cfg := Default(dir)
	configPath := filepath.Join(dir, FileName)

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return &cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var file ConfigFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", configPath, err)
	}
	if err := file.ApplyTo(&cfg, dir); err != nil {
		return nil, fmt.Errorf("config file %s: %w", configPath, err)
	}
	return &cfg, nil
}

// ApplyTo overlays the settings present in the file onto cfg. Relative
// storage paths are resolved against dir.
func (cf *ConfigFile) ApplyTo(cfg *Config, dir string) error {
	if cf.Provider != "" {
		cfg.Provider = cf.Provider
	}
	if cf.Models.Discovery != "" {
		cfg.DiscoveryModel = cf.Models.Discovery
	}
	if cf.Models.Validation != "" {
		cfg.ValidationModel = cf.Models.Validation
	}
	if cf.BaseURL != "" {
		cfg.BaseURL = cf.BaseURL
	}
	if cf.MaxSearches > 0 {
		cfg.MaxSearches = cf.MaxSearches
	}

	// Limits
	if err := overlayDuration(cf.Limits.Timeout, &cfg.Gate.Timeout, "limits.timeout"); err != nil {
		return err
	}
	if err := overlayDuration(cf.Limits.MinInterval, &cfg.Gate.MinInterval, "limits.min_interval"); err != nil {
		return err
	}
	if err := overlayDuration(cf.Limits.OpenTimeout, &cfg.Gate.OpenTimeout, "limits.open_timeout"); err != nil {
		return err
	}
	if cf.Limits.MaxConcurrent > 0 {
		cfg.Gate.MaxConcurrent = cf.Limits.MaxConcurrent
	}
	if cf.Limits.CircuitBreaker != nil {
		cfg.Gate.CircuitBreakerEnabled = *cf.Limits.CircuitBreaker
	}
	if cf.Limits.FailureThreshold > 0 {
		cfg.Gate.FailureThreshold = cf.Limits.FailureThreshold
	}
	if cf.Limits.SuccessThreshold > 0 {
		cfg.Gate.SuccessThreshold = cf.Limits.SuccessThreshold
	}

	// Discovery
	if cf.Discovery.DefaultLimit > 0 {
		cfg.DefaultLimit = cf.Discovery.DefaultLimit
	}
	if cf.Discovery.MaxExcludedInPrompt != nil {
		cfg.MaxExcludedInPrompt = *cf.Discovery.MaxExcludedInPrompt
	}
	if cf.Discovery.WithinBatchDedup != nil {
		cfg.WithinBatchDedup = *cf.Discovery.WithinBatchDedup
	}
	if cf.Discovery.MaxTokens > 0 {
		cfg.DiscoveryMaxTokens = cf.Discovery.MaxTokens
	}

	// Market: a new country without a demonym must not keep "Bulgarian"
	if cf.Market.Country != "" {
		cfg.Market.Country = cf.Market.Country
		cfg.Market.Demonym = cf.Market.Demonym
	} else if cf.Market.Demonym != "" {
		cfg.Market.Demonym = cf.Market.Demonym
	}
	if len(cf.Market.PhonePrefixes) > 0 {
		cfg.Market.PhonePrefixes = cf.Market.PhonePrefixes
	}
	if cf.Market.RegistryName != "" {
		cfg.Market.RegistryName = cf.Market.RegistryName
		cfg.Market.RegistryLabel = ""
	}
	if cf.Market.RegistryLabel != nil {
		cfg.Market.RegistryLabel = *cf.Market.RegistryLabel
	}

	// Storage
	if cf.Storage.Backend != "" {
		cfg.StorageBackend = cf.Storage.Backend
	}
	if cf.Storage.Path != "" {
		path := cf.Storage.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		cfg.StoragePath = path
	} else if cf.Storage.Backend == "file" {
		cfg.StoragePath = filepath.Join(dir, "history.json")
	}

	// Export
	if cf.Export.Dir != "" {
		cfg.ExportDir = cf.Export.Dir
	}
	if cf.Export.Prefix != "" {
		cfg.ExportPrefix = cf.Export.Prefix
	}
	if cf.Export.Format != "" {
		cfg.ExportFormat = cf.Export.Format
	}
	if cf.Export.Labels != "" {
		cfg.ExportLabels = cf.Export.Labels
	}
	return nil
}

func overlayDuration(value string, dest *time.Duration, field string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", field, err)
	}
	*dest = d
	return nil
}
