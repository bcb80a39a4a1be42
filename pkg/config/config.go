// Package config loads webpilot configuration from YAML files with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default configuration values exported for documentation and validation
const (
	DefaultAdapter          = "browserd"
	DefaultSearchProvider   = "browser"
	DefaultOperationTimeout = 30 * time.Second
	DefaultLogLevel         = "info"
)

// Config represents the complete webpilot configuration
type Config struct {
	Adapter          string          `yaml:"adapter"`
	OperationTimeout time.Duration   `yaml:"operation_timeout"`
	Browserd         BrowserdConfig  `yaml:"browserd"`
	Webcli           WebcliConfig    `yaml:"webcli"`
	Search           SearchConfig    `yaml:"search"`
	Logging          LoggingConfig   `yaml:"logging"`
	Telemetry        TelemetryConfig `yaml:"telemetry"`
}

// BrowserdConfig configures the daemon-backed adapter
type BrowserdConfig struct {
	BinaryPath     string        `yaml:"binary_path"`
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	HealthRetries  int           `yaml:"health_retries"`
	HealthInterval time.Duration `yaml:"health_interval"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// WebcliConfig configures the per-invocation CLI adapter
type WebcliConfig struct {
	ExecutablePath string        `yaml:"executable_path"`
	Profile        string        `yaml:"profile"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	TempDir        string        `yaml:"temp_dir"`
}

// SearchConfig selects and configures the search provider
type SearchConfig struct {
	Provider   string      `yaml:"provider"`
	MaxResults int         `yaml:"max_results"`
	Endpoint   string      `yaml:"endpoint"`
	Brave      BraveConfig `yaml:"brave"`
}

// BraveConfig configures the Brave search API provider
type BraveConfig struct {
	APIKey   string `yaml:"api_key"`
	Endpoint string `yaml:"endpoint"`
}

// LoggingConfig controls the JSONL file logger
type LoggingConfig struct {
	Dir      string `yaml:"dir"`
	MinLevel string `yaml:"min_level"`
}

// TelemetryConfig controls tracing output
type TelemetryConfig struct {
	TracingEnabled bool `yaml:"tracing_enabled"`
}

// DefaultConfig returns the configuration used when no file is present
func DefaultConfig() *Config {
	return &Config{
		Adapter:          DefaultAdapter,
		OperationTimeout: DefaultOperationTimeout,
		Browserd: BrowserdConfig{
			BinaryPath:     "browserd",
			Host:           "127.0.0.1",
			Port:           8377,
			HealthRetries:  20,
			HealthInterval: 250 * time.Millisecond,
			RequestTimeout: 30 * time.Second,
		},
		Webcli: WebcliConfig{
			ExecutablePath: "webcli",
			RequestTimeout: 30 * time.Second,
		},
		Search: SearchConfig{
			Provider:   DefaultSearchProvider,
			MaxResults: 10,
		},
		Logging: LoggingConfig{
			MinLevel: DefaultLogLevel,
		},
	}
}

// Load reads defaults, then the user config (~/.webpilot/config.yaml), then
// the project config (./.webpilot/config.yaml), then environment overrides.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	if home != "" {
		userConfigPath := filepath.Join(home, ".webpilot", "config.yaml")
		if err := loadAndMerge(cfg, userConfigPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("loading user config: %w", err)
		}
	}

	projectConfigPath := filepath.Join(".", ".webpilot", "config.yaml")
	if err := loadAndMerge(cfg, projectConfigPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file path
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := loadAndMerge(cfg, path); err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// loadAndMerge loads a YAML file and merges it into the config.
func loadAndMerge(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var override Config
	if err := yaml.Unmarshal(data, &override); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}

	mergeConfigs(cfg, &override, raw)
	return nil
}

// mergeConfigs merges override into base. Zero values never clobber.
func mergeConfigs(base, override *Config, raw map[string]any) {
	if override == nil {
		return
	}

	if override.Adapter != "" {
		base.Adapter = override.Adapter
	}
	if override.OperationTimeout != 0 {
		base.OperationTimeout = override.OperationTimeout
	}

	if override.Browserd.BinaryPath != "" {
		base.Browserd.BinaryPath = override.Browserd.BinaryPath
	}
	if override.Browserd.Host != "" {
		base.Browserd.Host = override.Browserd.Host
	}
	if override.Browserd.Port != 0 {
		base.Browserd.Port = override.Browserd.Port
	}
	if override.Browserd.HealthRetries != 0 {
		base.Browserd.HealthRetries = override.Browserd.HealthRetries
	}
	if override.Browserd.HealthInterval != 0 {
		base.Browserd.HealthInterval = override.Browserd.HealthInterval
	}
	if override.Browserd.RequestTimeout != 0 {
		base.Browserd.RequestTimeout = override.Browserd.RequestTimeout
	}

	if override.Webcli.ExecutablePath != "" {
		base.Webcli.ExecutablePath = override.Webcli.ExecutablePath
	}
	if override.Webcli.Profile != "" {
		base.Webcli.Profile = override.Webcli.Profile
	}
	if override.Webcli.RequestTimeout != 0 {
		base.Webcli.RequestTimeout = override.Webcli.RequestTimeout
	}
	if override.Webcli.TempDir != "" {
		base.Webcli.TempDir = override.Webcli.TempDir
	}

	if override.Search.Provider != "" {
		base.Search.Provider = override.Search.Provider
	}
	if override.Search.MaxResults != 0 {
		base.Search.MaxResults = override.Search.MaxResults
	}
	if override.Search.Endpoint != "" {
		base.Search.Endpoint = override.Search.Endpoint
	}
	if override.Search.Brave.APIKey != "" {
		base.Search.Brave.APIKey = override.Search.Brave.APIKey
	}
	if override.Search.Brave.Endpoint != "" {
		base.Search.Brave.Endpoint = override.Search.Brave.Endpoint
	}

	if override.Logging.Dir != "" {
		base.Logging.Dir = override.Logging.Dir
	}
	if override.Logging.MinLevel != "" {
		base.Logging.MinLevel = override.Logging.MinLevel
	}

	if boolFieldSet(raw, "telemetry", "tracing_enabled") {
		base.Telemetry.TracingEnabled = override.Telemetry.TracingEnabled
	}
}

// applyEnvOverrides applies environment variable overrides
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WEBPILOT_ADAPTER"); v != "" {
		cfg.Adapter = v
	}
	if v := strings.TrimSpace(os.Getenv("WEBPILOT_OPERATION_TIMEOUT")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.OperationTimeout = d
		}
	}
	if v := os.Getenv("WEBPILOT_BROWSERD_PATH"); v != "" {
		cfg.Browserd.BinaryPath = v
	}
	if v := strings.TrimSpace(os.Getenv("WEBPILOT_BROWSERD_PORT")); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Browserd.Port = port
		}
	}
	if v := os.Getenv("WEBPILOT_WEBCLI_PATH"); v != "" {
		cfg.Webcli.ExecutablePath = v
	}
	if v := os.Getenv("WEBPILOT_PROFILE"); v != "" {
		cfg.Webcli.Profile = v
	}
	if v := os.Getenv("WEBPILOT_SEARCH_PROVIDER"); v != "" {
		cfg.Search.Provider = v
	}
	if v := os.Getenv("WEBPILOT_BRAVE_API_KEY"); v != "" {
		cfg.Search.Brave.APIKey = v
	} else if v := os.Getenv("BRAVE_API_KEY"); v != "" && cfg.Search.Brave.APIKey == "" {
		cfg.Search.Brave.APIKey = v
	}
	if v := os.Getenv("WEBPILOT_LOG_DIR"); v != "" {
		cfg.Logging.Dir = v
	}
	if v := os.Getenv("WEBPILOT_LOG_LEVEL"); v != "" {
		cfg.Logging.MinLevel = v
	}
}

// Validate checks the aggregate configuration
func (c *Config) Validate() error {
	validAdapters := map[string]bool{
		"browserd": true,
		"webcli":   true,
	}
	if !validAdapters[strings.ToLower(c.Adapter)] {
		return fmt.Errorf("invalid adapter: %s (must be browserd or webcli)", c.Adapter)
	}

	validProviders := map[string]bool{
		"browser": true,
		"brave":   true,
	}
	if c.Search.Provider != "" && !validProviders[strings.ToLower(c.Search.Provider)] {
		return fmt.Errorf("invalid search provider: %s (valid: browser, brave)", c.Search.Provider)
	}
	if c.Search.MaxResults < 0 {
		return fmt.Errorf("search max_results must not be negative")
	}

	if c.OperationTimeout < 0 {
		return fmt.Errorf("operation_timeout must not be negative")
	}
	if c.Browserd.Port < 0 || c.Browserd.Port > 65535 {
		return fmt.Errorf("browserd port out of range: %d", c.Browserd.Port)
	}

	validLevels := map[string]bool{
		"": true, "debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[strings.ToLower(c.Logging.MinLevel)] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", c.Logging.MinLevel)
	}
	return nil
}

// boolFieldSet reports whether the YAML document explicitly set the nested key.
func boolFieldSet(raw map[string]any, path ...string) bool {
	if len(path) == 0 || raw == nil {
		return false
	}
	current := any(raw)
	for _, key := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return false
		}
		val, ok := m[key]
		if !ok {
			return false
		}
		current = val
	}
	return true
}
