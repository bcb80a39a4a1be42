package browserd

import (
	"errors"
	"strings"
	"time"
)

// Config controls how the browserd adapter reaches or launches the daemon.
type Config struct {
	BinaryPath     string
	Host           string
	Port           int
	HealthTimeout  time.Duration
	HealthRetries  int
	HealthInterval time.Duration
	RequestTimeout time.Duration
	QuitTimeout    time.Duration
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		BinaryPath:     "browserd",
		Host:           "127.0.0.1",
		Port:           8377,
		HealthTimeout:  2 * time.Second,
		HealthRetries:  20,
		HealthInterval: 250 * time.Millisecond,
		RequestTimeout: 30 * time.Second,
		QuitTimeout:    2 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if strings.TrimSpace(c.BinaryPath) != "" {
		defaults.BinaryPath = c.BinaryPath
	}
	if strings.TrimSpace(c.Host) != "" {
		defaults.Host = c.Host
	}
	if c.Port != 0 {
		defaults.Port = c.Port
	}
	if c.HealthTimeout != 0 {
		defaults.HealthTimeout = c.HealthTimeout
	}
	if c.HealthRetries != 0 {
		defaults.HealthRetries = c.HealthRetries
	}
	if c.HealthInterval != 0 {
		defaults.HealthInterval = c.HealthInterval
	}
	if c.RequestTimeout != 0 {
		defaults.RequestTimeout = c.RequestTimeout
	}
	if c.QuitTimeout != 0 {
		defaults.QuitTimeout = c.QuitTimeout
	}
	return defaults
}

// Validate checks whether the config is usable.
func (c Config) Validate() error {
	if strings.TrimSpace(c.BinaryPath) == "" {
		return errors.New("binary_path is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	if c.HealthRetries <= 0 {
		return errors.New("health_retries must be greater than zero")
	}
	if c.HealthInterval <= 0 {
		return errors.New("health_interval must be greater than zero")
	}
	return nil
}
