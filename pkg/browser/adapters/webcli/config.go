package webcli

import (
	"errors"
	"strings"
	"time"
)

// Config controls how the webcli adapter invokes the external browser tool.
type Config struct {
	ExecutablePath string
	Profile        string
	RequestTimeout time.Duration
	TempDir        string
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		ExecutablePath: "webcli",
		RequestTimeout: 30 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if strings.TrimSpace(c.ExecutablePath) != "" {
		defaults.ExecutablePath = c.ExecutablePath
	}
	if strings.TrimSpace(c.Profile) != "" {
		defaults.Profile = c.Profile
	}
	if c.RequestTimeout != 0 {
		defaults.RequestTimeout = c.RequestTimeout
	}
	if strings.TrimSpace(c.TempDir) != "" {
		defaults.TempDir = c.TempDir
	}
	return defaults
}

// Validate checks whether the config is usable.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ExecutablePath) == "" {
		return errors.New("executable_path is required")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request_timeout must be greater than zero")
	}
	return nil
}
