package config

import "fmt"

// APIConfig defines the HTTP surface settings.
type APIConfig struct {
	Addr string `json:"addr"`
	// ReadTimeoutSeconds bounds request reading. Zero uses 10 seconds.
	ReadTimeoutSeconds int `json:"read_timeout_seconds"`
	// Disabled turns the HTTP surface off.
	Disabled bool `json:"disabled"`
	// LogToken protects the action journal endpoint when set.
	LogToken string `json:"log_token"`
}

// SetDefaults applies default values.
func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.ReadTimeoutSeconds <= 0 {
		c.ReadTimeoutSeconds = 10
	}
}

// Validate checks the settings.
func (c APIConfig) Validate() error {
	if !c.Disabled && c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	return nil
}
