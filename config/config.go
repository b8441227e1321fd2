package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/medfleet/core/dispatch"
	"github.com/kilianp07/medfleet/core/dispatch/logging"
	"github.com/kilianp07/medfleet/core/metrics"
	"github.com/kilianp07/medfleet/core/notify"
	"github.com/kilianp07/medfleet/core/simulator"
	"github.com/kilianp07/medfleet/infra/mqtt"
)

type Config struct {
	Simulator     simulator.Config `json:"simulator"`
	Dispatch      dispatch.Config  `json:"dispatch"`
	Notifications notify.Config    `json:"notifications"`
	Metrics       metrics.Config   `json:"metrics"`
	MQTT          mqtt.Config      `json:"mqtt"`
	Logging       logging.Config   `json:"logging"`
	Sentry        SentryConfig     `json:"sentry"`
	API           APIConfig        `json:"api"`
	Telemetry     TelemetryConfig  `json:"telemetry"`
	// SeedFile optionally replaces the built-in fleet (YAML or JSON).
	SeedFile string `json:"seed_file"`
	// FixturesFile optionally replaces the built-in reference data (YAML).
	FixturesFile string `json:"fixtures_file"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	cfg := Config{}
	cfg.Simulator.Bounds = simulator.DefaultBounds
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills every section.
func (c *Config) SetDefaults() {
	c.Simulator.SetDefaults()
	c.Dispatch.SetDefaults()
	c.Notifications.SetDefaults()
	c.Logging.SetDefaults()
	c.API.SetDefaults()
	c.Telemetry.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Simulator.Validate(); err != nil {
		return fmt.Errorf("simulator: %w", err)
	}
	if err := c.Dispatch.Validate(); err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.API.Validate(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

// Load reads the file at path, applies K_ environment overrides
// (K_SECTION__FIELD) and validates the result. An empty path uses the
// defaults and the environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
