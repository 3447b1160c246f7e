// Package bot assembles the relay bot application on top of the reusable
// core: configuration, the conversation engine, handlers, and the Telegram
// wiring consumed by core/cmd.
package bot

import (
	"fmt"
	"os"

	coreconfig "relaybot/core/config"
	"relaybot/core/database"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config is the application configuration: the core sections plus the
// optional database used for the audit trail.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database database.Config `yaml:"database"`

	warnings []string
}

// CoreConfig implements cmd.ConfigCarrier.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// Warnings returns non-fatal findings collected while loading, so Bootstrap
// can log them once the logger exists.
func (c *Config) Warnings() []string {
	return c.warnings
}

// LoadConfig reads the YAML file, applies environment overrides, and
// normalizes the result.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	warnings, err := coreconfig.Normalize(&cfg.Config)
	if err != nil {
		return nil, err
	}
	if !cfg.Database.Enabled() {
		warnings = append(warnings, "no database configured; the audit trail is disabled")
	}
	cfg.warnings = warnings
	return &cfg, nil
}
