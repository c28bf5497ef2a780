package config

import (
	"github.com/vietddude/fixer/internal/engine"
	redisclient "github.com/vietddude/fixer/internal/infra/redis"
	"github.com/vietddude/fixer/internal/rule"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Engine      engine.Options        `yaml:"engine"`
	Rules       map[string]RuleConfig `yaml:"rules"`
	Logging     LoggingConfig         `yaml:"logging"`
	Server      ServerConfig          `yaml:"server"`
	Redis       redisclient.Config    `yaml:"redis"`
	Interactive *bool                 `yaml:"interactive"` // nil = true
}

// ServerConfig holds HTTP daemon settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// RuleConfig overrides one registered rule. Unset fields keep the rule's own
// values.
type RuleConfig struct {
	Enabled  *bool `yaml:"enabled"`
	Priority *int  `yaml:"priority"`
}

// Override converts the entry for the registry.
func (r RuleConfig) Override() rule.Override {
	return rule.Override{Enabled: r.Enabled, Priority: r.Priority}
}

// IsInteractive reports whether the CLI may prompt when several corrections
// exist.
func (c *AppConfig) IsInteractive() bool {
	return c.Interactive == nil || *c.Interactive
}
